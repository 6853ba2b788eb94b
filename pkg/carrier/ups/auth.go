package ups

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cybership/rateshop/pkg/carrier"
	"github.com/cybership/rateshop/pkg/carrier/httpx"
)

// Refresh 60s before actual expiry: the token may be used immediately
// after the freshness check, and in-flight latency must not straddle
// true expiry.
const expiryBuffer = 60 * time.Second

// auth implements the UPS OAuth 2.0 client-credentials flow with an
// in-memory token cache. One instance per carrier account; the cache
// is never shared across adapters.
//
// The mutex guards only cache reads and writes, never the network
// exchange. Two concurrent callers that both miss the cache both
// re-authenticate; last write wins and both tokens are valid.
type auth struct {
	clientID     string
	clientSecret string
	baseURL      string
	http         *httpx.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func newAuth(clientID, clientSecret, baseURL string, http *httpx.Client) *auth {
	return &auth{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      baseURL,
		http:         http,
	}
}

// Token returns a bearer token, reusing the cached one when it is still
// inside the expiry buffer. Acquisition failures come back as AUTH_FAILED.
func (a *auth) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	if a.token != "" && time.Now().Before(a.expiresAt) {
		token := a.token
		a.mu.Unlock()
		return token, nil
	}
	a.mu.Unlock()

	return a.fetch(ctx)
}

// Invalidate clears the cached token unconditionally. Called when a
// downstream request gets a 401, so the next Token call performs a
// fresh exchange instead of reusing a revoked credential. Idempotent.
func (a *auth) Invalidate() {
	a.mu.Lock()
	a.token = ""
	a.expiresAt = time.Time{}
	a.mu.Unlock()
}

func (a *auth) fetch(ctx context.Context) (string, error) {
	credentials := base64.StdEncoding.EncodeToString([]byte(a.clientID + ":" + a.clientSecret))

	resp, err := a.http.Do(ctx, httpx.Request{
		Method: http.MethodPost,
		URL:    a.baseURL + "/security/v1/oauth/token",
		Headers: map[string]string{
			"Authorization": "Basic " + credentials,
		},
		Raw: "grant_type=client_credentials",
	})
	if err != nil {
		// Transport errors arrive already classified; pass them through.
		// Anything else becomes AUTH_FAILED with the cause preserved.
		var cerr *carrier.Error
		if errors.As(err, &cerr) {
			return "", err
		}
		return "", carrier.NewError(carrier.KindAuthFailed, "unexpected error during UPS token acquisition").
			WithCarrier(carrierCode).
			WithCause(err)
	}

	if resp.Status != http.StatusOK {
		return "", carrier.NewError(carrier.KindAuthFailed, "failed to obtain UPS access token").
			WithCarrier(carrierCode).
			WithStatusCode(resp.Status).
			WithDetails(map[string]any{"response": httpx.Truncate(resp.Body, 500)})
	}

	var token TokenResponse
	if err := resp.Decode(&token); err != nil {
		return "", carrier.NewError(carrier.KindAuthFailed, "failed to decode UPS token response").
			WithCarrier(carrierCode).
			WithCause(err)
	}

	seconds, err := strconv.Atoi(token.ExpiresIn)
	if err != nil {
		return "", carrier.NewError(carrier.KindAuthFailed, "unexpected expires_in in UPS token response").
			WithCarrier(carrierCode).
			WithCause(err)
	}

	a.mu.Lock()
	a.token = token.AccessToken
	a.expiresAt = time.Now().Add(time.Duration(seconds)*time.Second - expiryBuffer)
	a.mu.Unlock()

	return token.AccessToken, nil
}
