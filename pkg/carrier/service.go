package carrier

import (
	"context"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Result is one carrier's outcome in a fan-out query. A failed carrier
// carries an empty quote list and a human-readable error description;
// it is never surfaced as a returned error.
type Result struct {
	Carrier string      `json:"carrier"`
	Quotes  []RateQuote `json:"quotes"`
	Error   string      `json:"error,omitempty"`
}

// Service is the entry point for rate operations. It delegates to
// carrier adapters through the registry and returns normalized
// domain objects.
type Service struct {
	registry *Registry
	logger   *otelzap.Logger
}

// NewService creates a rate service over the given registry.
func NewService(registry *Registry, logger *otelzap.Logger) *Service {
	return &Service{
		registry: registry,
		logger:   logger,
	}
}

// GetRates queries a single carrier. Failures propagate to the caller
// unchanged, including kind, carrier tag, status code, and details.
func (s *Service) GetRates(ctx context.Context, code string, req *RateRequest) ([]RateQuote, error) {
	c, err := s.registry.Get(code)
	if err != nil {
		return nil, err
	}
	return c.GetRates(ctx, req)
}

// GetRatesFromAll queries every registered carrier concurrently and
// collects per-carrier results in registry order regardless of
// completion order. One carrier's failure never blocks the others:
// its slot records the error string instead.
func (s *Service) GetRatesFromAll(ctx context.Context, req *RateRequest) []Result {
	carriers := s.registry.List()
	results := make([]Result, len(carriers))

	var g errgroup.Group
	for i, c := range carriers {
		g.Go(func() error {
			quotes, err := c.GetRates(ctx, req)
			if err != nil {
				s.logger.Ctx(ctx).Warn("Carrier rate query failed",
					zap.String("carrier", c.Code()),
					zap.String("kind", string(KindOf(err))),
					zap.Error(err),
				)
				results[i] = Result{Carrier: c.Code(), Quotes: []RateQuote{}, Error: err.Error()}
				return nil
			}
			results[i] = Result{Carrier: c.Code(), Quotes: quotes}
			return nil
		})
	}
	g.Wait()

	return results
}
