package carrier

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// The validation gate adapters run before any external call. Struct tags
// on the domain models define the schema; violations are collected into
// a single VALIDATION_ERROR listing every failed field path.

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateRateRequest checks a rate request against the domain schema.
// It returns nil on success, or a VALIDATION_ERROR enumerating all
// violated field paths, not just the first.
func ValidateRateRequest(req *RateRequest) *Error {
	if req == nil {
		return NewError(KindValidationError, "rate request is required")
	}

	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewError(KindValidationError, "invalid rate request").WithCause(err)
	}

	issues := make([]string, len(verrs))
	for i, fe := range verrs {
		issues[i] = fmt.Sprintf("%s: %s", fieldPath(fe), violationMessage(fe))
	}

	return NewError(KindValidationError, "invalid rate request: "+strings.Join(issues, "; ")).
		WithDetails(map[string]any{"issues": issues})
}

// fieldPath strips the root struct name from the validator namespace,
// leaving a path like "origin.postalCode".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return lowerFirstSegments(ns)
}

func lowerFirstSegments(path string) string {
	segments := strings.Split(path, ".")
	for i, s := range segments {
		if s == "" {
			continue
		}
		segments[i] = strings.ToLower(s[:1]) + s[1:]
	}
	return strings.Join(segments, ".")
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "min":
		if fe.Kind().String() == "slice" {
			return "must contain at least " + fe.Param() + " element(s)"
		}
		return "must be at least " + fe.Param() + " characters"
	case "max":
		if fe.Kind().String() == "slice" {
			return "must contain at most " + fe.Param() + " element(s)"
		}
		return "must be at most " + fe.Param() + " characters"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "email":
		return "must be a valid email address"
	default:
		return "failed validation rule " + fe.Tag()
	}
}
