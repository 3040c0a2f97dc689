package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"go.uber.org/zap"
)

// FallbackService implements provider routing with fallback:
// the primary answers first; the secondary takes over on any primary error,
// and if the secondary hits a quota error after a primary connection error
// the primary gets one more attempt.
type FallbackService struct {
	primary   Completer
	secondary Completer
	log       *zap.Logger
}

// NewFallbackService creates a new fallback service with both providers
func NewFallbackService(primary, secondary Completer, log *zap.Logger) *FallbackService {
	return &FallbackService{
		primary:   primary,
		secondary: secondary,
		log:       log.Named("ai"),
	}
}

// IsConnectionError checks if the error is a network/connection error
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	// Check for network errors
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Check for common connection error messages
	errStr := strings.ToLower(err.Error())
	connectionIndicators := []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"eof",
	}

	for _, indicator := range connectionIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// IsQuotaError checks if the error indicates API quota exhaustion (429)
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	quotaIndicators := []string{
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource exhausted",
		"resource_exhausted",
	}

	for _, indicator := range quotaIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// Complete implements Completer
func (f *FallbackService) Complete(ctx context.Context, req Request) (string, error) {
	var primaryErr error
	if f.primary != nil {
		result, err := f.primary.Complete(ctx, req)
		if err == nil {
			return result, nil
		}
		primaryErr = err

		if IsConnectionError(err) {
			f.log.Warn("primary provider unreachable, falling back", zap.Error(err))
		} else {
			f.log.Warn("primary provider error, falling back", zap.Error(err))
		}
	}

	if f.secondary != nil {
		result, err := f.secondary.Complete(ctx, req)
		if err == nil {
			return result, nil
		}

		// The primary may have hit a transient network blip; give it one more go.
		if IsQuotaError(err) && IsConnectionError(primaryErr) && f.primary != nil {
			f.log.Warn("secondary provider quota exhausted, retrying primary", zap.Error(err))
			return f.primary.Complete(ctx, req)
		}

		return "", fmt.Errorf("fallback provider failed: %w", err)
	}

	if primaryErr != nil {
		return "", primaryErr
	}
	return "", fmt.Errorf("no AI provider available")
}
