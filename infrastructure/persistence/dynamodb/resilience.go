// Package dynamodb implements the persistence gateways on a single DynamoDB
// table.
package dynamodb

import (
	"context"
	"errors"
	"time"

	"github.com/aws/smithy-go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	pkgerrors "scandex-backend/pkg/errors"
)

const (
	maxRetryAttempts = 3
	baseRetryDelay   = 50 * time.Millisecond
)

// Resilience wraps DynamoDB calls with a circuit breaker and a short retry
// loop for throttling. Condition failures are domain outcomes and pass
// through untouched.
type Resilience struct {
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewResilience creates a resilience wrapper
func NewResilience(logger *zap.Logger) *Resilience {
	settings := gobreaker.Settings{
		Name:    "dynamodb",
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// Conditional failures are expected outcomes, not store health
			return err == nil || !isServerFault(err)
		},
	}
	return &Resilience{
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// Execute runs the operation through the breaker, retrying throttled calls
// with exponential backoff
func (r *Resilience) Execute(ctx context.Context, operation string, fn func() error) error {
	_, err := r.breaker.Execute(func() (interface{}, error) {
		var lastErr error
		for attempt := 0; attempt < maxRetryAttempts; attempt++ {
			if attempt > 0 {
				delay := baseRetryDelay << (attempt - 1)
				r.logger.Debug("retrying throttled operation",
					zap.String("operation", operation),
					zap.Int("attempt", attempt),
					zap.Duration("delay", delay),
				)
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}

			lastErr = fn()
			if lastErr == nil || !isThrottle(lastErr) {
				return nil, lastErr
			}
		}
		return nil, lastErr
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return pkgerrors.NewUnavailableError("dynamodb")
	}
	return err
}

// isThrottle reports whether the error is a DynamoDB throughput rejection
func isThrottle(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "ProvisionedThroughputExceededException",
		"ThrottlingException",
		"RequestLimitExceeded":
		return true
	}
	return false
}

// isServerFault reports whether the error should count against the breaker
func isServerFault(err error) bool {
	if pkgerrors.IsOwnership(err) || pkgerrors.IsInvalidState(err) || pkgerrors.IsNotFound(err) {
		return false
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ConditionalCheckFailedException", "TransactionCanceledException":
			return false
		}
	}
	return true
}
