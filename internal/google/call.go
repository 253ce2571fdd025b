package google

import (
	"context"
	"errors"
	"strconv"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/abdulehsan/Jarvis/internal/instrumentation"
)

// Caller runs Google API calls of one service behind its rate limiter and
// records a span and metrics for each. A zero Caller only wraps errors.
type Caller struct {
	Service Service
	Limiter *RateLimiter
	Metrics *instrumentation.Metrics
}

// Do waits for the limiter, runs fn and converts its error with WrapRemote.
// A 429 opens the limiter's backoff window.
func (c *Caller) Do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	service := string(c.Service)

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return WrapRemote(service, operation, err)
		}
	}

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, service, operation)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		err = WrapRemote(service, operation, err)
		if IsRateLimited(err) {
			if c.Limiter != nil {
				c.Limiter.RecordRateLimitError(retryAfter(err))
			}
			c.Metrics.RecordGoogleAPIRateLimited(ctx, service)
		}
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	c.Metrics.RecordGoogleAPIOperation(ctx, service, operation, status, time.Since(start))
	return err
}

// retryAfter reads the Retry-After seconds of a googleapi error, or 0.
func retryAfter(err error) time.Duration {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	secs, convErr := strconv.Atoi(gerr.Header.Get("Retry-After"))
	if convErr != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
