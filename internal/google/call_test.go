package google

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestCaller_Do(t *testing.T) {
	t.Run("success passes through", func(t *testing.T) {
		c := &Caller{Service: ServiceCalendar, Limiter: NewRateLimiter(ServiceCalendar)}
		called := false
		err := c.Do(context.Background(), "events.list", func(context.Context) error {
			called = true
			return nil
		})
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("remote errors are classified", func(t *testing.T) {
		c := &Caller{Service: ServiceGmail}
		err := c.Do(context.Background(), "messages.get", func(context.Context) error {
			return &googleapi.Error{Code: http.StatusNotFound, Message: "Requested entity was not found."}
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRemoteNotFound)

		var remote *RemoteAPIError
		require.ErrorAs(t, err, &remote)
		assert.Equal(t, "gmail", remote.Service)
		assert.Equal(t, "messages.get", remote.Operation)
	})

	t.Run("credential errors pass through", func(t *testing.T) {
		c := &Caller{Service: ServiceTasks}
		err := c.Do(context.Background(), "tasklists.list", func(context.Context) error {
			return notFound("work", "work.json")
		})
		assert.ErrorIs(t, err, ErrNotFound)
		var remote *RemoteAPIError
		assert.False(t, errors.As(err, &remote))
	})

	t.Run("429 opens backoff window", func(t *testing.T) {
		limiter := NewRateLimiter(ServiceKeep)
		c := &Caller{Service: ServiceKeep, Limiter: limiter}
		err := c.Do(context.Background(), "notes.list", func(context.Context) error {
			return &googleapi.Error{
				Code:   http.StatusTooManyRequests,
				Header: http.Header{"Retry-After": []string{"120"}},
			}
		})
		assert.ErrorIs(t, err, ErrRateLimited)
		assert.False(t, limiter.Allow())
	})

	t.Run("cancelled context during backoff", func(t *testing.T) {
		limiter := NewRateLimiter(ServiceKeep)
		limiter.RecordRateLimitError(time.Minute)
		c := &Caller{Service: ServiceKeep, Limiter: limiter}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		called := false
		err := c.Do(ctx, "notes.list", func(context.Context) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, 5*time.Second, retryAfter(&googleapi.Error{Header: http.Header{"Retry-After": []string{"5"}}}))
	assert.Zero(t, retryAfter(&googleapi.Error{Header: http.Header{"Retry-After": []string{"soon"}}}))
	assert.Zero(t, retryAfter(&googleapi.Error{}))
	assert.Zero(t, retryAfter(errors.New("plain")))
}
