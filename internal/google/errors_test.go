package google

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestCredentialError_Messages(t *testing.T) {
	err := notFound("work", "/tmp/credentials/work.json")
	assert.Equal(t,
		"Credentials file not found for account alias 'work' at /tmp/credentials/work.json. Please run 'jarvis accounts add work'.",
		err.Error())

	err = invalid("work", "/tmp/credentials/work.json", nil)
	assert.Equal(t,
		"Credentials for 'work' are invalid and cannot be refreshed. Please re-run 'jarvis accounts add work' for this alias.",
		err.Error())

	cause := errors.New("invalid_grant")
	err = invalid("work", "", cause)
	assert.Contains(t, err.Error(), "Details: invalid_grant")
	assert.True(t, errors.Is(err, cause))
}

func TestCredentialError_IsKind(t *testing.T) {
	wrapped := fmt.Errorf("failed to build client: %w", notFound("a", "p"))
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrInvalid))
}

func TestWrapRemote(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"unauthorised", &googleapi.Error{Code: http.StatusUnauthorized}, ErrUnauthorized},
		{"forbidden", &googleapi.Error{Code: http.StatusForbidden}, ErrForbidden},
		{"not found", &googleapi.Error{Code: http.StatusNotFound}, ErrRemoteNotFound},
		{"rate limited", fmt.Errorf("call: %w", &googleapi.Error{Code: http.StatusTooManyRequests}), ErrRateLimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WrapRemote("calendar", "events.list", tt.err)
			assert.True(t, errors.Is(err, tt.target))

			var remote *RemoteAPIError
			assert.ErrorAs(t, err, &remote)
			assert.Equal(t, "calendar", remote.Service)
		})
	}

	assert.NoError(t, WrapRemote("gmail", "send", nil))

	cred := notFound("work", "p")
	assert.Same(t, cred, WrapRemote("gmail", "send", cred))
}

func TestIsUnauthorizedAndRateLimited(t *testing.T) {
	assert.True(t, IsUnauthorized(&googleapi.Error{Code: 401}))
	assert.False(t, IsUnauthorized(&googleapi.Error{Code: 403}))
	assert.True(t, IsRateLimited(WrapRemote("keep", "list", &googleapi.Error{Code: 429})))
	assert.False(t, IsRateLimited(errors.New("boom")))
}
