package google

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Credential failure kinds.
var (
	// ErrNotFound means no credential record exists for the alias.
	ErrNotFound = errors.New("credentials not found")

	// ErrInvalid means the record exists but cannot be used or refreshed.
	ErrInvalid = errors.New("credentials invalid")
)

// CredentialError describes why the credentials of one alias could not be
// resolved. Kind is ErrNotFound or ErrInvalid.
type CredentialError struct {
	Alias string
	Path  string
	Kind  error
	Err   error
}

func (e *CredentialError) Error() string {
	switch e.Kind {
	case ErrNotFound:
		return fmt.Sprintf("Credentials file not found for account alias '%s' at %s. Please run 'jarvis accounts add %s'.", e.Alias, e.Path, e.Alias)
	default:
		msg := fmt.Sprintf("Credentials for '%s' are invalid and cannot be refreshed. Please re-run 'jarvis accounts add %s' for this alias.", e.Alias, e.Alias)
		if e.Err != nil {
			msg += " Details: " + e.Err.Error()
		}
		return msg
	}
}

// Is makes errors.Is(err, ErrNotFound) and errors.Is(err, ErrInvalid) work.
func (e *CredentialError) Is(target error) bool {
	return target == e.Kind
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

func notFound(alias, path string) error {
	return &CredentialError{Alias: alias, Path: path, Kind: ErrNotFound}
}

func invalid(alias, path string, err error) error {
	return &CredentialError{Alias: alias, Path: path, Kind: ErrInvalid, Err: err}
}

// Remote API failure classes.
var (
	ErrUnauthorized   = errors.New("google: unauthorised (invalid credentials)")
	ErrForbidden      = errors.New("google: forbidden (insufficient permissions)")
	ErrRemoteNotFound = errors.New("google: resource not found")
	ErrRateLimited    = errors.New("google: rate limit exceeded")
)

// RemoteAPIError wraps an error returned by a Google API call together with
// the service and operation that produced it.
type RemoteAPIError struct {
	Service   string
	Operation string
	Code      int
	Err       error
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Service, e.Operation, e.Err)
}

func (e *RemoteAPIError) Unwrap() error {
	return e.Err
}

// Is maps the HTTP status onto the failure classes above.
func (e *RemoteAPIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Code == http.StatusUnauthorized
	case ErrForbidden:
		return e.Code == http.StatusForbidden
	case ErrRemoteNotFound:
		return e.Code == http.StatusNotFound
	case ErrRateLimited:
		return e.Code == http.StatusTooManyRequests
	}
	return false
}

// WrapRemote converts an error from a generated API client into a
// *RemoteAPIError. Credential errors and nil pass through unchanged.
func WrapRemote(service, operation string, err error) error {
	if err == nil {
		return nil
	}
	var credErr *CredentialError
	if errors.As(err, &credErr) {
		return err
	}
	remote := &RemoteAPIError{Service: service, Operation: operation, Err: err}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		remote.Code = gerr.Code
	}
	return remote
}

// IsUnauthorized reports whether err is an authentication failure from Google.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusUnauthorized
	}
	return false
}

// IsRateLimited reports whether err is an HTTP 429 from Google.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return false
}
