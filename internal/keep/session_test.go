package keep

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestSession_NotConfigured(t *testing.T) {
	s := NewSession("", func(context.Context, string) (*Client, error) {
		t.Fatal("factory must not be called")
		return nil, nil
	}, nil)

	err := s.Do(context.Background(), func(*Client) error { return nil })
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSession_LazyAndReused(t *testing.T) {
	var built atomic.Int32
	s := NewSession("notes", func(ctx context.Context, alias string) (*Client, error) {
		built.Add(1)
		return NewClient(ctx, alias, testProvider(), nil)
	}, nil)
	assert.Equal(t, int32(0), built.Load())

	c1, err := s.Client(context.Background())
	require.NoError(t, err)
	c2, err := s.Client(context.Background())
	require.NoError(t, err)

	assert.Same(t, c1, c2)
	assert.Equal(t, int32(1), built.Load())
}

func TestSession_InvalidatedOnAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":401,"message":"Request had invalid authentication credentials."}}`))
	}))
	defer srv.Close()

	var built atomic.Int32
	s := NewSession("notes", func(ctx context.Context, alias string) (*Client, error) {
		built.Add(1)
		return NewClient(ctx, alias, testProvider(), nil, option.WithEndpoint(srv.URL+"/"))
	}, nil)

	err := s.Do(context.Background(), func(c *Client) error {
		_, err := c.ListNotes(context.Background(), 0)
		return err
	})
	require.Error(t, err)

	_, err = s.Client(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), built.Load(), "client rebuilt after 401")
}

func TestSession_KeptOnOtherErrors(t *testing.T) {
	var built atomic.Int32
	s := NewSession("notes", func(ctx context.Context, alias string) (*Client, error) {
		built.Add(1)
		return NewClient(ctx, alias, testProvider(), nil)
	}, nil)

	err := s.Do(context.Background(), func(*Client) error { return errors.New("boom") })
	require.Error(t, err)
	_, _ = s.Client(context.Background())
	assert.Equal(t, int32(1), built.Load())
}

func TestSession_FactoryError(t *testing.T) {
	s := NewSession("notes", func(context.Context, string) (*Client, error) {
		return nil, errors.New("no client")
	}, nil)
	_, err := s.Client(context.Background())
	assert.EqualError(t, err, "no client")
}
