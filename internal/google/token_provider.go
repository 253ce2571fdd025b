package google

import (
	"context"
	"net/http"
	"slices"

	"golang.org/x/oauth2"
)

// TokenProvider is what service clients need from the credential layer.
// *Resolver implements it; tests substitute static tokens.
type TokenProvider interface {
	// TokenSource returns a token source for the alias.
	TokenSource(ctx context.Context, alias string) oauth2.TokenSource

	// HTTPClient returns an authenticated HTTP client for the alias.
	HTTPClient(ctx context.Context, alias string) *http.Client

	// Aliases lists the aliases that have credentials.
	Aliases() ([]string, error)
}

var _ TokenProvider = (*Resolver)(nil)

// StaticTokenProvider serves fixed tokens, one per alias. Unknown aliases
// fail the same way a missing credential file does.
type StaticTokenProvider struct {
	Tokens map[string]*oauth2.Token

	// Base is the transport wrapped by HTTPClient. Defaults to
	// http.DefaultTransport.
	Base http.RoundTripper
}

var _ TokenProvider = (*StaticTokenProvider)(nil)

// TokenSource implements TokenProvider.
func (p *StaticTokenProvider) TokenSource(_ context.Context, alias string) oauth2.TokenSource {
	return staticSource{p: p, alias: alias}
}

// HTTPClient implements TokenProvider.
func (p *StaticTokenProvider) HTTPClient(ctx context.Context, alias string) *http.Client {
	return &http.Client{Transport: &oauth2.Transport{Source: p.TokenSource(ctx, alias), Base: p.Base}}
}

// Aliases implements TokenProvider.
func (p *StaticTokenProvider) Aliases() ([]string, error) {
	aliases := make([]string, 0, len(p.Tokens))
	for a := range p.Tokens {
		aliases = append(aliases, a)
	}
	slices.Sort(aliases)
	return aliases, nil
}

type staticSource struct {
	p     *StaticTokenProvider
	alias string
}

func (s staticSource) Token() (*oauth2.Token, error) {
	t, ok := s.p.Tokens[s.alias]
	if !ok {
		return nil, notFound(s.alias, s.alias+".json")
	}
	return t, nil
}
