package google

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
)

// DefaultTokenURI is Google's OAuth2 token endpoint.
const DefaultTokenURI = "https://oauth2.googleapis.com/token"

// LoadClientConfig reads the OAuth client secrets file downloaded from the
// Google Cloud console ("installed" or "web" client) and returns a config that
// requests ScopeSet.
func LoadClientConfig(path string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("OAuth client secrets file %s not found: download the OAuth 2.0 Client ID JSON from the Google Cloud Console and save it there", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read OAuth client secrets file: %w", err)
	}

	conf, err := googleoauth.ConfigFromJSON(data, Scopes()...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OAuth client secrets file %s: %w", path, err)
	}
	return conf, nil
}

// RecordFromToken builds the record persisted after a successful consent.
func RecordFromToken(t *oauth2.Token, conf *oauth2.Config, granted []string) *Record {
	tokenURI := conf.Endpoint.TokenURL
	if tokenURI == "" {
		tokenURI = DefaultTokenURI
	}
	if len(granted) == 0 {
		granted = Scopes()
	}
	rec := &Record{
		TokenURI:     tokenURI,
		ClientID:     conf.ClientID,
		ClientSecret: conf.ClientSecret,
		Scopes:       granted,
	}
	rec.Update(t)
	return rec
}

// refreshConfig returns the oauth2 config used to refresh rec. Client fields
// stored in the record win over the process-wide client config, which lets
// records enrolled with a different OAuth client keep refreshing.
func refreshConfig(rec *Record, fallback *oauth2.Config) *oauth2.Config {
	conf := &oauth2.Config{Scopes: Scopes()}
	if fallback != nil {
		conf.ClientID = fallback.ClientID
		conf.ClientSecret = fallback.ClientSecret
		conf.Endpoint = fallback.Endpoint
	}
	if rec.ClientID != "" {
		conf.ClientID = rec.ClientID
		conf.ClientSecret = rec.ClientSecret
	}
	if rec.TokenURI != "" {
		conf.Endpoint.TokenURL = rec.TokenURI
	}
	if conf.Endpoint.TokenURL == "" {
		conf.Endpoint.TokenURL = DefaultTokenURI
	}
	conf.Endpoint.AuthStyle = oauth2.AuthStyleInParams
	return conf
}
