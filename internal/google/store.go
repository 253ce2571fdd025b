package google

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Layout selects where credential files live.
type Layout string

const (
	// LayoutDir keeps one <alias>.json per account inside a credentials directory.
	LayoutDir Layout = "dir"
	// LayoutFlat reads <alias>.json from the base directory itself, which is how
	// hosted deployments mount secret files.
	LayoutFlat Layout = "flat"
)

// Record is the persisted credential of one alias. The JSON shape matches the
// "authorized user" files written by Google's client libraries, so records
// created by other tools load unchanged.
type Record struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	TokenURI     string    `json:"token_uri,omitempty"`
	ClientID     string    `json:"client_id,omitempty"`
	ClientSecret string    `json:"client_secret,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`
	Expiry       time.Time `json:"expiry,omitzero"`
}

// OAuth2Token converts the record into an oauth2 token.
func (r *Record) OAuth2Token() *oauth2.Token {
	tokenType := r.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &oauth2.Token{
		AccessToken:  r.Token,
		RefreshToken: r.RefreshToken,
		TokenType:    tokenType,
		Expiry:       r.Expiry,
	}
}

// Update copies a refreshed token into the record. Google omits the refresh
// token on refresh responses, so an empty one keeps the stored value.
func (r *Record) Update(t *oauth2.Token) {
	r.Token = t.AccessToken
	if t.RefreshToken != "" {
		r.RefreshToken = t.RefreshToken
	}
	if t.TokenType != "" {
		r.TokenType = t.TokenType
	}
	r.Expiry = t.Expiry
}

// Store persists credential records keyed by alias.
type Store interface {
	Load(alias string) (*Record, error)
	Save(alias string, rec *Record) error
	Exists(alias string) bool
	List() ([]string, error)
	Path(alias string) string
}

// FileStore keeps each record in its own JSON file.
type FileStore struct {
	dir    string
	cipher *CredentialCipher
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store rooted at baseDir. With LayoutDir records live
// in baseDir/credentials, with LayoutFlat directly in baseDir.
func NewFileStore(baseDir string, layout Layout, cipher *CredentialCipher) (*FileStore, error) {
	switch layout {
	case LayoutDir, "":
		return &FileStore{dir: filepath.Join(baseDir, "credentials"), cipher: cipher}, nil
	case LayoutFlat:
		return &FileStore{dir: baseDir, cipher: cipher}, nil
	default:
		return nil, fmt.Errorf("unknown credentials layout %q (supported: dir, flat)", layout)
	}
}

// Dir returns the directory holding the record files.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the file that holds (or would hold) the alias record.
func (s *FileStore) Path(alias string) string {
	return filepath.Join(s.dir, alias+".json")
}

// Exists reports whether a record file is present for alias.
func (s *FileStore) Exists(alias string) bool {
	if ValidateAlias(alias) != nil {
		return false
	}
	_, err := os.Stat(s.Path(alias))
	return err == nil
}

// Load reads the record for alias. A missing file yields ErrNotFound, an
// unreadable or malformed one ErrInvalid.
func (s *FileStore) Load(alias string) (*Record, error) {
	path := s.Path(alias)
	if err := ValidateAlias(alias); err != nil {
		return nil, invalid(alias, path, err)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(alias, path)
	}
	if err != nil {
		return nil, invalid(alias, path, fmt.Errorf("failed to read credential file: %w", err))
	}

	data, err = s.cipher.Open(data)
	if err != nil {
		return nil, invalid(alias, path, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, invalid(alias, path, fmt.Errorf("failed to parse credential file: %w", err))
	}
	if rec.Token == "" && rec.RefreshToken == "" {
		return nil, invalid(alias, path, fmt.Errorf("credential file holds no token"))
	}
	return &rec, nil
}

// Save writes the record atomically with 0600 permissions.
func (s *FileStore) Save(alias string, rec *Record) error {
	if err := ValidateAlias(alias); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credential record: %w", err)
	}
	data, err = s.cipher.Seal(data)
	if err != nil {
		return fmt.Errorf("failed to encrypt credential record: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+alias+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary credential file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set credential file permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close credential file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(alias)); err != nil {
		return fmt.Errorf("failed to replace credential file: %w", err)
	}
	return nil
}

// List returns the aliases that have a loadable record, sorted. Other JSON
// files in the directory (client secrets, config) are skipped.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials directory: %w", err)
	}

	var aliases []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		alias := strings.TrimSuffix(name, ".json")
		if ValidateAlias(alias) != nil {
			continue
		}
		if _, err := s.Load(alias); err != nil {
			continue
		}
		aliases = append(aliases, alias)
	}
	slices.Sort(aliases)
	return aliases, nil
}
