/* SPDX-License-Identifier: MPL-2.0 */

// Package tokens persists the OAuth token record and keeps the access
// token fresh.
package tokens

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/renameio/v2"

	"github.com/webex-samples/recording-report/internal/oauth"
)

// ErrNotAuthenticated is returned when no token record exists on disk.
var ErrNotAuthenticated = errors.New("no stored credentials: run the authorization server first")

// ErrAuthExpired is returned when both the access and refresh tokens
// have expired and the operator must redo the authorization flow.
var ErrAuthExpired = errors.New("authentication expired: run the authorization server again")

// Credentials is the persisted token record. Both tokens and both
// expiries are always written together.
type Credentials struct {
	AccessToken        string    `json:"access_token"`
	RefreshToken       string    `json:"refresh_token"`
	AccessTokenExpiry  time.Time `json:"access_token_expiry"`
	RefreshTokenExpiry time.Time `json:"refresh_token_expiry"`
}

// FromTokenResponse converts a token endpoint response into a
// Credentials record with absolute expiries relative to now.
func FromTokenResponse(tr *oauth.TokenResponse, now time.Time) *Credentials {
	return &Credentials{
		AccessToken:        tr.AccessToken,
		RefreshToken:       tr.RefreshToken,
		AccessTokenExpiry:  now.Add(time.Duration(tr.ExpiresIn) * time.Second),
		RefreshTokenExpiry: now.Add(time.Duration(tr.RefreshTokenExpiresIn) * time.Second),
	}
}

// Store reads and writes the token record. The clock is injected so
// expiry logic is testable without real time passing.
type Store struct {
	path string
	now  func() time.Time
}

// NewStore creates a Store for the given file path. A nil clock
// defaults to time.Now.
func NewStore(path string, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{path: path, now: now}
}

// Path returns the token file path.
func (s *Store) Path() string {
	return s.path
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// Load reads the token record from disk. Returns ErrNotAuthenticated
// if the file does not exist.
func (s *Store) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse token file %s: %w", s.path, err)
	}
	if creds.AccessToken == "" || creds.RefreshToken == "" {
		return nil, fmt.Errorf("token file %s is incomplete", s.path)
	}

	return &creds, nil
}

// Save writes the token record atomically, so a crash mid-write can
// never leave a partial record behind.
func (s *Store) Save(creds *Credentials) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}

	if err := renameio.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write token file %s: %w", s.path, err)
	}
	return nil
}
