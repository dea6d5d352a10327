/* SPDX-License-Identifier: MPL-2.0 */

package tokens

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/webex-samples/recording-report/internal/oauth"
)

// Refresher keeps the stored access token usable, refreshing it through
// the OAuth refresh grant when it has expired.
type Refresher struct {
	store  *Store
	oauth  *oauth.Client
	logger zerolog.Logger
}

// NewRefresher creates a Refresher backed by the given store and OAuth client.
func NewRefresher(store *Store, oauthClient *oauth.Client, logger zerolog.Logger) *Refresher {
	return &Refresher{
		store:  store,
		oauth:  oauthClient,
		logger: logger,
	}
}

// Ensure returns valid credentials, refreshing and rewriting the token
// record if the access token has expired. While the access token is
// still valid this makes no network call and no file write. If the
// refresh token has expired too, Ensure fails with ErrAuthExpired and
// leaves the token file untouched.
func (r *Refresher) Ensure(ctx context.Context) (*Credentials, error) {
	creds, err := r.store.Load()
	if err != nil {
		return nil, err
	}

	now := r.store.Now()

	if now.Before(creds.AccessTokenExpiry) {
		r.logger.Debug().Time("expires", creds.AccessTokenExpiry).Msg("access token still valid")
		return creds, nil
	}

	if !now.Before(creds.RefreshTokenExpiry) {
		return nil, ErrAuthExpired
	}

	r.logger.Info().Msg("access token expired, refreshing")

	tr, err := r.oauth.RefreshGrant(ctx, creds.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh access token: %w", err)
	}

	fresh := FromTokenResponse(tr, now)
	// Some providers omit the refresh token or its lifetime on refresh;
	// keep the stored values rather than treating them as expired.
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = creds.RefreshToken
	}
	if tr.RefreshTokenExpiresIn == 0 {
		fresh.RefreshTokenExpiry = creds.RefreshTokenExpiry
	}

	if err := r.store.Save(fresh); err != nil {
		return nil, err
	}

	r.logger.Info().Time("expires", fresh.AccessTokenExpiry).Msg("token record updated")
	return fresh, nil
}
