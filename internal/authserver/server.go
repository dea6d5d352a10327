/* SPDX-License-Identifier: MPL-2.0 */

// Package authserver hosts the short-lived local web server for the
// one-time OAuth authorization code flow. Visiting / redirects the
// operator to the Webex authorization page; the registered redirect URI
// points back at /callback, which exchanges the code and persists the
// token record.
package authserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/webex-samples/recording-report/internal/oauth"
	"github.com/webex-samples/recording-report/internal/tokens"
)

const successPage = `<!DOCTYPE html>
<html>
<head><title>Authorization complete</title></head>
<body>
<h1>Authorization complete</h1>
<p>Tokens have been stored. You can close this window and run the report generator.</p>
</body>
</html>`

const failurePage = `<!DOCTYPE html>
<html>
<head><title>Authorization failed</title></head>
<body>
<h1>Authorization failed</h1>
<p>%s</p>
</body>
</html>`

// Server is the one-shot OAuth bootstrap server. It serves exactly one
// successful callback, then signals completion.
type Server struct {
	oauth  *oauth.Client
	store  *tokens.Store
	logger zerolog.Logger

	// state is the OAuth state nonce for this server's lifetime.
	state string

	doneOnce sync.Once
	done     chan struct{}
}

// New creates a bootstrap server around the given OAuth client and
// token store.
func New(oauthClient *oauth.Client, store *tokens.Store, logger zerolog.Logger) *Server {
	return &Server{
		oauth:  oauthClient,
		store:  store,
		logger: logger,
		state:  uuid.NewString(),
		done:   make(chan struct{}),
	}
}

// Done is closed once a callback has been handled successfully and the
// token record is on disk.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Routes returns the HTTP handler for the bootstrap server.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleIndex)
	r.Get("/callback", s.handleCallback)
	return r
}

// handleIndex redirects the operator's browser to the Webex
// authorization page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	authURL := s.oauth.AuthorizeURL(s.state)
	s.logger.Info().Str("url", authURL).Msg("redirecting to authorization page")
	http.Redirect(w, r, authURL, http.StatusFound)
}

// handleCallback exchanges the authorization code for tokens and
// persists them. On any failure the token file is not written and the
// server keeps running so the operator can retry.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if errParam := q.Get("error"); errParam != "" {
		s.renderFailure(w, fmt.Sprintf("The authorization request was denied (%s).", errParam))
		return
	}

	code := q.Get("code")
	if code == "" {
		s.renderFailure(w, "The callback is missing the authorization code parameter.")
		return
	}

	if q.Get("state") != s.state {
		s.renderFailure(w, "The state parameter does not match this authorization attempt.")
		return
	}

	tr, err := s.oauth.Exchange(r.Context(), code)
	if err != nil {
		s.logger.Error().Err(err).Msg("authorization code exchange failed")
		s.renderFailure(w, "Exchanging the authorization code failed. Check the server log and retry.")
		return
	}

	creds := tokens.FromTokenResponse(tr, s.store.Now())
	if err := s.store.Save(creds); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist token record")
		s.renderFailure(w, "Storing the tokens failed. Check the server log and retry.")
		return
	}

	s.logger.Info().
		Str("file", s.store.Path()).
		Time("access_token_expiry", creds.AccessTokenExpiry).
		Msg("token record stored")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprint(w, successPage)

	s.doneOnce.Do(func() { close(s.done) })
}

func (s *Server) renderFailure(w http.ResponseWriter, reason string) {
	s.logger.Warn().Str("reason", reason).Msg("authorization callback rejected")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	_, _ = fmt.Fprintf(w, failurePage, reason)
}

// Run serves the bootstrap flow on addr until a successful callback or
// context cancellation, then shuts the listener down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("authorization server listening, open http://" + addr + "/ in a browser")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	case <-s.done:
		// Give the success page a moment to flush before shutting down.
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown authorization server: %w", err)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}
