/* SPDX-License-Identifier: MPL-2.0 */

// Package oauth implements the server side of the Webex OAuth
// authorization code flow: building the authorize URL, exchanging an
// authorization code, and refreshing an access token.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/webex-samples/recording-report/webexsdk"
)

// Scopes required to list admin recordings and the admin's site list.
const Scopes = "meeting:admin_recordings_read meeting:admin_preferences_read"

// TokenResponse is the token endpoint response for both the
// authorization code and refresh token grants.
type TokenResponse struct {
	AccessToken           string `json:"access_token"`
	ExpiresIn             int    `json:"expires_in"`
	RefreshToken          string `json:"refresh_token"`
	RefreshTokenExpiresIn int    `json:"refresh_token_expires_in"`
	TokenType             string `json:"token_type"`
}

// Config holds the OAuth endpoints and client credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// AuthorizeURL is the user-facing authorization endpoint.
	AuthorizeURL string

	// TokenURL is the server-to-server token endpoint.
	TokenURL string

	// HTTPClient is the client used for token requests. If nil, a
	// default client with a 30s timeout is used.
	HTTPClient *http.Client
}

// Client talks to the Webex OAuth endpoints.
type Client struct {
	config     Config
	httpClient *http.Client
}

// New creates an OAuth client from the given configuration.
func New(config Config) *Client {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		config:     config,
		httpClient: httpClient,
	}
}

// AuthorizeURL returns the URL the operator's browser is redirected to
// for user authorization. The state value is echoed back on the
// callback and must be verified there.
func (c *Client) AuthorizeURL(state string) string {
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", c.config.ClientID)
	params.Set("redirect_uri", c.config.RedirectURI)
	params.Set("scope", Scopes)
	params.Set("state", state)
	return c.config.AuthorizeURL + "?" + params.Encode()
}

// Exchange trades an authorization code for access and refresh tokens.
func (c *Client) Exchange(ctx context.Context, code string) (*TokenResponse, error) {
	if code == "" {
		return nil, fmt.Errorf("authorization code is required")
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", c.config.ClientID)
	form.Set("client_secret", c.config.ClientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", c.config.RedirectURI)

	return c.post(ctx, form)
}

// RefreshGrant trades a refresh token for a fresh access token. The
// provider also resets the refresh token lifetime (90 days).
func (c *Client) RefreshGrant(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token is required")
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", c.config.ClientID)
	form.Set("client_secret", c.config.ClientSecret)
	form.Set("refresh_token", refreshToken)

	return c.post(ctx, form)
}

// post submits a form to the token endpoint and decodes the response.
func (c *Client) post(ctx context.Context, form url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, webexsdk.NewAPIError(resp, body)
	}

	var tokens TokenResponse
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned no access token")
	}

	return &tokens, nil
}
