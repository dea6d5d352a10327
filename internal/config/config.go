/* SPDX-License-Identifier: MPL-2.0 */

// Package config loads tool configuration from the environment, with an
// optional .env file for local use. All variables are prefixed WEBEX_.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	koanf "github.com/knadh/koanf/v2"
)

// Defaults for everything that is not credential material.
const (
	DefaultListenAddr    = "0.0.0.0:5500"
	DefaultTokensFile    = "tokens.json"
	DefaultReportDir     = "reports"
	DefaultAPIBaseURL    = "https://webexapis.com/v1"
	DefaultAuthorizeURL  = "https://webexapis.com/v1/authorize"
	DefaultTokenURL      = "https://webexapis.com/v1/access_token"
	DefaultTimePeriodDay = 30
)

// Config is the resolved configuration for both binaries.
type Config struct {
	// OAuth client credentials of the Webex integration.
	ClientID     string
	ClientSecret string

	// SiteList is the set of site URLs to report on. Empty means all
	// sites visible to the admin account.
	SiteList []string

	// TimePeriodDays is how many days back the report reaches. Zero
	// means today only.
	TimePeriodDays int

	// ListenAddr is the bind address of the OAuth callback server.
	ListenAddr string

	// RedirectURI is the OAuth redirect URI registered with the
	// integration. Defaults to http://<listen_addr>/callback.
	RedirectURI string

	// TokensFile is the path of the persisted token record.
	TokensFile string

	// ReportDir is the directory CSV reports are written to.
	ReportDir string

	// API endpoints, overridable for tests.
	APIBaseURL   string
	AuthorizeURL string
	TokenURL     string

	// LogLevel is the zerolog level name ("debug", "info", ...).
	LogLevel string
}

// Load reads an optional .env file, overlays WEBEX_-prefixed environment
// variables, applies defaults, and validates the result. Validation
// failures are fatal before any network call is made.
func Load() (*Config, error) {
	// .env is optional, no error if missing
	_ = godotenv.Load()

	k := koanf.New(".")

	// WEBEX_CLIENT_ID -> client_id
	if err := k.Load(env.Provider("WEBEX_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "WEBEX_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{
		ClientID:       k.String("client_id"),
		ClientSecret:   k.String("client_secret"),
		SiteList:       splitSiteList(k.String("site_list")),
		TimePeriodDays: DefaultTimePeriodDay,
		ListenAddr:     k.String("listen_addr"),
		RedirectURI:    k.String("redirect_uri"),
		TokensFile:     k.String("tokens_file"),
		ReportDir:      k.String("report_dir"),
		APIBaseURL:     k.String("api_base_url"),
		AuthorizeURL:   k.String("authorize_url"),
		TokenURL:       k.String("token_url"),
		LogLevel:       k.String("log_level"),
	}

	if raw := k.String("time_period"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("WEBEX_TIME_PERIOD must be an integer number of days, got %q", raw)
		}
		cfg.TimePeriodDays = days
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	if cfg.RedirectURI == "" {
		cfg.RedirectURI = "http://" + cfg.ListenAddr + "/callback"
	}
	if cfg.TokensFile == "" {
		cfg.TokensFile = DefaultTokensFile
	}
	if cfg.ReportDir == "" {
		cfg.ReportDir = DefaultReportDir
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = DefaultAuthorizeURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
}

func (c *Config) validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("WEBEX_CLIENT_ID is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("WEBEX_CLIENT_SECRET is required")
	}
	if c.TimePeriodDays < 0 {
		return fmt.Errorf("WEBEX_TIME_PERIOD must be >= 0 days, got %d", c.TimePeriodDays)
	}
	return nil
}

// splitSiteList parses a comma separated site list, dropping empty
// entries and surrounding whitespace.
func splitSiteList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
