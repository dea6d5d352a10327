/* SPDX-License-Identifier: MPL-2.0 */

// Command report generates the recording report CSV. It refreshes the
// stored access token when needed, lists recordings across the
// configured sites, resolves last-accessed times, and writes one
// timestamped CSV file per run.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/webex-samples/recording-report/internal/config"
	"github.com/webex-samples/recording-report/internal/log"
	"github.com/webex-samples/recording-report/internal/oauth"
	"github.com/webex-samples/recording-report/internal/report"
	"github.com/webex-samples/recording-report/internal/tokens"
	"github.com/webex-samples/recording-report/webexsdk"

	webex "github.com/webex-samples/recording-report"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log.Configure(log.Config{Level: cfg.LogLevel, Service: "report"})
	logger := log.Base()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	oauthClient := oauth.New(oauth.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURI:  cfg.RedirectURI,
		AuthorizeURL: cfg.AuthorizeURL,
		TokenURL:     cfg.TokenURL,
	})
	store := tokens.NewStore(cfg.TokensFile, nil)
	refresher := tokens.NewRefresher(store, oauthClient, log.WithComponent("tokens"))

	creds, err := refresher.Ensure(ctx)
	switch {
	case errors.Is(err, tokens.ErrNotAuthenticated):
		return fmt.Errorf("no token record at %s, run the authserver command first", cfg.TokensFile)
	case errors.Is(err, tokens.ErrAuthExpired):
		return fmt.Errorf("the refresh token has expired, run the authserver command again")
	case err != nil:
		return err
	}

	sdkLogger := log.WithComponent("webexsdk")
	sdkConfig := webexsdk.DefaultConfig()
	sdkConfig.BaseURL = cfg.APIBaseURL
	sdkConfig.Logger = &sdkLogger

	client, err := webex.NewClient(creds.AccessToken, sdkConfig)
	if err != nil {
		return err
	}

	gen := report.NewGenerator(client, report.Options{
		Sites:          cfg.SiteList,
		TimePeriodDays: cfg.TimePeriodDays,
	}, log.WithComponent("report"))

	logger.Info().
		Int("time_period_days", cfg.TimePeriodDays).
		Msg("generating recording report")

	rows, err := gen.Fetch(ctx)
	if err != nil {
		return err
	}

	path, err := report.Write(cfg.ReportDir, time.Now(), rows)
	if err != nil {
		return err
	}

	logger.Info().
		Str("file", path).
		Int("recordings", len(rows)).
		Msg("report written")
	return nil
}
