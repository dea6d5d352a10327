/* SPDX-License-Identifier: MPL-2.0 */

// Command authserver runs the one-time OAuth bootstrap. It serves a
// small web flow on the configured address; once the operator completes
// the Webex authorization in a browser, the token record is written and
// the server exits.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/webex-samples/recording-report/internal/authserver"
	"github.com/webex-samples/recording-report/internal/config"
	"github.com/webex-samples/recording-report/internal/log"
	"github.com/webex-samples/recording-report/internal/oauth"
	"github.com/webex-samples/recording-report/internal/tokens"
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

	log.Configure(log.Config{Level: cfg.LogLevel, Service: "authserver"})
	logger := log.Base()

	oauthClient := oauth.New(oauth.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURI:  cfg.RedirectURI,
		AuthorizeURL: cfg.AuthorizeURL,
		TokenURL:     cfg.TokenURL,
	})
	store := tokens.NewStore(cfg.TokensFile, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := authserver.New(oauthClient, store, log.WithComponent("authserver"))
	if err := srv.Run(ctx, cfg.ListenAddr); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn().Msg("interrupted before authorization completed")
			return err
		}
		return err
	}

	logger.Info().Str("file", cfg.TokensFile).Msg("authorization complete")
	return nil
}
