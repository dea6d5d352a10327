/* SPDX-License-Identifier: MPL-2.0 */

// Package report fetches recording metadata across sites and writes the
// CSV report.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	webex "github.com/webex-samples/recording-report"
	"github.com/webex-samples/recording-report/recordings"
)

// maxWindowDays is the widest from/to range the admin recordings API
// accepts. Longer time periods are walked in slices of this size.
const maxWindowDays = 30

// pageSize is the per-page item limit requested from the listing API.
const pageSize = 100

// defaultAuditWorkers bounds the concurrent access-detail lookups used
// to resolve last-accessed times.
const defaultAuditWorkers = 8

// Row is one line of the recording report: a recording plus the site it
// belongs to and its resolved last-accessed time.
type Row struct {
	SiteURL         string
	Topic           string
	HostDisplayName string
	CreateTime      string
	LastAccessed    string
	DurationSeconds int
	SizeBytes       int64
	Format          string
	ServiceType     string
}

// Options controls what the Generator fetches.
type Options struct {
	// Sites is the list of site URLs to report on. Empty means every
	// site visible to the admin account.
	Sites []string

	// TimePeriodDays is how many days back the report reaches. Zero
	// means today only.
	TimePeriodDays int

	// AuditWorkers bounds concurrent last-accessed lookups. Defaults
	// to defaultAuditWorkers.
	AuditWorkers int

	// Now is the clock used for window calculations. Defaults to time.Now.
	Now func() time.Time
}

// Generator fetches recordings per site and flattens them into report rows.
type Generator struct {
	client *webex.Client
	opts   Options
	logger zerolog.Logger
}

// NewGenerator creates a Generator for the given Webex client.
func NewGenerator(client *webex.Client, opts Options, logger zerolog.Logger) *Generator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.AuditWorkers <= 0 {
		opts.AuditWorkers = defaultAuditWorkers
	}
	return &Generator{
		client: client,
		opts:   opts,
		logger: logger,
	}
}

// Fetch gathers report rows for every configured site. A failure on one
// site is logged and that site is skipped; the run continues with the
// remaining sites.
func (g *Generator) Fetch(ctx context.Context) ([]Row, error) {
	siteURLs, err := g.resolveSites()
	if err != nil {
		return nil, err
	}

	var rows []Row
	for i, siteURL := range siteURLs {
		g.logger.Info().
			Str("site", siteURL).
			Int("index", i+1).
			Int("total", len(siteURLs)).
			Msg("processing site")

		recs, err := g.fetchSite(siteURL)
		if err != nil {
			g.logger.Error().Err(err).Str("site", siteURL).Msg("skipping site after fetch failure")
			continue
		}
		if len(recs) == 0 {
			g.logger.Info().Str("site", siteURL).Msg("no recordings found in the time interval")
			continue
		}

		g.logger.Info().Str("site", siteURL).Int("recordings", len(recs)).Msg("found recordings")
		rows = append(rows, g.enrich(ctx, siteURL, recs)...)
	}

	return rows, nil
}

// resolveSites returns the configured site list, or every site visible
// to the admin account when none is configured.
func (g *Generator) resolveSites() ([]string, error) {
	if len(g.opts.Sites) > 0 {
		return g.opts.Sites, nil
	}

	all, err := g.client.Sites().List()
	if err != nil {
		return nil, fmt.Errorf("list accessible sites: %w", err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("the account has no accessible meeting sites")
	}

	urls := make([]string, len(all))
	for i, s := range all {
		urls[i] = s.SiteURL
	}
	return urls, nil
}

// fetchSite lists all recordings of one site over the configured time
// period, walking it in 30-day windows and de-duplicating recordings
// that fall on a window border.
func (g *Generator) fetchSite(siteURL string) ([]recordings.Recording, error) {
	var raw []recordings.Recording

	remaining := g.opts.TimePeriodDays
	cursor := g.opts.Now().UTC().Truncate(time.Second)

	for {
		days := remaining
		if days > maxWindowDays {
			days = maxWindowDays
		}

		from := cursor.AddDate(0, 0, -days)
		if g.opts.TimePeriodDays == 0 {
			// Today only: reach back to midnight of the current day.
			from = cursor.Truncate(24 * time.Hour)
		}

		batch, err := g.client.Recordings().ListAll(&recordings.ListOptions{
			SiteURL: siteURL,
			From:    from.Format(time.RFC3339),
			To:      cursor.Format(time.RFC3339),
			Max:     pageSize,
		})
		if err != nil {
			return nil, err
		}
		raw = append(raw, batch...)

		remaining -= days
		cursor = from
		if remaining <= 0 {
			break
		}
	}

	return dedupe(raw), nil
}

// dedupe removes duplicate recordings by id, preserving order.
func dedupe(recs []recordings.Recording) []recordings.Recording {
	seen := make(map[string]struct{}, len(recs))
	out := recs[:0]
	for _, rec := range recs {
		if _, ok := seen[rec.ID]; ok {
			continue
		}
		seen[rec.ID] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// enrich resolves the last-accessed time of each recording through the
// recording audit API and builds the final rows. Lookups run with
// bounded concurrency; a failed lookup yields "Unknown" rather than
// failing the run.
func (g *Generator) enrich(ctx context.Context, siteURL string, recs []recordings.Recording) []Row {
	rows := make([]Row, len(recs))

	grp, _ := errgroup.WithContext(ctx)
	grp.SetLimit(g.opts.AuditWorkers)

	for i, rec := range recs {
		i, rec := i, rec
		grp.Go(func() error {
			lastAccessed := "Never"
			accessTime, err := g.client.RecordingAudit().LastAccessTime(rec.ID)
			switch {
			case err != nil:
				g.logger.Warn().Err(err).Str("recording", rec.ID).Msg("could not resolve last access time")
				lastAccessed = "Unknown"
			case accessTime != "":
				lastAccessed = accessTime
			}

			rows[i] = Row{
				SiteURL:         siteURL,
				Topic:           rec.Topic,
				HostDisplayName: rec.HostDisplayName,
				CreateTime:      rec.CreateTime,
				LastAccessed:    lastAccessed,
				DurationSeconds: rec.DurationSeconds,
				SizeBytes:       rec.SizeBytes,
				Format:          rec.Format,
				ServiceType:     rec.ServiceType,
			}
			return nil
		})
	}

	_ = grp.Wait()
	return rows
}
