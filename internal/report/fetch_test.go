/* SPDX-License-Identifier: MPL-2.0 */

package report

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	webex "github.com/webex-samples/recording-report"
	"github.com/webex-samples/recording-report/webexsdk"
)

var testNow = time.Date(2026, 8, 29, 15, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestGenerator(t *testing.T, handler http.Handler, opts Options) *Generator {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := webex.NewClient("test-token", &webexsdk.Config{
		BaseURL:        server.URL,
		Timeout:        5 * time.Second,
		HttpClient:     server.Client(),
		DefaultHeaders: make(map[string]string),
	})
	require.NoError(t, err)

	if opts.Now == nil {
		opts.Now = fixedClock
	}
	return NewGenerator(client, opts, zerolog.Nop())
}

// recordingsJSON renders a minimal admin recordings page body.
func recordingsJSON(ids ...string) string {
	out := `{"items": [`
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"id": %q, "topic": "Meeting %s", "hostDisplayName": "Host %s", "durationSeconds": 60}`, id, id, id)
	}
	return out + `]}`
}

func emptyAudit(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintln(w, `{"items": []}`)
}

func TestFetch_SumsAcrossSites(t *testing.T) {
	var serverURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/recordings", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("siteUrl") {
		case "a.webex.com":
			// Two pages: 2 + 1 recordings
			w.Header().Set("Link", fmt.Sprintf(`<%s/a-page2>; rel="next"`, serverURL))
			_, _ = fmt.Fprintln(w, recordingsJSON("a-1", "a-2"))
		case "b.webex.com":
			_, _ = fmt.Fprintln(w, recordingsJSON())
		case "c.webex.com":
			_, _ = fmt.Fprintln(w, recordingsJSON("c-1"))
		default:
			t.Errorf("Unexpected siteUrl %q", r.URL.Query().Get("siteUrl"))
		}
	})
	mux.HandleFunc("/a-page2", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintln(w, recordingsJSON("a-3"))
	})
	mux.HandleFunc("/recordingReport/accessDetail", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("recordingId") == "a-1" {
			_, _ = fmt.Fprintln(w, `{"items": [{"accessTime": "2026-08-20T09:00:00Z"}]}`)
			return
		}
		_, _ = fmt.Fprintln(w, `{"items": []}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	serverURL = server.URL

	client, err := webex.NewClient("test-token", &webexsdk.Config{
		BaseURL:        server.URL,
		Timeout:        5 * time.Second,
		HttpClient:     server.Client(),
		DefaultHeaders: make(map[string]string),
	})
	require.NoError(t, err)

	g := NewGenerator(client, Options{
		Sites:          []string{"a.webex.com", "b.webex.com", "c.webex.com"},
		TimePeriodDays: 7,
		Now:            fixedClock,
	}, zerolog.Nop())

	rows, err := g.Fetch(context.Background())
	require.NoError(t, err)

	// 3 from site a (across two pages), 0 from b, 1 from c
	require.Len(t, rows, 4)

	assert.Equal(t, "a.webex.com", rows[0].SiteURL)
	assert.Equal(t, "Meeting a-1", rows[0].Topic)
	assert.Equal(t, "Host a-1", rows[0].HostDisplayName)
	assert.Equal(t, 60, rows[0].DurationSeconds)
	assert.Equal(t, "2026-08-20T09:00:00Z", rows[0].LastAccessed)

	assert.Equal(t, "Never", rows[1].LastAccessed)
	assert.Equal(t, "c.webex.com", rows[3].SiteURL)
	assert.Equal(t, "Meeting c-1", rows[3].Topic)
}

func TestFetch_SkipsFailingSite(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/recordings", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("siteUrl") == "locked.webex.com" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = fmt.Fprintln(w, `{"message": "Admin scope required"}`)
			return
		}
		_, _ = fmt.Fprintln(w, recordingsJSON("ok-1"))
	})
	mux.HandleFunc("/recordingReport/accessDetail", emptyAudit)

	g := newTestGenerator(t, mux, Options{
		Sites:          []string{"locked.webex.com", "open.webex.com"},
		TimePeriodDays: 7,
	})

	rows, err := g.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "open.webex.com", rows[0].SiteURL)
}

func TestFetch_ResolvesSitesWhenUnconfigured(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/meetingPreferences/sites", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintln(w, `{"sites": [{"siteUrl": "only.webex.com", "default": true}]}`)
	})
	mux.HandleFunc("/admin/recordings", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "only.webex.com", r.URL.Query().Get("siteUrl"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintln(w, recordingsJSON("r-1"))
	})
	mux.HandleFunc("/recordingReport/accessDetail", emptyAudit)

	g := newTestGenerator(t, mux, Options{TimePeriodDays: 7})

	rows, err := g.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "only.webex.com", rows[0].SiteURL)
}

func TestFetch_NoAccessibleSites(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/meetingPreferences/sites", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintln(w, `{"sites": []}`)
	})

	g := newTestGenerator(t, mux, Options{TimePeriodDays: 7})

	_, err := g.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no accessible meeting sites")
}

func TestFetch_TodayOnlyWindow(t *testing.T) {
	var from, to string
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/recordings", func(w http.ResponseWriter, r *http.Request) {
		from = r.URL.Query().Get("from")
		to = r.URL.Query().Get("to")
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintln(w, recordingsJSON())
	})

	g := newTestGenerator(t, mux, Options{
		Sites:          []string{"a.webex.com"},
		TimePeriodDays: 0,
	})

	rows, err := g.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)

	// A zero time period queries from midnight of the current day
	assert.Equal(t, "2026-08-29T00:00:00Z", from)
	assert.Equal(t, "2026-08-29T15:30:00Z", to)
}

func TestFetchSite_WalksLongPeriodsInWindows(t *testing.T) {
	var calls atomic.Int32
	var froms []string
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/recordings", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		froms = append(froms, r.URL.Query().Get("from"))
		w.Header().Set("Content-Type", "application/json")
		// The same recording appears in every window; it must be
		// de-duplicated in the result.
		_, _ = fmt.Fprintln(w, recordingsJSON("border-rec"))
	})
	mux.HandleFunc("/recordingReport/accessDetail", emptyAudit)

	g := newTestGenerator(t, mux, Options{
		Sites:          []string{"a.webex.com"},
		TimePeriodDays: 75,
	})

	rows, err := g.Fetch(context.Background())
	require.NoError(t, err)

	// 75 days -> windows of 30, 30, and 15 days
	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, froms, 3)
	assert.Equal(t, testNow.AddDate(0, 0, -30).Format(time.RFC3339), froms[0])
	assert.Equal(t, testNow.AddDate(0, 0, -60).Format(time.RFC3339), froms[1])
	assert.Equal(t, testNow.AddDate(0, 0, -75).Format(time.RFC3339), froms[2])

	// De-duplicated across window borders
	require.Len(t, rows, 1)
	assert.Equal(t, "Meeting border-rec", rows[0].Topic)
}
