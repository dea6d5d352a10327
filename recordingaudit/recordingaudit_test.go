/* SPDX-License-Identifier: MPL-2.0 */

package recordingaudit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/webex-samples/recording-report/webexsdk"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)

	baseURL, _ := url.Parse(server.URL)
	config := &webexsdk.Config{
		BaseURL:        server.URL,
		Timeout:        5 * time.Second,
		HttpClient:     server.Client(),
		DefaultHeaders: make(map[string]string),
	}
	client, err := webexsdk.NewClient("test-token", config)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	client.BaseURL = baseURL

	return New(client, nil), server
}

func TestAccessDetails(t *testing.T) {
	ac, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recordingReport/accessDetail" {
			t.Errorf("Expected path '/recordingReport/accessDetail', got '%s'", r.URL.Path)
		}
		if r.URL.Query().Get("recordingId") != "rec-123" {
			t.Errorf("Expected recordingId 'rec-123', got '%s'", r.URL.Query().Get("recordingId"))
		}
		if r.URL.Query().Get("max") != "100" {
			t.Errorf("Expected max '100', got '%s'", r.URL.Query().Get("max"))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintln(w, `{"items": [
			{"name": "Ada Lovelace", "accessTime": "2026-08-01T10:00:00Z", "viewed": true},
			{"name": "Grace Hopper", "accessTime": "2026-08-15T12:30:00Z", "downloaded": true}
		]}`)
	})
	defer server.Close()

	entries, err := ac.AccessDetails("rec-123", 100)
	if err != nil {
		t.Fatalf("Failed to get access details: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name != "Ada Lovelace" {
		t.Errorf("Expected name 'Ada Lovelace', got '%s'", entries[0].Name)
	}
	if !entries[1].Downloaded {
		t.Error("Expected second entry to be a download")
	}
}

func TestAccessDetailsValidation(t *testing.T) {
	ac, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("Request should not have been sent")
	})
	defer server.Close()

	if _, err := ac.AccessDetails("", 100); err == nil {
		t.Error("Expected error for empty recordingID")
	}
}

func TestLastAccessTime(t *testing.T) {
	ac, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintln(w, `{"items": [
			{"accessTime": "2026-08-01T10:00:00Z"},
			{"accessTime": "2026-08-15T12:30:00Z"}
		]}`)
	})
	defer server.Close()

	last, err := ac.LastAccessTime("rec-123")
	if err != nil {
		t.Fatalf("LastAccessTime failed: %v", err)
	}
	if last != "2026-08-15T12:30:00Z" {
		t.Errorf("Expected most recent access time, got '%s'", last)
	}
}

func TestLastAccessTime_NeverAccessed(t *testing.T) {
	ac, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintln(w, `{"items": []}`)
	})
	defer server.Close()

	last, err := ac.LastAccessTime("rec-123")
	if err != nil {
		t.Fatalf("LastAccessTime failed: %v", err)
	}
	if last != "" {
		t.Errorf("Expected empty access time, got '%s'", last)
	}
}

func TestLastAccessTime_NotFound(t *testing.T) {
	ac, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprintln(w, `{"message": "Recording not found"}`)
	})
	defer server.Close()

	_, err := ac.LastAccessTime("rec-gone")
	if !webexsdk.IsNotFound(err) {
		t.Errorf("Expected NotFoundError, got %v", err)
	}
}
