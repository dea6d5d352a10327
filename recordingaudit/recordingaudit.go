/* SPDX-License-Identifier: MPL-2.0 */

// Package recordingaudit wraps the recording report API, which exposes
// the access history (audit trail) of a recording. The most recent
// access entry yields the recording's last-accessed time.
package recordingaudit

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/webex-samples/recording-report/webexsdk"
)

// AccessEntry is a single access event for a recording. Entries are
// returned oldest first, so the last entry is the most recent access.
type AccessEntry struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	AccessTime string `json:"accessTime,omitempty"`
	Viewed     bool   `json:"viewed,omitempty"`
	Downloaded bool   `json:"downloaded,omitempty"`
}

// accessDetail is the response shape of the access detail listing.
type accessDetail struct {
	Items []AccessEntry `json:"items"`
}

// Config holds the configuration for the recording audit plugin
type Config struct{}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{}
}

// Client is the recording audit API client
type Client struct {
	webexClient *webexsdk.Client
	config      *Config
}

// New creates a new recording audit plugin
func New(webexClient *webexsdk.Client, config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	return &Client{
		webexClient: webexClient,
		config:      config,
	}
}

// AccessDetails returns the access history for a recording.
func (c *Client) AccessDetails(recordingID string, max int) ([]AccessEntry, error) {
	if recordingID == "" {
		return nil, fmt.Errorf("recordingID is required")
	}

	params := url.Values{}
	params.Set("recordingId", recordingID)
	if max > 0 {
		params.Set("max", fmt.Sprintf("%d", max))
	}

	resp, err := c.webexClient.Request(http.MethodGet, "recordingReport/accessDetail", params, nil)
	if err != nil {
		return nil, err
	}

	var detail accessDetail
	if err := webexsdk.ParseResponse(resp, &detail); err != nil {
		return nil, err
	}

	return detail.Items, nil
}

// LastAccessTime returns the timestamp of the most recent access to the
// recording, or an empty string if the recording has never been accessed.
func (c *Client) LastAccessTime(recordingID string) (string, error) {
	entries, err := c.AccessDetails(recordingID, 100)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", nil
	}
	return entries[len(entries)-1].AccessTime, nil
}
