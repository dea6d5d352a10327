/* SPDX-License-Identifier: MPL-2.0 */

package recordings

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/webex-samples/recording-report/webexsdk"
)

// Recording represents a Webex meeting recording as returned by the
// admin recordings listing.
type Recording struct {
	ID                 string `json:"id,omitempty"`
	MeetingID          string `json:"meetingId,omitempty"`
	ScheduledMeetingID string `json:"scheduledMeetingId,omitempty"`
	MeetingSeriesID    string `json:"meetingSeriesId,omitempty"`
	Topic              string `json:"topic,omitempty"`
	CreateTime         string `json:"createTime,omitempty"`
	TimeRecorded       string `json:"timeRecorded,omitempty"`
	HostDisplayName    string `json:"hostDisplayName,omitempty"`
	HostEmail          string `json:"hostEmail,omitempty"`
	SiteURL            string `json:"siteUrl,omitempty"`
	DownloadURL        string `json:"downloadUrl,omitempty"`
	PlaybackURL        string `json:"playbackUrl,omitempty"`
	Format             string `json:"format,omitempty"`
	DurationSeconds    int    `json:"durationSeconds,omitempty"`
	SizeBytes          int64  `json:"sizeBytes,omitempty"`
	ServiceType        string `json:"serviceType,omitempty"`
	Status             string `json:"status,omitempty"`
}

// ListOptions contains the options for listing recordings as an admin.
// The Webex API limits the from/to range to 30 days.
type ListOptions struct {
	SiteURL     string `url:"siteUrl,omitempty"`
	From        string `url:"from,omitempty"`
	To          string `url:"to,omitempty"`
	HostEmail   string `url:"hostEmail,omitempty"`
	ServiceType string `url:"serviceType,omitempty"`
	Status      string `url:"status,omitempty"`
	Format      string `url:"format,omitempty"`
	Topic       string `url:"topic,omitempty"`
	Max         int    `url:"max,omitempty"`
}

// RecordingsPage represents a paginated list of recordings
type RecordingsPage struct {
	Items []Recording `json:"items"`
	*webexsdk.Page
}

// Config holds the configuration for the Recordings plugin
type Config struct{}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{}
}

// Client is the recordings API client
type Client struct {
	webexClient *webexsdk.Client
	config      *Config
}

// New creates a new Recordings plugin
func New(webexClient *webexsdk.Client, config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	return &Client{
		webexClient: webexClient,
		config:      config,
	}
}

// List returns one page of recordings visible to an admin or compliance
// officer. Use ListOptions to filter by site and date range.
func (c *Client) List(options *ListOptions) (*RecordingsPage, error) {
	params := url.Values{}

	if options != nil {
		if options.SiteURL != "" {
			params.Set("siteUrl", options.SiteURL)
		}
		if options.From != "" {
			params.Set("from", options.From)
		}
		if options.To != "" {
			params.Set("to", options.To)
		}
		if options.HostEmail != "" {
			params.Set("hostEmail", options.HostEmail)
		}
		if options.ServiceType != "" {
			params.Set("serviceType", options.ServiceType)
		}
		if options.Status != "" {
			params.Set("status", options.Status)
		}
		if options.Format != "" {
			params.Set("format", options.Format)
		}
		if options.Topic != "" {
			params.Set("topic", options.Topic)
		}
		if options.Max > 0 {
			params.Set("max", fmt.Sprintf("%d", options.Max))
		}
	}

	resp, err := c.webexClient.Request(http.MethodGet, "admin/recordings", params, nil)
	if err != nil {
		return nil, err
	}

	page, err := webexsdk.NewPage(resp, c.webexClient, "admin/recordings")
	if err != nil {
		return nil, err
	}

	return newRecordingsPage(page)
}

// ListAll returns all recordings matching the options, following
// Link-header pagination until the last page.
func (c *Client) ListAll(options *ListOptions) ([]Recording, error) {
	page, err := c.List(options)
	if err != nil {
		return nil, err
	}

	all := page.Items
	for page.HasNext {
		next, err := page.Page.Next()
		if err != nil {
			return nil, err
		}
		page, err = newRecordingsPage(next)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
	}

	return all, nil
}

// Get returns details for a single recording.
func (c *Client) Get(recordingID string) (*Recording, error) {
	if recordingID == "" {
		return nil, fmt.Errorf("recordingID is required")
	}

	path := fmt.Sprintf("recordings/%s", recordingID)
	resp, err := c.webexClient.Request(http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var recording Recording
	if err := webexsdk.ParseResponse(resp, &recording); err != nil {
		return nil, err
	}

	return &recording, nil
}

// newRecordingsPage decodes the raw page items into Recording values.
func newRecordingsPage(page *webexsdk.Page) (*RecordingsPage, error) {
	recordingsPage := &RecordingsPage{
		Page:  page,
		Items: make([]Recording, len(page.Items)),
	}

	for i, item := range page.Items {
		var recording Recording
		if err := json.Unmarshal(item, &recording); err != nil {
			return nil, err
		}
		recordingsPage.Items[i] = recording
	}

	return recordingsPage, nil
}
