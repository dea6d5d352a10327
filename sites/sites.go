/* SPDX-License-Identifier: MPL-2.0 */

package sites

import (
	"net/http"

	"github.com/webex-samples/recording-report/webexsdk"
)

// Site represents a Webex meeting site the authenticated user has
// access to.
type Site struct {
	SiteURL string `json:"siteUrl,omitempty"`
	Default bool   `json:"default,omitempty"`
}

// siteList is the response shape of the meeting preferences site list.
type siteList struct {
	Sites []Site `json:"sites"`
}

// Config holds the configuration for the Sites plugin
type Config struct{}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{}
}

// Client is the sites API client
type Client struct {
	webexClient *webexsdk.Client
	config      *Config
}

// New creates a new Sites plugin
func New(webexClient *webexsdk.Client, config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	return &Client{
		webexClient: webexClient,
		config:      config,
	}
}

// List returns all meeting sites visible to the authenticated user.
func (c *Client) List() ([]Site, error) {
	resp, err := c.webexClient.Request(http.MethodGet, "meetingPreferences/sites", nil, nil)
	if err != nil {
		return nil, err
	}

	var list siteList
	if err := webexsdk.ParseResponse(resp, &list); err != nil {
		return nil, err
	}

	return list.Sites, nil
}

// Default returns the user's default meeting site, or an empty Site if
// none is marked as default.
func (c *Client) Default() (Site, error) {
	all, err := c.List()
	if err != nil {
		return Site{}, err
	}

	for _, s := range all {
		if s.Default {
			return s, nil
		}
	}
	return Site{}, nil
}
