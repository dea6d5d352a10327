/* SPDX-License-Identifier: MPL-2.0 */

// Package webex aggregates the Webex API plugins used by the recording
// report tooling behind a single client.
package webex

import (
	"github.com/webex-samples/recording-report/recordingaudit"
	"github.com/webex-samples/recording-report/recordings"
	"github.com/webex-samples/recording-report/sites"
	"github.com/webex-samples/recording-report/webexsdk"
)

// Client is the top-level client for the Webex API
type Client struct {
	// Core client for the Webex API
	core *webexsdk.Client

	// Plugins
	recordingsClient     *recordings.Client
	sitesClient          *sites.Client
	recordingAuditClient *recordingaudit.Client
}

// NewClient creates a new Webex client with the given access token and optional configuration
func NewClient(accessToken string, config *webexsdk.Config) (*Client, error) {
	core, err := webexsdk.NewClient(accessToken, config)
	if err != nil {
		return nil, err
	}

	return &Client{core: core}, nil
}

// Core returns the underlying core API client
func (c *Client) Core() *webexsdk.Client {
	return c.core
}

// Recordings returns the Recordings plugin
func (c *Client) Recordings() *recordings.Client {
	if c.recordingsClient == nil {
		c.recordingsClient = recordings.New(c.core, nil)
	}
	return c.recordingsClient
}

// Sites returns the Sites plugin
func (c *Client) Sites() *sites.Client {
	if c.sitesClient == nil {
		c.sitesClient = sites.New(c.core, nil)
	}
	return c.sitesClient
}

// RecordingAudit returns the recording audit plugin
func (c *Client) RecordingAudit() *recordingaudit.Client {
	if c.recordingAuditClient == nil {
		c.recordingAuditClient = recordingaudit.New(c.core, nil)
	}
	return c.recordingAuditClient
}
