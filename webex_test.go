/* SPDX-License-Identifier: MPL-2.0 */

package webex

import (
	"testing"
)

func TestNewClient(t *testing.T) {
	client, err := NewClient("test-token", nil)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	if client.Core() == nil {
		t.Fatal("Expected core client to be initialized")
	}
	if client.Core().GetAccessToken() != "test-token" {
		t.Errorf("Expected access token 'test-token', got '%s'", client.Core().GetAccessToken())
	}
}

func TestNewClient_EmptyToken(t *testing.T) {
	if _, err := NewClient("", nil); err == nil {
		t.Error("Expected error for empty access token")
	}
}

func TestPluginAccessors(t *testing.T) {
	client, err := NewClient("test-token", nil)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	if client.Recordings() == nil {
		t.Error("Expected Recordings plugin")
	}
	if client.Sites() == nil {
		t.Error("Expected Sites plugin")
	}
	if client.RecordingAudit() == nil {
		t.Error("Expected RecordingAudit plugin")
	}

	// Accessors are lazily initialized and cached
	if client.Recordings() != client.Recordings() {
		t.Error("Expected Recordings plugin to be cached")
	}
}
