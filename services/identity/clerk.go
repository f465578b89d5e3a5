// Package identity talks to the Clerk backend API and verifies its Svix webhooks.
package identity

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

// Provider pushes local role changes back to the identity provider
type Provider interface {
	UpdatePublicMetadata(ctx context.Context, clerkID string, metadata map[string]interface{}) error
}

type ClerkClient struct {
	client *resty.Client
}

var _ Provider = (*ClerkClient)(nil)

func NewClerkClient(apiURL, secretKey string) *ClerkClient {
	client := resty.New().
		SetBaseURL(apiURL).
		SetAuthToken(secretKey).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")
	return &ClerkClient{client: client}
}

// UpdatePublicMetadata merges metadata into the user's public_metadata
func (c *ClerkClient) UpdatePublicMetadata(ctx context.Context, clerkID string, metadata map[string]interface{}) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", clerkID).
		SetBody(map[string]interface{}{"public_metadata": metadata}).
		Patch("/v1/users/{id}/metadata")
	if err != nil {
		return fmt.Errorf("clerk request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("clerk returned %d: %s", resp.StatusCode(), resp.Body())
	}
	return nil
}

// LogProvider only logs metadata updates, for development without a Clerk secret
type LogProvider struct{}

func (LogProvider) UpdatePublicMetadata(_ context.Context, clerkID string, metadata map[string]interface{}) error {
	log.Printf("[IDENTITY] skipped metadata update for %s: %v", clerkID, metadata)
	return nil
}
