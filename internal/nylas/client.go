package nylas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/brizzai/nylas-mail-backend/internal/config"
	"github.com/brizzai/nylas-mail-backend/internal/requester"
	"go.uber.org/fx"
)

// Client calls the provider API
type Client struct {
	requester *requester.HTTPRequester
	clientID  string
	appAuth   requester.AuthManager
}

// NewClient creates a Client for the configured application
func NewClient(cfg *config.Config, r *requester.HTTPRequester) *Client {
	return &Client{
		requester: r,
		clientID:  cfg.Nylas.ClientID,
		appAuth:   requester.ClientSecretAuth(cfg.Nylas.ClientSecret),
	}
}

// UpdateApplication replaces the application's redirect URI whitelist
func (c *Client) UpdateApplication(ctx context.Context, redirectURIs []string) (*ApplicationDetails, error) {
	var details ApplicationDetails
	err := c.requester.DoJSON(ctx, &requester.Request{
		Operation: "update_application",
		Method:    http.MethodPut,
		Path:      "/a/" + url.PathEscape(c.clientID),
		Body:      map[string]interface{}{"redirect_uris": redirectURIs},
		Auth:      c.appAuth,
	}, &details)
	if err != nil {
		return nil, fmt.Errorf("failed to update application: %w", err)
	}
	return &details, nil
}

// ListMessages lists the latest messages of the mailbox accessToken belongs
// to. The provider's JSON body is returned unmodified.
func (c *Client) ListMessages(ctx context.Context, accessToken string, limit int) (json.RawMessage, error) {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}

	req := &requester.Request{
		Operation: "list_messages",
		Method:    http.MethodGet,
		Path:      "/messages",
		Query:     url.Values{"limit": {strconv.Itoa(limit)}},
		Auth:      requester.AccessTokenAuth(accessToken),
	}
	resp, err := c.requester.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &requester.StatusError{Operation: req.Operation, StatusCode: resp.StatusCode, Body: resp.Body}
	}
	if !json.Valid(resp.Body) {
		return nil, fmt.Errorf("list messages returned a non JSON body")
	}
	return json.RawMessage(resp.Body), nil
}

// CreateWebhook registers an active webhook delivering triggers to callbackURL
func (c *Client) CreateWebhook(ctx context.Context, callbackURL string, triggers []string) (*Webhook, error) {
	var webhook Webhook
	err := c.requester.DoJSON(ctx, &requester.Request{
		Operation: "create_webhook",
		Method:    http.MethodPost,
		Path:      "/a/" + url.PathEscape(c.clientID) + "/webhooks",
		Body: map[string]interface{}{
			"callback_url": callbackURL,
			"state":        "active",
			"triggers":     triggers,
		},
		Auth: c.appAuth,
	}, &webhook)
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook: %w", err)
	}
	return &webhook, nil
}

// DeleteWebhook removes a webhook registered by CreateWebhook
func (c *Client) DeleteWebhook(ctx context.Context, id string) error {
	err := c.requester.DoJSON(ctx, &requester.Request{
		Operation: "delete_webhook",
		Method:    http.MethodDelete,
		Path:      "/a/" + url.PathEscape(c.clientID) + "/webhooks/" + url.PathEscape(id),
		Auth:      c.appAuth,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to delete webhook %s: %w", id, err)
	}
	return nil
}

// Module provides the provider API client
var Module = fx.Module("nylas",
	fx.Provide(
		NewClient,
	),
)
