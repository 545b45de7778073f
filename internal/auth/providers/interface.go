package providers

import (
	"context"

	"github.com/brizzai/nylas-mail-backend/internal/auth/models"
)

// Provider defines the mailbox authorization capabilities of the provider
type Provider interface {
	// GetAuthURL returns the hosted authentication URL for a mailbox
	GetAuthURL(emailAddress, redirectURI, state string, scopes []string) string

	// ExchangeCode exchanges an authorization code for a mailbox access token
	ExchangeCode(ctx context.Context, code string) (*models.AccessToken, error)
}
