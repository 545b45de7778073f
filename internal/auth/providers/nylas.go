package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/brizzai/nylas-mail-backend/internal/auth/models"
	"github.com/brizzai/nylas-mail-backend/internal/config"
	"golang.org/x/oauth2"
)

type NylasProvider struct {
	oauth2Config *oauth2.Config
	httpClient   *http.Client
}

// NewNylasProvider builds the hosted-auth provider. The token endpoint
// expects the client credentials in the form body.
func NewNylasProvider(cfg *config.NylasConfig, httpClient *http.Client) *NylasProvider {
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &NylasProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:   apiURL + "/oauth/authorize",
				TokenURL:  apiURL + "/oauth/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
	}
}

// GetAuthURL builds the hosted authentication URL. Scopes are sent comma
// separated in the "scopes" parameter rather than the standard "scope".
func (p *NylasProvider) GetAuthURL(emailAddress, redirectURI, state string, scopes []string) string {
	opts := []oauth2.AuthCodeOption{}
	if redirectURI != "" {
		opts = append(opts, oauth2.SetAuthURLParam("redirect_uri", redirectURI))
	}
	if emailAddress != "" {
		opts = append(opts, oauth2.SetAuthURLParam("login_hint", emailAddress))
	}
	if len(scopes) > 0 {
		opts = append(opts, oauth2.SetAuthURLParam("scopes", strings.Join(scopes, ",")))
	}
	return p.oauth2Config.AuthCodeURL(state, opts...)
}

func (p *NylasProvider) ExchangeCode(ctx context.Context, code string) (*models.AccessToken, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	emailAddress, _ := token.Extra("email_address").(string)
	if emailAddress == "" {
		return nil, fmt.Errorf("token response is missing email_address")
	}
	accountID, _ := token.Extra("account_id").(string)
	provider, _ := token.Extra("provider").(string)

	return &models.AccessToken{
		AccessToken:  token.AccessToken,
		EmailAddress: emailAddress,
		AccountID:    accountID,
		Provider:     provider,
	}, nil
}
