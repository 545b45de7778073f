package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/brizzai/nylas-mail-backend/internal/auth/models"
	"github.com/brizzai/nylas-mail-backend/internal/auth/providers"
	"github.com/brizzai/nylas-mail-backend/internal/logger"
	"github.com/brizzai/nylas-mail-backend/internal/utils"
	"go.uber.org/zap"
)

// MailboxAuthorizer persists the outcome of a completed mailbox authorization
type MailboxAuthorizer interface {
	OnMailboxAuthorized(ctx context.Context, accessToken, emailAddress string) (*models.UserRef, error)
}

// Handler handles the hosted authentication HTTP requests
type Handler struct {
	clientURI     string
	defaultScopes []string
	authProvider  providers.Provider
	authorizer    MailboxAuthorizer
}

// NewHandler creates a new Handler instance
func NewHandler(clientURI string, defaultScopes []string, provider providers.Provider, authorizer MailboxAuthorizer) *Handler {
	return &Handler{
		clientURI:     strings.TrimRight(clientURI, "/"),
		defaultScopes: defaultScopes,
		authProvider:  provider,
		authorizer:    authorizer,
	}
}

// HandleGenerateAuthURL answers the hosted authentication URL as a JSON string
func (h *Handler) HandleGenerateAuthURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		EmailAddress string `json:"email_address"`
		SuccessURL   string `json:"success_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, "invalid_request", "Invalid request body", http.StatusBadRequest)
		return
	}

	authURL := h.authProvider.GetAuthURL(req.EmailAddress, h.clientURI+req.SuccessURL, "", h.defaultScopes)
	utils.WriteJSON(w, authURL)
}

// HandleExchangeMailboxToken exchanges the authorization code posted by the
// frontend and stores the resulting access token. Only the user id and email
// address are answered.
func (h *Handler) HandleExchangeMailboxToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, "invalid_request", "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Token == "" {
		utils.WriteError(w, "invalid_request", "Code is required", http.StatusBadRequest)
		return
	}

	token, err := h.authProvider.ExchangeCode(r.Context(), req.Token)
	if err != nil {
		logger.Error("Failed to exchange code", zap.Error(err))
		utils.WriteError(w, "invalid_grant", err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.authorizer.OnMailboxAuthorized(r.Context(), token.AccessToken, token.EmailAddress)
	if err != nil {
		logger.Error("Failed to store mailbox token",
			zap.String("email", token.EmailAddress),
			zap.Error(err),
		)
		utils.WriteError(w, "server_error", "Failed to store user", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, user)
}
