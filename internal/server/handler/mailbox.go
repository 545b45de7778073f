package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/brizzai/nylas-mail-backend/internal/auth/constants"
	"github.com/brizzai/nylas-mail-backend/internal/auth/middleware"
	"github.com/brizzai/nylas-mail-backend/internal/logger"
	"github.com/brizzai/nylas-mail-backend/internal/utils"
	"go.uber.org/zap"
)

// ReadEmailsLimit is the number of messages returned by read-emails
const ReadEmailsLimit = 5

// MessageLister lists the messages of a mailbox
type MessageLister interface {
	ListMessages(ctx context.Context, accessToken string, limit int) (json.RawMessage, error)
}

// MailboxHandler serves the authenticated mailbox routes
type MailboxHandler struct {
	lister MessageLister
}

// NewMailboxHandler creates a new MailboxHandler
func NewMailboxHandler(lister MessageLister) *MailboxHandler {
	return &MailboxHandler{lister: lister}
}

// HandleReadEmails answers the latest messages of the authenticated user's
// mailbox with the provider's body unchanged
func (h *MailboxHandler) HandleReadEmails(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	info, ok := middleware.FromContext(r.Context())
	if !ok {
		utils.WriteJSONStatus(w, http.StatusUnauthorized, constants.UnauthorizedMessage)
		return
	}

	messages, err := h.lister.ListMessages(r.Context(), info.AccessToken, ReadEmailsLimit)
	if err != nil {
		logger.Error("Failed to read emails",
			zap.String("user_id", info.UserID),
			zap.Error(err),
		)
		utils.WriteError(w, "provider_error", "Failed to read emails", http.StatusBadGateway)
		return
	}

	utils.WriteRawJSON(w, http.StatusOK, messages)
}
