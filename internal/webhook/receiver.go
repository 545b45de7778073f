package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/brizzai/nylas-mail-backend/internal/config"
	"github.com/brizzai/nylas-mail-backend/internal/logger"
	"github.com/brizzai/nylas-mail-backend/internal/utils"
	"go.uber.org/zap"
)

const maxDeliverySize = 1 << 20

// Receiver handles webhook deliveries posted by the provider
type Receiver struct {
	secret     string
	dispatcher *Dispatcher
}

// NewReceiver creates a Receiver verifying deliveries with the client secret
func NewReceiver(cfg *config.Config, dispatcher *Dispatcher) *Receiver {
	return &Receiver{
		secret:     cfg.Nylas.ClientSecret,
		dispatcher: dispatcher,
	}
}

func (rc *Receiver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rc.handleChallenge(w, r)
	case http.MethodPost:
		rc.handleDelivery(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleChallenge echoes the verification challenge sent when the webhook is
// registered
func (rc *Receiver) handleChallenge(w http.ResponseWriter, r *http.Request) {
	challenge := r.URL.Query().Get("challenge")
	if challenge == "" {
		utils.WriteError(w, "invalid_request", "challenge is required", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, challenge)
}

func (rc *Receiver) handleDelivery(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDeliverySize))
	if err != nil {
		utils.WriteError(w, "invalid_request", "Failed to read body", http.StatusBadRequest)
		return
	}

	if err := VerifySignature(rc.secret, body, r.Header.Get(SignatureHeader)); err != nil {
		logger.Warn("Rejected webhook delivery", zap.Error(err))
		utils.WriteError(w, "invalid_signature", err.Error(), http.StatusUnauthorized)
		return
	}

	payload, err := decodePayload(body)
	if err != nil {
		utils.WriteError(w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}

	rc.dispatcher.PublishPayload(payload)
	logger.Debug("Webhook delivery received", zap.Int("deltas", len(payload.Deltas)))
	w.WriteHeader(http.StatusOK)
}

func decodePayload(body []byte) (Payload, error) {
	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Payload{}, errors.New("invalid webhook payload")
	}
	return payload, nil
}
