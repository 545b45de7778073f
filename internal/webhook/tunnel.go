package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/brizzai/nylas-mail-backend/internal/config"
	"github.com/brizzai/nylas-mail-backend/internal/logger"
	"github.com/brizzai/nylas-mail-backend/internal/nylas"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const webhookCleanupTimeout = 5 * time.Second

// WebhookRegistrar manages the application's webhooks
type WebhookRegistrar interface {
	CreateWebhook(ctx context.Context, callbackURL string, triggers []string) (*nylas.Webhook, error)
	DeleteWebhook(ctx context.Context, id string) error
}

// Result reports the outcome of the tunnel. The first result carries either
// the registered webhook or the setup error; a later one may carry the error
// that ended the connection.
type Result struct {
	Webhook *nylas.Webhook
	Err     error
}

// Tunnel relays webhook deliveries over a websocket so a development machine
// without a public address can receive them
type Tunnel struct {
	cfg          config.WebhookConfig
	clientID     string
	clientSecret string
	registrar    WebhookRegistrar
	dispatcher   *Dispatcher
	dialer       *websocket.Dialer
	newID        func() string
}

// NewTunnel creates a Tunnel for the configured application
func NewTunnel(cfg *config.Config, registrar WebhookRegistrar, dispatcher *Dispatcher) *Tunnel {
	return &Tunnel{
		cfg:          cfg.Webhook,
		clientID:     cfg.Nylas.ClientID,
		clientSecret: cfg.Nylas.ClientSecret,
		registrar:    registrar,
		dispatcher:   dispatcher,
		dialer:       websocket.DefaultDialer,
		newID:        uuid.NewString,
	}
}

// Enabled reports whether the tunnel should be started
func (t *Tunnel) Enabled() bool {
	return t.cfg.TunnelEnabled
}

// Start connects the tunnel in the background. Deliveries are published to
// the dispatcher until ctx is done, then the webhook is deleted.
func (t *Tunnel) Start(ctx context.Context) <-chan Result {
	results := make(chan Result, 2)
	go func() {
		defer close(results)
		t.run(ctx, results)
	}()
	return results
}

func (t *Tunnel) run(ctx context.Context, results chan<- Result) {
	tunnelID := t.newID()

	conn, resp, err := t.dialer.DialContext(ctx, t.tunnelURL(), t.headers(tunnelID))
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		results <- Result{Err: fmt.Errorf("failed to connect tunnel: %w", err)}
		return
	}
	defer conn.Close()

	webhook, err := t.registrar.CreateWebhook(ctx, t.callbackURL(tunnelID), t.cfg.Triggers)
	if err != nil {
		results <- Result{Err: err}
		return
	}
	results <- Result{Webhook: webhook}
	defer t.deleteWebhook(webhook.ID)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				results <- Result{Err: fmt.Errorf("tunnel connection lost: %w", err)}
			}
			return
		}
		t.handleFrame(data)
	}
}

func (t *Tunnel) handleFrame(data []byte) {
	var frame struct {
		Body string `json:"body"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		logger.Warn("Ignoring malformed tunnel frame", zap.Error(err))
		return
	}
	payload, err := decodePayload([]byte(frame.Body))
	if err != nil {
		logger.Warn("Ignoring malformed tunnel delivery", zap.Error(err))
		return
	}
	t.dispatcher.PublishPayload(payload)
}

func (t *Tunnel) deleteWebhook(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), webhookCleanupTimeout)
	defer cancel()
	if err := t.registrar.DeleteWebhook(ctx, id); err != nil {
		logger.Warn("Failed to delete tunnel webhook", zap.String("webhook_id", id), zap.Error(err))
		return
	}
	logger.Info("Tunnel webhook deleted", zap.String("webhook_id", id))
}

func (t *Tunnel) headers(tunnelID string) http.Header {
	h := http.Header{}
	h.Set("Client-Id", t.clientID)
	h.Set("Client-Secret", t.clientSecret)
	h.Set("Tunnel-Id", tunnelID)
	h.Set("Region", t.cfg.Region)
	return h
}

// tunnelURL accepts either a bare domain or a full ws(s) URL
func (t *Tunnel) tunnelURL() string {
	if strings.Contains(t.cfg.TunnelDomain, "://") {
		return t.cfg.TunnelDomain
	}
	return "wss://" + t.cfg.TunnelDomain
}

func (t *Tunnel) callbackURL(tunnelID string) string {
	domain := strings.TrimRight(t.cfg.CallbackDomain, "/")
	if !strings.Contains(domain, "://") {
		domain = "https://" + domain
	}
	return domain + "/" + tunnelID
}
