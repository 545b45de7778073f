// Package server runs the mail backend: application bootstrap, the HTTP
// surface and the webhook consumers.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/brizzai/nylas-mail-backend/internal/auth"
	"github.com/brizzai/nylas-mail-backend/internal/config"
	"github.com/brizzai/nylas-mail-backend/internal/logger"
	"github.com/brizzai/nylas-mail-backend/internal/metrics"
	"github.com/brizzai/nylas-mail-backend/internal/nylas"
	"github.com/brizzai/nylas-mail-backend/internal/server/handler"
	"github.com/brizzai/nylas-mail-backend/internal/webhook"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// defaultShutdownTimeout is used when server.shutdown_timeout is unset
	defaultShutdownTimeout = 5 * time.Second
)

// ProviderClient is the provider API used by the server
type ProviderClient interface {
	UpdateApplication(ctx context.Context, redirectURIs []string) (*nylas.ApplicationDetails, error)
	handler.MessageLister
}

// Server represents the backend instance serving the mailbox routes and
// consuming webhook deltas.
type Server struct {
	config     *config.Config
	provider   ProviderClient
	dispatcher *webhook.Dispatcher
	tunnel     *webhook.Tunnel
	handler    *handler.Handler
	// tunnelDone is closed once the tunnel has stopped and deleted its webhook
	tunnelDone chan struct{}
}

type Params struct {
	fx.In

	Config     *config.Config
	Auth       *auth.Service
	Provider   ProviderClient
	Receiver   *webhook.Receiver
	Dispatcher *webhook.Dispatcher
	Tunnel     *webhook.Tunnel
	Metrics    *metrics.Metrics `optional:"true"`
}

// NewServer creates a new Server from its collaborators
func NewServer(p Params) *Server {
	var m *metrics.Metrics
	metricsPath := ""
	if p.Config.Metrics.Enabled {
		m = p.Metrics
		metricsPath = p.Config.Metrics.Path
	}

	var webhooks http.Handler
	if p.Receiver != nil {
		webhooks = p.Receiver
	}

	return &Server{
		config:     p.Config,
		provider:   p.Provider,
		dispatcher: p.Dispatcher,
		tunnel:     p.Tunnel,
		handler:    handler.NewHandler(p.Auth, handler.NewMailboxHandler(p.Provider), webhooks, m, metricsPath),
	}
}

// Bootstrap registers the client URI as the application's redirect URI and
// subscribes the account.connected consumer. A registration failure aborts
// startup.
func (s *Server) Bootstrap(ctx context.Context) error {
	details, err := s.provider.UpdateApplication(ctx, []string{s.config.Nylas.ClientURI})
	if err != nil {
		return fmt.Errorf("failed to register application: %w", err)
	}
	logger.Info("Application registered",
		zap.String("application_name", details.ApplicationName),
		zap.String("icon_url", details.IconURL),
		zap.Strings("redirect_uris", details.RedirectURIs),
	)

	go consumeAccountConnected(s.dispatcher.Subscribe(nylas.TriggerAccountConnected))
	return nil
}

// StartTunnel starts the webhook tunnel when enabled. Its outcome is logged
// in the background; failures never stop serving.
func (s *Server) StartTunnel(ctx context.Context) {
	if s.tunnel == nil || !s.tunnel.Enabled() {
		logger.Info("Webhook tunnel disabled")
		return
	}

	results := s.tunnel.Start(ctx)
	done := make(chan struct{})
	s.tunnelDone = done
	go func() {
		defer close(done)
		for result := range results {
			if result.Err != nil {
				logger.Error("Webhook tunnel failed", zap.Error(result.Err))
				continue
			}
			logger.Info("Webhook tunnel established",
				zap.String("webhook_id", result.Webhook.ID),
				zap.String("callback_url", result.Webhook.CallbackURL),
			)
		}
	}()
}

func consumeAccountConnected(deltas <-chan webhook.Delta) {
	for delta := range deltas {
		logger.Info("Account connected", zap.ByteString("object_data", delta.ObjectData))
	}
}

// Handler returns the HTTP handler of the backend
func (s *Server) Handler() http.Handler {
	return s.handler.CreateHTTPHandler()
}

// Start listens on the configured address until ctx is done, then shuts the
// HTTP server down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel for server errors
	errChan := make(chan error, 1)

	go func() {
		logger.Info("Starting server",
			zap.String("address", addr),
			zap.String("version", config.GetVersionInfo()),
		)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		timeout := s.config.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}
		logger.Info("Shutting down server", zap.Duration("timeout", timeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil

	case err := <-errChan:
		return err
	}
}

// WaitTunnel blocks until the tunnel started by StartTunnel has stopped and
// cleaned up its webhook, or ctx is done
func (s *Server) WaitTunnel(ctx context.Context) error {
	if s.tunnelDone == nil {
		return nil
	}
	select {
	case <-s.tunnelDone:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for webhook tunnel: %w", ctx.Err())
	}
}

// Close stops the webhook consumers
func (s *Server) Close() {
	s.dispatcher.Close()
}
