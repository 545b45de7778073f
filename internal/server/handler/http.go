// Package handler builds the HTTP surface of the backend.
package handler

import (
	"io"
	"net/http"

	"github.com/brizzai/nylas-mail-backend/internal/auth"
	"github.com/brizzai/nylas-mail-backend/internal/auth/constants"
	"github.com/brizzai/nylas-mail-backend/internal/logger"
	"github.com/brizzai/nylas-mail-backend/internal/metrics"
	"go.uber.org/zap"
)

// Handler manages HTTP request handling and middleware configuration.
type Handler struct {
	auth        *auth.Service
	mailbox     *MailboxHandler
	webhooks    http.Handler
	metrics     *metrics.Metrics
	metricsPath string
}

// NewHandler creates a new HTTP handler. A nil metrics disables the metrics
// route and request counting.
func NewHandler(authService *auth.Service, mailbox *MailboxHandler, webhooks http.Handler, m *metrics.Metrics, metricsPath string) *Handler {
	return &Handler{
		auth:        authService,
		mailbox:     mailbox,
		webhooks:    webhooks,
		metrics:     m,
		metricsPath: metricsPath,
	}
}

// CreateHTTPHandler creates the route table wrapped with CORS. Only the
// mailbox routes go through user authentication.
func (h *Handler) CreateHTTPHandler() http.Handler {
	mux := http.NewServeMux()

	h.handle(mux, "/", http.HandlerFunc(handleHealth))

	h.auth.RegisterRoutes(mux)
	logger.Info("Registered authentication routes", zap.String("mount", constants.MountPath))

	if h.webhooks != nil {
		h.handle(mux, constants.MountPath+"/webhook", h.webhooks)
	}

	h.handle(mux, constants.MountPath+"/read-emails", h.auth.Authenticate()(http.HandlerFunc(h.mailbox.HandleReadEmails)))

	if h.metrics != nil && h.metricsPath != "" {
		mux.Handle(h.metricsPath, h.metrics.Handler())
		logger.Info("Enabled metrics endpoint", zap.String("path", h.metricsPath))
	}

	return h.auth.WrapWithCors(mux)
}

func (h *Handler) handle(mux *http.ServeMux, route string, next http.Handler) {
	if h.metrics != nil {
		next = h.metrics.Middleware(route, next)
	}
	mux.Handle(route, next)
}

// handleHealth answers "Ok" on the root path whatever the state of the
// store and provider
func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "Ok")
}
