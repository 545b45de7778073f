package auth

import (
	"net/http"

	"github.com/brizzai/nylas-mail-backend/internal/auth/constants"
	"github.com/brizzai/nylas-mail-backend/internal/auth/handlers"
	"github.com/brizzai/nylas-mail-backend/internal/auth/middleware"
	"github.com/brizzai/nylas-mail-backend/internal/auth/providers"
	"github.com/brizzai/nylas-mail-backend/internal/config"
	"github.com/brizzai/nylas-mail-backend/internal/users"
	"go.uber.org/fx"
)

// Service represents the mailbox authentication service
type Service struct {
	config  *config.Config
	finder  middleware.UserFinder
	handler *handlers.Handler
}

// NewService creates a new authentication service
func NewService(cfg *config.Config, provider providers.Provider, authorizer handlers.MailboxAuthorizer, finder middleware.UserFinder) *Service {
	scopes := cfg.Nylas.DefaultScopes
	if len(scopes) == 0 {
		scopes = constants.DefaultScopes
	}

	return &Service{
		config:  cfg,
		finder:  finder,
		handler: handlers.NewHandler(cfg.Nylas.ClientURI, scopes, provider, authorizer),
	}
}

// RegisterRoutes registers the hosted authentication routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc(constants.MountPath+"/generate-auth-url", s.handler.HandleGenerateAuthURL)
	mux.HandleFunc(constants.MountPath+"/exchange-mailbox-token", s.handler.HandleExchangeMailboxToken)
}

// WrapWithCors wraps the handler with the configured CORS policy
func (s *Service) WrapWithCors(handler http.Handler) http.Handler {
	return middleware.CORSWithOrigins(s.config.Server.AllowOrigins)(handler)
}

// Authenticate returns the user resolving middleware
func (s *Service) Authenticate() func(http.Handler) http.Handler {
	status := http.StatusOK
	if s.config.Server.StrictUnauthorized {
		status = http.StatusUnauthorized
	}
	return middleware.Authenticate(s.finder, status)
}

func newNylasProvider(cfg *config.Config) providers.Provider {
	return providers.NewNylasProvider(&cfg.Nylas, nil)
}

func newUserFinder(store users.Store) middleware.UserFinder {
	return store
}

func newAuthorizer(svc *users.Service) handlers.MailboxAuthorizer {
	return svc
}

// Module provides the authentication service
var Module = fx.Module("auth",
	fx.Provide(
		newNylasProvider,
		newUserFinder,
		newAuthorizer,
		NewService,
	),
)
