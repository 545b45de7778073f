package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brizzai/nylas-mail-backend/internal/auth/models"
	"github.com/brizzai/nylas-mail-backend/internal/config"
	"github.com/brizzai/nylas-mail-backend/internal/users"
)

// mockProvider implements providers.Provider for testing
type mockProvider struct{}

func (m *mockProvider) GetAuthURL(emailAddress, redirectURI, state string, scopes []string) string {
	return "mock-url"
}

func (m *mockProvider) ExchangeCode(ctx context.Context, code string) (*models.AccessToken, error) {
	return &models.AccessToken{AccessToken: "T1", EmailAddress: "alice@example.com"}, nil
}

func newTestService(cfg *config.Config) (*Service, *users.MemoryStore) {
	store := users.NewMemoryStore()
	return NewService(cfg, &mockProvider{}, users.NewService(store), store), store
}

func TestNewService(t *testing.T) {
	cfg := &config.Config{Nylas: config.NylasConfig{ClientURI: "http://localhost:3000"}}
	provider := &mockProvider{}
	store := users.NewMemoryStore()
	service := NewService(cfg, provider, users.NewService(store), store)

	if service.config != cfg {
		t.Errorf("expected config to be set")
	}
	if service.handler == nil {
		t.Errorf("expected handler to be set")
	}
}

func TestRegisterRoutes(t *testing.T) {
	service, _ := newTestService(&config.Config{})
	mux := http.NewServeMux()
	service.RegisterRoutes(mux)

	routes := []string{
		"/nylas/generate-auth-url",
		"/nylas/exchange-mailbox-token",
	}
	for _, route := range routes {
		r, _ := http.NewRequest("POST", route, nil)
		h, pattern := mux.Handler(r)
		if pattern == "" || h == nil {
			t.Errorf("route %s not registered", route)
		}
	}
}

func TestWrapWithCors(t *testing.T) {
	service, _ := newTestService(&config.Config{
		Server: config.ServerConfig{AllowOrigins: []string{"http://localhost:3000"}},
	})
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(204)
	})
	wrapped := service.WrapWithCors(h)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	wrapped.ServeHTTP(rec, req)

	if rec.Code != 204 {
		t.Errorf("expected status 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("expected allowed origin header, got %q", got)
	}
}

func TestAuthenticate_StrictStatus(t *testing.T) {
	tests := []struct {
		name   string
		strict bool
		want   int
	}{
		{name: "compatible", strict: false, want: http.StatusOK},
		{name: "strict", strict: true, want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := newTestService(&config.Config{
				Server: config.ServerConfig{StrictUnauthorized: tt.strict},
			})
			h := service.Authenticate()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("next handler must not run")
			}))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest("GET", "/nylas/read-emails", nil))

			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
