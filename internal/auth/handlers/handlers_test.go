package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brizzai/nylas-mail-backend/internal/auth/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	token       *models.AccessToken
	err         error
	gotCode     string
	gotRedirect string
	gotScopes   []string
}

func (f *fakeProvider) GetAuthURL(emailAddress, redirectURI, state string, scopes []string) string {
	f.gotRedirect = redirectURI
	f.gotScopes = scopes
	return "https://auth.test/authorize?login_hint=" + emailAddress
}

func (f *fakeProvider) ExchangeCode(ctx context.Context, code string) (*models.AccessToken, error) {
	f.gotCode = code
	return f.token, f.err
}

type fakeAuthorizer struct {
	calls []string
	err   error
}

func (f *fakeAuthorizer) OnMailboxAuthorized(ctx context.Context, accessToken, emailAddress string) (*models.UserRef, error) {
	f.calls = append(f.calls, accessToken+"|"+emailAddress)
	if f.err != nil {
		return nil, f.err
	}
	return &models.UserRef{ID: "U1", EmailAddress: emailAddress}, nil
}

func TestHandleExchangeMailboxToken(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		provider   *fakeProvider
		authorizer *fakeAuthorizer
		wantStatus int
		wantBody   string
		wantCalls  int
	}{
		{
			name:       "success",
			method:     http.MethodPost,
			body:       `{"token":"code-1"}`,
			provider:   &fakeProvider{token: &models.AccessToken{AccessToken: "T1", EmailAddress: "alice@example.com"}},
			authorizer: &fakeAuthorizer{},
			wantStatus: http.StatusOK,
			wantBody:   `{"id":"U1","emailAddress":"alice@example.com"}`,
			wantCalls:  1,
		},
		{
			name:       "wrong method",
			method:     http.MethodGet,
			provider:   &fakeProvider{},
			authorizer: &fakeAuthorizer{},
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "malformed body",
			method:     http.MethodPost,
			body:       `{`,
			provider:   &fakeProvider{},
			authorizer: &fakeAuthorizer{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing code",
			method:     http.MethodPost,
			body:       `{}`,
			provider:   &fakeProvider{},
			authorizer: &fakeAuthorizer{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "provider rejects code",
			method:     http.MethodPost,
			body:       `{"token":"bad"}`,
			provider:   &fakeProvider{err: errors.New("invalid code")},
			authorizer: &fakeAuthorizer{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "store failure",
			method:     http.MethodPost,
			body:       `{"token":"code-1"}`,
			provider:   &fakeProvider{token: &models.AccessToken{AccessToken: "T1", EmailAddress: "alice@example.com"}},
			authorizer: &fakeAuthorizer{err: errors.New("boom")},
			wantStatus: http.StatusInternalServerError,
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler("http://localhost:3000", []string{"email.modify"}, tt.provider, tt.authorizer)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/nylas/exchange-mailbox-token", strings.NewReader(tt.body))
			h.HandleExchangeMailboxToken(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Len(t, tt.authorizer.calls, tt.wantCalls)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestHandleExchangeMailboxToken_NeverReturnsToken(t *testing.T) {
	provider := &fakeProvider{token: &models.AccessToken{AccessToken: "secret-token", EmailAddress: "alice@example.com"}}
	h := NewHandler("http://localhost:3000", nil, provider, &fakeAuthorizer{})

	rec := httptest.NewRecorder()
	h.HandleExchangeMailboxToken(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"token":"c"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c", provider.gotCode)
	assert.NotContains(t, rec.Body.String(), "secret-token")
}

func TestHandleGenerateAuthURL(t *testing.T) {
	provider := &fakeProvider{}
	h := NewHandler("http://localhost:3000/", []string{"email.modify", "email.send"}, provider, &fakeAuthorizer{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/nylas/generate-auth-url",
		strings.NewReader(`{"email_address":"alice@example.com","success_url":"/login"}`))
	h.HandleGenerateAuthURL(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"https://auth.test/authorize?login_hint=alice@example.com"`, rec.Body.String())
	assert.Equal(t, "http://localhost:3000/login", provider.gotRedirect)
	assert.Equal(t, []string{"email.modify", "email.send"}, provider.gotScopes)
}

func TestHandleGenerateAuthURL_BadRequest(t *testing.T) {
	h := NewHandler("http://localhost:3000", nil, &fakeProvider{}, &fakeAuthorizer{})

	rec := httptest.NewRecorder()
	h.HandleGenerateAuthURL(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("nope")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleGenerateAuthURL(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
