package requester_test

import (
	"net/http"
	"testing"

	"github.com/brizzai/nylas-mail-backend/internal/requester"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPAuthManager_ApplyAuth(t *testing.T) {
	tests := []struct {
		name       string
		authType   requester.AuthType
		authConfig map[string]string
		wantErr    bool
		checkAuth  func(t *testing.T, req *http.Request)
	}{
		{
			name:       "No Auth",
			authType:   requester.AuthTypeNone,
			authConfig: map[string]string{},
			checkAuth: func(t *testing.T, req *http.Request) {
				assert.Empty(t, req.Header.Get("Authorization"))
			},
		},
		{
			name:     "Basic Auth",
			authType: requester.AuthTypeBasic,
			authConfig: map[string]string{
				"username": "testuser",
				"password": "testpass",
			},
			checkAuth: func(t *testing.T, req *http.Request) {
				username, password, ok := req.BasicAuth()
				assert.True(t, ok)
				assert.Equal(t, "testuser", username)
				assert.Equal(t, "testpass", password)
			},
		},
		{
			name:       "Bearer Auth",
			authType:   requester.AuthTypeBearer,
			authConfig: map[string]string{"token": "test-token"},
			checkAuth: func(t *testing.T, req *http.Request) {
				assert.Equal(t, "Bearer test-token", req.Header.Get("Authorization"))
			},
		},
		{
			name:       "Empty Bearer Token",
			authType:   requester.AuthTypeBearer,
			authConfig: map[string]string{},
			wantErr:    true,
		},
		{
			name:       "Invalid Auth Type",
			authType:   "invalid",
			authConfig: map[string]string{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &http.Request{Header: make(http.Header)}
			manager := requester.NewHTTPAuthManager(tt.authType, tt.authConfig)

			err := manager.ApplyAuth(req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			tt.checkAuth(t, req)
		})
	}
}

func TestClientSecretAuth(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}
	require.NoError(t, requester.ClientSecretAuth("secret").ApplyAuth(req))

	username, password, ok := req.BasicAuth()
	assert.True(t, ok)
	assert.Equal(t, "secret", username)
	assert.Empty(t, password)
}

func TestAccessTokenAuth(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}
	require.NoError(t, requester.AccessTokenAuth("T1").ApplyAuth(req))
	assert.Equal(t, "Bearer T1", req.Header.Get("Authorization"))

	req = &http.Request{Header: make(http.Header)}
	assert.Error(t, requester.AccessTokenAuth("").ApplyAuth(req))
}
