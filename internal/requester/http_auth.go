package requester

import (
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// AuthType represents the type of authentication applied to a request
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeBasic  AuthType = "basic"
	AuthTypeBearer AuthType = "bearer"
)

// AuthManager handles request authentication
type AuthManager interface {
	ApplyAuth(req *http.Request) error
}

// HTTPAuthManager implements the AuthManager interface
type HTTPAuthManager struct {
	authType   AuthType
	authConfig map[string]string
}

// NewHTTPAuthManager creates a new HTTPAuthManager
func NewHTTPAuthManager(authType AuthType, authConfig map[string]string) *HTTPAuthManager {
	return &HTTPAuthManager{
		authType:   authType,
		authConfig: authConfig,
	}
}

// ClientSecretAuth authenticates application level calls: the client secret
// is the basic auth username and the password is empty.
func ClientSecretAuth(clientSecret string) *HTTPAuthManager {
	return NewHTTPAuthManager(AuthTypeBasic, map[string]string{"username": clientSecret})
}

// ApplyAuth adds authentication to the request
func (a *HTTPAuthManager) ApplyAuth(req *http.Request) error {
	switch a.authType {
	case AuthTypeNone, "":
		return nil
	case AuthTypeBasic:
		req.SetBasicAuth(a.authConfig["username"], a.authConfig["password"])
	case AuthTypeBearer:
		token := a.authConfig["token"]
		if token == "" {
			return fmt.Errorf("bearer token is empty")
		}
		req.Header.Set("Authorization", "Bearer "+token)
	default:
		return fmt.Errorf("unsupported auth type: %s", a.authType)
	}
	return nil
}

// TokenSourceAuth authenticates mailbox level calls with an OAuth2 token
type TokenSourceAuth struct {
	source oauth2.TokenSource
}

// AccessTokenAuth authenticates with a static mailbox access token
func AccessTokenAuth(accessToken string) *TokenSourceAuth {
	return &TokenSourceAuth{source: oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})}
}

// ApplyAuth sets the Authorization header from the token source
func (a *TokenSourceAuth) ApplyAuth(req *http.Request) error {
	token, err := a.source.Token()
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}
	if !token.Valid() {
		return fmt.Errorf("access token is invalid")
	}
	token.SetAuthHeader(req)
	return nil
}
