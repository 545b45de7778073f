package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/brizzai/nylas-mail-backend/internal/auth/constants"
	"github.com/brizzai/nylas-mail-backend/internal/logger"
	"github.com/brizzai/nylas-mail-backend/internal/users"
	"github.com/brizzai/nylas-mail-backend/internal/utils"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type authContextKey string

const (
	// AuthContextKey is used to store auth info in the request context
	AuthContextKey authContextKey = "auth"
)

// AuthInfo represents the authenticated user stored in context
type AuthInfo struct {
	UserID       string
	EmailAddress string
	AccessToken  string
}

// UserFinder looks users up by identifier
type UserFinder interface {
	FindUser(ctx context.Context, identifier string) (*users.User, bool)
}

// Authenticate resolves the Authorization header to a stored user. The header
// carries the user id itself, not a signed token. Misses are answered with
// the "Unauthorized" JSON string and status.
func Authenticate(finder UserFinder, unauthorizedStatus int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := extractUserID(r)
			if userID == "" {
				logger.Debug("Missing authorization header", zap.String("path", r.URL.Path))
				utils.WriteJSONStatus(w, unauthorizedStatus, constants.UnauthorizedMessage)
				return
			}

			user, ok := finder.FindUser(r.Context(), userID)
			if !ok {
				logger.Debug("Unknown user in authorization header", zap.String("path", r.URL.Path))
				utils.WriteJSONStatus(w, unauthorizedStatus, constants.UnauthorizedMessage)
				return
			}

			ctx := context.WithValue(r.Context(), AuthContextKey, &AuthInfo{
				UserID:       user.ID,
				EmailAddress: user.EmailAddress,
				AccessToken:  user.AccessToken,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext returns the auth info stored by Authenticate
func FromContext(ctx context.Context) (*AuthInfo, bool) {
	info, ok := ctx.Value(AuthContextKey).(*AuthInfo)
	return info, ok
}

// CORSWithOrigins allows cross-origin calls from the given origins ("*" for any)
func CORSWithOrigins(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", constants.AuthHeaderName},
	})
	return c.Handler
}

// extractUserID reads the user id from the Authorization header
func extractUserID(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get(constants.AuthHeaderName))
	return strings.TrimSpace(strings.TrimPrefix(header, constants.AuthHeaderPrefix))
}
