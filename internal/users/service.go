package users

import (
	"context"
	"fmt"
	"sync"

	"github.com/brizzai/nylas-mail-backend/internal/auth/models"
	"github.com/brizzai/nylas-mail-backend/internal/logger"
	"go.uber.org/zap"
)

// Service turns completed mailbox authorizations into user records.
type Service struct {
	store Store
	// mu serializes the find-then-write pair so one email address never
	// ends up with two records.
	mu sync.Mutex
}

// NewService creates a Service backed by store
func NewService(store Store) *Service {
	return &Service{store: store}
}

// OnMailboxAuthorized stores accessToken for emailAddress, creating the user
// on first sight and replacing the token afterwards. The returned reference
// never carries the token.
func (s *Service) OnMailboxAuthorized(ctx context.Context, accessToken, emailAddress string) (*models.UserRef, error) {
	if emailAddress == "" {
		return nil, fmt.Errorf("email address is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		user *User
		err  error
	)
	if existing, ok := s.store.FindUser(ctx, emailAddress); ok {
		user, err = s.store.UpdateUser(ctx, existing.ID, Update{AccessToken: &accessToken})
		if err != nil {
			return nil, fmt.Errorf("failed to update user %s: %w", existing.ID, err)
		}
	} else {
		user, err = s.store.CreateUser(ctx, Fields{EmailAddress: emailAddress, AccessToken: accessToken})
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	logger.Info("Access token was generated",
		zap.String("email", user.EmailAddress),
		zap.String("user_id", user.ID),
	)

	return &models.UserRef{ID: user.ID, EmailAddress: user.EmailAddress}, nil
}
