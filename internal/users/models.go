package users

import "errors"

var (
	// ErrNotFound is returned when an update targets an unknown user id.
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when a create would duplicate an email address.
	ErrEmailTaken = errors.New("email address already registered")
)

// User is a mailbox owner known to the backend.
type User struct {
	ID           string `json:"id"`
	EmailAddress string `json:"emailAddress"`
	AccessToken  string `json:"-"`
}

// Fields holds the values of a new user record.
type Fields struct {
	EmailAddress string
	AccessToken  string
}

// Update holds the fields to merge into an existing record. Nil fields are
// left unchanged.
type Update struct {
	AccessToken *string
}
