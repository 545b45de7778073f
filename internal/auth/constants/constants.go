package constants

const (
	// MountPath is the prefix every provider-facing route is served under
	MountPath = "/nylas"

	// AuthHeaderName is the name of the header carrying the user id
	AuthHeaderName = "Authorization"

	// AuthHeaderPrefix is accepted and stripped in front of the user id
	AuthHeaderPrefix = "Bearer "

	// UnauthorizedMessage is the JSON string answered on authorization misses
	UnauthorizedMessage = "Unauthorized"
)

// Mailbox permission scopes
const (
	ScopeEmailModify = "email.modify"
	ScopeEmailSend   = "email.send"
)

// DefaultScopes are requested when the caller does not ask for others
var DefaultScopes = []string{ScopeEmailModify, ScopeEmailSend}
