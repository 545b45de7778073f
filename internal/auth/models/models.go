package models

// AccessToken is the result of a completed mailbox authorization
type AccessToken struct {
	AccessToken  string
	EmailAddress string
	AccountID    string
	Provider     string
}

// UserRef identifies a stored user without exposing its token
type UserRef struct {
	ID           string `json:"id"`
	EmailAddress string `json:"emailAddress"`
}
