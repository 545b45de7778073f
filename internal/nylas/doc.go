// Package nylas is the client for the provider REST API calls the backend
// makes: application registration, message listing and webhook management.
//
// Application level calls authenticate with the client secret, mailbox level
// calls with the user's access token.
package nylas
