package nylas

// ApplicationDetails is the registered application as returned by the provider
type ApplicationDetails struct {
	ApplicationName string   `json:"application_name"`
	IconURL         string   `json:"icon_url"`
	RedirectURIs    []string `json:"redirect_uris"`
}

// Webhook is a webhook registered for the application
type Webhook struct {
	ID            string   `json:"id"`
	ApplicationID string   `json:"application_id"`
	CallbackURL   string   `json:"callback_url"`
	State         string   `json:"state"`
	Triggers      []string `json:"triggers"`
	Version       string   `json:"version"`
}

// TriggerAccountConnected fires when a mailbox finishes hosted authentication
const TriggerAccountConnected = "account.connected"

// DefaultMessageLimit is the number of messages read per request
const DefaultMessageLimit = 5
