package webhook

import (
	"github.com/brizzai/nylas-mail-backend/internal/nylas"
	"go.uber.org/fx"
)

func newRegistrar(client *nylas.Client) WebhookRegistrar {
	return client
}

// Module provides the webhook dispatcher, receiver and tunnel
var Module = fx.Module("webhook",
	fx.Provide(
		NewDispatcher,
		NewReceiver,
		newRegistrar,
		NewTunnel,
	),
)
