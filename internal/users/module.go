package users

import "go.uber.org/fx"

// Module provides the user store and the mailbox authorization service
var Module = fx.Module("users",
	fx.Provide(
		fx.Annotate(
			NewMemoryStore,
			fx.As(new(Store)),
		),
		NewService,
	),
)
