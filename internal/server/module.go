package server

import (
	"context"

	"github.com/brizzai/nylas-mail-backend/internal/logger"
	"github.com/brizzai/nylas-mail-backend/internal/nylas"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newProviderClient(client *nylas.Client) ProviderClient {
	return client
}

// RegisterLifecycle bootstraps the server on start and serves until stop. A
// serving failure shuts the application down with exit code 1. Stop returns
// once the HTTP server and the webhook tunnel have both finished.
func RegisterLifecycle(lc fx.Lifecycle, shutdowner fx.Shutdowner, srv *Server) {
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := srv.Bootstrap(ctx); err != nil {
				cancel()
				return err
			}
			srv.StartTunnel(runCtx)

			go func() {
				defer close(done)
				if err := srv.Start(runCtx); err != nil {
					logger.Error("Server stopped", zap.Error(err))
					if err := shutdowner.Shutdown(fx.ExitCode(1)); err != nil {
						logger.Error("Failed to shut down", zap.Error(err))
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			defer srv.Close()
			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
			return srv.WaitTunnel(ctx)
		},
	})
}

// Module provides the backend server
var Module = fx.Module("server",
	fx.Provide(
		newProviderClient,
		NewServer,
	),
)
