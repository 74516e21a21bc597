package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Black-And-White-Club/kart-bot/pkg/observability/attr"
)

// Run starts the queue workers and serves HTTP until ctx is cancelled or the
// server fails.
func (app *App) Run(ctx context.Context) error {
	if err := app.TournamentModule.Run(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		app.Logger.InfoContext(ctx, "Starting HTTP server", attr.String("addr", app.server.Addr))
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		app.Logger.InfoContext(ctx, "Shutdown requested")
		return nil
	case err := <-errCh:
		return err
	}
}
