package main

import (
	"context"

	"go.uber.org/fx"

	"github.com/tigerroll/hydrocli/pkg/hydro/client"
	"github.com/tigerroll/hydrocli/pkg/hydro/config"
	"github.com/tigerroll/hydrocli/pkg/hydro/history"
	"github.com/tigerroll/hydrocli/pkg/hydro/history/drivers"
	"github.com/tigerroll/hydrocli/pkg/hydro/metrics"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/logger"
)

// appDeps receives the shared dependencies every subcommand can draw on.
type appDeps struct {
	fx.In

	Config   *config.Config
	Session  *client.Session
	Recorder metrics.Recorder
	History  *history.Store
}

// runApp assembles the Fx application, starts its lifecycle (metrics
// endpoint, history store), runs the command body and stops everything
// again. The body's error is returned unchanged so the caller can map it
// to an exit code.
func runApp(ctx context.Context, cfg *config.Config, body func(ctx context.Context, deps appDeps) error) error {
	var deps appDeps
	app := fx.New(
		logger.Module,
		fx.Supply(cfg),
		fx.Provide(newSession),
		metrics.Module,
		history.Module,
		drivers.Module,
		fx.Populate(&deps),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, fx.DefaultTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	runErr := body(ctx, deps)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil {
		logger.Warnf("shutdown did not complete cleanly: %v", err)
	}
	return runErr
}

func newSession(cfg *config.Config) (*client.Session, error) {
	return client.NewSession(cfg.Session)
}
