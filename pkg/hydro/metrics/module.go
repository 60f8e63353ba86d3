package metrics

import (
	"context"

	"go.uber.org/fx"

	"github.com/tigerroll/hydrocli/pkg/hydro/config"
)

// Module provides the Recorder. Without a configured listen address the
// recorder is a no-op and no HTTP server is started.
var Module = fx.Options(
	fx.Provide(NewRecorder),
)

// NewRecorder selects the Recorder implementation from configuration and
// ties the optional metrics server to the application lifecycle.
func NewRecorder(cfg *config.Config, lc fx.Lifecycle) Recorder {
	if cfg.Metrics.Listen == "" {
		return NewNoOpRecorder()
	}

	recorder := NewPrometheusRecorder()
	server := NewServer(cfg.Metrics.Listen, recorder)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return server.Start()
		},
		OnStop: func(ctx context.Context) error {
			return server.Stop(ctx)
		},
	})
	return recorder
}
