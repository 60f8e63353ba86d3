package history

import (
	"context"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/fx"

	"github.com/tigerroll/hydrocli/pkg/hydro/config"
	"github.com/tigerroll/hydrocli/pkg/hydro/support/exception"
)

// Module provides the history Store, disabled unless state persistence is
// configured.
var Module = fx.Options(
	fx.Provide(NewStore),
)

// NewStore builds the Store from application configuration and closes it on
// shutdown.
func NewStore(cfg *config.Config, lc fx.Lifecycle) (*Store, error) {
	if !cfg.State.Enabled {
		return NewDisabledStore(), nil
	}

	raw, ok := cfg.State.Connections[cfg.State.ConnectionRef]
	if !ok {
		return nil, exception.Newf(exception.KindConfig, moduleName,
			"state connection %q not found in configuration", cfg.State.ConnectionRef)
	}
	var dbCfg DatabaseConfig
	if err := mapstructure.Decode(raw, &dbCfg); err != nil {
		return nil, exception.New(exception.KindConfig, moduleName,
			"failed to decode state connection configuration", err)
	}

	store, err := Open(dbCfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return store.Close()
		},
	})
	return store, nil
}
