// Package sqlite registers the SQLite dialector with the history store.
package sqlite

import (
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tigerroll/hydrocli/pkg/hydro/history"
)

func init() {
	history.RegisterDialector("sqlite", func(cfg history.DatabaseConfig) (gorm.Dialector, error) {
		if cfg.Database == "" {
			return nil, errors.New("sqlite database path cannot be empty")
		}
		// The sqlite dialector takes the file path directly as its DSN.
		return sqlite.Open(cfg.Database), nil
	})
}
