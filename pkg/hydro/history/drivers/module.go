// Package drivers pulls in the database drivers the history store can use.
package drivers

import (
	"go.uber.org/fx"

	// Dialector registrations for the history store.
	_ "github.com/tigerroll/hydrocli/pkg/hydro/history/mysql"
	_ "github.com/tigerroll/hydrocli/pkg/hydro/history/postgres"
	_ "github.com/tigerroll/hydrocli/pkg/hydro/history/sqlite"

	// golang-migrate database drivers.
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
)

// Module exists so the blank driver imports ride along with the fx graph.
var Module = fx.Options()
