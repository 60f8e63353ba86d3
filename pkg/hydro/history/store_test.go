package history

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupStoreMock wires a Store to a sqlmock-backed GORM connection.
func setupStoreMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	t.Cleanup(func() { sqlDB.Close() })
	return &Store{db: gormDB, dbType: "mysql"}, mock
}

func TestStartRun_InsertsRunRow(t *testing.T) {
	store, mock := setupStoreMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `upload_runs`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	runID, err := store.StartRun(context.Background(), "csv2ts", "keystone", false)
	require.NoError(t, err)
	assert.NotEmpty(t, runID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSubmission_InsertsSeriesRow(t *testing.T) {
	store, mock := setupStoreMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `upload_series`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := store.RecordSubmission(context.Background(), SeriesSubmission{
		RunID:      "run-1",
		SeriesName: "Keystone.Flow-Out.Ave.1Hour.1Hour.Comp",
		Units:      "cfs",
		StoreRule:  "REPLACE_ALL",
		TickCount:  24,
		Status:     SubmissionStored,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinishRun_UpdatesCounters(t *testing.T) {
	store, mock := setupStoreMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `upload_runs` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.FinishRun(context.Background(), "run-1", RunStatusCompleted, 3, 1)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentRuns_QueriesNewestFirst(t *testing.T) {
	store, mock := setupStoreMock(t)

	rows := sqlmock.NewRows([]string{"id", "command", "project", "status", "dry_run", "started_at", "finished_at", "series_stored", "series_failed"}).
		AddRow("run-2", "csv2ts", "keystone", RunStatusCompleted, false, time.Now(), nil, 2, 0).
		AddRow("run-1", "csv2ts", "hulah", RunStatusFailed, false, time.Now().Add(-time.Hour), nil, 0, 1)
	mock.ExpectQuery("SELECT \\* FROM `upload_runs` ORDER BY started_at DESC").
		WillReturnRows(rows)

	runs, err := store.RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisabledStore_IgnoresEverything(t *testing.T) {
	store := NewDisabledStore()
	assert.False(t, store.Enabled())

	runID, err := store.StartRun(context.Background(), "csv2ts", "all", true)
	require.NoError(t, err)
	assert.NotEmpty(t, runID, "run IDs are still generated for log correlation")

	assert.NoError(t, store.RecordSubmission(context.Background(), SeriesSubmission{}))
	assert.NoError(t, store.FinishRun(context.Background(), runID, RunStatusCompleted, 0, 0))

	runs, err := store.RecentRuns(context.Background(), 5)
	require.NoError(t, err)
	assert.Nil(t, runs)
	assert.NoError(t, store.Close())
}
