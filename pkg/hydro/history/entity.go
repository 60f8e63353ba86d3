package history

import "time"

// Run statuses recorded in the history store.
const (
	RunStatusStarted   = "STARTED"
	RunStatusCompleted = "COMPLETED"
	RunStatusFailed    = "FAILED"
)

// Submission statuses recorded per series.
const (
	SubmissionStored = "STORED"
	SubmissionFailed = "FAILED"
	SubmissionDryRun = "DRY_RUN"
)

// UploadRun is one invocation of an upload command.
type UploadRun struct {
	ID           string     `gorm:"column:id;primaryKey"`
	Command      string     `gorm:"column:command"`
	Project      string     `gorm:"column:project"`
	Status       string     `gorm:"column:status"`
	DryRun       bool       `gorm:"column:dry_run"`
	StartedAt    time.Time  `gorm:"column:started_at"`
	FinishedAt   *time.Time `gorm:"column:finished_at"`
	SeriesStored int        `gorm:"column:series_stored"`
	SeriesFailed int        `gorm:"column:series_failed"`
}

// TableName maps UploadRun to its table.
func (UploadRun) TableName() string {
	return "upload_runs"
}

// SeriesSubmission is one series dispatched (or previewed) within a run.
type SeriesSubmission struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement"`
	RunID        string    `gorm:"column:run_id;index"`
	SeriesName   string    `gorm:"column:series_name"`
	Units        string    `gorm:"column:units"`
	StoreRule    string    `gorm:"column:store_rule"`
	TickCount    int       `gorm:"column:tick_count"`
	MissingCount int       `gorm:"column:missing_count"`
	Status       string    `gorm:"column:status"`
	Detail       string    `gorm:"column:detail"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

// TableName maps SeriesSubmission to its table.
func (SeriesSubmission) TableName() string {
	return "upload_series"
}
