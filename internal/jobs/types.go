// Package jobs defines the asynchronous statement-import job model and the
// queue interfaces it travels through.
package jobs

import (
	"context"
	"time"
)

type JobType string

const JobTypeImportStatement JobType = "import_statement"

// JobStatus tracks a job through its lifecycle.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// ImportStatementJob asks a worker to parse an archived toll or card
// statement into draft transactions. The drafts stay scoped to UserID;
// BatchID is filled in by the handler on success so the client can fetch
// the preview.
type ImportStatementJob struct {
	JobID  string `json:"job_id"`
	UserID string `json:"user_id"`

	// Source is the original filename, carried into draft notes.
	Source string `json:"source"`

	// Format selects the parser: "csv" or "pdf".
	Format string `json:"format"`

	// StatementURI points at the uploaded file in the archive bucket.
	StatementURI string `json:"statement_uri"`

	BatchID string `json:"batch_id,omitempty"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	RetryCount  int        `json:"retry_count"`
	MaxRetries  int        `json:"max_retries"`
}

func (j *ImportStatementJob) GetType() JobType {
	return JobTypeImportStatement
}

// Publisher enqueues jobs. The in-memory queue implements it today; a
// Cloud Tasks or Pub/Sub implementation would slot in unchanged.
type Publisher interface {
	PublishImportStatement(ctx context.Context, job *ImportStatementJob) error
	Close() error
}

// Consumer drains the queue, invoking the handler per job. Stop waits for
// in-flight work.
type Consumer interface {
	Start(ctx context.Context, handler JobHandler) error
	Stop(ctx context.Context) error
}

// JobHandler processes one job. A non-nil error marks the job failed and
// eligible for retry. The handler may set BatchID on success.
type JobHandler func(ctx context.Context, job *ImportStatementJob) error

// JobStore records job state for status queries.
type JobStore interface {
	SaveJob(ctx context.Context, job *ImportStatementJob) error
	GetJob(ctx context.Context, jobID string) (*ImportStatementJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ImportStatementJob, error)
}

// JobFilter narrows ListJobs. Zero values mean unfiltered.
type JobFilter struct {
	UserID string
	Status JobStatus
	Limit  int
	Offset int
}
