package worker

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"admin-console/internal/services"
)

// Task Types
const (
	TypeHistoryExport = "history:export"
)

const exportQueue = "low"

// ExportJob asks the worker to export one history listing to a CSV file.
// The worker always calls the admin API with its own service token.
type ExportJob struct {
	JobID       string            `json:"job_id"`
	Kind        string            `json:"kind"`
	Filters     map[string]string `json:"filters,omitempty"`
	Trigger     string            `json:"trigger"`
	RequestedBy string            `json:"requested_by,omitempty"`
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Task Creators

func NewHistoryExportTask(job ExportJob) (*asynq.Task, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeHistoryExport, data,
		asynq.TaskID(job.JobID),
		asynq.Queue(exportQueue),
		asynq.MaxRetry(3),
	), nil
}

// EnqueueExport validates the kind, assigns a job id and queues the export.
func EnqueueExport(ctx context.Context, q Enqueuer, job ExportJob) (ExportJob, error) {
	if _, err := services.ParseHistoryKind(job.Kind); err != nil {
		return job, err
	}
	if job.JobID == "" {
		job.JobID = uuid.NewString()
	}
	task, err := NewHistoryExportTask(job)
	if err != nil {
		return job, err
	}
	if _, err := q.EnqueueContext(ctx, task); err != nil {
		return job, err
	}
	return job, nil
}

var _ Enqueuer = (*asynq.Client)(nil)
