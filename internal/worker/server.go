package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"admin-console/internal/notify"
	"admin-console/internal/services"
	"admin-console/pkg/common"
	"admin-console/pkg/csvexport"
)

type Worker struct {
	History  *services.HistoryService
	Runs     *services.ExportRunService
	Notifier notify.Notifier
	// ServiceToken is the bearer every job starts with. Each job gets its
	// own store so a 401 in one job cannot log out the next.
	ServiceToken string
	ExportDir    string
	PageSize     int
}

func NewWorker(history *services.HistoryService, runs *services.ExportRunService, n notify.Notifier, serviceToken string, dir string, pageSize int) *Worker {
	return &Worker{
		History:      history,
		Runs:         runs,
		Notifier:     notify.OrDiscard(n),
		ServiceToken: serviceToken,
		ExportDir:    dir,
		PageSize:     pageSize,
	}
}

// HandleHistoryExport pages through one history listing and writes it to
// ExportDir. A partial file is never left behind.
func (w *Worker) HandleHistoryExport(ctx context.Context, t *asynq.Task) error {
	var job ExportJob
	if err := json.Unmarshal(t.Payload(), &job); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	kind, err := services.ParseHistoryKind(job.Kind)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	ctx = common.WithTokenStore(ctx, common.NewMemoryTokenStore(common.Tokens{AccessToken: w.ServiceToken}))

	logger := log.With().Str("job_id", job.JobID).Str("kind", job.Kind).Str("trigger", job.Trigger).Logger()
	logger.Info().Msg("export started")
	w.Runs.Start(ctx, job.JobID, kind, job.Filters, job.Trigger)

	file, rows, err := w.export(ctx, job, kind)
	if err != nil {
		logger.Error().Err(err).Msg("export failed")
		w.Runs.Fail(ctx, job.JobID, err)
		w.Notifier.Notify(ctx, notify.LevelError, fmt.Sprintf("%s export failed: %s", kind, common.Message(err)))
		if errors.Is(err, common.ErrUnauthorized) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	logger.Info().Int("rows", rows).Str("file", file).Msg("export finished")
	w.Runs.Finish(ctx, job.JobID, rows, file)
	w.Notifier.Notify(ctx, notify.LevelSuccess, fmt.Sprintf("%s export ready: %d rows in %s", kind, rows, filepath.Base(file)))
	return nil
}

func (w *Worker) export(ctx context.Context, job ExportJob, kind services.HistoryKind) (string, int, error) {
	if err := os.MkdirAll(w.ExportDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("export dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s-%s.csv", kind, time.Now().UTC().Format("20060102-150405"), shortID(job.JobID))
	final := filepath.Join(w.ExportDir, name)

	tmp, err := os.CreateTemp(w.ExportDir, "."+name+".*")
	if err != nil {
		return "", 0, err
	}
	defer os.Remove(tmp.Name())

	fetch := func(ctx context.Context, page, limit int) ([]json.RawMessage, error) {
		q := common.QueryFromFilters(job.Filters)
		res, err := w.History.Raw(ctx, kind, common.PageQuery(q, page, limit))
		if err != nil {
			return nil, err
		}
		return res.Data, nil
	}

	rows, err := csvexport.New(w.PageSize).Run(ctx, fetch, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", 0, err
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		return "", 0, err
	}
	return final, rows, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func NewServeMux(w *Worker) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeHistoryExport, w.HandleHistoryExport)
	return mux
}

// StartWorker runs the asynq server until it is shut down.
func StartWorker(redisOpt asynq.RedisClientOpt, w *Worker) error {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			// Exports are sequential page loops; a few at a time is plenty.
			Concurrency: 2,
			Queues: map[string]int{
				"default":   3,
				exportQueue: 1,
			},
		},
	)
	return srv.Run(NewServeMux(w))
}
