package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"admin-console/internal/services"
)

// DailyWindow returns the from/to filters covering the calendar day before now (UTC).
func DailyWindow(now time.Time) map[string]string {
	end := now.UTC().Truncate(24 * time.Hour)
	start := end.Add(-24 * time.Hour)
	return map[string]string{
		"from": start.Format(time.RFC3339),
		"to":   end.Format(time.RFC3339),
	}
}

// ScheduleExports queues one export per kind covering the previous day.
func ScheduleExports(ctx context.Context, q Enqueuer, kinds []services.HistoryKind, now time.Time) {
	window := DailyWindow(now)
	for _, kind := range kinds {
		job, err := EnqueueExport(ctx, q, ExportJob{Kind: string(kind), Filters: window, Trigger: "cron"})
		if err != nil {
			log.Error().Err(err).Str("kind", string(kind)).Msg("failed to enqueue scheduled export")
			continue
		}
		log.Info().Str("job_id", job.JobID).Str("kind", string(kind)).Msg("scheduled export enqueued")
	}
}

// StartScheduler initializes the cron job that enqueues the nightly exports.
func StartScheduler(spec string, kinds []services.HistoryKind, q Enqueuer) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		log.Info().Msg("Running scheduled history export...")
		ScheduleExports(context.Background(), q, kinds, time.Now())
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	log.Info().Str("spec", spec).Int("kinds", len(kinds)).Msg("Export scheduler started")
	return c, nil
}
