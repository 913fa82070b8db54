package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"admin-console/internal/models"
)

const (
	ExportRunning = 0
	ExportDone    = 1
	ExportFailed  = 2
)

// ExportRunService keeps the history of background exports. Without a
// database every call is a no-op.
type ExportRunService struct {
	DB *gorm.DB
}

func NewExportRunService(db *gorm.DB) *ExportRunService {
	return &ExportRunService{DB: db}
}

func (s *ExportRunService) enabled() bool { return s != nil && s.DB != nil }

func (s *ExportRunService) Start(ctx context.Context, jobID string, kind HistoryKind, filters map[string]string, trigger string) {
	if !s.enabled() {
		return
	}
	body, _ := json.Marshal(filters)
	run := models.ExportRun{
		JobID:   jobID,
		Kind:    string(kind),
		Filters: string(body),
		Status:  ExportRunning,
		Trigger: trigger,
	}
	// A retried job already has a row; restart it instead of inserting.
	err := s.DB.WithContext(ctx).
		Where(models.ExportRun{JobID: jobID}).
		Assign(map[string]interface{}{"status": ExportRunning, "error": "", "finished_at": nil}).
		FirstOrCreate(&run).Error
	if err != nil {
		log.Error().Err(err).Str("job_id", jobID).Msg("failed to record export start")
	}
}

func (s *ExportRunService) Finish(ctx context.Context, jobID string, rows int, file string) {
	s.update(ctx, jobID, map[string]interface{}{
		"status": ExportDone, "rows": rows, "file": file, "finished_at": time.Now(),
	})
}

func (s *ExportRunService) Fail(ctx context.Context, jobID string, runErr error) {
	s.update(ctx, jobID, map[string]interface{}{
		"status": ExportFailed, "error": runErr.Error(), "finished_at": time.Now(),
	})
}

func (s *ExportRunService) update(ctx context.Context, jobID string, fields map[string]interface{}) {
	if !s.enabled() {
		return
	}
	err := s.DB.WithContext(ctx).Model(&models.ExportRun{}).Where("job_id = ?", jobID).Updates(fields).Error
	if err != nil {
		log.Error().Err(err).Str("job_id", jobID).Msg("failed to update export run")
	}
}

// Recent returns the latest runs, newest first.
func (s *ExportRunService) Recent(ctx context.Context, limit int) ([]models.ExportRun, error) {
	if !s.enabled() {
		return nil, nil
	}
	var runs []models.ExportRun
	err := s.DB.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}
