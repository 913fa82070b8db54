package services

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"admin-console/internal/models"
)

type requestIDKey struct{}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// AuditService records mutating admin actions. With no database it only
// logs.
type AuditService struct {
	DB *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{DB: db}
}

func (s *AuditService) Record(ctx context.Context, action, target string, payload interface{}, actionErr error) {
	ev := log.Info()
	if actionErr != nil {
		ev = log.Warn().Err(actionErr)
	}
	ev.Str("action", action).Str("target", target).Msg("admin action")

	if s == nil || s.DB == nil {
		return
	}
	body, _ := json.Marshal(payload)
	entry := models.AdminAction{
		RequestID: requestID(ctx),
		Action:    action,
		Target:    target,
		Payload:   string(body),
		Status:    1,
	}
	if actionErr != nil {
		entry.Status = 2
		entry.Error = actionErr.Error()
	}
	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Error().Err(err).Str("action", action).Msg("audit write failed")
	}
}

// Recent returns the latest audit entries, newest first.
func (s *AuditService) Recent(ctx context.Context, limit int) ([]models.AdminAction, error) {
	if s == nil || s.DB == nil {
		return nil, nil
	}
	var out []models.AdminAction
	err := s.DB.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}
