package services

import (
	"context"

	"admin-console/internal/models"
	"admin-console/pkg/common"
)

type SettingsService struct {
	Client *common.Client
}

func NewSettingsService(client *common.Client) *SettingsService {
	return &SettingsService{Client: client}
}

func (s *SettingsService) ROI(ctx context.Context) (*common.Envelope[models.ROISetting], error) {
	return get[models.ROISetting](ctx, s.Client, "/admin/settings/roi", nil)
}

// UpdateROI sets the default daily rate. With applyToActive the backend
// also rewrites the rate of every active investment.
func (s *SettingsService) UpdateROI(ctx context.Context, rate float64, applyToActive bool) (*common.Envelope[models.ROIUpdateResult], error) {
	return put[models.ROIUpdateResult](ctx, s.Client, "/admin/settings/roi", models.ROIUpdate{
		Rate:          rate,
		ApplyToActive: applyToActive,
	})
}
