package services

import (
	"context"

	"admin-console/internal/models"
	"admin-console/pkg/common"
)

type DashboardService struct {
	Client *common.Client
}

func NewDashboardService(client *common.Client) *DashboardService {
	return &DashboardService{Client: client}
}

// Stats returns the aggregate metrics shown on the landing page.
func (s *DashboardService) Stats(ctx context.Context) (*common.Envelope[models.DashboardStats], error) {
	return get[models.DashboardStats](ctx, s.Client, "/admin/dashboard", nil)
}
