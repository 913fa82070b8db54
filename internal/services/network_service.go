package services

import (
	"context"
	"net/url"

	"admin-console/internal/models"
	"admin-console/pkg/common"
)

type NetworkService struct {
	Client *common.Client
}

func NewNetworkService(client *common.Client) *NetworkService {
	return &NetworkService{Client: client}
}

// Downline lists the referral network under uid.
func (s *NetworkService) Downline(ctx context.Context, uid string, q url.Values) (*common.Page[models.NetworkMember], error) {
	return list[models.NetworkMember](ctx, s.Client, "/admin/users/"+url.PathEscape(uid)+"/network", q)
}
