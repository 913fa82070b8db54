package services

import (
	"context"
	"net/url"

	"admin-console/internal/models"
	"admin-console/pkg/common"
)

type TradeService struct {
	Client *common.Client
}

func NewTradeService(client *common.Client) *TradeService {
	return &TradeService{Client: client}
}

func (s *TradeService) List(ctx context.Context, q url.Values) (*common.Page[models.Trade], error) {
	return list[models.Trade](ctx, s.Client, "/admin/trade-data", q)
}

// Create posts a dummy trade. payload carries only the fields the operator
// filled in.
func (s *TradeService) Create(ctx context.Context, payload map[string]interface{}) (*common.Envelope[models.Trade], error) {
	return post[models.Trade](ctx, s.Client, "/admin/trade-data", payload)
}

func (s *TradeService) Summary(ctx context.Context) (*common.Envelope[models.TradeSummary], error) {
	return get[models.TradeSummary](ctx, s.Client, "/admin/trade-data/summary", nil)
}
