package services

import (
	"context"
	"net/url"

	"admin-console/internal/models"
	"admin-console/pkg/common"
)

// FundService triggers treasury operations. The sweep itself runs on the
// backend; this only asks for it.
type FundService struct {
	Client *common.Client
}

func NewFundService(client *common.Client) *FundService {
	return &FundService{Client: client}
}

func (s *FundService) AllBalances(ctx context.Context, chain models.Chain) (*common.Envelope[[]models.FundBalance], error) {
	q := url.Values{}
	if chain != "" {
		q.Set("chain", string(chain))
	}
	return get[[]models.FundBalance](ctx, s.Client, "/admin/funds/all", q)
}

func (s *FundService) Balance(ctx context.Context, chain models.Chain, address string) (*common.Envelope[models.FundBalance], error) {
	q := url.Values{"chain": {string(chain)}, "address": {address}}
	return get[models.FundBalance](ctx, s.Client, "/admin/funds/balance", q)
}

func (s *FundService) CheckSweep(ctx context.Context, chain models.Chain, address string) (*common.Envelope[models.SweepCheck], error) {
	return post[models.SweepCheck](ctx, s.Client, "/admin/funds/check-sweep", map[string]string{
		"chain":   string(chain),
		"address": address,
	})
}

func (s *FundService) SweepAddress(ctx context.Context, chain models.Chain, source, destination string) (*common.Envelope[models.SweepResult], error) {
	return post[models.SweepResult](ctx, s.Client, "/admin/funds/sweep-address", map[string]string{
		"chain":              string(chain),
		"address":            source,
		"destinationAddress": destination,
	})
}

func (s *FundService) SweepAll(ctx context.Context, chain models.Chain, destination string) (*common.Envelope[models.SweepResult], error) {
	return post[models.SweepResult](ctx, s.Client, "/admin/funds/sweep-all", map[string]string{
		"chain":              string(chain),
		"destinationAddress": destination,
	})
}
