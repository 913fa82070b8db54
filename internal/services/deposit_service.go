package services

import (
	"context"

	"admin-console/internal/models"
	"admin-console/pkg/common"
)

type DepositService struct {
	Client *common.Client
}

func NewDepositService(client *common.Client) *DepositService {
	return &DepositService{Client: client}
}

// CreditUser books a synthetic deposit for a user by UID.
func (s *DepositService) CreditUser(ctx context.Context, credit models.DepositCredit) (*common.Envelope[models.Deposit], error) {
	if credit.Reference == "" {
		credit.Reference = common.GenerateReference()
	}
	return post[models.Deposit](ctx, s.Client, "/admin/deposit/user", credit)
}
