package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"admin-console/internal/models"
	"admin-console/pkg/common"
)

// HistoryKind names one of the history listings.
type HistoryKind string

const (
	KindIncome      HistoryKind = "income"
	KindDeposits    HistoryKind = "deposits"
	KindWithdrawals HistoryKind = "withdrawals"
)

var historyPaths = map[HistoryKind]string{
	KindIncome:      "/admin/income-history",
	KindDeposits:    "/admin/deposit-history",
	KindWithdrawals: "/admin/withdrawal-history",
}

func ParseHistoryKind(s string) (HistoryKind, error) {
	k := HistoryKind(s)
	if _, ok := historyPaths[k]; !ok {
		return "", fmt.Errorf("unknown history kind %q", s)
	}
	return k, nil
}

func HistoryKinds() []HistoryKind {
	return []HistoryKind{KindDeposits, KindWithdrawals, KindIncome}
}

type HistoryService struct {
	Client *common.Client
}

func NewHistoryService(client *common.Client) *HistoryService {
	return &HistoryService{Client: client}
}

func (s *HistoryService) Income(ctx context.Context, q url.Values) (*common.Page[models.IncomeRecord], error) {
	return list[models.IncomeRecord](ctx, s.Client, historyPaths[KindIncome], q)
}

func (s *HistoryService) Deposits(ctx context.Context, q url.Values) (*common.Page[models.Deposit], error) {
	return list[models.Deposit](ctx, s.Client, historyPaths[KindDeposits], q)
}

func (s *HistoryService) Withdrawals(ctx context.Context, q url.Values) (*common.Page[models.Withdrawal], error) {
	return list[models.Withdrawal](ctx, s.Client, historyPaths[KindWithdrawals], q)
}

// Raw returns rows untouched so exports keep every field the backend sends.
func (s *HistoryService) Raw(ctx context.Context, kind HistoryKind, q url.Values) (*common.Page[json.RawMessage], error) {
	path, ok := historyPaths[kind]
	if !ok {
		return nil, fmt.Errorf("unknown history kind %q", kind)
	}
	return list[json.RawMessage](ctx, s.Client, path, q)
}
