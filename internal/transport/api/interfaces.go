package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/canteen-wallet/internal/domain"
	"github.com/fsdevblog/canteen-wallet/internal/service"
)

// WalletServicer интерфейс исключительно для моков.
type WalletServicer interface {
	SendMoney(ctx context.Context, args service.SendMoneyArgs) (*domain.Transfer, error)
	Balance(ctx context.Context, accountID int64) (decimal.Decimal, error)
	Statement(ctx context.Context, accountID int64) ([]domain.LedgerEntry, error)
}

type OrderServicer interface {
	Create(ctx context.Context, buyerAccountID int64, args service.CreateOrderArgs) (*domain.Order, error)
	GetByAccountID(ctx context.Context, accountID int64) ([]domain.Order, error)
}

type SettlementServicer interface {
	PayOrder(ctx context.Context, args service.PayOrderArgs) (*domain.Order, error)
}
