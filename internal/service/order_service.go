package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsdevblog/canteen-wallet/internal/domain"
	"github.com/fsdevblog/canteen-wallet/internal/repository/repoargs"
	"github.com/fsdevblog/canteen-wallet/pkg/uow"
	"github.com/shopspring/decimal"
)

type OrderService struct {
	uow         uow.UOW
	orderRepo   domain.OrderRepository
	accountRepo domain.AccountRepository
}

func NewOrderService(u uow.UOW) (*OrderService, error) {
	orderRepo, orderErr := uow.GetRepositoryAs[domain.OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if orderErr != nil {
		return nil, orderErr //nolint:wrapcheck
	}
	accountRepo, accErr := uow.GetRepositoryAs[domain.AccountRepository](u, uow.RepositoryName(repoargs.AccountRepoName))
	if accErr != nil {
		return nil, accErr //nolint:wrapcheck
	}
	return &OrderService{
		uow:         u,
		orderRepo:   orderRepo,
		accountRepo: accountRepo,
	}, nil
}

type CreateOrderArgs struct {
	VendorPhoneNumber string
	FoodName          string
	Quantity          int32
	TotalPrice        decimal.Decimal
}

// Create создает неоплаченный заказ от имени покупателя. Заказ самому себе
// (покупатель и продавец — один счет) отклоняется сразу: движок переводов
// все равно не пропустит такую оплату.
func (o *OrderService) Create(ctx context.Context, buyerAccountID int64, args CreateOrderArgs) (*domain.Order, error) {
	if !args.TotalPrice.IsPositive() {
		return nil, domain.ErrNonPositiveAmount
	}

	vendor, vendorErr := o.accountRepo.FindByPhoneNumber(ctx, args.VendorPhoneNumber)
	if vendorErr != nil {
		if errors.Is(vendorErr, domain.ErrRecordNotFound) {
			return nil, domain.ErrUnknownAccount
		}
		return nil, fmt.Errorf("resolving vendor %s: %w", args.VendorPhoneNumber, vendorErr)
	}
	if vendor.ID == buyerAccountID {
		return nil, domain.ErrSelfTransfer
	}

	order, createErr := o.orderRepo.CreateOrder(ctx, repoargs.OrderCreate{
		BuyerAccountID:  buyerAccountID,
		VendorAccountID: vendor.ID,
		FoodName:        args.FoodName,
		Quantity:        args.Quantity,
		TotalPrice:      args.TotalPrice,
	})
	if createErr != nil {
		return nil, fmt.Errorf("creating order: %w", createErr)
	}
	return order, nil
}

// GetByAccountID возвращает заказы, где счет выступает покупателем или продавцом,
// отсортированные по дате создания по убыванию.
func (o *OrderService) GetByAccountID(ctx context.Context, accountID int64) ([]domain.Order, error) {
	orders, err := o.orderRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return orders, nil
}
