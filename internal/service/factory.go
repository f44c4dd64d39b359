package service

import (
	"github.com/fsdevblog/canteen-wallet/pkg/uow"
)

type Services struct {
	TransferService   *TransferService
	WalletService     *WalletService
	OrderService      *OrderService
	SettlementService *SettlementService
	CredentialGate    *CredentialGate
}

// Factory собирает сервисный слой поверх UnitOfWork с зарегистрированными
// репозиториями.
func Factory(u uow.UOW) (*Services, error) {
	gate, gateErr := NewCredentialGate(u)
	if gateErr != nil {
		return nil, gateErr
	}

	engine := NewTransferService(u)

	walletService, walletErr := NewWalletService(u, engine, gate)
	if walletErr != nil {
		return nil, walletErr
	}

	orderService, orderErr := NewOrderService(u)
	if orderErr != nil {
		return nil, orderErr
	}

	settlementService, settlementErr := NewSettlementService(u, engine, gate)
	if settlementErr != nil {
		return nil, settlementErr
	}

	return &Services{
		TransferService:   engine,
		WalletService:     walletService,
		OrderService:      orderService,
		SettlementService: settlementService,
		CredentialGate:    gate,
	}, nil
}
