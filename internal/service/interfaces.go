package service

//go:generate mockgen -source=interfaces.go -destination=mocks/service_mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/canteen-wallet/internal/domain"
)

// TransferExecutor контракт движка переводов для координатора расчетов и кошелька.
type TransferExecutor interface {
	Execute(ctx context.Context, args ExecuteTransferArgs) (*domain.Transfer, error)
}

// CredentialVerifier повторная проверка платежного пароля непосредственно перед
// денежной операцией. Валидная сессия не заменяет эту проверку: подтверждается
// намерение, а не личность.
type CredentialVerifier interface {
	Reverify(ctx context.Context, accountID int64, suppliedSecret string) error
}
