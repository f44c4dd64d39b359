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

// WalletService пользовательские операции кошелька: перевод по номеру телефона,
// баланс и выписка.
type WalletService struct {
	uow         uow.UOW
	accountRepo domain.AccountRepository
	ledgerRepo  domain.LedgerRepository
	engine      TransferExecutor
	gate        CredentialVerifier
}

func NewWalletService(u uow.UOW, engine TransferExecutor, gate CredentialVerifier) (*WalletService, error) {
	accountRepo, accErr := uow.GetRepositoryAs[domain.AccountRepository](u, uow.RepositoryName(repoargs.AccountRepoName))
	if accErr != nil {
		return nil, accErr //nolint:wrapcheck
	}
	ledgerRepo, ledgerErr := uow.GetRepositoryAs[domain.LedgerRepository](u, uow.RepositoryName(repoargs.LedgerRepoName))
	if ledgerErr != nil {
		return nil, ledgerErr //nolint:wrapcheck
	}
	return &WalletService{
		uow:         u,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		engine:      engine,
		gate:        gate,
	}, nil
}

type SendMoneyArgs struct {
	FromAccountID        int64
	RecipientPhoneNumber string
	Amount               decimal.Decimal
	IdempotencyKey       string
	Password             string
}

// SendMoney перевод между кошельками. Платежный пароль сверяется до обращения
// к движку, получатель разрешается по номеру телефона.
func (s *WalletService) SendMoney(ctx context.Context, args SendMoneyArgs) (*domain.Transfer, error) {
	if verifyErr := s.gate.Reverify(ctx, args.FromAccountID, args.Password); verifyErr != nil {
		return nil, verifyErr //nolint:wrapcheck
	}

	recipient, findErr := s.accountRepo.FindByPhoneNumber(ctx, args.RecipientPhoneNumber)
	if findErr != nil {
		if errors.Is(findErr, domain.ErrRecordNotFound) {
			return nil, domain.ErrUnknownAccount
		}
		return nil, fmt.Errorf("resolving recipient %s: %w", args.RecipientPhoneNumber, findErr)
	}

	transfer, execErr := s.engine.Execute(ctx, ExecuteTransferArgs{
		FromAccountID:  args.FromAccountID,
		ToAccountID:    recipient.ID,
		Amount:         args.Amount,
		IdempotencyKey: args.IdempotencyKey,
	})
	if execErr != nil {
		return nil, execErr //nolint:wrapcheck
	}
	return transfer, nil
}

// Balance текущий баланс — свертка журнала. Вне транзакции значение носит
// информационный характер: авторитетная проверка выполняется движком под блокировкой.
func (s *WalletService) Balance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	if _, err := s.accountRepo.FindByID(ctx, accountID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return decimal.Zero, domain.ErrUnknownAccount
		}
		return decimal.Zero, fmt.Errorf("checking account %d: %w", accountID, err)
	}
	balance, err := s.ledgerRepo.Balance(ctx, accountID)
	if err != nil {
		return decimal.Zero, err //nolint:wrapcheck
	}
	return balance, nil
}

// Statement записи журнала счета, новые первыми.
func (s *WalletService) Statement(ctx context.Context, accountID int64) ([]domain.LedgerEntry, error) {
	entries, err := s.ledgerRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return entries, nil
}
