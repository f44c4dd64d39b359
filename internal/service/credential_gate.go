package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/canteen-wallet/internal/domain"
	"github.com/fsdevblog/canteen-wallet/internal/repository/repoargs"
	"github.com/fsdevblog/canteen-wallet/internal/service/psswd"
	"github.com/fsdevblog/canteen-wallet/pkg/uow"
)

const (
	DefaultGateWindow      = 15 * time.Minute
	DefaultGateMaxFailures = 5
)

// CredentialGate повторная проверка платежного пароля перед денежной операцией.
// Независим от сессионного токена. Неудачные попытки копятся в хранилище:
// превышение лимита за окно временно блокирует проверку для счета.
type CredentialGate struct {
	accountRepo domain.AccountRepository
	attemptRepo domain.CredentialAttemptRepository
	window      time.Duration
	maxFailures int64
}

func NewCredentialGate(u uow.UOW) (*CredentialGate, error) {
	accountRepo, accErr := uow.GetRepositoryAs[domain.AccountRepository](u, uow.RepositoryName(repoargs.AccountRepoName))
	if accErr != nil {
		return nil, accErr //nolint:wrapcheck
	}
	attemptRepo, attErr := uow.GetRepositoryAs[domain.CredentialAttemptRepository](
		u, uow.RepositoryName(repoargs.CredentialAttemptRepoName))
	if attErr != nil {
		return nil, attErr //nolint:wrapcheck
	}
	return &CredentialGate{
		accountRepo: accountRepo,
		attemptRepo: attemptRepo,
		window:      DefaultGateWindow,
		maxFailures: DefaultGateMaxFailures,
	}, nil
}

// SetWindow переопределяет скользящее окно подсчета неудачных попыток.
func (g *CredentialGate) SetWindow(window time.Duration) *CredentialGate {
	g.window = window
	return g
}

// SetMaxFailures переопределяет лимит неудачных попыток за окно.
func (g *CredentialGate) SetMaxFailures(limit int64) *CredentialGate {
	g.maxFailures = limit
	return g
}

// Reverify сверяет пароль счета. Возвращает ErrTooManyAttempts при превышении
// лимита неудач, ErrUnauthorized при неверном пароле. Заблокированные попытки
// не записываются и не продлевают блокировку.
func (g *CredentialGate) Reverify(ctx context.Context, accountID int64, suppliedSecret string) error {
	failures, countErr := g.attemptRepo.CountRecentFailures(ctx, accountID, time.Now().Add(-g.window))
	if countErr != nil {
		return fmt.Errorf("counting credential failures: %w", countErr)
	}
	if failures >= g.maxFailures {
		return domain.ErrTooManyAttempts
	}

	account, findErr := g.accountRepo.FindByID(ctx, accountID)
	if findErr != nil {
		if errors.Is(findErr, domain.ErrRecordNotFound) {
			return domain.ErrUnknownAccount
		}
		return fmt.Errorf("finding account %d: %w", accountID, findErr)
	}

	ok := psswd.ComparePassword(suppliedSecret, account.PasswordHash)
	if recordErr := g.attemptRepo.RecordAttempt(ctx, accountID, ok); recordErr != nil {
		return fmt.Errorf("recording credential attempt: %w", recordErr)
	}
	if !ok {
		return domain.ErrUnauthorized
	}
	return nil
}
