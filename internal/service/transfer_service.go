package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/canteen-wallet/internal/domain"
	"github.com/fsdevblog/canteen-wallet/internal/metrics"
	"github.com/fsdevblog/canteen-wallet/internal/repository/repoargs"
	"github.com/fsdevblog/canteen-wallet/pkg/uow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultIdempotencyRetention окно хранения записей идемпотентности. После
// истечения повтор с тем же ключом выполняется заново — осознанный компромисс
// между ростом хранилища и длительностью подавления дублей.
const DefaultIdempotencyRetention = 24 * time.Hour

type ExecuteTransferArgs struct {
	FromAccountID  int64
	ToAccountID    int64
	Amount         decimal.Decimal
	IdempotencyKey string
	// OrderID связывает перевод с оплачиваемым заказом. Для обычных переводов nil.
	OrderID *int64
}

// TransferService движок переводов: исполняет движение средств между двумя
// счетами как единую атомарную операцию — резервирование ключа идемпотентности,
// проверки, парная запись в журнал и фиксация статуса происходят в одной
// транзакции UnitOfWork.
type TransferService struct {
	uow       uow.UOW
	retention time.Duration
}

func NewTransferService(u uow.UOW) *TransferService {
	return &TransferService{
		uow:       u,
		retention: DefaultIdempotencyRetention,
	}
}

// SetRetention переопределяет окно хранения записей идемпотентности.
func (s *TransferService) SetRetention(retention time.Duration) *TransferService {
	s.retention = retention
	return s
}

// Execute выполняет перевод не более одного раза на ключ идемпотентности.
//
// Алгоритм работы:
//  1. Резервирует ключ. Duplicate — возвращает сохраненный результат (включая
//     сохраненный отказ) без новых записей в журнале. Conflict — ErrIdempotencyKeyReuse.
//  2. Дешевые проверки до обращения к журналу: amount > 0, from != to,
//     оба счета существуют.
//  3. Блокирует счета в детерминированном порядке и перечитывает баланс
//     отправителя из журнала — финальная авторитетная проверка.
//  4. Вставляет пару записей журнала и фиксирует перевод committed.
//  5. Любой терминальный отказ фиксируется как результат ключа идемпотентности,
//     чтобы повтор после сбоя получил детерминированный ответ.
func (s *TransferService) Execute(ctx context.Context, args ExecuteTransferArgs) (*domain.Transfer, error) {
	fingerprint := transferFingerprint(args)

	var transfer *domain.Transfer
	// терминальный бизнес-отказ: транзакция при нем фиксируется, ошибка уходит вызывающему.
	var execErr error
	var duplicate bool

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		idemRepo, err := uow.GetAs[domain.IdempotencyRepository](tx, uow.RepositoryName(repoargs.IdempotencyRepoName))
		if err != nil {
			return err //nolint:wrapcheck
		}

		reservation, reserveErr := idemRepo.Reserve(c, repoargs.IdempotencyReserve{
			Key:         args.IdempotencyKey,
			Fingerprint: fingerprint,
			ExpiresAt:   time.Now().Add(s.retention),
		})
		if reserveErr != nil {
			return reserveErr //nolint:wrapcheck
		}

		switch reservation.State {
		case domain.ReservationConflict:
			return domain.ErrIdempotencyKeyReuse
		case domain.ReservationDuplicate:
			duplicate = true
			transfer, execErr = s.replayStored(c, tx, reservation.Record)
			return nil
		case domain.ReservationFresh:
			transfer, execErr = s.executeFresh(c, tx, idemRepo, args)
			return nil
		default:
			return fmt.Errorf("%w: unexpected reservation state %q", domain.ErrUnknown, reservation.State)
		}
	})

	if txErr != nil {
		if errors.Is(txErr, domain.ErrIdempotencyKeyReuse) {
			metrics.TransfersTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
			return nil, txErr
		}
		return nil, fmt.Errorf("executing transfer: %w", txErr)
	}
	s.observeOutcome(execErr, duplicate)
	if execErr != nil {
		return nil, execErr
	}
	return transfer, nil
}

// executeFresh выполняет перевод по впервые увиденному ключу. Возвращаемая
// бизнес-ошибка не откатывает транзакцию: отказ должен быть зафиксирован.
func (s *TransferService) executeFresh(
	ctx context.Context,
	tx uow.TX,
	idemRepo domain.IdempotencyRepository,
	args ExecuteTransferArgs,
) (*domain.Transfer, error) {
	if !args.Amount.IsPositive() {
		return nil, s.rejectWithoutTransfer(ctx, idemRepo, args.IdempotencyKey, domain.ErrNonPositiveAmount)
	}
	if args.FromAccountID == args.ToAccountID {
		return nil, s.rejectWithoutTransfer(ctx, idemRepo, args.IdempotencyKey, domain.ErrSelfTransfer)
	}

	accountRepo, err := uow.GetAs[domain.AccountRepository](tx, uow.RepositoryName(repoargs.AccountRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	for _, accountID := range []int64{args.FromAccountID, args.ToAccountID} {
		if _, findErr := accountRepo.FindByID(ctx, accountID); findErr != nil {
			if errors.Is(findErr, domain.ErrRecordNotFound) {
				return nil, s.rejectWithoutTransfer(ctx, idemRepo, args.IdempotencyKey, domain.ErrUnknownAccount)
			}
			return nil, findErr
		}
	}

	ledgerRepo, err := uow.GetAs[domain.LedgerRepository](tx, uow.RepositoryName(repoargs.LedgerRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	transferRepo, err := uow.GetAs[domain.TransferRepository](tx, uow.RepositoryName(repoargs.TransferRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	transfer, createErr := transferRepo.Create(ctx, repoargs.TransferCreate{
		ID:             uuid.New(),
		FromAccountID:  args.FromAccountID,
		ToAccountID:    args.ToAccountID,
		Amount:         args.Amount,
		IdempotencyKey: args.IdempotencyKey,
		OrderID:        args.OrderID,
	})
	if createErr != nil {
		return nil, createErr
	}

	if lockErr := ledgerRepo.LockAccounts(ctx, []int64{args.FromAccountID, args.ToAccountID}); lockErr != nil {
		return nil, lockErr
	}

	// Авторитетная проверка: свертка журнала под блокировкой строки счета,
	// а не показание кэша баланса.
	balance, balanceErr := ledgerRepo.Balance(ctx, args.FromAccountID)
	if balanceErr != nil {
		return nil, balanceErr
	}
	if balance.LessThan(args.Amount) {
		rejected, rejectErr := transferRepo.UpdateStatus(ctx, transfer.ID, domain.TransferStatusRejected)
		if rejectErr != nil {
			return nil, rejectErr
		}
		kind, _ := domain.ErrorKind(domain.ErrInsufficientFunds)
		if completeErr := idemRepo.Complete(ctx, repoargs.IdempotencyComplete{
			Key:        args.IdempotencyKey,
			TransferID: &rejected.ID,
			ErrorKind:  &kind,
		}); completeErr != nil {
			return nil, completeErr
		}
		return rejected, domain.ErrInsufficientFunds
	}

	if _, appendErr := ledgerRepo.AppendPair(ctx, repoargs.LedgerAppend{
		TransferID:    transfer.ID,
		FromAccountID: args.FromAccountID,
		ToAccountID:   args.ToAccountID,
		Amount:        args.Amount,
	}); appendErr != nil {
		return nil, appendErr
	}

	committed, commitErr := transferRepo.UpdateStatus(ctx, transfer.ID, domain.TransferStatusCommitted)
	if commitErr != nil {
		return nil, commitErr
	}
	if completeErr := idemRepo.Complete(ctx, repoargs.IdempotencyComplete{
		Key:        args.IdempotencyKey,
		TransferID: &committed.ID,
	}); completeErr != nil {
		return nil, completeErr
	}
	return committed, nil
}

// rejectWithoutTransfer фиксирует отказ валидации, для которого строка перевода
// не создается (сам отказ нарушил бы CHECK-ограничения таблицы transfers).
func (s *TransferService) rejectWithoutTransfer(
	ctx context.Context,
	idemRepo domain.IdempotencyRepository,
	key string,
	cause error,
) error {
	kind, ok := domain.ErrorKind(cause)
	if !ok {
		return fmt.Errorf("%w: no stored kind for %s", domain.ErrUnknown, cause.Error())
	}
	if completeErr := idemRepo.Complete(ctx, repoargs.IdempotencyComplete{
		Key:       key,
		ErrorKind: &kind,
	}); completeErr != nil {
		return completeErr
	}
	return cause
}

// replayStored воспроизводит сохраненный результат ключа без повторного исполнения.
func (s *TransferService) replayStored(
	ctx context.Context,
	tx uow.TX,
	record *domain.IdempotencyRecord,
) (*domain.Transfer, error) {
	var transfer *domain.Transfer
	if record.TransferID != nil {
		transferRepo, err := uow.GetAs[domain.TransferRepository](tx, uow.RepositoryName(repoargs.TransferRepoName))
		if err != nil {
			return nil, err //nolint:wrapcheck
		}
		stored, findErr := transferRepo.FindByID(ctx, *record.TransferID)
		if findErr != nil {
			return nil, findErr
		}
		transfer = stored
	}
	if record.ErrorKind != nil {
		return transfer, domain.ErrorByKind(*record.ErrorKind)
	}
	return transfer, nil
}

func (s *TransferService) observeOutcome(execErr error, duplicate bool) {
	switch {
	case duplicate:
		metrics.TransfersTotal.WithLabelValues(metrics.OutcomeDuplicate).Inc()
	case execErr == nil:
		metrics.TransfersTotal.WithLabelValues(metrics.OutcomeCommitted).Inc()
	default:
		metrics.TransfersTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		if kind, ok := domain.ErrorKind(execErr); ok {
			metrics.TransferRejectionsTotal.WithLabelValues(kind).Inc()
		}
	}
}

func transferFingerprint(args ExecuteTransferArgs) string {
	orderPart := ""
	if args.OrderID != nil {
		orderPart = fmt.Sprintf("order:%d", *args.OrderID)
	}
	return requestFingerprint(
		fmt.Sprintf("%d", args.FromAccountID),
		fmt.Sprintf("%d", args.ToAccountID),
		args.Amount.String(),
		orderPart,
	)
}
