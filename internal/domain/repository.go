package domain

import (
	"context"
	"time"

	"github.com/fsdevblog/canteen-wallet/internal/repository/repoargs"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=repository.go -destination=mocks/mocks.go -package=mocks

type AccountRepository interface {
	CreateAccount(ctx context.Context, args repoargs.AccountCreate) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)
	FindByPhoneNumber(ctx context.Context, phoneNumber string) (*Account, error)
}

// LedgerRepository владеет неизменяемым журналом и таблицей переводов.
// Методы предполагают вызов внутри транзакции UnitOfWork: блокировки и проверка
// баланса имеют смысл только в общих транзакционных границах с парной вставкой.
type LedgerRepository interface {
	// LockAccounts берет построчные блокировки счетов в порядке возрастания id,
	// сериализуя конкурентные списания с одного счета и исключая deadlock.
	LockAccounts(ctx context.Context, accountIDs []int64) error
	// AppendPair атомарно вставляет пару записей debit/credit одного перевода.
	AppendPair(ctx context.Context, args repoargs.LedgerAppend) ([]LedgerEntry, error)
	// Balance свертка журнала: сумма credit минус сумма debit.
	Balance(ctx context.Context, accountID int64) (decimal.Decimal, error)
	GetByAccountID(ctx context.Context, accountID int64) ([]LedgerEntry, error)
}

type TransferRepository interface {
	Create(ctx context.Context, args repoargs.TransferCreate) (*Transfer, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status TransferStatusType) (*Transfer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Transfer, error)
	// FindCommittedUnsettled возвращает committed переводы, привязанные к заказам,
	// которые все еще числятся неоплаченными. Источник работы для reconciliation sweep.
	FindCommittedUnsettled(ctx context.Context, limit uint) ([]Transfer, error)
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, args repoargs.OrderCreate) (*Order, error)
	FindByID(ctx context.Context, id int64) (*Order, error)
	GetByAccountID(ctx context.Context, accountID int64) ([]Order, error)
	// MarkPaid переводит заказ unpaid -> paid и записывает linked_transfer_id.
	// Guard-условие по статусу в самом запросе: если заказ уже оплачен,
	// вернется ErrRecordNotFound и ни одна строка не изменится.
	MarkPaid(ctx context.Context, orderID int64, transferID uuid.UUID) (*Order, error)
}

type IdempotencyRepository interface {
	// Reserve атомарный test-and-set: два конкурентных запроса с одним ключом
	// не могут оба увидеть Fresh. Протухшие записи считаются свободными.
	Reserve(ctx context.Context, args repoargs.IdempotencyReserve) (*repoargs.Reservation, error)
	Complete(ctx context.Context, args repoargs.IdempotencyComplete) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type CredentialAttemptRepository interface {
	RecordAttempt(ctx context.Context, accountID int64, success bool) error
	CountRecentFailures(ctx context.Context, accountID int64, since time.Time) (int64, error)
}
