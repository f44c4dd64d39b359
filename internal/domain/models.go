package domain

import (
	"time"

	"github.com/fsdevblog/canteen-wallet/internal/repository/repoargs"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Account struct {
	ID          int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PhoneNumber string
	Username    string
	// PasswordHash хранит bcrypt-хэш платежного пароля. Никогда не отдается наружу.
	PasswordHash string
}

// LedgerEntry неизменяемая запись журнала. Создается только движком переводов,
// всегда парой (debit + credit) с общим TransferID. Баланс счета — свертка
// записей журнала, отдельного изменяемого поля баланса не существует.
type LedgerEntry struct {
	ID        int64
	CreatedAt time.Time
	AccountID int64
	// TransferID пуст только у opening-balance записей, созданных сидером.
	// Все записи движка переводов ссылаются на свой перевод.
	TransferID *uuid.UUID
	Direction  DirectionType
	Amount     decimal.Decimal
}

// Transfer намерение перевести деньги. Создается в статусе pending и переходит
// ровно в один терминальный статус (committed либо rejected), после чего не меняется.
type Transfer struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
	FromAccountID  int64
	ToAccountID    int64
	Amount         decimal.Decimal
	IdempotencyKey string
	Status         TransferStatusType
	// OrderID заполнен если перевод оплачивает заказ. По этой связи
	// reconciliation sweep находит оплаченные, но не помеченные заказы.
	OrderID *int64
}

type Order struct {
	ID              int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	BuyerAccountID  int64
	VendorAccountID int64
	FoodName        string
	Quantity        int32
	TotalPrice      decimal.Decimal
	PaymentStatus   PaymentStatusType
	// LinkedTransferID заполняется одновременно с переходом unpaid -> paid
	// и ссылается на committed перевод на сумму TotalPrice.
	LinkedTransferID *uuid.UUID
}

// IdempotencyRecord результат операции по ключу идемпотентности. Повторный запрос
// с тем же ключом и отпечатком возвращает сохраненный результат без побочных эффектов.
// После ExpiresAt ключ считается свободным — осознанный компромисс между ростом
// хранилища и гарантией подавления дублей.
type IdempotencyRecord = repoargs.IdempotencyRecord

type CredentialAttempt struct {
	ID        int64
	CreatedAt time.Time
	AccountID int64
	Success   bool
}
