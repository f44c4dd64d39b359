package repoargs

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransferCreate struct {
	ID             uuid.UUID
	FromAccountID  int64
	ToAccountID    int64
	Amount         decimal.Decimal
	IdempotencyKey string
	OrderID        *int64
}

// LedgerAppend аргументы парной вставки записей журнала: debit для FromAccountID
// и credit для ToAccountID на одну и ту же сумму.
type LedgerAppend struct {
	TransferID    uuid.UUID
	FromAccountID int64
	ToAccountID   int64
	Amount        decimal.Decimal
}
