package domain

import "github.com/fsdevblog/canteen-wallet/internal/repository/repoargs"

type TransferStatusType string

const (
	TransferStatusPending   TransferStatusType = "pending"
	TransferStatusCommitted TransferStatusType = "committed"
	TransferStatusRejected  TransferStatusType = "rejected"
)

type PaymentStatusType string

const (
	PaymentStatusUnpaid PaymentStatusType = "unpaid"
	PaymentStatusPaid   PaymentStatusType = "paid"
)

type DirectionType string

const (
	// DirectionDebit списание со счета.
	DirectionDebit DirectionType = "debit"
	// DirectionCredit зачисление на счет.
	DirectionCredit DirectionType = "credit"
)

// ReservationState результат атомарного резервирования ключа идемпотентности.
// Определение живет в repoargs, чтобы разорвать цикл импортов domain <-> repoargs.
type ReservationState = repoargs.ReservationState

const (
	// ReservationFresh ключ свободен, вызывающий обязан выполнить операцию
	// и зафиксировать результат.
	ReservationFresh = repoargs.ReservationFresh
	// ReservationDuplicate ключ занят тем же запросом, нужно вернуть сохраненный результат.
	ReservationDuplicate = repoargs.ReservationDuplicate
	// ReservationConflict тот же ключ с другим отпечатком запроса.
	ReservationConflict = repoargs.ReservationConflict
)
