package repoargs

import (
	"time"

	"github.com/google/uuid"
)

// ReservationState результат атомарного резервирования ключа идемпотентности.
type ReservationState string

const (
	// ReservationFresh ключ свободен, вызывающий обязан выполнить операцию
	// и зафиксировать результат.
	ReservationFresh ReservationState = "fresh"
	// ReservationDuplicate ключ занят тем же запросом, нужно вернуть сохраненный результат.
	ReservationDuplicate ReservationState = "duplicate"
	// ReservationConflict тот же ключ с другим отпечатком запроса.
	ReservationConflict ReservationState = "conflict"
)

// IdempotencyRecord результат операции по ключу идемпотентности. Повторный запрос
// с тем же ключом и отпечатком возвращает сохраненный результат без побочных эффектов.
// После ExpiresAt ключ считается свободным — осознанный компромисс между ростом
// хранилища и гарантией подавления дублей.
type IdempotencyRecord struct {
	Key                string
	CreatedAt          time.Time
	ExpiresAt          time.Time
	RequestFingerprint string
	TransferID         *uuid.UUID
	ErrorKind          *string
}

type IdempotencyReserve struct {
	Key         string
	Fingerprint string
	ExpiresAt   time.Time
}

// Reservation исход атомарного test-and-set по ключу. Record заполнен
// для состояний Duplicate и Conflict.
type Reservation struct {
	State  ReservationState
	Record *IdempotencyRecord
}

type IdempotencyComplete struct {
	Key        string
	TransferID *uuid.UUID
	ErrorKind  *string
}
