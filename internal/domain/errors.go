package domain

import (
	"errors"
	"fmt"
)

// Ошибки слоя репозитория.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrUnknown        = errors.New("unknown error")
)

// Бизнес-ошибки денежного контура. Каждый терминальный отказ движка переводов
// сохраняется в реестре идемпотентности под одним из этих видов.
var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrSelfTransfer        = errors.New("self transfer is not allowed")
	ErrUnknownAccount      = errors.New("unknown account")
	ErrNonPositiveAmount   = errors.New("amount must be positive")
	ErrIdempotencyKeyReuse = errors.New("idempotency key reuse with different request")
	ErrUnauthorized        = errors.New("credential verification failed")
	ErrTooManyAttempts     = errors.New("too many failed verification attempts")
	ErrOrderNotFound       = errors.New("order not found")
	ErrPasswordMissMatch   = errors.New("password mismatch")
)

// ErrorKind возвращает устойчивое имя вида бизнес-ошибки для записи в реестр
// идемпотентности. Для неизвестных ошибок возвращает пустую строку и false:
// такие исходы не терминальны и фиксировать их нельзя.
func ErrorKind(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds", true
	case errors.Is(err, ErrSelfTransfer):
		return "self_transfer", true
	case errors.Is(err, ErrUnknownAccount):
		return "unknown_account", true
	case errors.Is(err, ErrNonPositiveAmount):
		return "non_positive_amount", true
	default:
		return "", false
	}
}

// ErrorByKind обратное преобразование для воспроизведения сохраненного отказа
// при повторе запроса с тем же ключом идемпотентности.
func ErrorByKind(kind string) error {
	switch kind {
	case "insufficient_funds":
		return ErrInsufficientFunds
	case "self_transfer":
		return ErrSelfTransfer
	case "unknown_account":
		return ErrUnknownAccount
	case "non_positive_amount":
		return ErrNonPositiveAmount
	default:
		return fmt.Errorf("%w: stored error kind %q", ErrUnknown, kind)
	}
}
