package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Каждый терминальный вид отказа обязан восстанавливаться из реестра
// идемпотентности в ту же ошибку, иначе повтор запроса получит другой ответ.
func TestErrorKindRoundTrip(t *testing.T) {
	terminal := []error{
		ErrInsufficientFunds,
		ErrSelfTransfer,
		ErrUnknownAccount,
		ErrNonPositiveAmount,
	}

	for _, cause := range terminal {
		kind, ok := ErrorKind(cause)
		require.True(t, ok, cause.Error())
		require.NotEmpty(t, kind)

		restored := ErrorByKind(kind)
		assert.ErrorIs(t, restored, cause)
	}
}

func TestErrorKind_NonTerminal(t *testing.T) {
	for _, cause := range []error{ErrUnknown, ErrIdempotencyKeyReuse, errors.New("network down")} {
		_, ok := ErrorKind(cause)
		assert.False(t, ok, cause.Error())
	}
}

func TestErrorByKind_UnknownKind(t *testing.T) {
	err := ErrorByKind("no_such_kind")
	assert.ErrorIs(t, err, ErrUnknown)
}
