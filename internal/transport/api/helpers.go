package api

import (
	"errors"
	"net/http"

	"github.com/fsdevblog/canteen-wallet/internal/domain"
	"github.com/fsdevblog/canteen-wallet/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
)

func getAccountIDFromContext(c *gin.Context) int64 {
	return c.GetInt64(middlewares.CurrentAccountIDKey)
}

// abortWithMoneyError транслирует ошибки денежного контура в http статусы.
// Неизвестные ошибки считаются приватными (детали в лог, наружу — 500).
func abortWithMoneyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		c.AbortWithStatus(http.StatusPaymentRequired)
	case errors.Is(err, domain.ErrSelfTransfer),
		errors.Is(err, domain.ErrUnknownAccount),
		errors.Is(err, domain.ErrNonPositiveAmount):
		_ = c.Error(err)
		c.AbortWithStatus(http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrIdempotencyKeyReuse):
		c.AbortWithStatus(http.StatusConflict)
	case errors.Is(err, domain.ErrUnauthorized):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, domain.ErrTooManyAttempts):
		c.AbortWithStatus(http.StatusTooManyRequests)
	case errors.Is(err, domain.ErrOrderNotFound):
		c.AbortWithStatus(http.StatusNotFound)
	default:
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
	}
}
