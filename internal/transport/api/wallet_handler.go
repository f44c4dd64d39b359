package api

import (
	"context"
	"net/http"
	"time"

	"github.com/fsdevblog/canteen-wallet/internal/domain"
	"github.com/fsdevblog/canteen-wallet/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type WalletHandler struct {
	svs WalletServicer
}

func NewWalletHandler(svs WalletServicer) *WalletHandler {
	return &WalletHandler{
		svs: svs,
	}
}

type SendMoneyParams struct {
	RecipientPhoneNumber string          `binding:"required,phone_number" json:"recipient_phone_number"`
	Amount               decimal.Decimal `binding:"required"         json:"sum"`
	IdempotencyKey       string          `binding:"required,max=128" json:"idempotency_key"`
	Password             string          `binding:"required,max=255" json:"password"`
}

type TransferResponse struct {
	ID                   string  `json:"id"`
	RecipientPhoneNumber string  `json:"recipient_phone_number,omitempty"`
	Amount               float64 `json:"sum"`
	Status               string  `json:"status"`
	CreatedAt            string  `json:"created_at"`
}

// SendMoney POST RouteGroup + WalletTransferRoute. Перевод по номеру телефона
// с повторной проверкой пароля. Ключ идемпотентности генерирует клиент —
// один ключ на одно нажатие "Confirm", повторы запроса его переиспользуют.
func (h *WalletHandler) SendMoney(c *gin.Context) {
	currentAccountID := getAccountIDFromContext(c)

	var params SendMoneyParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transfer, err := h.svs.SendMoney(reqCtx, service.SendMoneyArgs{
		FromAccountID:        currentAccountID,
		RecipientPhoneNumber: params.RecipientPhoneNumber,
		Amount:               params.Amount,
		IdempotencyKey:       params.IdempotencyKey,
		Password:             params.Password,
	})
	if err != nil {
		abortWithMoneyError(c, err)
		return
	}

	c.JSON(http.StatusOK, &TransferResponse{
		ID:                   transfer.ID.String(),
		RecipientPhoneNumber: params.RecipientPhoneNumber,
		Amount:               transfer.Amount.InexactFloat64(),
		Status:               string(transfer.Status),
		CreatedAt:            transfer.CreatedAt.Format(time.RFC3339),
	})
}

type BalanceResponse struct {
	Balance float64 `json:"balance"`
}

// Balance GET RouteGroup + WalletBalanceRoute.
func (h *WalletHandler) Balance(c *gin.Context) {
	currentAccountID := getAccountIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	balance, err := h.svs.Balance(reqCtx, currentAccountID)
	if err != nil {
		abortWithMoneyError(c, err)
		return
	}

	c.JSON(http.StatusOK, &BalanceResponse{Balance: balance.InexactFloat64()})
}

type StatementItem struct {
	Direction  domain.DirectionType `json:"direction"`
	Amount     float64              `json:"sum"`
	TransferID string               `json:"transfer_id,omitempty"`
	CreatedAt  string               `json:"processed_at"`
}

// Statement GET RouteGroup + WalletTransactionsRoute. Выписка по счету,
// новые записи первыми.
func (h *WalletHandler) Statement(c *gin.Context) {
	currentAccountID := getAccountIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	entries, err := h.svs.Statement(reqCtx, currentAccountID)
	if err != nil {
		abortWithMoneyError(c, err)
		return
	}

	if len(entries) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	response := make([]StatementItem, len(entries))
	for i, entry := range entries {
		item := StatementItem{
			Direction: entry.Direction,
			Amount:    entry.Amount.InexactFloat64(),
			CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		}
		if entry.TransferID != nil {
			item.TransferID = entry.TransferID.String()
		}
		response[i] = item
	}

	c.JSON(http.StatusOK, response)
}
