package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fsdevblog/canteen-wallet/internal/domain"
	"github.com/fsdevblog/canteen-wallet/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type OrdersHandler struct {
	orderSvs      OrderServicer
	settlementSvs SettlementServicer
}

func NewOrdersHandler(orderSvs OrderServicer, settlementSvs SettlementServicer) *OrdersHandler {
	return &OrdersHandler{
		orderSvs:      orderSvs,
		settlementSvs: settlementSvs,
	}
}

type OrderCreateParams struct {
	VendorPhoneNumber string          `binding:"required,phone_number" json:"vendor_phone_number"`
	FoodName          string          `binding:"required,max=255" json:"food_name"`
	Quantity          int32           `binding:"required,gt=0"    json:"quantity"`
	TotalPrice        decimal.Decimal `binding:"required"         json:"total_price"`
}

type OrderResponse struct {
	ID               int64   `json:"id"`
	FoodName         string  `json:"food_name"`
	Quantity         int32   `json:"quantity"`
	TotalPrice       float64 `json:"total_price"`
	PaymentStatus    string  `json:"payment_status"`
	LinkedTransferID string  `json:"linked_transfer_id,omitempty"`
	CreatedAt        string  `json:"created_at"`
}

func orderResponse(order *domain.Order) *OrderResponse {
	resp := &OrderResponse{
		ID:            order.ID,
		FoodName:      order.FoodName,
		Quantity:      order.Quantity,
		TotalPrice:    order.TotalPrice.InexactFloat64(),
		PaymentStatus: string(order.PaymentStatus),
		CreatedAt:     order.CreatedAt.Format(time.RFC3339),
	}
	if order.LinkedTransferID != nil {
		resp.LinkedTransferID = order.LinkedTransferID.String()
	}
	return resp
}

// Create POST RouteGroup + OrdersRoute. Создает неоплаченный заказ от имени
// текущего счета.
func (o *OrdersHandler) Create(c *gin.Context) {
	currentAccountID := getAccountIDFromContext(c)

	var params OrderCreateParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, createErr := o.orderSvs.Create(reqCtx, currentAccountID, service.CreateOrderArgs{
		VendorPhoneNumber: params.VendorPhoneNumber,
		FoodName:          params.FoodName,
		Quantity:          params.Quantity,
		TotalPrice:        params.TotalPrice,
	})
	if createErr != nil {
		abortWithMoneyError(c, createErr)
		return
	}

	c.JSON(http.StatusCreated, orderResponse(order))
}

// Index GET RouteGroup + OrdersRoute. Заказы текущего счета как покупателя
// или продавца.
func (o *OrdersHandler) Index(c *gin.Context) {
	currentAccountID := getAccountIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	orders, err := o.orderSvs.GetByAccountID(reqCtx, currentAccountID)
	if err != nil {
		abortWithMoneyError(c, err)
		return
	}

	if len(orders) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	response := make([]*OrderResponse, len(orders))
	for i := range orders {
		response[i] = orderResponse(&orders[i])
	}

	c.JSON(http.StatusOK, response)
}

type PayOrderParams struct {
	IdempotencyKey string `binding:"required,max=128" json:"idempotency_key"`
	Password       string `binding:"required,max=255" json:"password"`
}

// Pay POST RouteGroup + OrdersRoute + "/:orderID/pay". Оплата заказа одним
// серверным workflow. Повтор с тем же ключом идемпотентности безопасен:
// уже оплаченный заказ возвращается как успех без второго списания.
func (o *OrdersHandler) Pay(c *gin.Context) {
	currentAccountID := getAccountIDFromContext(c)

	orderID, parseErr := strconv.ParseInt(c.Param("orderID"), 10, 64)
	if parseErr != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	var params PayOrderParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, payErr := o.settlementSvs.PayOrder(reqCtx, service.PayOrderArgs{
		OrderID:            orderID,
		PrincipalAccountID: currentAccountID,
		Password:           params.Password,
		IdempotencyKey:     params.IdempotencyKey,
	})
	if payErr != nil {
		abortWithMoneyError(c, payErr)
		return
	}

	c.JSON(http.StatusOK, orderResponse(order))
}
