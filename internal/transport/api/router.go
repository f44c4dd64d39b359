package api

import (
	"net/http"
	"time"

	"github.com/fsdevblog/canteen-wallet/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup              = "/api"
	WalletTransferRoute     = "/wallet/transfer"
	WalletBalanceRoute      = "/wallet/balance"
	WalletTransactionsRoute = "/wallet/transactions"
	OrdersRoute             = "/orders"
	PayOrderRoute           = "/orders/:orderID/pay"
)

type RouterArgs struct {
	Logger            *logrus.Logger
	WalletService     WalletServicer
	OrderService      OrderServicer
	SettlementService SettlementServicer
	JWTSecretKey      []byte
}

func New(args RouterArgs) *gin.Engine {
	if err := registerValidators(); err != nil {
		panic(err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	walletHandler := NewWalletHandler(args.WalletService)
	ordersHandler := NewOrdersHandler(args.OrderService, args.SettlementService)

	api := r.Group(RouteGroup)
	api.Use(middlewares.AuthRequired(args.JWTSecretKey))
	// все роуты группы требуют авторизованного принципала.
	api.POST(WalletTransferRoute, walletHandler.SendMoney)
	api.GET(WalletBalanceRoute, walletHandler.Balance)
	api.GET(WalletTransactionsRoute, walletHandler.Statement)

	api.POST(OrdersRoute, ordersHandler.Create)
	api.GET(OrdersRoute, ordersHandler.Index)
	api.POST(PayOrderRoute, ordersHandler.Pay)

	return r
}
