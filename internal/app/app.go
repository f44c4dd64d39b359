package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fsdevblog/canteen-wallet/internal/config"
	"github.com/fsdevblog/canteen-wallet/internal/repository/pgrepo"
	"github.com/fsdevblog/canteen-wallet/internal/repository/repoargs"
	"github.com/fsdevblog/canteen-wallet/internal/service"
	"github.com/fsdevblog/canteen-wallet/internal/transport/api"
	"github.com/fsdevblog/canteen-wallet/pkg/uow"
	"github.com/sirupsen/logrus"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Infof("Starting app with config: %+v", a.Config)
	conn, connErr := pgrepo.Connect(notifyCtx, a.Config.MigrationsDir, a.Config.DatabaseDSN, a.Logger)
	if connErr != nil {
		return fmt.Errorf("app run: %s", connErr.Error())
	}
	defer conn.Close()

	unitOfWork, uowErr := initUOW(conn)
	if uowErr != nil {
		return fmt.Errorf("app run: %s", uowErr.Error())
	}

	services, sErr := service.Factory(unitOfWork)
	if sErr != nil {
		return fmt.Errorf("app run: %s", sErr.Error())
	}
	services.TransferService.SetRetention(a.Config.IdempotencyRetention)
	services.CredentialGate.
		SetWindow(a.Config.GateWindow).
		SetMaxFailures(a.Config.GateMaxFailures)

	router := api.New(api.RouterArgs{
		Logger:            a.Logger,
		WalletService:     services.WalletService,
		OrderService:      services.OrderService,
		SettlementService: services.SettlementService,
		JWTSecretKey:      []byte(a.Config.JWTUserSecret),
	})

	errChan := make(chan error, 1)

	go func() {
		if runErr := router.Run(a.Config.RunAddress); runErr != nil {
			errChan <- runErr
		}
	}()

	reconciler := service.NewReconciler(unitOfWork, a.Logger).
		SetInterval(a.Config.ReconcileInterval)

	go reconciler.Run(notifyCtx)

	select {
	case <-notifyCtx.Done():
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return err
	}
}

func initUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn)

	factories := map[repoargs.RepositoryName]uow.RepositoryFactory{
		repoargs.AccountRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewAccountRepository(dbtx)
		},
		repoargs.LedgerRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewLedgerRepository(dbtx)
		},
		repoargs.TransferRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewTransferRepository(dbtx)
		},
		repoargs.OrderRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewOrderRepository(dbtx)
		},
		repoargs.IdempotencyRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewIdempotencyRepository(dbtx)
		},
		repoargs.CredentialAttemptRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewCredentialAttemptRepository(dbtx)
		},
	}

	for name, factory := range factories {
		if regErr := unitOfWork.Register(uow.RepositoryName(name), factory); regErr != nil {
			return nil, fmt.Errorf("init UOW: %s", regErr.Error())
		}
	}

	return unitOfWork, nil
}
