package service

import (
	"context"
	"time"

	"github.com/fsdevblog/canteen-wallet/internal/domain"
	"github.com/fsdevblog/canteen-wallet/internal/metrics"
	"github.com/fsdevblog/canteen-wallet/internal/repository/repoargs"
	"github.com/fsdevblog/canteen-wallet/pkg/uow"
	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const (
	defaultSweepInterval       = 30 * time.Second
	defaultSweepLimit     uint = 100
)

// Reconciler периодический механизм самовосстановления: находит committed
// переводы, чей заказ все еще числится неоплаченным (обрыв между фиксацией
// перевода и пометкой заказа), и дочиняет пометку. Денег не двигает.
// Попутно вычищает протухшие записи идемпотентности.
type Reconciler struct {
	uow      uow.UOW
	l        *logrus.Entry
	interval time.Duration
	limit    uint
}

func NewReconciler(u uow.UOW, l *logrus.Logger) *Reconciler {
	return &Reconciler{
		uow: u,
		l: l.WithFields(logrus.Fields{
			"component": "settlement",
			"module":    "reconciler",
		}),
		interval: defaultSweepInterval,
		limit:    defaultSweepLimit,
	}
}

// SetInterval переопределяет период между проходами.
func (r *Reconciler) SetInterval(interval time.Duration) *Reconciler {
	r.interval = interval
	return r
}

// SetLimit переопределяет кол-во переводов, обрабатываемых за один проход.
func (r *Reconciler) SetLimit(limit uint) *Reconciler {
	r.limit = limit
	return r
}

// Run запускает циклическую обработку до отмены контекста.
func (r *Reconciler) Run(ctx context.Context) {
	r.l.WithFields(logrus.Fields{
		"interval": r.interval.String(),
		"limit":    r.limit,
	}).Info("Starting")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.l.Info("Got stop signal, exiting...")
			return
		case <-ticker.C:
			repaired, err := r.Sweep(ctx)
			if err != nil {
				r.l.WithError(err).Error("sweep error")
				continue
			}
			if repaired > 0 {
				r.l.WithField("repaired", repaired).Warn("repaired interrupted settlements")
			}
		}
	}
}

// Sweep один проход: пометка заказов по зафиксированным переводам и чистка
// реестра идемпотентности. Возвращает кол-во дочиненных заказов.
func (r *Reconciler) Sweep(ctx context.Context) (int, error) {
	timer := prometheus.NewTimer(metrics.ReconciliationSweepDuration)
	defer timer.ObserveDuration()

	transferRepo, trErr := uow.GetRepositoryAs[domain.TransferRepository](
		r.uow, uow.RepositoryName(repoargs.TransferRepoName))
	if trErr != nil {
		return 0, pkgerrors.Wrap(trErr, "reconciler: transfer repo")
	}
	orderRepo, orErr := uow.GetRepositoryAs[domain.OrderRepository](
		r.uow, uow.RepositoryName(repoargs.OrderRepoName))
	if orErr != nil {
		return 0, pkgerrors.Wrap(orErr, "reconciler: order repo")
	}

	transfers, findErr := transferRepo.FindCommittedUnsettled(ctx, r.limit)
	if findErr != nil {
		return 0, pkgerrors.Wrap(findErr, "reconciler: finding unsettled transfers")
	}

	var repaired int
	for _, transfer := range transfers {
		if transfer.OrderID == nil {
			// FindCommittedUnsettled отдает только переводы с заказом, но guard не помешает.
			continue
		}
		if _, markErr := orderRepo.MarkPaid(ctx, *transfer.OrderID, transfer.ID); markErr != nil {
			// Конкурентный повтор payOrder мог успеть первым — это не ошибка.
			if pkgerrors.Is(markErr, domain.ErrRecordNotFound) {
				continue
			}
			return repaired, pkgerrors.Wrapf(markErr, "reconciler: marking order %d paid", *transfer.OrderID)
		}
		repaired++
		metrics.ReconciliationRepairedTotal.Inc()
		r.l.WithFields(logrus.Fields{
			"orderID":    *transfer.OrderID,
			"transferID": transfer.ID.String(),
		}).Info("settled orphaned transfer")
	}

	if purgeErr := r.purgeExpiredKeys(ctx); purgeErr != nil {
		return repaired, purgeErr
	}
	return repaired, nil
}

func (r *Reconciler) purgeExpiredKeys(ctx context.Context) error {
	idemRepo, err := uow.GetRepositoryAs[domain.IdempotencyRepository](
		r.uow, uow.RepositoryName(repoargs.IdempotencyRepoName))
	if err != nil {
		return pkgerrors.Wrap(err, "reconciler: idempotency repo")
	}
	purged, purgeErr := idemRepo.PurgeExpired(ctx)
	if purgeErr != nil {
		return pkgerrors.Wrap(purgeErr, "reconciler: purging idempotency records")
	}
	if purged > 0 {
		r.l.WithField("purged", purged).Debug("purged expired idempotency records")
	}
	return nil
}
