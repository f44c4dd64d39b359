package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsdevblog/canteen-wallet/internal/domain"
	"github.com/fsdevblog/canteen-wallet/internal/metrics"
	"github.com/fsdevblog/canteen-wallet/internal/repository/repoargs"
	"github.com/fsdevblog/canteen-wallet/pkg/uow"
)

// SettlementService координатор расчетов: оплата заказа как один серверный
// workflow вместо клиентской последовательности независимых вызовов
// (проверить пароль -> перевести -> пометить заказ), которую можно бросить
// на полпути.
type SettlementService struct {
	uow       uow.UOW
	orderRepo domain.OrderRepository
	engine    TransferExecutor
	gate      CredentialVerifier
}

func NewSettlementService(u uow.UOW, engine TransferExecutor, gate CredentialVerifier) (*SettlementService, error) {
	orderRepo, err := uow.GetRepositoryAs[domain.OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &SettlementService{
		uow:       u,
		orderRepo: orderRepo,
		engine:    engine,
		gate:      gate,
	}, nil
}

type PayOrderArgs struct {
	OrderID            int64
	PrincipalAccountID int64
	Password           string
	IdempotencyKey     string
}

// PayOrder оплачивает заказ. Заказ помечается оплаченным если и только если
// соответствующий перевод зафиксирован в журнале, ровно один раз.
//
// Алгоритм работы:
//  1. Повторный вызов для уже оплаченного заказа — no-op успех: клиентский
//     повтор после потерянного ответа не должен выглядеть ошибкой.
//  2. Платить может только покупатель, и только подтвердив платежный пароль.
//  3. Движок переводов вызывается с ключом идемпотентности клиента: повтор
//     после обрыва между фиксацией перевода и пометкой заказа вернет уже
//     зафиксированный перевод (Duplicate) вместо второго списания, после чего
//     останется только пометить заказ.
//  4. Отказ перевода оставляет заказ неоплаченным, ошибка уходит без изменений:
//     статус заказа никогда не меняется раньше зафиксированного перевода.
func (s *SettlementService) PayOrder(ctx context.Context, args PayOrderArgs) (*domain.Order, error) {
	order, findErr := s.orderRepo.FindByID(ctx, args.OrderID)
	if findErr != nil {
		if errors.Is(findErr, domain.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("paying order %d: %w", args.OrderID, findErr)
	}
	if order.PaymentStatus == domain.PaymentStatusPaid {
		metrics.SettlementsTotal.WithLabelValues(metrics.OutcomeNoop).Inc()
		return order, nil
	}
	if order.BuyerAccountID != args.PrincipalAccountID {
		return nil, domain.ErrUnauthorized
	}

	if verifyErr := s.gate.Reverify(ctx, args.PrincipalAccountID, args.Password); verifyErr != nil {
		return nil, verifyErr //nolint:wrapcheck
	}

	transfer, execErr := s.engine.Execute(ctx, ExecuteTransferArgs{
		FromAccountID:  order.BuyerAccountID,
		ToAccountID:    order.VendorAccountID,
		Amount:         order.TotalPrice,
		IdempotencyKey: args.IdempotencyKey,
		OrderID:        &order.ID,
	})
	if execErr != nil {
		metrics.SettlementsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, execErr //nolint:wrapcheck
	}

	paid, markErr := s.orderRepo.MarkPaid(ctx, order.ID, transfer.ID)
	if markErr != nil {
		// Guard-условие не нашло строку: заказ уже пометил конкурентный повтор
		// либо reconciliation sweep. Перечитываем и возвращаем фактическое состояние.
		if errors.Is(markErr, domain.ErrRecordNotFound) {
			current, reReadErr := s.orderRepo.FindByID(ctx, order.ID)
			if reReadErr != nil {
				return nil, fmt.Errorf("re-reading order %d after settle race: %w", order.ID, reReadErr)
			}
			if current.PaymentStatus == domain.PaymentStatusPaid {
				metrics.SettlementsTotal.WithLabelValues(metrics.OutcomeNoop).Inc()
				return current, nil
			}
			return nil, fmt.Errorf("marking order %d paid: %w", order.ID, markErr)
		}
		return nil, fmt.Errorf("marking order %d paid: %w", order.ID, markErr)
	}

	metrics.SettlementsTotal.WithLabelValues(metrics.OutcomePaid).Inc()
	return paid, nil
}
