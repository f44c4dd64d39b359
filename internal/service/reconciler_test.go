package service

import (
	"io"
	"testing"

	"github.com/fsdevblog/canteen-wallet/internal/domain"
	"github.com/fsdevblog/canteen-wallet/internal/domain/mocks"
	"github.com/fsdevblog/canteen-wallet/internal/repository/repoargs"
	"github.com/fsdevblog/canteen-wallet/pkg/uow"
	uowmocks "github.com/fsdevblog/canteen-wallet/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type ReconcilerTestSuite struct {
	suite.Suite
	mockCtrl         *gomock.Controller
	mockUOW          *uowmocks.MockUOW
	mockTransferRepo *mocks.MockTransferRepository
	mockOrderRepo    *mocks.MockOrderRepository
	mockIdemRepo     *mocks.MockIdempotencyRepository
	reconciler       *Reconciler
}

func TestReconcilerSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerTestSuite))
}

func (s *ReconcilerTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTransferRepo = mocks.NewMockTransferRepository(s.mockCtrl)
	s.mockOrderRepo = mocks.NewMockOrderRepository(s.mockCtrl)
	s.mockIdemRepo = mocks.NewMockIdempotencyRepository(s.mockCtrl)

	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.TransferRepoName)).
		Return(s.mockTransferRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.IdempotencyRepoName)).
		Return(s.mockIdemRepo, nil).AnyTimes()

	l := logrus.New()
	l.SetOutput(io.Discard)
	s.reconciler = NewReconciler(s.mockUOW, l)
}

func (s *ReconcilerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

// orphan возвращает committed перевод, привязанный к неоплаченному заказу.
func orphan(orderID int64) domain.Transfer {
	return domain.Transfer{
		ID:      uuid.New(),
		OrderID: &orderID,
		Status:  domain.TransferStatusCommitted,
	}
}

func (s *ReconcilerTestSuite) TestSweep_RepairsOrphanedSettlements() {
	first := orphan(10)
	second := orphan(20)

	s.mockTransferRepo.EXPECT().FindCommittedUnsettled(gomock.Any(), defaultSweepLimit).
		Return([]domain.Transfer{first, second}, nil)
	s.mockOrderRepo.EXPECT().MarkPaid(gomock.Any(), int64(10), first.ID).
		Return(&domain.Order{ID: 10, PaymentStatus: domain.PaymentStatusPaid}, nil)
	s.mockOrderRepo.EXPECT().MarkPaid(gomock.Any(), int64(20), second.ID).
		Return(&domain.Order{ID: 20, PaymentStatus: domain.PaymentStatusPaid}, nil)
	s.mockIdemRepo.EXPECT().PurgeExpired(gomock.Any()).Return(int64(0), nil)

	repaired, err := s.reconciler.Sweep(s.T().Context())
	s.Require().NoError(err)
	s.Equal(2, repaired)
}

func (s *ReconcilerTestSuite) TestSweep_SkipsConcurrentlySettled() {
	transfer := orphan(10)

	s.mockTransferRepo.EXPECT().FindCommittedUnsettled(gomock.Any(), defaultSweepLimit).
		Return([]domain.Transfer{transfer}, nil)
	// Конкурентный повтор оплаты успел первым: guard-условие не нашло строку.
	s.mockOrderRepo.EXPECT().MarkPaid(gomock.Any(), int64(10), transfer.ID).
		Return(nil, domain.ErrRecordNotFound)
	s.mockIdemRepo.EXPECT().PurgeExpired(gomock.Any()).Return(int64(0), nil)

	repaired, err := s.reconciler.Sweep(s.T().Context())
	s.Require().NoError(err)
	s.Zero(repaired)
}

func (s *ReconcilerTestSuite) TestSweep_NothingToRepair() {
	s.mockTransferRepo.EXPECT().FindCommittedUnsettled(gomock.Any(), defaultSweepLimit).
		Return([]domain.Transfer{}, nil)
	s.mockIdemRepo.EXPECT().PurgeExpired(gomock.Any()).Return(int64(3), nil)

	repaired, err := s.reconciler.Sweep(s.T().Context())
	s.Require().NoError(err)
	s.Zero(repaired)
}

func (s *ReconcilerTestSuite) TestSweep_CustomLimit() {
	s.reconciler.SetLimit(5)

	s.mockTransferRepo.EXPECT().FindCommittedUnsettled(gomock.Any(), uint(5)).
		Return([]domain.Transfer{}, nil)
	s.mockIdemRepo.EXPECT().PurgeExpired(gomock.Any()).Return(int64(0), nil)

	_, err := s.reconciler.Sweep(s.T().Context())
	s.Require().NoError(err)
}
