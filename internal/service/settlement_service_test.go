package service_test

import (
	"testing"

	"github.com/fsdevblog/canteen-wallet/internal/domain"
	domainmocks "github.com/fsdevblog/canteen-wallet/internal/domain/mocks"
	"github.com/fsdevblog/canteen-wallet/internal/repository/repoargs"
	"github.com/fsdevblog/canteen-wallet/internal/service"
	"github.com/fsdevblog/canteen-wallet/internal/service/mocks"
	"github.com/fsdevblog/canteen-wallet/pkg/uow"
	uowmocks "github.com/fsdevblog/canteen-wallet/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SettlementServiceTestSuite struct {
	suite.Suite
	mockCtrl      *gomock.Controller
	mockUOW       *uowmocks.MockUOW
	mockOrderRepo *domainmocks.MockOrderRepository
	mockEngine    *mocks.MockTransferExecutor
	mockGate      *mocks.MockCredentialVerifier
	service       *service.SettlementService

	buyerID  int64
	vendorID int64
	order    domain.Order
}

func TestSettlementServiceSuite(t *testing.T) {
	suite.Run(t, new(SettlementServiceTestSuite))
}

func (s *SettlementServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockOrderRepo = domainmocks.NewMockOrderRepository(s.mockCtrl)
	s.mockEngine = mocks.NewMockTransferExecutor(s.mockCtrl)
	s.mockGate = mocks.NewMockCredentialVerifier(s.mockCtrl)

	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).AnyTimes()

	settlement, err := service.NewSettlementService(s.mockUOW, s.mockEngine, s.mockGate)
	s.Require().NoError(err)
	s.service = settlement

	s.buyerID = 1
	s.vendorID = 2
	s.order = domain.Order{
		ID:              10,
		BuyerAccountID:  s.buyerID,
		VendorAccountID: s.vendorID,
		TotalPrice:      decimal.NewFromInt(300),
		PaymentStatus:   domain.PaymentStatusUnpaid,
	}
}

func (s *SettlementServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *SettlementServiceTestSuite) payArgs() service.PayOrderArgs {
	return service.PayOrderArgs{
		OrderID:            s.order.ID,
		PrincipalAccountID: s.buyerID,
		Password:           "secret",
		IdempotencyKey:     "pay-key",
	}
}

func (s *SettlementServiceTestSuite) TestPayOrder() {
	transferID := uuid.New()

	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), s.order.ID).Return(&s.order, nil)
	s.mockGate.EXPECT().Reverify(gomock.Any(), s.buyerID, "secret").Return(nil)
	// движок получает ключ клиента и сумму заказа.
	s.mockEngine.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, args service.ExecuteTransferArgs) (*domain.Transfer, error) {
			s.Equal(s.buyerID, args.FromAccountID)
			s.Equal(s.vendorID, args.ToAccountID)
			s.True(s.order.TotalPrice.Equal(args.Amount))
			s.Equal("pay-key", args.IdempotencyKey)
			s.Require().NotNil(args.OrderID)
			s.Equal(s.order.ID, *args.OrderID)
			return &domain.Transfer{ID: transferID, Status: domain.TransferStatusCommitted}, nil
		})
	s.mockOrderRepo.EXPECT().MarkPaid(gomock.Any(), s.order.ID, transferID).
		Return(&domain.Order{
			ID:               s.order.ID,
			PaymentStatus:    domain.PaymentStatusPaid,
			LinkedTransferID: &transferID,
		}, nil)

	paid, err := s.service.PayOrder(s.T().Context(), s.payArgs())
	s.Require().NoError(err)
	s.Equal(domain.PaymentStatusPaid, paid.PaymentStatus)
	s.Require().NotNil(paid.LinkedTransferID)
	s.Equal(transferID, *paid.LinkedTransferID)
}

func (s *SettlementServiceTestSuite) TestPayOrder_AlreadyPaidNoop() {
	transferID := uuid.New()
	paidOrder := s.order
	paidOrder.PaymentStatus = domain.PaymentStatusPaid
	paidOrder.LinkedTransferID = &transferID

	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), s.order.ID).Return(&paidOrder, nil)
	// Ни проверки пароля, ни второго списания.
	s.mockGate.EXPECT().Reverify(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	s.mockEngine.EXPECT().Execute(gomock.Any(), gomock.Any()).Times(0)

	got, err := s.service.PayOrder(s.T().Context(), s.payArgs())
	s.Require().NoError(err)
	s.Equal(domain.PaymentStatusPaid, got.PaymentStatus)
}

func (s *SettlementServiceTestSuite) TestPayOrder_NotBuyer() {
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), s.order.ID).Return(&s.order, nil)
	s.mockGate.EXPECT().Reverify(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	args := s.payArgs()
	args.PrincipalAccountID = 999

	_, err := s.service.PayOrder(s.T().Context(), args)
	s.Require().ErrorIs(err, domain.ErrUnauthorized)
}

func (s *SettlementServiceTestSuite) TestPayOrder_OrderNotFound() {
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), s.order.ID).
		Return(nil, domain.ErrRecordNotFound)

	_, err := s.service.PayOrder(s.T().Context(), s.payArgs())
	s.Require().ErrorIs(err, domain.ErrOrderNotFound)
}

func (s *SettlementServiceTestSuite) TestPayOrder_GateRejects() {
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), s.order.ID).Return(&s.order, nil)
	s.mockGate.EXPECT().Reverify(gomock.Any(), s.buyerID, "secret").
		Return(domain.ErrUnauthorized)
	s.mockEngine.EXPECT().Execute(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.service.PayOrder(s.T().Context(), s.payArgs())
	s.Require().ErrorIs(err, domain.ErrUnauthorized)
}

func (s *SettlementServiceTestSuite) TestPayOrder_InsufficientFundsLeavesUnpaid() {
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), s.order.ID).Return(&s.order, nil)
	s.mockGate.EXPECT().Reverify(gomock.Any(), s.buyerID, "secret").Return(nil)
	s.mockEngine.EXPECT().Execute(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrInsufficientFunds)
	// Статус заказа не меняется раньше зафиксированного перевода.
	s.mockOrderRepo.EXPECT().MarkPaid(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := s.service.PayOrder(s.T().Context(), s.payArgs())
	s.Require().ErrorIs(err, domain.ErrInsufficientFunds)
}

// Повтор после обрыва между фиксацией перевода и пометкой заказа: движок
// возвращает уже зафиксированный перевод по тому же ключу, повтор дочиняет пометку.
func (s *SettlementServiceTestSuite) TestPayOrder_RetryAfterCrashRepairs() {
	transferID := uuid.New()

	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), s.order.ID).Return(&s.order, nil)
	s.mockGate.EXPECT().Reverify(gomock.Any(), s.buyerID, "secret").Return(nil)
	s.mockEngine.EXPECT().Execute(gomock.Any(), gomock.Any()).
		Return(&domain.Transfer{ID: transferID, Status: domain.TransferStatusCommitted}, nil)
	s.mockOrderRepo.EXPECT().MarkPaid(gomock.Any(), s.order.ID, transferID).
		Return(&domain.Order{
			ID:               s.order.ID,
			PaymentStatus:    domain.PaymentStatusPaid,
			LinkedTransferID: &transferID,
		}, nil)

	paid, err := s.service.PayOrder(s.T().Context(), s.payArgs())
	s.Require().NoError(err)
	s.Equal(domain.PaymentStatusPaid, paid.PaymentStatus)
}

func (s *SettlementServiceTestSuite) TestPayOrder_MarkPaidRace() {
	transferID := uuid.New()
	settled := s.order
	settled.PaymentStatus = domain.PaymentStatusPaid
	settled.LinkedTransferID = &transferID

	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), s.order.ID).Return(&s.order, nil)
	s.mockGate.EXPECT().Reverify(gomock.Any(), s.buyerID, "secret").Return(nil)
	s.mockEngine.EXPECT().Execute(gomock.Any(), gomock.Any()).
		Return(&domain.Transfer{ID: transferID, Status: domain.TransferStatusCommitted}, nil)
	// reconciliation sweep успел пометить заказ первым.
	s.mockOrderRepo.EXPECT().MarkPaid(gomock.Any(), s.order.ID, transferID).
		Return(nil, domain.ErrRecordNotFound)
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), s.order.ID).Return(&settled, nil)

	paid, err := s.service.PayOrder(s.T().Context(), s.payArgs())
	s.Require().NoError(err)
	s.Equal(domain.PaymentStatusPaid, paid.PaymentStatus)
}
