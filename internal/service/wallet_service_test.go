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

type WalletServiceTestSuite struct {
	suite.Suite
	mockCtrl        *gomock.Controller
	mockUOW         *uowmocks.MockUOW
	mockAccountRepo *domainmocks.MockAccountRepository
	mockLedgerRepo  *domainmocks.MockLedgerRepository
	mockEngine      *mocks.MockTransferExecutor
	mockGate        *mocks.MockCredentialVerifier
	service         *service.WalletService
}

func TestWalletServiceSuite(t *testing.T) {
	suite.Run(t, new(WalletServiceTestSuite))
}

func (s *WalletServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockAccountRepo = domainmocks.NewMockAccountRepository(s.mockCtrl)
	s.mockLedgerRepo = domainmocks.NewMockLedgerRepository(s.mockCtrl)
	s.mockEngine = mocks.NewMockTransferExecutor(s.mockCtrl)
	s.mockGate = mocks.NewMockCredentialVerifier(s.mockCtrl)

	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.AccountRepoName)).
		Return(s.mockAccountRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.LedgerRepoName)).
		Return(s.mockLedgerRepo, nil).AnyTimes()

	wallet, err := service.NewWalletService(s.mockUOW, s.mockEngine, s.mockGate)
	s.Require().NoError(err)
	s.service = wallet
}

func (s *WalletServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *WalletServiceTestSuite) TestSendMoney() {
	recipient := domain.Account{ID: 2, PhoneNumber: "+79990000002"}
	args := service.SendMoneyArgs{
		FromAccountID:        1,
		RecipientPhoneNumber: recipient.PhoneNumber,
		Amount:               decimal.NewFromInt(50),
		IdempotencyKey:       "send-key",
		Password:             "secret",
	}

	// Пароль сверяется до любых денежных действий.
	s.mockGate.EXPECT().Reverify(gomock.Any(), args.FromAccountID, args.Password).Return(nil)
	s.mockAccountRepo.EXPECT().FindByPhoneNumber(gomock.Any(), recipient.PhoneNumber).
		Return(&recipient, nil)
	s.mockEngine.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, execArgs service.ExecuteTransferArgs) (*domain.Transfer, error) {
			s.Equal(args.FromAccountID, execArgs.FromAccountID)
			s.Equal(recipient.ID, execArgs.ToAccountID)
			s.True(args.Amount.Equal(execArgs.Amount))
			s.Equal(args.IdempotencyKey, execArgs.IdempotencyKey)
			s.Nil(execArgs.OrderID)
			return &domain.Transfer{ID: uuid.New(), Status: domain.TransferStatusCommitted}, nil
		})

	transfer, err := s.service.SendMoney(s.T().Context(), args)
	s.Require().NoError(err)
	s.Equal(domain.TransferStatusCommitted, transfer.Status)
}

func (s *WalletServiceTestSuite) TestSendMoney_UnknownRecipient() {
	s.mockGate.EXPECT().Reverify(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	s.mockAccountRepo.EXPECT().FindByPhoneNumber(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrRecordNotFound)
	s.mockEngine.EXPECT().Execute(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.service.SendMoney(s.T().Context(), service.SendMoneyArgs{
		FromAccountID:        1,
		RecipientPhoneNumber: "+70000000000",
		Amount:               decimal.NewFromInt(50),
		IdempotencyKey:       "send-key",
		Password:             "secret",
	})
	s.Require().ErrorIs(err, domain.ErrUnknownAccount)
}

func (s *WalletServiceTestSuite) TestSendMoney_GateRejects() {
	s.mockGate.EXPECT().Reverify(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.ErrTooManyAttempts)
	s.mockAccountRepo.EXPECT().FindByPhoneNumber(gomock.Any(), gomock.Any()).Times(0)
	s.mockEngine.EXPECT().Execute(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.service.SendMoney(s.T().Context(), service.SendMoneyArgs{
		FromAccountID:        1,
		RecipientPhoneNumber: "+79990000002",
		Amount:               decimal.NewFromInt(50),
		IdempotencyKey:       "send-key",
		Password:             "wrong",
	})
	s.Require().ErrorIs(err, domain.ErrTooManyAttempts)
}

func (s *WalletServiceTestSuite) TestBalance() {
	var accountID int64 = 1
	balance := decimal.NewFromInt(750)

	s.mockAccountRepo.EXPECT().FindByID(gomock.Any(), accountID).
		Return(&domain.Account{ID: accountID}, nil)
	s.mockLedgerRepo.EXPECT().Balance(gomock.Any(), accountID).Return(balance, nil)

	got, err := s.service.Balance(s.T().Context(), accountID)
	s.Require().NoError(err)
	s.True(balance.Equal(got))
}

func (s *WalletServiceTestSuite) TestBalance_UnknownAccount() {
	s.mockAccountRepo.EXPECT().FindByID(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrRecordNotFound)
	s.mockLedgerRepo.EXPECT().Balance(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.service.Balance(s.T().Context(), 404)
	s.Require().ErrorIs(err, domain.ErrUnknownAccount)
}

func (s *WalletServiceTestSuite) TestStatement() {
	var accountID int64 = 1
	transferID := uuid.New()
	entries := []domain.LedgerEntry{
		{ID: 2, AccountID: accountID, TransferID: &transferID, Direction: domain.DirectionDebit, Amount: decimal.NewFromInt(50)},
		{ID: 1, AccountID: accountID, Direction: domain.DirectionCredit, Amount: decimal.NewFromInt(1000)},
	}

	s.mockLedgerRepo.EXPECT().GetByAccountID(gomock.Any(), accountID).Return(entries, nil)

	got, err := s.service.Statement(s.T().Context(), accountID)
	s.Require().NoError(err)
	s.Equal(entries, got)
}
