package service

import (
	"testing"
	"time"

	"github.com/fsdevblog/canteen-wallet/internal/domain"
	"github.com/fsdevblog/canteen-wallet/internal/domain/mocks"
	"github.com/fsdevblog/canteen-wallet/internal/repository/repoargs"
	"github.com/fsdevblog/canteen-wallet/internal/service/psswd"
	"github.com/fsdevblog/canteen-wallet/pkg/uow"
	uowmocks "github.com/fsdevblog/canteen-wallet/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type CredentialGateTestSuite struct {
	suite.Suite
	mockCtrl        *gomock.Controller
	mockUOW         *uowmocks.MockUOW
	mockAccountRepo *mocks.MockAccountRepository
	mockAttemptRepo *mocks.MockCredentialAttemptRepository
	gate            *CredentialGate

	accountID    int64
	password     string
	passwordHash string
}

func TestCredentialGateSuite(t *testing.T) {
	suite.Run(t, new(CredentialGateTestSuite))
}

func (s *CredentialGateTestSuite) SetupSuite() {
	s.accountID = 42
	s.password = "correct horse"

	hash, err := psswd.HashPassword(s.password)
	s.Require().NoError(err)
	s.passwordHash = hash
}

func (s *CredentialGateTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockAccountRepo = mocks.NewMockAccountRepository(s.mockCtrl)
	s.mockAttemptRepo = mocks.NewMockCredentialAttemptRepository(s.mockCtrl)

	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.AccountRepoName)).
		Return(s.mockAccountRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.CredentialAttemptRepoName)).
		Return(s.mockAttemptRepo, nil).AnyTimes()

	gate, err := NewCredentialGate(s.mockUOW)
	s.Require().NoError(err)
	s.gate = gate
}

func (s *CredentialGateTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *CredentialGateTestSuite) TestReverify_Success() {
	s.mockAttemptRepo.EXPECT().CountRecentFailures(gomock.Any(), s.accountID, gomock.Any()).
		Return(int64(0), nil)
	s.mockAccountRepo.EXPECT().FindByID(gomock.Any(), s.accountID).
		Return(&domain.Account{ID: s.accountID, PasswordHash: s.passwordHash}, nil)
	s.mockAttemptRepo.EXPECT().RecordAttempt(gomock.Any(), s.accountID, true).Return(nil)

	err := s.gate.Reverify(s.T().Context(), s.accountID, s.password)
	s.Require().NoError(err)
}

func (s *CredentialGateTestSuite) TestReverify_WrongPassword() {
	s.mockAttemptRepo.EXPECT().CountRecentFailures(gomock.Any(), s.accountID, gomock.Any()).
		Return(int64(2), nil)
	s.mockAccountRepo.EXPECT().FindByID(gomock.Any(), s.accountID).
		Return(&domain.Account{ID: s.accountID, PasswordHash: s.passwordHash}, nil)
	// неудачная попытка записывается.
	s.mockAttemptRepo.EXPECT().RecordAttempt(gomock.Any(), s.accountID, false).Return(nil)

	err := s.gate.Reverify(s.T().Context(), s.accountID, "wrong password")
	s.Require().ErrorIs(err, domain.ErrUnauthorized)
}

func (s *CredentialGateTestSuite) TestReverify_Lockout() {
	s.mockAttemptRepo.EXPECT().CountRecentFailures(gomock.Any(), s.accountID, gomock.Any()).
		Return(int64(DefaultGateMaxFailures), nil)
	// Заблокированная попытка не сверяет пароль и не записывается:
	// блокировка не продлевает сама себя.
	s.mockAccountRepo.EXPECT().FindByID(gomock.Any(), gomock.Any()).Times(0)
	s.mockAttemptRepo.EXPECT().RecordAttempt(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	err := s.gate.Reverify(s.T().Context(), s.accountID, s.password)
	s.Require().ErrorIs(err, domain.ErrTooManyAttempts)
}

func (s *CredentialGateTestSuite) TestReverify_SlidingWindow() {
	window := 5 * time.Minute
	s.gate.SetWindow(window).SetMaxFailures(3)

	before := time.Now().Add(-window)
	s.mockAttemptRepo.EXPECT().CountRecentFailures(gomock.Any(), s.accountID, gomock.Any()).
		DoAndReturn(func(_ any, _ int64, since time.Time) (int64, error) {
			// граница окна уезжает вместе со временем вызова.
			s.WithinDuration(before, since, 2*time.Second)
			return int64(3), nil
		})

	err := s.gate.Reverify(s.T().Context(), s.accountID, s.password)
	s.Require().ErrorIs(err, domain.ErrTooManyAttempts)
}

func (s *CredentialGateTestSuite) TestReverify_UnknownAccount() {
	s.mockAttemptRepo.EXPECT().CountRecentFailures(gomock.Any(), s.accountID, gomock.Any()).
		Return(int64(0), nil)
	s.mockAccountRepo.EXPECT().FindByID(gomock.Any(), s.accountID).
		Return(nil, domain.ErrRecordNotFound)

	err := s.gate.Reverify(s.T().Context(), s.accountID, s.password)
	s.Require().ErrorIs(err, domain.ErrUnknownAccount)
}
