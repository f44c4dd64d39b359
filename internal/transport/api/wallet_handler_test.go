package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/fsdevblog/canteen-wallet/internal/domain"
	"github.com/fsdevblog/canteen-wallet/internal/logger"
	"github.com/fsdevblog/canteen-wallet/internal/service"
	"github.com/fsdevblog/canteen-wallet/internal/transport/api/mocks"
	"github.com/fsdevblog/canteen-wallet/internal/transport/api/testutils"
	"github.com/fsdevblog/canteen-wallet/internal/transport/api/tokens"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type WalletHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockWalletService *mocks.MockWalletServicer
	jwtSecret         []byte
}

func TestWalletHandlerSuite(t *testing.T) {
	suite.Run(t, new(WalletHandlerTestSuite))
}

func (s *WalletHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockWalletService = mocks.NewMockWalletServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")

	s.router = New(RouterArgs{
		Logger:        logger.New(os.Stdout),
		WalletService: s.mockWalletService,
		JWTSecretKey:  s.jwtSecret,
	})
}

func (s *WalletHandlerTestSuite) makeRequest(method, url, token string, payload []byte) *http.Response {
	args := testutils.RequestArgs{
		Router: s.router,
		Method: method,
		URL:    url,
	}
	if payload != nil {
		args.Body = bytes.NewReader(payload)
	}
	var reqOpts []func(*testutils.RequestOptions)
	if token != "" {
		reqOpts = append(reqOpts, testutils.WithHeader("Authorization", fmt.Sprintf("Bearer %s", token)))
	}
	reqOpts = append(reqOpts, testutils.WithHeader("Content-Type", "application/json; charset=utf-8"))

	res, err := testutils.MakeRequest(args, reqOpts...)
	s.Require().NoError(err)
	return res
}

func (s *WalletHandlerTestSuite) TestSendMoney() {
	var currentAccountID int64 = 1

	jwtToken, jwtErr := tokens.GenerateUserJWT(currentAccountID, time.Hour, s.jwtSecret)
	s.Require().NoError(jwtErr)

	validPayload := []byte(`{
		"recipient_phone_number": "+79990000002",
		"sum": 150.50,
		"idempotency_key": "send-1",
		"password": "secret"
	}`)
	poorPayload := []byte(`{
		"recipient_phone_number": "+79990000002",
		"sum": 1000000,
		"idempotency_key": "send-2",
		"password": "secret"
	}`)
	badPasswordPayload := []byte(`{
		"recipient_phone_number": "+79990000002",
		"sum": 10,
		"idempotency_key": "send-3",
		"password": "wrong"
	}`)
	lockedPayload := []byte(`{
		"recipient_phone_number": "+79990000002",
		"sum": 10,
		"idempotency_key": "send-4",
		"password": "wrong"
	}`)
	reusedKeyPayload := []byte(`{
		"recipient_phone_number": "+79990000003",
		"sum": 10,
		"idempotency_key": "send-1",
		"password": "secret"
	}`)
	invalidPayload := []byte(`{"sum": 10}`)

	// Моки
	s.mockWalletService.EXPECT().SendMoney(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, args service.SendMoneyArgs) (*domain.Transfer, error) {
			s.Equal(currentAccountID, args.FromAccountID)
			s.Equal("send-1", args.IdempotencyKey)
			return &domain.Transfer{
				ID:        uuid.New(),
				CreatedAt: time.Now(),
				Amount:    args.Amount,
				Status:    domain.TransferStatusCommitted,
			}, nil
		}).Times(1)
	s.mockWalletService.EXPECT().SendMoney(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrInsufficientFunds).Times(1)
	s.mockWalletService.EXPECT().SendMoney(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrUnauthorized).Times(1)
	s.mockWalletService.EXPECT().SendMoney(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrTooManyAttempts).Times(1)
	s.mockWalletService.EXPECT().SendMoney(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrIdempotencyKeyReuse).Times(1)

	cases := []struct {
		name       string
		payload    []byte
		jwtToken   string
		wantStatus int
	}{
		{
			name:       "all ok",
			payload:    validPayload,
			jwtToken:   jwtToken,
			wantStatus: http.StatusOK,
		}, {
			name:       "insufficient funds",
			payload:    poorPayload,
			jwtToken:   jwtToken,
			wantStatus: http.StatusPaymentRequired,
		}, {
			name:       "wrong password",
			payload:    badPasswordPayload,
			jwtToken:   jwtToken,
			wantStatus: http.StatusUnauthorized,
		}, {
			name:       "too many attempts",
			payload:    lockedPayload,
			jwtToken:   jwtToken,
			wantStatus: http.StatusTooManyRequests,
		}, {
			name:       "idempotency key reuse",
			payload:    reusedKeyPayload,
			jwtToken:   jwtToken,
			wantStatus: http.StatusConflict,
		}, {
			name:       "not authorized",
			payload:    validPayload,
			wantStatus: http.StatusUnauthorized,
		}, {
			name:       "bad request",
			payload:    invalidPayload,
			jwtToken:   jwtToken,
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			res := s.makeRequest(http.MethodPost, RouteGroup+WalletTransferRoute, t.jwtToken, t.payload)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *WalletHandlerTestSuite) TestBalance() {
	var accountID int64 = 1

	jwtToken, jwtErr := tokens.GenerateUserJWT(accountID, time.Hour, s.jwtSecret)
	s.Require().NoError(jwtErr)

	s.mockWalletService.EXPECT().Balance(gomock.Any(), accountID).
		Return(decimal.NewFromFloat(750.5), nil)

	res := s.makeRequest(http.MethodGet, RouteGroup+WalletBalanceRoute, jwtToken, nil)
	defer func() {
		closeErr := res.Body.Close()
		s.Require().NoError(closeErr)
	}()

	s.Require().Equal(http.StatusOK, res.StatusCode)

	var body BalanceResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&body))
	s.InDelta(750.5, body.Balance, 0.001)
}

func (s *WalletHandlerTestSuite) TestStatement() {
	var accountID int64 = 1
	var emptyAccountID int64 = 2

	jwtToken, jwtErr := tokens.GenerateUserJWT(accountID, time.Hour, s.jwtSecret)
	s.Require().NoError(jwtErr)
	emptyJWTToken, emptyJWTErr := tokens.GenerateUserJWT(emptyAccountID, time.Hour, s.jwtSecret)
	s.Require().NoError(emptyJWTErr)

	transferID := uuid.New()
	entries := []domain.LedgerEntry{
		{
			ID:         2,
			CreatedAt:  time.Now(),
			AccountID:  accountID,
			TransferID: &transferID,
			Direction:  domain.DirectionDebit,
			Amount:     decimal.NewFromInt(50),
		}, {
			ID:        1,
			CreatedAt: time.Now().Add(-time.Hour),
			AccountID: accountID,
			Direction: domain.DirectionCredit,
			Amount:    decimal.NewFromInt(1000),
		},
	}
	s.mockWalletService.EXPECT().Statement(gomock.Any(), accountID).Return(entries, nil)
	s.mockWalletService.EXPECT().Statement(gomock.Any(), emptyAccountID).Return([]domain.LedgerEntry{}, nil)

	cases := []struct {
		name       string
		jwtToken   string
		wantStatus int
	}{
		{
			name:       "all ok",
			jwtToken:   jwtToken,
			wantStatus: http.StatusOK,
		}, {
			name:       "empty statement",
			jwtToken:   emptyJWTToken,
			wantStatus: http.StatusNoContent,
		}, {
			name:       "not authorized",
			wantStatus: http.StatusUnauthorized,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			res := s.makeRequest(http.MethodGet, RouteGroup+WalletTransactionsRoute, t.jwtToken, nil)
			defer func() {
				closeErr := res.Body.Close()
				s.Require().NoError(closeErr)
			}()

			s.Equal(t.wantStatus, res.StatusCode)

			if t.wantStatus == http.StatusOK {
				var items []StatementItem
				s.Require().NoError(json.NewDecoder(res.Body).Decode(&items))
				s.Len(items, 2)
				s.Equal(domain.DirectionDebit, items[0].Direction)
			}
		})
	}
}
