package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/domain"
	"github.com/fabioricardopires-tech/hub-vendas-ml/internal/service/mocks"
)

type FinanceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	creds  *mocks.MockCredentialSource
	market *mocks.MockMarketplace

	service *FinanceAnalyzer
	cred    *domain.Credential
	from    time.Time
	to      time.Time
}

func (s *FinanceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.creds = mocks.NewMockCredentialSource(s.ctrl)
	s.market = mocks.NewMockMarketplace(s.ctrl)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.cred = &domain.Credential{AccessToken: "token-1", ExpiresAt: time.Now().Add(time.Hour)}
	s.to = time.Now()
	s.from = s.to.AddDate(0, 0, -7)

	s.service = NewFinanceAnalyzer(s.creds, s.market, logger)
}

func (s *FinanceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestFinanceTestSuite(t *testing.T) {
	suite.Run(t, new(FinanceTestSuite))
}

func (s *FinanceTestSuite) snapshot() []domain.StockRecord {
	return []domain.StockRecord{
		{SKU: "CAM-001", Product: "Camiseta", LocalQuantity: 10, UnitCost: 5},
	}
}

func (s *FinanceTestSuite) expectSearch(orders []domain.Order) {
	s.creds.EXPECT().ValidCredential(gomock.Any()).Return(s.cred, nil)
	s.market.EXPECT().Me(gomock.Any(), "token-1").Return(int64(42), nil)
	s.market.EXPECT().SearchOrders(gomock.Any(), "token-1", int64(42), s.from, s.to).Return(orders, nil)
}

func (s *FinanceTestSuite) TestAnalyze_ProRataShippingAndProfit() {
	ctx := context.Background()
	closed := time.Now().Add(-48 * time.Hour)

	detail := &domain.Order{
		ID:           1001,
		ClosedAt:     closed,
		Delivered:    true,
		TotalAmount:  100,
		ShippingCost: 10,
		Lines: []domain.OrderLine{
			{SKU: "CAM-001", Title: "Camiseta", Quantity: 2, UnitPrice: 30, SaleFee: 6},
			{SKU: "", Title: "Avulso", Quantity: 1, UnitPrice: 40, SaleFee: 8},
		},
	}

	s.expectSearch([]domain.Order{{ID: 1001, Delivered: true}})
	s.market.EXPECT().OrderDetail(gomock.Any(), "token-1", int64(1001)).Return(detail, nil)

	rows, err := s.service.Analyze(ctx, s.snapshot(), s.from, s.to)

	s.NoError(err)
	s.Require().Len(rows, 2)

	// line 1: value 60, 60% of the order carries 6.00 of shipping, cost 2x5
	s.Equal("CAM-001", rows[0].SKU)
	s.InDelta(60.0, rows[0].SaleValue, 1e-9)
	s.InDelta(6.0, rows[0].ShippingCost, 1e-9)
	s.InDelta(10.0, rows[0].ProductCost, 1e-9)
	s.InDelta(60.0-6.0-6.0-10.0, rows[0].GrossProfit, 1e-9)

	// line 2: unmapped SKU carries zero product cost
	s.InDelta(40.0, rows[1].SaleValue, 1e-9)
	s.InDelta(4.0, rows[1].ShippingCost, 1e-9)
	s.InDelta(0.0, rows[1].ProductCost, 1e-9)
}

func (s *FinanceTestSuite) TestAnalyze_ZeroOrderTotalZeroShipping() {
	ctx := context.Background()

	detail := &domain.Order{
		ID:           1002,
		Delivered:    true,
		TotalAmount:  0,
		ShippingCost: 15,
		Lines: []domain.OrderLine{
			{SKU: "CAM-001", Title: "Camiseta", Quantity: 1, UnitPrice: 30},
		},
	}

	s.expectSearch([]domain.Order{{ID: 1002, Delivered: true}})
	s.market.EXPECT().OrderDetail(gomock.Any(), "token-1", int64(1002)).Return(detail, nil)

	rows, err := s.service.Analyze(ctx, s.snapshot(), s.from, s.to)

	s.NoError(err)
	s.Require().Len(rows, 1)
	s.InDelta(0.0, rows[0].ShippingCost, 1e-9)
}

func (s *FinanceTestSuite) TestAnalyze_OnlyDeliveredOrdersContribute() {
	ctx := context.Background()

	orders := []domain.Order{
		{ID: 1003, Delivered: false},
		{ID: 1004, Delivered: true},
	}
	detail := &domain.Order{
		ID: 1004, Delivered: true, TotalAmount: 50, Lines: []domain.OrderLine{
			{SKU: "CAM-001", Quantity: 1, UnitPrice: 50},
		},
	}

	s.expectSearch(orders)
	// no detail fetch for the undelivered order
	s.market.EXPECT().OrderDetail(gomock.Any(), "token-1", int64(1004)).Return(detail, nil)

	rows, err := s.service.Analyze(ctx, s.snapshot(), s.from, s.to)

	s.NoError(err)
	s.Len(rows, 1)
}

func (s *FinanceTestSuite) TestAnalyze_DetailFailureSkipsOrder() {
	ctx := context.Background()

	orders := []domain.Order{
		{ID: 1005, Delivered: true},
		{ID: 1006, Delivered: true},
	}
	detail := &domain.Order{
		ID: 1006, Delivered: true, TotalAmount: 20, Lines: []domain.OrderLine{
			{SKU: "CAM-001", Quantity: 1, UnitPrice: 20},
		},
	}

	s.expectSearch(orders)
	s.market.EXPECT().OrderDetail(gomock.Any(), "token-1", int64(1005)).Return(nil, errors.New("status 500"))
	s.market.EXPECT().OrderDetail(gomock.Any(), "token-1", int64(1006)).Return(detail, nil)

	rows, err := s.service.Analyze(ctx, s.snapshot(), s.from, s.to)

	s.NoError(err)
	s.Len(rows, 1)
}

func (s *FinanceTestSuite) TestAnalyze_NoOrdersIsEmptyNotError() {
	ctx := context.Background()

	s.expectSearch(nil)

	rows, err := s.service.Analyze(ctx, s.snapshot(), s.from, s.to)

	s.NoError(err)
	s.NotNil(rows)
	s.Empty(rows)
}

func (s *FinanceTestSuite) TestAnalyze_SearchFailureIsError() {
	ctx := context.Background()

	s.creds.EXPECT().ValidCredential(gomock.Any()).Return(s.cred, nil)
	s.market.EXPECT().Me(gomock.Any(), "token-1").Return(int64(42), nil)
	s.market.EXPECT().SearchOrders(gomock.Any(), "token-1", int64(42), s.from, s.to).
		Return(nil, errors.New("status 500"))

	rows, err := s.service.Analyze(ctx, s.snapshot(), s.from, s.to)

	s.Error(err)
	s.Nil(rows)
}
