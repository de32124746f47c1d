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

type ReconcilerTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	creds    *mocks.MockCredentialSource
	market   *mocks.MockMarketplace
	activity *mocks.MockActivityLog

	service *Reconciler
	cred    *domain.Credential
}

func (s *ReconcilerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.creds = mocks.NewMockCredentialSource(s.ctrl)
	s.market = mocks.NewMockMarketplace(s.ctrl)
	s.activity = mocks.NewMockActivityLog(s.ctrl)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.cred = &domain.Credential{AccessToken: "token-1", ExpiresAt: time.Now().Add(time.Hour)}

	s.service = NewReconciler(s.creds, s.market, s.activity, nil, 0, logger)
}

func (s *ReconcilerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestReconcilerTestSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerTestSuite))
}

func (s *ReconcilerTestSuite) TestRun_TruncatesLocalQuantityForComparison() {
	ctx := context.Background()

	snapshot := []domain.StockRecord{
		{SKU: "CAM-001", LocalQuantity: 5.7, Listings: []domain.ListingSlot{
			{ListingID: "MLB111", Fulfillment: "self_service"},
		}},
	}

	s.creds.EXPECT().ValidCredential(ctx).Return(s.cred, nil)
	// 5.7 truncates to 5, marketplace reports 5: already in sync, no update
	s.market.EXPECT().ItemQuantity(ctx, "token-1", "MLB111").Return(5, nil)

	stats, err := s.service.Run(ctx, snapshot)

	s.NoError(err)
	s.Equal(1, stats.Checked)
	s.Equal(1, stats.InSync)
	s.Equal(0, stats.Updated)
}

func (s *ReconcilerTestSuite) TestRun_UpdatesMismatchedListing() {
	ctx := context.Background()

	snapshot := []domain.StockRecord{
		{SKU: "CAM-001", LocalQuantity: 8, Listings: []domain.ListingSlot{
			{ListingID: "MLB111", Fulfillment: "self_service"},
		}},
	}

	s.creds.EXPECT().ValidCredential(ctx).Return(s.cred, nil)
	s.market.EXPECT().ItemQuantity(ctx, "token-1", "MLB111").Return(3, nil)
	s.market.EXPECT().UpdateItemQuantity(ctx, "token-1", "MLB111", 8).Return(nil)
	s.activity.EXPECT().Append(ctx, gomock.Any()).Return(nil)

	stats, err := s.service.Run(ctx, snapshot)

	s.NoError(err)
	s.Equal(1, stats.Updated)
}

func (s *ReconcilerTestSuite) TestRun_SkipsNonSelfManagedListings() {
	ctx := context.Background()

	snapshot := []domain.StockRecord{
		{SKU: "CAM-001", LocalQuantity: 8, Listings: []domain.ListingSlot{
			{ListingID: "MLB111", Fulfillment: "full"},
			{ListingID: "MLB222", Fulfillment: "FULFILLMENT"},
			{}, // empty slot
		}},
	}

	s.creds.EXPECT().ValidCredential(ctx).Return(s.cred, nil)
	// no marketplace call for externally fulfilled listings, whatever the mismatch

	stats, err := s.service.Run(ctx, snapshot)

	s.NoError(err)
	s.Equal(0, stats.Checked)
	s.Equal(2, stats.Skipped)
}

func (s *ReconcilerTestSuite) TestRun_FailureIsolatedPerListing() {
	ctx := context.Background()

	snapshot := []domain.StockRecord{
		{SKU: "CAM-001", LocalQuantity: 4, Listings: []domain.ListingSlot{
			{ListingID: "MLB111", Fulfillment: "self_service"},
			{ListingID: "MLB222", Fulfillment: "self_service"},
		}},
	}

	s.creds.EXPECT().ValidCredential(ctx).Return(s.cred, nil)
	s.market.EXPECT().ItemQuantity(ctx, "token-1", "MLB111").Return(0, errors.New("status 404"))
	s.activity.EXPECT().Append(ctx, gomock.Any()).Return(nil).AnyTimes()
	// the sibling listing is still processed
	s.market.EXPECT().ItemQuantity(ctx, "token-1", "MLB222").Return(2, nil)
	s.market.EXPECT().UpdateItemQuantity(ctx, "token-1", "MLB222", 4).Return(nil)

	stats, err := s.service.Run(ctx, snapshot)

	s.NoError(err)
	s.Equal(2, stats.Checked)
	s.Equal(1, stats.Errors)
	s.Equal(1, stats.Updated)
}

func (s *ReconcilerTestSuite) TestRun_UpdateFailureDoesNotAbort() {
	ctx := context.Background()

	snapshot := []domain.StockRecord{
		{SKU: "CAM-001", LocalQuantity: 4, Listings: []domain.ListingSlot{
			{ListingID: "MLB111", Fulfillment: "self_service"},
		}},
		{SKU: "CAN-002", LocalQuantity: 9, Listings: []domain.ListingSlot{
			{ListingID: "MLB333", Fulfillment: "self_service"},
		}},
	}

	s.creds.EXPECT().ValidCredential(ctx).Return(s.cred, nil)
	s.market.EXPECT().ItemQuantity(ctx, "token-1", "MLB111").Return(1, nil)
	s.market.EXPECT().UpdateItemQuantity(ctx, "token-1", "MLB111", 4).Return(errors.New("status 403"))
	s.activity.EXPECT().Append(ctx, gomock.Any()).Return(nil).AnyTimes()
	s.market.EXPECT().ItemQuantity(ctx, "token-1", "MLB333").Return(9, nil)

	stats, err := s.service.Run(ctx, snapshot)

	s.NoError(err)
	s.Equal(1, stats.Errors)
	s.Equal(1, stats.InSync)
}

func (s *ReconcilerTestSuite) TestRun_PublishesCorrectionEvents() {
	ctx := context.Background()

	pub := mocks.NewMockPublisher(s.ctrl)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := NewReconciler(s.creds, s.market, nil, pub, 0, logger)

	snapshot := []domain.StockRecord{
		{SKU: "CAM-001", LocalQuantity: 6, Listings: []domain.ListingSlot{
			{ListingID: "MLB111", Fulfillment: "self_service"},
		}},
	}

	s.creds.EXPECT().ValidCredential(ctx).Return(s.cred, nil)
	s.market.EXPECT().ItemQuantity(ctx, "token-1", "MLB111").Return(2, nil)
	s.market.EXPECT().UpdateItemQuantity(ctx, "token-1", "MLB111", 6).Return(nil)
	pub.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, event domain.StockEvent) error {
			s.Equal(domain.EventListingCorrected, event.Type)
			s.Equal("MLB111", event.ListingID)
			s.Equal(6.0, event.Quantity)
			return nil
		},
	)

	_, err := svc.Run(ctx, snapshot)

	s.NoError(err)
}
