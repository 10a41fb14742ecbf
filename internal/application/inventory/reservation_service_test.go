package inventory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/erp/manufacturing/internal/application/retry"
	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestReservationService(t *testing.T, f *serviceFixture) *ReservationService {
	svc := NewReservationService(f.products, f.reservations, f.scope, NewAuditRecorder(zaptest.NewLogger(t)), zaptest.NewLogger(t))
	svc.SetEventPublisher(f.publisher)
	svc.SetRetryPolicy(retry.Policy{MaxRetries: 2, Backoff: time.Millisecond})
	return svc
}

func TestReservationService_Reserve(t *testing.T) {
	ctx := context.Background()

	t.Run("reserves within available-to-promise", func(t *testing.T) {
		f := newServiceFixture()
		svc := newTestReservationService(t, f)
		product := newTestProduct(100)

		f.products.On("FindByIDForUpdate", mock.Anything, product.ID).Return(product, nil)
		f.reservations.On("SumActive", mock.Anything, product.ID, mock.Anything).Return(decimal.NewFromInt(60), nil)
		f.reservations.On("Create", mock.Anything, mock.AnythingOfType("*inventory.StockReservation")).Return(nil)

		result, err := svc.Reserve(ctx, fulfillmentActor, ReserveInput{
			ProductID: product.ID,
			Quantity:  decimal.NewFromInt(40),
			OrderRef:  "SO-1",
		})

		require.NoError(t, err)
		assert.Equal(t, inventory.ReservationTypeOrder, result.Reservation.ReservationType)
		assert.True(t, result.ATP.Reserved.Equal(decimal.NewFromInt(100)))
		assert.True(t, result.ATP.Available.IsZero())
		assert.Len(t, f.publisher.GetEventsByType(inventory.EventTypeStockReserved), 1)
		f.reservations.AssertExpectations(t)
	})

	t.Run("rejects quantity above available-to-promise", func(t *testing.T) {
		f := newServiceFixture()
		svc := newTestReservationService(t, f)
		product := newTestProduct(100)

		f.products.On("FindByIDForUpdate", mock.Anything, product.ID).Return(product, nil)
		f.reservations.On("SumActive", mock.Anything, product.ID, mock.Anything).Return(decimal.NewFromInt(60), nil)

		_, err := svc.Reserve(ctx, fulfillmentActor, ReserveInput{
			ProductID: product.ID,
			Quantity:  decimal.NewFromInt(41),
			OrderRef:  "SO-1",
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		f.reservations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.GetEventsByType(inventory.EventTypeStockReserved))
	})

	t.Run("missing product", func(t *testing.T) {
		f := newServiceFixture()
		svc := newTestReservationService(t, f)
		id := uuid.New()

		f.products.On("FindByIDForUpdate", mock.Anything, id).Return(nil, catalog.ErrProductNotFound)

		_, err := svc.Reserve(ctx, fulfillmentActor, ReserveInput{ProductID: id, Quantity: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	})

	t.Run("forbidden for production role", func(t *testing.T) {
		f := newServiceFixture()
		svc := newTestReservationService(t, f)

		_, err := svc.Reserve(ctx, productionActor, ReserveInput{ProductID: uuid.New(), Quantity: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("manual reservation gets the default expiry", func(t *testing.T) {
		f := newServiceFixture()
		svc := newTestReservationService(t, f)
		svc.SetDefaultExpiration(time.Hour)
		product := newTestProduct(10)

		f.products.On("FindByIDForUpdate", mock.Anything, product.ID).Return(product, nil)
		f.reservations.On("SumActive", mock.Anything, product.ID, mock.Anything).Return(decimal.Zero, nil)
		f.reservations.On("Create", mock.Anything, mock.Anything).Return(nil)

		result, err := svc.Reserve(ctx, fulfillmentActor, ReserveInput{ProductID: product.ID, Quantity: decimal.NewFromInt(1)})

		require.NoError(t, err)
		assert.Equal(t, inventory.ReservationTypeManual, result.Reservation.ReservationType)
		require.NotNil(t, result.Reservation.ExpiresAt)
		assert.WithinDuration(t, time.Now().Add(time.Hour), *result.Reservation.ExpiresAt, time.Minute)
	})

	t.Run("retries after a concurrency conflict", func(t *testing.T) {
		f := newServiceFixture()
		svc := newTestReservationService(t, f)
		product := newTestProduct(10)

		f.products.On("FindByIDForUpdate", mock.Anything, product.ID).Return(product, nil)
		f.reservations.On("SumActive", mock.Anything, product.ID, mock.Anything).Return(decimal.Zero, nil)
		f.reservations.On("Create", mock.Anything, mock.Anything).
			Return(fmt.Errorf("%w: could not serialize access", shared.ErrConcurrencyConflict)).Once()
		f.reservations.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

		_, err := svc.Reserve(ctx, fulfillmentActor, ReserveInput{ProductID: product.ID, Quantity: decimal.NewFromInt(5)})

		require.NoError(t, err)
		f.reservations.AssertNumberOfCalls(t, "Create", 2)
	})
}

func TestReservationService_Release(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes and publishes", func(t *testing.T) {
		f := newServiceFixture()
		svc := newTestReservationService(t, f)
		res, err := inventory.NewStockReservation(uuid.New(), decimal.NewFromInt(2), inventory.ReservationTypeManual, "", "", nil, fulfillmentActor.ID)
		require.NoError(t, err)

		f.reservations.On("FindByID", mock.Anything, res.ID).Return(res, nil)
		f.reservations.On("Delete", mock.Anything, res.ID).Return(nil)

		require.NoError(t, svc.Release(ctx, fulfillmentActor, res.ID))

		events := f.publisher.GetEventsByType(inventory.EventTypeReservationReleased)
		require.Len(t, events, 1)
		assert.Equal(t, inventory.ReleaseReasonExplicit, events[0].(*inventory.ReservationReleasedEvent).Reason)
	})

	t.Run("not found", func(t *testing.T) {
		f := newServiceFixture()
		svc := newTestReservationService(t, f)
		id := uuid.New()

		f.reservations.On("FindByID", mock.Anything, id).Return(nil, inventory.ErrReservationNotFound)

		assert.ErrorIs(t, svc.Release(ctx, fulfillmentActor, id), inventory.ErrReservationNotFound)
	})
}

func TestReservationService_ReleaseByOrder(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	svc := newTestReservationService(t, f)

	productID := uuid.New()
	r1, _ := inventory.NewStockReservation(productID, decimal.NewFromInt(1), inventory.ReservationTypeOrder, "SO-9", "1", nil, fulfillmentActor.ID)
	r2, _ := inventory.NewStockReservation(productID, decimal.NewFromInt(2), inventory.ReservationTypeOrder, "SO-9", "2", nil, fulfillmentActor.ID)

	f.reservations.On("FindByOrder", mock.Anything, "SO-9").Return([]inventory.StockReservation{*r1, *r2}, nil)
	f.reservations.On("DeleteByIDs", mock.Anything, []uuid.UUID{r1.ID, r2.ID}).Return(int64(2), nil)
	f.reservations.On("FindByOrder", mock.Anything, "SO-NONE").Return([]inventory.StockReservation{}, nil)

	count, err := svc.ReleaseByOrder(ctx, fulfillmentActor, "SO-9")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Len(t, f.publisher.GetEventsByType(inventory.EventTypeReservationReleased), 2)

	count, err = svc.ReleaseByOrder(ctx, fulfillmentActor, "SO-NONE")
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = svc.ReleaseByOrder(ctx, fulfillmentActor, "  ")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestReservationService_Fulfill(t *testing.T) {
	ctx := context.Background()

	t.Run("decrements stock, audits and deletes", func(t *testing.T) {
		f := newServiceFixture()
		svc := newTestReservationService(t, f)
		product := newTestProduct(10)
		product.ReorderThreshold = decimal.NewFromInt(5)
		res, _ := inventory.NewStockReservation(product.ID, decimal.NewFromInt(6), inventory.ReservationTypeOrder, "SO-1", "", nil, fulfillmentActor.ID)

		f.reservations.On("FindByID", mock.Anything, res.ID).Return(res, nil)
		f.products.On("FindByIDForUpdate", mock.Anything, product.ID).Return(product, nil)
		f.products.On("DecrementStock", mock.Anything, product.ID, decimal.NewFromInt(6)).Return(nil)
		f.adjustments.On("Create", mock.Anything, mock.MatchedBy(func(a *inventory.InventoryAdjustment) bool {
			return a.AdjustmentType == inventory.AdjustmentTypeOrderFulfillment &&
				a.QuantityBefore.Equal(decimal.NewFromInt(10)) &&
				a.QuantityAfter.Equal(decimal.NewFromInt(4)) &&
				a.ReferenceType == inventory.ReferenceTypeReservation &&
				*a.ReferenceID == res.ID
		})).Return(nil)
		f.reservations.On("Delete", mock.Anything, res.ID).Return(nil)

		resp, err := svc.Fulfill(ctx, fulfillmentActor, res.ID)

		require.NoError(t, err)
		assert.Equal(t, res.ID, resp.ReservationID)
		assert.True(t, resp.Adjustment.Delta.Equal(decimal.NewFromInt(-6)))
		assert.Len(t, f.publisher.GetEventsByType(inventory.EventTypeStockBelowThreshold), 1)
		f.adjustments.AssertExpectations(t)
	})

	t.Run("insufficient stock rolls back before audit", func(t *testing.T) {
		f := newServiceFixture()
		svc := newTestReservationService(t, f)
		product := newTestProduct(3)
		res, _ := inventory.NewStockReservation(product.ID, decimal.NewFromInt(6), inventory.ReservationTypeManual, "", "", nil, fulfillmentActor.ID)

		f.reservations.On("FindByID", mock.Anything, res.ID).Return(res, nil)
		f.products.On("FindByIDForUpdate", mock.Anything, product.ID).Return(product, nil)
		f.products.On("DecrementStock", mock.Anything, product.ID, decimal.NewFromInt(6)).Return(shared.ErrInsufficientStock)

		_, err := svc.Fulfill(ctx, fulfillmentActor, res.ID)

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		f.adjustments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.reservations.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("expired reservation is rejected without touching stock", func(t *testing.T) {
		f := newServiceFixture()
		svc := newTestReservationService(t, f)
		product := newTestProduct(10)
		past := time.Now().Add(-time.Minute)
		res := &inventory.StockReservation{
			ID:              uuid.New(),
			ProductID:       product.ID,
			Quantity:        decimal.NewFromInt(8),
			ReservationType: inventory.ReservationTypeManual,
			ExpiresAt:       &past,
		}

		f.reservations.On("FindByID", mock.Anything, res.ID).Return(res, nil)
		f.products.On("FindByIDForUpdate", mock.Anything, product.ID).Return(product, nil)

		_, err := svc.Fulfill(ctx, fulfillmentActor, res.ID)

		assert.ErrorIs(t, err, inventory.ErrReservationExpired)
		assert.Equal(t, "RESERVATION_EXPIRED", shared.ErrorCode(err))
		f.products.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything)
		f.adjustments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.reservations.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.GetEventsByType(inventory.EventTypeReservationReleased))
	})
}

func TestReservationService_ATP(t *testing.T) {
	f := newServiceFixture()
	svc := newTestReservationService(t, f)
	product := newTestProduct(50)

	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.reservations.On("SumActive", mock.Anything, product.ID, mock.Anything).Return(decimal.NewFromInt(20), nil)

	atp, err := svc.ATP(context.Background(), viewerActor, product.ID)

	require.NoError(t, err)
	assert.True(t, atp.Stock.Equal(decimal.NewFromInt(50)))
	assert.True(t, atp.Reserved.Equal(decimal.NewFromInt(20)))
	assert.True(t, atp.Available.Equal(decimal.NewFromInt(30)))

	_, err = svc.ATP(context.Background(), shared.Actor{}, product.ID)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestReservationService_ReleaseExpired(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()
	svc := newTestReservationService(t, f)
	svc.SetSweepBatchSize(2)

	productID := uuid.New()
	mk := func() inventory.StockReservation {
		past := time.Now().Add(-time.Minute)
		return inventory.StockReservation{ID: uuid.New(), ProductID: productID, Quantity: decimal.NewFromInt(1), ReservationType: inventory.ReservationTypeManual, ExpiresAt: &past}
	}
	batch1 := []inventory.StockReservation{mk(), mk()}
	batch2 := []inventory.StockReservation{mk()}

	f.reservations.On("FindExpired", mock.Anything, mock.Anything, 2).Return(batch1, nil).Once()
	f.reservations.On("FindExpired", mock.Anything, mock.Anything, 2).Return(batch2, nil).Once()
	f.reservations.On("DeleteByIDs", mock.Anything, mock.Anything).Return(int64(2), nil).Once()
	f.reservations.On("DeleteByIDs", mock.Anything, mock.Anything).Return(int64(1), nil).Once()

	stats, err := svc.ReleaseExpired(ctx)

	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalExpired)
	assert.Equal(t, int64(3), stats.Released)
	assert.Equal(t, 2, stats.Batches)
	assert.Len(t, f.publisher.GetEventsByType(inventory.EventTypeReservationReleased), 3)
}
