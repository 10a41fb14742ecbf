package inventory_test

import (
	"context"
	"testing"
	"time"

	invapp "github.com/erp/manufacturing/internal/application/inventory"
	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/config"
	"github.com/erp/manufacturing/internal/infrastructure/persistence"
	"github.com/erp/manufacturing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestReservationLedger_ExpiredReservationCannotBeFulfilled(t *testing.T) {
	database, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, database.DB.AutoMigrate(models.AllModels()...))

	db := database.DB
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	products := persistence.NewGormProductRepository(db)
	reservations := persistence.NewGormStockReservationRepository(db)
	svc := invapp.NewReservationService(
		products,
		reservations,
		persistence.NewGormInventoryTransactionScope(db),
		invapp.NewAuditRecorder(logger),
		logger,
	)
	actor := shared.NewActor(uuid.New(), shared.RoleFulfillment)

	product, err := catalog.NewProduct("TEA-1", "Green Tea")
	require.NoError(t, err)
	product.Stock = decimal.NewFromInt(10)
	require.NoError(t, products.Save(ctx, product))

	past := time.Now().Add(-time.Minute)
	lapsed := &inventory.StockReservation{
		ID:              uuid.New(),
		ProductID:       product.ID,
		Quantity:        decimal.NewFromInt(8),
		ReservationType: inventory.ReservationTypeOrder,
		OrderRef:        "SO-OLD",
		ExpiresAt:       &past,
		CreatedBy:       actor.ID,
		CreatedAt:       past.Add(-time.Hour),
	}
	require.NoError(t, reservations.Create(ctx, lapsed))

	// the lapsed hold no longer counts, so the full stock can be promised again
	_, err = svc.Reserve(ctx, actor, invapp.ReserveInput{
		ProductID: product.ID,
		Quantity:  decimal.NewFromInt(10),
		Type:      inventory.ReservationTypeOrder,
		OrderRef:  "SO-NEW",
	})
	require.NoError(t, err)

	_, err = svc.Fulfill(ctx, actor, lapsed.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, inventory.ErrReservationExpired)

	atp, err := svc.ATP(ctx, actor, product.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(atp.Stock), "stock = %s", atp.Stock)
	assert.True(t, decimal.NewFromInt(10).Equal(atp.Reserved), "reserved = %s", atp.Reserved)
	assert.True(t, atp.Available.IsZero(), "available = %s", atp.Available)

	// the lapsed row is still there for the sweeper
	_, err = reservations.FindByID(ctx, lapsed.ID)
	assert.NoError(t, err)
}
