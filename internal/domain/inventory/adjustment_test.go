package inventory

import (
	"testing"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustmentType_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		adjType  AdjustmentType
		expected bool
	}{
		{"manual is valid", AdjustmentTypeManual, true},
		{"consumption is valid", AdjustmentTypeProductionConsumption, true},
		{"output is valid", AdjustmentTypeProductionOutput, true},
		{"fulfillment is valid", AdjustmentTypeOrderFulfillment, true},
		{"unknown is not valid", AdjustmentType("transfer"), false},
		{"empty is not valid", AdjustmentType(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.adjType.IsValid())
		})
	}
}

func TestNewInventoryAdjustment(t *testing.T) {
	actor := shared.NewActor(uuid.New(), shared.RoleProduction)
	materialID := uuid.New()

	t.Run("records before and after", func(t *testing.T) {
		adj, err := NewInventoryAdjustment(EntityTypeMaterial, materialID, AdjustmentTypeProductionConsumption,
			decimal.NewFromInt(15), decimal.NewFromInt(3), "production", actor)
		require.NoError(t, err)

		assert.Equal(t, materialID, adj.EntityID)
		assert.Equal(t, actor.ID, adj.ActorID)
		assert.Equal(t, shared.RoleProduction, adj.ActorRole)
		assert.True(t, adj.Delta().Equal(decimal.NewFromInt(-12)))
		assert.False(t, adj.IsIncrease())
		assert.False(t, adj.CreatedAt.IsZero())
	})

	t.Run("links a reference", func(t *testing.T) {
		requestID := uuid.New()
		adj, err := NewInventoryAdjustment(EntityTypeProduct, uuid.New(), AdjustmentTypeProductionOutput,
			decimal.Zero, decimal.NewFromInt(120), "", actor)
		require.NoError(t, err)
		adj.WithReference(ReferenceTypeProductionRequest, requestID)

		require.NotNil(t, adj.ReferenceID)
		assert.Equal(t, requestID, *adj.ReferenceID)
		assert.True(t, adj.IsIncrease())
	})

	t.Run("rejects negative stock", func(t *testing.T) {
		_, err := NewInventoryAdjustment(EntityTypeMaterial, materialID, AdjustmentTypeManual,
			decimal.NewFromInt(1), decimal.NewFromInt(-1), "", actor)
		assert.Error(t, err)
	})

	t.Run("rejects unknown entity type", func(t *testing.T) {
		_, err := NewInventoryAdjustment(EntityType("warehouse"), materialID, AdjustmentTypeManual,
			decimal.Zero, decimal.NewFromInt(1), "", actor)
		assert.Error(t, err)
	})
}

func TestCrossedThreshold(t *testing.T) {
	five := decimal.NewFromInt(5)
	assert.True(t, CrossedThreshold(decimal.NewFromInt(10), decimal.NewFromInt(3), five))
	assert.True(t, CrossedThreshold(decimal.NewFromInt(6), five, five))
	assert.False(t, CrossedThreshold(decimal.NewFromInt(4), decimal.NewFromInt(3), five))
	assert.False(t, CrossedThreshold(decimal.NewFromInt(10), decimal.NewFromInt(6), five))
}
