package inventory

import (
	"context"
	"testing"

	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuditRecorder_Record(t *testing.T) {
	recorder := NewAuditRecorder(nil)
	ctx := context.Background()

	t.Run("writes the adjustment with reference", func(t *testing.T) {
		repo := new(MockAdjustmentRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		requestID := uuid.New()

		adj, err := recorder.Record(ctx, repo, AuditEntry{
			EntityType:    inventory.EntityTypeMaterial,
			EntityID:      uuid.New(),
			Type:          inventory.AdjustmentTypeProductionConsumption,
			Before:        decimal.NewFromInt(15),
			After:         decimal.NewFromInt(3),
			Actor:         productionActor,
			ReferenceType: inventory.ReferenceTypeProductionRequest,
			ReferenceID:   requestID,
		})

		require.NoError(t, err)
		assert.Equal(t, inventory.ReferenceTypeProductionRequest, adj.ReferenceType)
		require.NotNil(t, adj.ReferenceID)
		assert.Equal(t, requestID, *adj.ReferenceID)
		assert.Equal(t, shared.RoleProduction, adj.ActorRole)
		repo.AssertExpectations(t)
	})

	t.Run("invalid entry is not written", func(t *testing.T) {
		repo := new(MockAdjustmentRepository)

		_, err := recorder.Record(ctx, repo, AuditEntry{
			EntityType: inventory.EntityTypeMaterial,
			EntityID:   uuid.New(),
			Type:       inventory.AdjustmentTypeManual,
			Before:     decimal.NewFromInt(1),
			After:      decimal.NewFromInt(-1),
			Actor:      productionActor,
		})

		require.Error(t, err)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
