package inventory

import (
	"context"
	"fmt"

	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AuditEntry describes one stock mutation to be written to the ledger
type AuditEntry struct {
	EntityType    inventory.EntityType
	EntityID      uuid.UUID
	Type          inventory.AdjustmentType
	Before        decimal.Decimal
	After         decimal.Decimal
	Reason        string
	Actor         shared.Actor
	ReferenceType inventory.ReferenceType
	ReferenceID   uuid.UUID
}

// AuditRecorder appends InventoryAdjustment rows. It always writes through the
// repository it is handed, which must belong to the transaction that changed the stock.
type AuditRecorder struct {
	logger *zap.Logger
}

// NewAuditRecorder creates a new AuditRecorder
func NewAuditRecorder(logger *zap.Logger) *AuditRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditRecorder{logger: logger}
}

// Record validates and persists the entry. Any failure is returned so the
// caller's transaction rolls back together with the stock change.
func (r *AuditRecorder) Record(ctx context.Context, repo inventory.InventoryAdjustmentRepository, entry AuditEntry) (*inventory.InventoryAdjustment, error) {
	adj, err := inventory.NewInventoryAdjustment(
		entry.EntityType,
		entry.EntityID,
		entry.Type,
		entry.Before,
		entry.After,
		entry.Reason,
		entry.Actor,
	)
	if err != nil {
		return nil, err
	}
	if entry.ReferenceType != inventory.ReferenceTypeNone && entry.ReferenceID != uuid.Nil {
		adj.WithReference(entry.ReferenceType, entry.ReferenceID)
	}

	if err := repo.Create(ctx, adj); err != nil {
		return nil, fmt.Errorf("record %s adjustment for %s %s: %w", entry.Type, entry.EntityType, entry.EntityID, err)
	}

	r.logger.Debug("Inventory adjustment recorded",
		zap.String("adjustment_id", adj.ID.String()),
		zap.String("entity_type", string(adj.EntityType)),
		zap.String("entity_id", adj.EntityID.String()),
		zap.String("type", string(adj.AdjustmentType)),
		zap.String("before", adj.QuantityBefore.String()),
		zap.String("after", adj.QuantityAfter.String()),
	)
	return adj, nil
}
