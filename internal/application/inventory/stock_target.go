package inventory

import (
	"context"

	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// stockTarget is a locked stock-carrying row, material or product
type stockTarget struct {
	entityType inventory.EntityType
	id         uuid.UUID
	name       string
	stock      decimal.Decimal
	threshold  decimal.Decimal
	repo       catalog.StockRepository
}

// lockStockTarget loads the material or product holding a row lock
func lockStockTarget(ctx context.Context, repos TransactionalRepositories, entityType inventory.EntityType, id uuid.UUID) (*stockTarget, error) {
	switch entityType {
	case inventory.EntityTypeMaterial:
		m, err := repos.MaterialRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		return &stockTarget{
			entityType: entityType,
			id:         m.ID,
			name:       m.Name,
			stock:      m.Stock,
			threshold:  m.ReorderThreshold,
			repo:       repos.MaterialRepo(),
		}, nil
	case inventory.EntityTypeProduct:
		p, err := repos.ProductRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		return &stockTarget{
			entityType: entityType,
			id:         p.ID,
			name:       p.Name,
			stock:      p.Stock,
			threshold:  p.ReorderThreshold,
			repo:       repos.ProductRepo(),
		}, nil
	default:
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Entity type must be material or product")
	}
}

// moveTo writes the new stock through the conditional increment/decrement
func (t *stockTarget) moveTo(ctx context.Context, after decimal.Decimal) error {
	delta := after.Sub(t.stock)
	switch {
	case delta.IsPositive():
		return t.repo.IncrementStock(ctx, t.id, delta)
	case delta.IsNegative():
		return t.repo.DecrementStock(ctx, t.id, delta.Neg())
	default:
		return nil
	}
}

// thresholdEvent returns the low-stock event when moving to after crosses the threshold
func (t *stockTarget) thresholdEvent(after decimal.Decimal) shared.DomainEvent {
	if !inventory.CrossedThreshold(t.stock, after, t.threshold) {
		return nil
	}
	return inventory.NewStockBelowThresholdEvent(t.entityType, t.id, t.name, after, t.threshold)
}
