package catalog

import (
	"strings"
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is a finished good produced from materials and sold against reservations
type Product struct {
	shared.BaseAggregateRoot
	SKU              string
	Name             string
	Stock            decimal.Decimal
	ReorderThreshold decimal.Decimal
}

// NewProduct creates a new product with zero stock
func NewProduct(sku, name string) (*Product, error) {
	if err := validateCode(sku); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               strings.ToUpper(sku),
		Name:              name,
		Stock:             decimal.Zero,
		ReorderThreshold:  decimal.Zero,
	}, nil
}

// Rename changes the product's display name
func (p *Product) Rename(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	p.Name = name
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetReorderThreshold sets the stock level at which a reorder alert is raised
func (p *Product) SetReorderThreshold(threshold decimal.Decimal) error {
	if threshold.IsNegative() {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Reorder threshold cannot be negative")
	}
	p.ReorderThreshold = threshold
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// IsBelowThreshold reports whether the current stock is at or under the reorder threshold
func (p *Product) IsBelowThreshold() bool {
	return p.Stock.LessThanOrEqual(p.ReorderThreshold)
}
