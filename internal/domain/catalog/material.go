package catalog

import (
	"strings"
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Material is a raw material consumed by production.
// Stock is owned by the ledger: it is only changed through the
// production, reservation and adjustment paths, never by Update.
type Material struct {
	shared.BaseAggregateRoot
	Code             string
	Name             string
	Category         string
	Unit             string
	Stock            decimal.Decimal
	ReorderThreshold decimal.Decimal
}

// NewMaterial creates a new material with zero stock
func NewMaterial(code, name, category, unit string) (*Material, error) {
	if err := validateCode(code); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateUnit(unit); err != nil {
		return nil, err
	}

	return &Material{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Category:          category,
		Unit:              unit,
		Stock:             decimal.Zero,
		ReorderThreshold:  decimal.Zero,
	}, nil
}

// Update changes the descriptive fields of the material
func (m *Material) Update(name, category, unit string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := validateUnit(unit); err != nil {
		return err
	}

	m.Name = name
	m.Category = category
	m.Unit = unit
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	return nil
}

// SetReorderThreshold sets the stock level at which a reorder alert is raised
func (m *Material) SetReorderThreshold(threshold decimal.Decimal) error {
	if threshold.IsNegative() {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Reorder threshold cannot be negative")
	}
	m.ReorderThreshold = threshold
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	return nil
}

// IsBelowThreshold reports whether the current stock is at or under the reorder threshold
func (m *Material) IsBelowThreshold() bool {
	return m.Stock.LessThanOrEqual(m.ReorderThreshold)
}

func validateCode(code string) error {
	if code == "" {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError(shared.ErrInvalidInput.Code, "Code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Name cannot exceed 200 characters")
	}
	return nil
}

func validateUnit(unit string) error {
	if unit == "" {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Unit cannot be empty")
	}
	if len(unit) > 20 {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Unit cannot exceed 20 characters")
	}
	return nil
}
