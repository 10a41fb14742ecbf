package production

import (
	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLevel is the stock of one material as seen by a lookup
type StockLevel struct {
	MaterialID   uuid.UUID
	MaterialName string
	Available    decimal.Decimal
}

// StockLookup supplies material stock to the availability checker.
// The caller decides whether it is backed by a plain read or a locked read.
type StockLookup interface {
	StockOf(materialID uuid.UUID) (StockLevel, error)
}

// StockSnapshot is a StockLookup over materials that were already loaded
type StockSnapshot map[uuid.UUID]StockLevel

// NewStockSnapshot indexes materials by ID
func NewStockSnapshot(materials []catalog.Material) StockSnapshot {
	snapshot := make(StockSnapshot, len(materials))
	for _, m := range materials {
		snapshot[m.ID] = StockLevel{MaterialID: m.ID, MaterialName: m.Name, Available: m.Stock}
	}
	return snapshot
}

// StockOf returns the stock of a material, or catalog.ErrMaterialNotFound
func (s StockSnapshot) StockOf(materialID uuid.UUID) (StockLevel, error) {
	level, ok := s[materialID]
	if !ok {
		return StockLevel{}, catalog.ErrMaterialNotFound
	}
	return level, nil
}

// MaterialAvailability is the per-material line of an availability report
type MaterialAvailability struct {
	MaterialID   uuid.UUID
	MaterialName string
	Required     decimal.Decimal
	Available    decimal.Decimal
	Sufficient   bool
}

// Shortfall returns how much is missing, zero when sufficient
func (m MaterialAvailability) Shortfall() decimal.Decimal {
	if m.Sufficient {
		return decimal.Zero
	}
	return m.Required.Sub(m.Available)
}

// AvailabilityReport is the result of comparing requirements with stock
type AvailabilityReport struct {
	Sufficient  bool
	PerMaterial []MaterialAvailability
}

// Shortages returns every material that is short
func (r AvailabilityReport) Shortages() []MaterialAvailability {
	var short []MaterialAvailability
	for _, m := range r.PerMaterial {
		if !m.Sufficient {
			short = append(short, m)
		}
	}
	return short
}

// Err returns an *InsufficientMaterialsError when the report is not sufficient
func (r AvailabilityReport) Err() error {
	if r.Sufficient {
		return nil
	}
	return NewInsufficientMaterialsError(r.Shortages())
}

// Check compares requirements with the stock returned by lookup.
// A material is sufficient when available >= required; ties are sufficient.
// Check has no side effects.
func Check(requirements []Requirement, lookup StockLookup) (AvailabilityReport, error) {
	report := AvailabilityReport{
		Sufficient:  true,
		PerMaterial: make([]MaterialAvailability, 0, len(requirements)),
	}

	for _, req := range requirements {
		level, err := lookup.StockOf(req.MaterialID)
		if err != nil {
			return AvailabilityReport{}, err
		}
		sufficient := level.Available.GreaterThanOrEqual(req.QuantityRequired)
		report.PerMaterial = append(report.PerMaterial, MaterialAvailability{
			MaterialID:   req.MaterialID,
			MaterialName: level.MaterialName,
			Required:     req.QuantityRequired,
			Available:    level.Available,
			Sufficient:   sufficient,
		})
		if !sufficient {
			report.Sufficient = false
		}
	}

	return report, nil
}
