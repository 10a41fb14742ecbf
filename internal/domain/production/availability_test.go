package production

import (
	"errors"
	"testing"

	"github.com/erp/manufacturing/internal/domain/catalog"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	leaf, water, box := uuid.New(), uuid.New(), uuid.New()
	stock := StockSnapshot{
		leaf:  {MaterialID: leaf, MaterialName: "Leaf", Available: dec("10")},
		water: {MaterialID: water, MaterialName: "Water", Available: dec("5")},
		box:   {MaterialID: box, MaterialName: "Box", Available: dec("1")},
	}

	t.Run("tie is sufficient", func(t *testing.T) {
		report, err := Check([]Requirement{{MaterialID: water, QuantityRequired: dec("5")}}, stock)
		require.NoError(t, err)
		assert.True(t, report.Sufficient)
		assert.True(t, report.PerMaterial[0].Sufficient)
		assert.NoError(t, report.Err())
	})

	t.Run("every short material is reported", func(t *testing.T) {
		report, err := Check([]Requirement{
			{MaterialID: leaf, QuantityRequired: dec("12")},
			{MaterialID: water, QuantityRequired: dec("1")},
			{MaterialID: box, QuantityRequired: dec("3")},
		}, stock)
		require.NoError(t, err)
		assert.False(t, report.Sufficient)

		shortages := report.Shortages()
		require.Len(t, shortages, 2)
		assert.Equal(t, "Leaf", shortages[0].MaterialName)
		assert.True(t, shortages[0].Shortfall().Equal(dec("2")))
		assert.Equal(t, "Box", shortages[1].MaterialName)

		err = report.Err()
		assert.ErrorIs(t, err, ErrInsufficientMaterials)
		var insufficient *InsufficientMaterialsError
		require.True(t, errors.As(err, &insufficient))
		assert.Len(t, insufficient.Shortages, 2)
		assert.Contains(t, err.Error(), "Leaf (required 12, available 10)")
		assert.Equal(t, "INSUFFICIENT_MATERIALS", shared.ErrorCode(err))
	})

	t.Run("unknown material", func(t *testing.T) {
		_, err := Check([]Requirement{{MaterialID: uuid.New(), QuantityRequired: dec("1")}}, stock)
		assert.ErrorIs(t, err, catalog.ErrMaterialNotFound)
	})

	t.Run("check does not mutate the lookup", func(t *testing.T) {
		_, err := Check([]Requirement{{MaterialID: leaf, QuantityRequired: dec("4")}}, stock)
		require.NoError(t, err)
		assert.True(t, stock[leaf].Available.Equal(dec("10")))
	})
}

func TestNewStockSnapshot(t *testing.T) {
	m, err := catalog.NewMaterial("LEAF", "Leaf", "", "kg")
	require.NoError(t, err)
	m.Stock = dec("15")

	snapshot := NewStockSnapshot([]catalog.Material{*m})
	level, err := snapshot.StockOf(m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Leaf", level.MaterialName)
	assert.True(t, level.Available.Equal(dec("15")))
}
