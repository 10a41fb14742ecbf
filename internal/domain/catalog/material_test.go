package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMaterial(t *testing.T) {
	t.Run("creates material with zero stock", func(t *testing.T) {
		m, err := NewMaterial("leaf-01", "Leaf", "herbs", "kg")
		require.NoError(t, err)
		assert.Equal(t, "LEAF-01", m.Code)
		assert.True(t, m.Stock.IsZero())
		assert.Equal(t, 1, m.GetVersion())
	})

	t.Run("fails with invalid code", func(t *testing.T) {
		_, err := NewMaterial("leaf 01", "Leaf", "", "kg")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "can only contain letters")
	})

	t.Run("fails with empty unit", func(t *testing.T) {
		_, err := NewMaterial("LEAF", "Leaf", "", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Unit cannot be empty")
	})
}

func TestMaterial_IsBelowThreshold(t *testing.T) {
	m, err := NewMaterial("LEAF", "Leaf", "", "kg")
	require.NoError(t, err)
	require.NoError(t, m.SetReorderThreshold(decimal.NewFromInt(5)))

	m.Stock = decimal.NewFromInt(6)
	assert.False(t, m.IsBelowThreshold())

	m.Stock = decimal.NewFromInt(5)
	assert.True(t, m.IsBelowThreshold())

	assert.Error(t, m.SetReorderThreshold(decimal.NewFromInt(-1)))
}

func TestProduct_UpdateBumpsVersion(t *testing.T) {
	p, err := NewProduct("tea-box", "Tea Box")
	require.NoError(t, err)
	assert.Equal(t, "TEA-BOX", p.SKU)

	require.NoError(t, p.Rename("Tea Box Large"))
	assert.Equal(t, 2, p.GetVersion())
	assert.Error(t, p.Rename("  "))
}
