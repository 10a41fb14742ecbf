package handler_test

import (
	"net/http"
	"testing"

	catalogapp "github.com/erp/manufacturing/internal/application/catalog"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialHandler_CRUD(t *testing.T) {
	api := newTestAPI(t)

	m := api.createMaterial("LEAF", "")
	assert.Equal(t, "LEAF", m.Code)
	assert.True(t, m.Stock.IsZero())

	env := api.mustDo(http.StatusOK, http.MethodGet, "/api/v1/materials/"+m.ID.String(), shared.RoleViewer, nil)
	assert.Equal(t, m.ID, decodeData[catalogapp.MaterialResponse](t, env).ID)

	env = api.mustDo(http.StatusOK, http.MethodPut, "/api/v1/materials/"+m.ID.String(), shared.RoleAdmin,
		map[string]any{"name": "Dried leaf", "reorder_threshold": "5"})
	updated := decodeData[catalogapp.MaterialResponse](t, env)
	assert.Equal(t, "Dried leaf", updated.Name)
	assert.True(t, updated.BelowThreshold)

	api.createMaterial("STEM", "")
	env = api.mustDo(http.StatusOK, http.MethodGet, "/api/v1/materials?page=1&page_size=1", shared.RoleViewer, nil)
	require.NotNil(t, env.Meta)
	assert.EqualValues(t, 2, env.Meta.Total)
	assert.Equal(t, 2, env.Meta.TotalPages)
	assert.Len(t, decodeData[[]catalogapp.MaterialResponse](t, env), 1)

	api.mustDo(http.StatusNoContent, http.MethodDelete, "/api/v1/materials/"+m.ID.String(), shared.RoleAdmin, nil)
	env = api.mustDo(http.StatusNotFound, http.MethodGet, "/api/v1/materials/"+m.ID.String(), shared.RoleViewer, nil)
	assert.Equal(t, "MATERIAL_NOT_FOUND", env.Error.Code)
}

func TestMaterialHandler_Rejections(t *testing.T) {
	api := newTestAPI(t)
	body := map[string]any{"code": "LEAF", "name": "Leaf", "unit": "kg"}

	tests := []struct {
		name     string
		method   string
		path     string
		role     shared.Role
		body     any
		status   int
		wantCode string
	}{
		{"no actor", http.MethodPost, "/api/v1/materials", "", body, http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"viewer cannot write", http.MethodPost, "/api/v1/materials", shared.RoleViewer, body, http.StatusForbidden, dto.ErrCodeForbidden},
		{"missing fields", http.MethodPost, "/api/v1/materials", shared.RoleAdmin, map[string]any{"code": "X"}, http.StatusBadRequest, dto.ErrCodeValidation},
		{"malformed id", http.MethodGet, "/api/v1/materials/not-a-uuid", shared.RoleViewer, nil, http.StatusBadRequest, dto.ErrCodeInvalidInput},
		{"bad page size", http.MethodGet, "/api/v1/materials?page_size=1000", shared.RoleViewer, nil, http.StatusBadRequest, dto.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := api.mustDo(tt.status, tt.method, tt.path, tt.role, tt.body)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestMaterialHandler_DuplicateCodeConflicts(t *testing.T) {
	api := newTestAPI(t)
	api.createMaterial("LEAF", "")

	env := api.mustDo(http.StatusConflict, http.MethodPost, "/api/v1/materials", shared.RoleAdmin,
		map[string]any{"code": "LEAF", "name": "Leaf again", "unit": "kg"})
	assert.Equal(t, dto.ErrCodeAlreadyExists, env.Error.Code)
}

func TestMaterialHandler_DeleteInUse(t *testing.T) {
	api := newTestAPI(t)
	leaf := api.createMaterial("LEAF", "")
	api.createProduct("TEA", map[uuid.UUID]string{leaf.ID: "0.1"})

	env := api.mustDo(http.StatusConflict, http.MethodDelete, "/api/v1/materials/"+leaf.ID.String(), shared.RoleAdmin, nil)
	assert.Equal(t, dto.ErrCodeMaterialInUse, env.Error.Code)
}

func TestProductHandler_BOMLines(t *testing.T) {
	api := newTestAPI(t)
	leaf := api.createMaterial("LEAF", "")
	box := api.createMaterial("BOX", "")
	p := api.createProduct("TEA", map[uuid.UUID]string{leaf.ID: "0.1"})

	bomPath := "/api/v1/products/" + p.ID.String() + "/bom"
	api.mustDo(http.StatusOK, http.MethodPut, bomPath+"/"+box.ID.String(), shared.RoleAdmin,
		map[string]any{"basis": "direct", "quantity": "1"})

	env := api.mustDo(http.StatusOK, http.MethodGet, bomPath, shared.RoleViewer, nil)
	assert.Len(t, decodeData[[]catalogapp.BOMLineResponse](t, env), 2)

	env = api.mustDo(http.StatusBadRequest, http.MethodPut, bomPath+"/"+box.ID.String(), shared.RoleAdmin,
		map[string]any{"basis": "per_unit", "quantity": "0"})
	assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)

	env = api.mustDo(http.StatusBadRequest, http.MethodPut, bomPath+"/"+box.ID.String(), shared.RoleAdmin,
		map[string]any{"basis": "per_batch", "quantity": "1"})
	assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)

	api.mustDo(http.StatusNoContent, http.MethodDelete, bomPath+"/"+box.ID.String(), shared.RoleAdmin, nil)
	env = api.mustDo(http.StatusOK, http.MethodGet, bomPath, shared.RoleViewer, nil)
	assert.Len(t, decodeData[[]catalogapp.BOMLineResponse](t, env), 1)

	env = api.mustDo(http.StatusNotFound, http.MethodPut, bomPath+"/"+uuid.NewString(), shared.RoleAdmin,
		map[string]any{"basis": "per_unit", "quantity": "1"})
	assert.Equal(t, "MATERIAL_NOT_FOUND", env.Error.Code)
}

func TestProductHandler_GetAndUpdate(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProduct("TEA", nil)

	env := api.mustDo(http.StatusOK, http.MethodPut, "/api/v1/products/"+p.ID.String(), shared.RoleAdmin,
		map[string]any{"name": "Green tea"})
	assert.Equal(t, "Green tea", decodeData[catalogapp.ProductResponse](t, env).Name)

	env = api.mustDo(http.StatusOK, http.MethodGet, "/api/v1/products?search=Green", shared.RoleViewer, nil)
	assert.Len(t, decodeData[[]catalogapp.ProductResponse](t, env), 1)

	env = api.mustDo(http.StatusNotFound, http.MethodGet, "/api/v1/products/"+uuid.NewString(), shared.RoleViewer, nil)
	assert.Equal(t, "PRODUCT_NOT_FOUND", env.Error.Code)
}
