package handler_test

import (
	"net/http"
	"testing"
	"time"

	catalogapp "github.com/erp/manufacturing/internal/application/catalog"
	invapp "github.com/erp/manufacturing/internal/application/inventory"
	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/interfaces/http/dto"
	"github.com/erp/manufacturing/internal/interfaces/http/handler"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stockedProduct creates a product and books the given opening stock
func (a *testAPI) stockedProduct(sku, stock string) catalogapp.ProductResponse {
	a.t.Helper()
	p := a.createProduct(sku, nil)
	a.mustDo(http.StatusCreated, http.MethodPost, "/api/v1/adjustments", shared.RoleAdmin, map[string]any{
		"entity_type": "product", "entity_id": p.ID, "new_quantity": stock, "reason": "opening balance",
	})
	return p
}

func TestReservationHandler_ReserveAndATP(t *testing.T) {
	api := newTestAPI(t)
	tea := api.stockedProduct("TEA", "10")

	env := api.mustDo(http.StatusCreated, http.MethodPost, "/api/v1/reservations", shared.RoleFulfillment, map[string]any{
		"product_id": tea.ID, "quantity": "4", "order_ref": "SO-1", "order_line_ref": "1",
	})
	result := decodeData[invapp.ReserveResult](t, env)
	assert.Equal(t, inventory.ReservationTypeOrder, result.Reservation.ReservationType)
	assert.True(t, decimal.RequireFromString("6").Equal(result.ATP.Available))

	env = api.mustDo(http.StatusOK, http.MethodGet, "/api/v1/products/"+tea.ID.String()+"/atp", shared.RoleViewer, nil)
	atp := decodeData[inventory.AvailableToPromise](t, env)
	assert.True(t, decimal.RequireFromString("10").Equal(atp.Stock))
	assert.True(t, decimal.RequireFromString("4").Equal(atp.Reserved))
	assert.True(t, decimal.RequireFromString("6").Equal(atp.Available))

	env = api.mustDo(http.StatusUnprocessableEntity, http.MethodPost, "/api/v1/reservations", shared.RoleFulfillment, map[string]any{
		"product_id": tea.ID, "quantity": "7",
	})
	assert.Equal(t, dto.ErrCodeInsufficientStock, env.Error.Code)

	env = api.mustDo(http.StatusOK, http.MethodGet, "/api/v1/reservations?product_id="+tea.ID.String(), shared.RoleViewer, nil)
	assert.Len(t, decodeData[[]invapp.ReservationResponse](t, env), 1)
}

func TestReservationHandler_ReleaseAndFulfill(t *testing.T) {
	api := newTestAPI(t)
	tea := api.stockedProduct("TEA", "10")
	expires := time.Now().Add(time.Hour).UTC()

	reserve := func(qty, orderRef string) uuid.UUID {
		body := map[string]any{"product_id": tea.ID, "quantity": qty, "type": "manual", "expires_at": expires}
		if orderRef != "" {
			body["type"] = "order"
			body["order_ref"] = orderRef
		}
		env := api.mustDo(http.StatusCreated, http.MethodPost, "/api/v1/reservations", shared.RoleFulfillment, body)
		return decodeData[invapp.ReserveResult](t, env).Reservation.ID
	}

	manual := reserve("1", "")
	api.mustDo(http.StatusNoContent, http.MethodDelete, "/api/v1/reservations/"+manual.String(), shared.RoleFulfillment, nil)
	api.mustDo(http.StatusNotFound, http.MethodDelete, "/api/v1/reservations/"+manual.String(), shared.RoleFulfillment, nil)

	reserve("2", "SO-7")
	reserve("3", "SO-7")
	env := api.mustDo(http.StatusOK, http.MethodDelete, "/api/v1/orders/SO-7/reservations", shared.RoleFulfillment, nil)
	released := decodeData[handler.ReleaseByOrderResponse](t, env)
	assert.Equal(t, "SO-7", released.OrderRef)
	assert.EqualValues(t, 2, released.Released)

	shipped := reserve("4", "SO-8")
	env = api.mustDo(http.StatusOK, http.MethodPost, "/api/v1/reservations/"+shipped.String()+"/fulfill", shared.RoleFulfillment, nil)
	fulfilled := decodeData[invapp.FulfillmentResponse](t, env)
	assert.Equal(t, inventory.AdjustmentTypeOrderFulfillment, fulfilled.Adjustment.AdjustmentType)
	assert.True(t, decimal.RequireFromString("6").Equal(fulfilled.Adjustment.QuantityAfter))

	env = api.mustDo(http.StatusOK, http.MethodGet, "/api/v1/products/"+tea.ID.String()+"/atp", shared.RoleViewer, nil)
	atp := decodeData[inventory.AvailableToPromise](t, env)
	assert.True(t, atp.Reserved.IsZero())
	assert.True(t, decimal.RequireFromString("6").Equal(atp.Available))
}

func TestReservationHandler_Rejections(t *testing.T) {
	api := newTestAPI(t)
	tea := api.stockedProduct("TEA", "10")

	tests := []struct {
		name     string
		method   string
		path     string
		role     shared.Role
		body     any
		status   int
		wantCode string
	}{
		{"viewer cannot reserve", http.MethodPost, "/api/v1/reservations", shared.RoleViewer,
			map[string]any{"product_id": tea.ID, "quantity": "1"}, http.StatusForbidden, dto.ErrCodeForbidden},
		{"production cannot reserve", http.MethodPost, "/api/v1/reservations", shared.RoleProduction,
			map[string]any{"product_id": tea.ID, "quantity": "1"}, http.StatusForbidden, dto.ErrCodeForbidden},
		{"zero quantity", http.MethodPost, "/api/v1/reservations", shared.RoleFulfillment,
			map[string]any{"product_id": tea.ID, "quantity": "0"}, http.StatusBadRequest, dto.ErrCodeValidation},
		{"unknown type", http.MethodPost, "/api/v1/reservations", shared.RoleFulfillment,
			map[string]any{"product_id": tea.ID, "quantity": "1", "type": "backorder"}, http.StatusBadRequest, dto.ErrCodeValidation},
		{"unknown product", http.MethodPost, "/api/v1/reservations", shared.RoleFulfillment,
			map[string]any{"product_id": uuid.New(), "quantity": "1"}, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{"list needs product", http.MethodGet, "/api/v1/reservations", shared.RoleViewer,
			nil, http.StatusBadRequest, dto.ErrCodeValidation},
		{"malformed id", http.MethodPost, "/api/v1/reservations/nope/fulfill", shared.RoleFulfillment,
			nil, http.StatusBadRequest, dto.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := api.mustDo(tt.status, tt.method, tt.path, tt.role, tt.body)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestAdjustmentHandler_AdjustAndHistory(t *testing.T) {
	api := newTestAPI(t)
	leaf := api.createMaterial("LEAF", "10")

	env := api.mustDo(http.StatusCreated, http.MethodPost, "/api/v1/adjustments", shared.RoleProduction, map[string]any{
		"entity_type": "material", "entity_id": leaf.ID, "delta": "-3.5", "reason": "spillage",
	})
	adj := decodeData[invapp.AdjustmentResponse](t, env)
	assert.True(t, decimal.RequireFromString("10").Equal(adj.QuantityBefore))
	assert.True(t, decimal.RequireFromString("6.5").Equal(adj.QuantityAfter))
	assert.Equal(t, "production", adj.ActorRole)

	env = api.mustDo(http.StatusUnprocessableEntity, http.MethodPost, "/api/v1/adjustments", shared.RoleProduction, map[string]any{
		"entity_type": "material", "entity_id": leaf.ID, "delta": "-7", "reason": "too much",
	})
	assert.Equal(t, dto.ErrCodeInsufficientStock, env.Error.Code)

	env = api.mustDo(http.StatusOK, http.MethodGet,
		"/api/v1/adjustments?entity_type=material&entity_id="+leaf.ID.String()+"&page_size=1", shared.RoleViewer, nil)
	history := decodeData[[]invapp.AdjustmentResponse](t, env)
	require.Len(t, history, 1)
	assert.Equal(t, leaf.ID, history[0].EntityID)
	assert.EqualValues(t, 2, env.Meta.Total)
}

func TestAdjustmentHandler_Rejections(t *testing.T) {
	api := newTestAPI(t)
	leaf := api.createMaterial("LEAF", "")

	env := api.mustDo(http.StatusForbidden, http.MethodPost, "/api/v1/adjustments", shared.RoleFulfillment, map[string]any{
		"entity_type": "material", "entity_id": leaf.ID, "delta": "1", "reason": "count",
	})
	assert.Equal(t, dto.ErrCodeForbidden, env.Error.Code)

	env = api.mustDo(http.StatusBadRequest, http.MethodPost, "/api/v1/adjustments", shared.RoleAdmin, map[string]any{
		"entity_type": "pallet", "entity_id": leaf.ID, "delta": "1", "reason": "count",
	})
	assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)

	env = api.mustDo(http.StatusBadRequest, http.MethodPost, "/api/v1/adjustments", shared.RoleAdmin, map[string]any{
		"entity_type": "material", "entity_id": leaf.ID, "new_quantity": "-1", "reason": "count",
	})
	assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)

	env = api.mustDo(http.StatusBadRequest, http.MethodPost, "/api/v1/adjustments", shared.RoleAdmin, map[string]any{
		"entity_type": "material", "entity_id": leaf.ID, "new_quantity": "1", "delta": "1", "reason": "count",
	})
	assert.Equal(t, dto.ErrCodeInvalidInput, env.Error.Code)

	env = api.mustDo(http.StatusBadRequest, http.MethodGet, "/api/v1/adjustments?adjustment_type=theft", shared.RoleViewer, nil)
	assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
}
