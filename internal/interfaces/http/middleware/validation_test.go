package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/manufacturing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quantityInput struct {
	Reason   string          `json:"reason" binding:"required,max=10"`
	Quantity decimal.Decimal `json:"quantity" binding:"decimal_gt0"`
	Floor    decimal.Decimal `json:"floor" binding:"decimal_gte0"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var in quantityInput
		if err := c.ShouldBindJSON(&in); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestValidation_DecimalTags(t *testing.T) {
	router := newValidationRouter()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantFields []string
	}{
		{"valid", `{"reason":"count","quantity":"2.5","floor":"0"}`, http.StatusOK, nil},
		{"zero quantity", `{"reason":"count","quantity":"0","floor":"0"}`, http.StatusBadRequest, []string{"quantity"}},
		{"negative floor", `{"reason":"count","quantity":1,"floor":-1}`, http.StatusBadRequest, []string{"floor"}},
		{"missing reason and quantity", `{"floor":"1"}`, http.StatusBadRequest, []string{"reason", "quantity"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantFields == nil {
				return
			}
			errInfo := decodeError(t, w)
			assert.Equal(t, dto.ErrCodeValidation, errInfo.Code)
			var fields []string
			for _, d := range errInfo.Details {
				fields = append(fields, d.Field)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestHandleValidationError_MalformedJSON(t *testing.T) {
	w := postJSON(newValidationRouter(), `{"reason":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidJSON, decodeError(t, w).Code)
}

func TestValidation_Messages(t *testing.T) {
	w := postJSON(newValidationRouter(), `{"reason":"far too long a reason","quantity":"-3"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	messages := map[string]string{}
	for _, d := range decodeError(t, w).Details {
		messages[d.Field] = d.Message
	}
	assert.Equal(t, "Must be at most 10 characters", messages["reason"])
	assert.Equal(t, "Must be a positive number", messages["quantity"])
}
