package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	catalogapp "github.com/erp/manufacturing/internal/application/catalog"
	invapp "github.com/erp/manufacturing/internal/application/inventory"
	prodapp "github.com/erp/manufacturing/internal/application/production"
	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/auth"
	"github.com/erp/manufacturing/internal/infrastructure/cache"
	"github.com/erp/manufacturing/internal/infrastructure/config"
	"github.com/erp/manufacturing/internal/infrastructure/persistence"
	"github.com/erp/manufacturing/internal/infrastructure/persistence/models"
	"github.com/erp/manufacturing/internal/interfaces/http/dto"
	"github.com/erp/manufacturing/internal/interfaces/http/handler"
	"github.com/erp/manufacturing/internal/interfaces/http/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testServer struct {
	api    *API
	tokens *auth.JWTService
}

func newTestServer(t *testing.T, httpCfg config.HTTPConfig, configure ...func(*Options)) *testServer {
	t.Helper()

	database, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, database.DB.AutoMigrate(models.AllModels()...))

	db := database.DB
	log := zaptest.NewLogger(t)
	recorder := invapp.NewAuditRecorder(log)
	materialRepo := persistence.NewGormMaterialRepository(db)
	productRepo := persistence.NewGormProductRepository(db)
	bomRepo := persistence.NewGormBOMRepository(db)
	requestRepo := persistence.NewGormProductionRequestRepository(db)
	inventoryScope := persistence.NewGormInventoryTransactionScope(db)

	handlers := Handlers{
		Materials: handler.NewMaterialHandler(catalogapp.NewMaterialService(materialRepo, log, bomRepo, requestRepo)),
		Products:  handler.NewProductHandler(catalogapp.NewProductService(productRepo, materialRepo, bomRepo, log)),
		Requests: handler.NewProductionRequestHandler(prodapp.NewService(
			requestRepo, persistence.NewGormProductionTransactionScope(db), recorder, log,
		)),
		Reservations: handler.NewReservationHandler(invapp.NewReservationService(
			productRepo, persistence.NewGormStockReservationRepository(db), inventoryScope, recorder, log,
		)),
		Adjustments: handler.NewAdjustmentHandler(invapp.NewAdjustmentService(
			persistence.NewGormInventoryAdjustmentRepository(db), inventoryScope, recorder, log,
		)),
		Health: handler.NewHealthHandler(database),
	}

	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	tokens := auth.NewJWTService(config.JWTConfig{
		Secret:                "router-test-secret-0123456789abcdef",
		AccessTokenExpiration: time.Hour,
		Issuer:                "manufacturing-ledger",
	})

	opts := Options{
		HTTP:             httpCfg,
		JWTService:       tokens,
		IdempotencyStore: store,
		IdempotencyTTL:   time.Minute,
		Tracing:          middleware.TracingConfig{Enabled: false},
		Profiling:        middleware.ProfilingConfig{Enabled: false},
		Logger:           log,
	}
	for _, fn := range configure {
		fn(&opts)
	}
	api := New(opts, handlers)
	t.Cleanup(api.Stop)

	return &testServer{api: api, tokens: tokens}
}

func (s *testServer) request(t *testing.T, method, path string, role shared.Role, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		token, _, err := s.tokens.Issue(auth.IssueInput{ActorID: uuid.New(), Role: role})
		require.NoError(t, err)
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.api.Engine.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error.Code
}

func TestAPI_HealthChecksNeedNoToken(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{})

	assert.Equal(t, http.StatusOK, s.request(t, http.MethodGet, "/health", "", "", nil).Code)
	w := s.request(t, http.MethodGet, "/ready", "", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestAPI_RequiresBearerToken(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{})

	w := s.request(t, http.MethodGet, "/api/v1/materials", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeUnauthorized, errorCode(t, w))

	w = s.request(t, http.MethodGet, "/api/v1/materials", shared.RoleViewer, "", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestAPI_RoleComesFromToken(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{})
	body := `{"code":"LEAF","name":"Leaf","unit":"kg"}`

	w := s.request(t, http.MethodPost, "/api/v1/materials", shared.RoleViewer, body, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.request(t, http.MethodPost, "/api/v1/materials", shared.RoleAdmin, body, nil)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestAPI_IdempotencyKeyOnCreateEndpoints(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{})

	w := s.request(t, http.MethodPost, "/api/v1/products", shared.RoleAdmin, `{"sku":"TEA","name":"Tea"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Data catalogapp.ProductResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	productID := created.Data.ID.String()

	adjust := `{"entity_type":"product","entity_id":"` + productID + `","new_quantity":"5","reason":"count"}`
	require.Equal(t, http.StatusCreated, s.request(t, http.MethodPost, "/api/v1/adjustments", shared.RoleAdmin, adjust, nil).Code)

	// Tokens carry a fresh actor per request, so the replay has to reuse one token.
	token, _, err := s.tokens.Issue(auth.IssueInput{ActorID: uuid.New(), Role: shared.RoleFulfillment})
	require.NoError(t, err)
	headers := map[string]string{
		middleware.AuthHeaderKey:        middleware.BearerPrefix + token,
		middleware.IdempotencyKeyHeader: "SO-1-line-1",
	}
	reserve := `{"product_id":"` + productID + `","quantity":"2","order_ref":"SO-1"}`

	w = s.request(t, http.MethodPost, "/api/v1/reservations", "", reserve, headers)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.request(t, http.MethodPost, "/api/v1/reservations", "", reserve, headers)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeDuplicateRequest, errorCode(t, w))

	w = s.request(t, http.MethodGet, "/api/v1/products/"+productID+"/atp", shared.RoleViewer, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var atp struct {
		Data inventory.AvailableToPromise `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &atp))
	assert.True(t, decimal.NewFromInt(2).Equal(atp.Data.Reserved))
}

func TestAPI_RateLimitPerActor(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{
		RateLimitEnabled:  true,
		RateLimitRequests: 2,
		RateLimitWindow:   time.Minute,
	})

	token, _, err := s.tokens.Issue(auth.IssueInput{ActorID: uuid.New(), Role: shared.RoleViewer})
	require.NoError(t, err)
	headers := map[string]string{middleware.AuthHeaderKey: middleware.BearerPrefix + token}

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, s.request(t, http.MethodGet, "/api/v1/products", "", "", headers).Code)
	}
	w := s.request(t, http.MethodGet, "/api/v1/products", "", "", headers)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, dto.ErrCodeRateLimited, errorCode(t, w))

	assert.Equal(t, http.StatusOK, s.request(t, http.MethodGet, "/api/v1/products", shared.RoleViewer, "", nil).Code)
}

func TestAPI_BodyLimit(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{MaxBodySize: 64})

	body := `{"code":"LEAF","name":"` + strings.Repeat("x", 100) + `","unit":"kg"}`
	w := s.request(t, http.MethodPost, "/api/v1/materials", shared.RoleAdmin, body, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestAPI_SwaggerDocs(t *testing.T) {
	t.Run("serves the generated document when enabled", func(t *testing.T) {
		s := newTestServer(t, config.HTTPConfig{}, func(o *Options) {
			o.Swagger = middleware.SwaggerConfig{Enabled: true}
		})

		w := s.request(t, http.MethodGet, "/swagger/doc.json", "", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"/production-requests/{id}/complete"`)
		assert.Contains(t, w.Body.String(), `"/reservations/{id}/fulfill"`)
		assert.Contains(t, w.Body.String(), "/api/v1")
	})

	t.Run("answers 404 when disabled", func(t *testing.T) {
		s := newTestServer(t, config.HTTPConfig{})

		w := s.request(t, http.MethodGet, "/swagger/doc.json", "", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, errorCode(t, w))
	})

	t.Run("requires a token when configured", func(t *testing.T) {
		s := newTestServer(t, config.HTTPConfig{}, func(o *Options) {
			o.Swagger = middleware.SwaggerConfig{Enabled: true, RequireAuth: true}
		})

		assert.Equal(t, http.StatusUnauthorized, s.request(t, http.MethodGet, "/swagger/doc.json", "", "", nil).Code)
		assert.Equal(t, http.StatusOK, s.request(t, http.MethodGet, "/swagger/doc.json", shared.RoleViewer, "", nil).Code)
	})
}
