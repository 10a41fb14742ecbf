package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func setupTestMeter(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetricByName(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func attrString(set attribute.Set, key string) string {
	v, ok := set.Value(attribute.Key(key))
	if !ok {
		return ""
	}
	return v.Emit()
}

func TestHTTPMetrics_NilMeter(t *testing.T) {
	router := gin.New()
	router.Use(HTTPMetrics(nil, zap.NewNop()))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTPMetrics_RequestCounter(t *testing.T) {
	mp, reader := setupTestMeter(t)
	actor := shared.NewActor(uuid.New(), shared.RoleFulfillment)

	router := gin.New()
	router.Use(HTTPMetrics(mp.Meter("test"), zap.NewNop()))
	router.Use(func(c *gin.Context) {
		c.Set(ActorKey, actor)
		c.Next()
	})
	router.GET("/products/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.POST("/reservations", func(c *gin.Context) {
		c.Set(ErrorCodeKey, "INSUFFICIENT_STOCK")
		c.Status(http.StatusUnprocessableEntity)
	})

	for i := 0; i < 2; i++ {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/"+uuid.NewString(), nil))
	}
	router.ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodPost, "/reservations", strings.NewReader(`{"quantity":"5"}`)))

	rm := collectMetrics(t, reader)
	m := findMetricByName(rm, "http_server_request_total")
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	byRoute := map[string]metricdata.DataPoint[int64]{}
	for _, dp := range sum.DataPoints {
		byRoute[attrString(dp.Attributes, "http.route")] = dp
	}

	get := byRoute["/products/:id"]
	assert.Equal(t, int64(2), get.Value)
	assert.Equal(t, "fulfillment", attrString(get.Attributes, "actor_role"))
	assert.Equal(t, "200", attrString(get.Attributes, "http.status_code"))
	assert.Empty(t, attrString(get.Attributes, "error_code"))

	post := byRoute["/reservations"]
	assert.Equal(t, int64(1), post.Value)
	assert.Equal(t, "INSUFFICIENT_STOCK", attrString(post.Attributes, "error_code"))

	assert.NotNil(t, findMetricByName(rm, "http_server_request_duration_seconds"))
	assert.NotNil(t, findMetricByName(rm, "http_server_request_size_bytes"))
	assert.NotNil(t, findMetricByName(rm, "http_server_response_size_bytes"))
}

func TestHTTPMetrics_UnmatchedRoute(t *testing.T) {
	mp, reader := setupTestMeter(t)

	router := gin.New()
	router.Use(HTTPMetrics(mp.Meter("test"), nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	m := findMetricByName(collectMetrics(t, reader), "http_server_request_total")
	require.NotNil(t, m)
	sum := m.Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, "unknown", attrString(sum.DataPoints[0].Attributes, "http.route"))
	assert.Equal(t, "404", attrString(sum.DataPoints[0].Attributes, "http.status_code"))
}

func TestHTTPMetrics_ActiveRequestsReturnToZero(t *testing.T) {
	mp, reader := setupTestMeter(t)

	router := gin.New()
	router.Use(HTTPMetrics(mp.Meter("test"), nil))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))

	m := findMetricByName(collectMetrics(t, reader), "http_server_active_requests")
	require.NotNil(t, m)
	sum := m.Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	assert.Zero(t, sum.DataPoints[0].Value)
}
