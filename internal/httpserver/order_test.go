package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fieldserve/orders-api/internal/models"
	"github.com/fieldserve/orders-api/internal/repo"
	"github.com/fieldserve/orders-api/internal/service"
	"github.com/fieldserve/orders-api/internal/transport"
)

type testEnv struct {
	E  *echo.Echo
	DB *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ServiceOrder{}, &models.ServicePart{}))

	svc := &service.OrderService{Repo: &repo.GormRepo{DB: db}}

	e := echo.New()
	Register(e, &Deps{
		OrderHandler: &OrderHTTP{Svc: svc},
		Environment:  "test",
		EnableDocs:   true,
	})

	return &testEnv{E: e, DB: db}
}

func (env *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func orderBody(area string) map[string]any {
	return map[string]any{
		"service_name":    "AC repair",
		"area":            area,
		"technician_name": "Dana",
		"status":          "Open",
		"parts": []map[string]any{
			{"part_name": "filter", "quantity": 2, "unit_price": "10.50"},
			{"part_name": "coolant", "quantity": 1, "unit_price": "35.00"},
		},
	}
}

func (env *testEnv) createOrder(t *testing.T, area string) uuid.UUID {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/api/orders", orderBody(area))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp transport.CreatedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEqual(t, uuid.Nil, resp.ID)
	return resp.ID
}

func TestCreateAndGetOrder(t *testing.T) {
	env := newTestEnv(t)

	id := env.createOrder(t, "HVAC")

	rec := env.do(t, http.MethodGet, "/api/orders/"+id.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var order transport.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	require.Equal(t, id, order.ID)
	require.Equal(t, "HVAC", order.Area)
	require.Equal(t, models.StatusOpen, order.Status)
	require.True(t, order.TotalCost.Equal(decimal.RequireFromString("56.00")))
	require.Len(t, order.Parts, 2)
	for _, p := range order.Parts {
		require.True(t, p.LineTotal.Equal(p.UnitPrice.Mul(decimalFromInt(p.Quantity))))
	}
}

func TestCreateOrderValidation(t *testing.T) {
	env := newTestEnv(t)

	body := orderBody("HVAC")
	body["parts"] = []map[string]any{
		{"part_name": "filter", "quantity": 0, "unit_price": "10.50"},
	}
	rec := env.do(t, http.MethodPost, "/api/orders", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body = orderBody("HVAC")
	body["service_name"] = ""
	rec = env.do(t, http.MethodPost, "/api/orders", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Nothing persisted.
	rec = env.do(t, http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var result transport.PagedResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Zero(t, result.TotalCount)
}

func TestGetOrderErrors(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/orders/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/orders/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateOrder(t *testing.T) {
	env := newTestEnv(t)

	id := env.createOrder(t, "HVAC")

	update := map[string]any{
		"service_name":    "AC replacement",
		"area":            "HVAC",
		"technician_name": "Lee",
		"status":          "InProgress",
		"parts": []map[string]any{
			{"part_name": "compressor", "quantity": 1, "unit_price": "450.00"},
		},
	}
	rec := env.do(t, http.MethodPut, "/api/orders/"+id.String(), update)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/orders/"+id.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var order transport.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	require.Equal(t, "AC replacement", order.ServiceName)
	require.Equal(t, models.StatusInProgress, order.Status)
	require.Len(t, order.Parts, 1)
	require.Equal(t, "compressor", order.Parts[0].PartName)
	require.True(t, order.TotalCost.Equal(decimal.RequireFromString("450.00")))
}

func TestUpdateOrderNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/orders/"+uuid.NewString(), orderBody("HVAC"))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteOrder(t *testing.T) {
	env := newTestEnv(t)

	id := env.createOrder(t, "HVAC")

	rec := env.do(t, http.MethodDelete, "/api/orders/"+id.String(), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/orders/"+id.String(), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/orders/"+id.String(), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var parts int64
	require.NoError(t, env.DB.Model(&models.ServicePart{}).Count(&parts).Error)
	require.Zero(t, parts)
}

func TestListOrdersFilterAndEnvelope(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 3; i++ {
		env.createOrder(t, "HVAC")
	}
	env.createOrder(t, "Electrical")

	rec := env.do(t, http.MethodGet, "/api/orders?area=HVAC&page=1&pageSize=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result transport.PagedResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.EqualValues(t, 3, result.TotalCount)
	require.Len(t, result.Items, 2)
	require.Equal(t, 1, result.Page)
	require.Equal(t, 2, result.PageSize)
	for _, o := range result.Items {
		require.Equal(t, "HVAC", o.Area)
	}

	// Whitespace-only filter is the same as no filter.
	rec = env.do(t, http.MethodGet, "/api/orders?area=%20%20", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.EqualValues(t, 4, result.TotalCount)

	rec = env.do(t, http.MethodGet, "/api/orders?status=Canceled", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Zero(t, result.TotalCount)
	require.Empty(t, result.Items)
}

func TestListOrdersRejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/orders?status=Bogus", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
	require.Equal(t, "test", body["env"])
}

func TestRootRedirectsToDocs(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/docs", rec.Header().Get(echo.HeaderLocation))

	rec = env.do(t, http.MethodGet, "/docs/openapi.yaml", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Service Orders API")
}

func TestDocsDisabled(t *testing.T) {
	env := newTestEnv(t)

	e := echo.New()
	Register(e, &Deps{
		OrderHandler: &OrderHTTP{Svc: &service.OrderService{Repo: &repo.GormRepo{DB: env.DB}}},
		Environment:  "test",
		EnableDocs:   false,
	})

	req := httptest.NewRequest(http.MethodGet, "/docs", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/docs", rec.Header().Get(echo.HeaderLocation))
}

func TestSearchDisabled(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/orders/search?q=filter", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/orders/search", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
