package server_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Houeta/scrum-agent/internal/lib/telemetry"
	"github.com/Houeta/scrum-agent/internal/metrics"
	"github.com/Houeta/scrum-agent/internal/models"
	"github.com/Houeta/scrum-agent/internal/repository"
	"github.com/Houeta/scrum-agent/internal/server"
	"github.com/Houeta/scrum-agent/internal/services/employees"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestAPI(t *testing.T, seed []models.Employee) (http.Handler, *metrics.Metrics) {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	dir := employees.NewDirectory(logger, repository.NewMemoryEmployeeStore(seed), appMetrics, "Sales")

	return server.NewAPI(logger, dir, appMetrics), appMetrics
}

func doRequest(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	return rr
}

func decodeEmployees(t *testing.T, rr *httptest.ResponseRecorder) []models.Employee {
	t.Helper()

	var list []models.Employee
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))

	return list
}

func TestListEmployees(t *testing.T) {
	t.Parallel()

	handler, appMetrics := newTestAPI(t, repository.SeedEmployees())

	rr := doRequest(t, handler, http.MethodGet, "/employees", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, repository.SeedEmployees(), decodeEmployees(t, rr))
	assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.HTTPRequests.WithLabelValues("GET /employees", "200")), 0)
}

func TestListEmployees_EmptyStoreReturnsEmptyArray(t *testing.T) {
	t.Parallel()

	handler, _ := newTestAPI(t, nil)

	rr := doRequest(t, handler, http.MethodGet, "/employees", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestListEmployees_DepartmentQuery(t *testing.T) {
	t.Parallel()

	handler, _ := newTestAPI(t, repository.SeedEmployees())

	rr := doRequest(t, handler, http.MethodGet, "/employees?department=marketing", "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decodeEmployees(t, rr)
	require.Len(t, list, 2)
	for _, e := range list {
		assert.Equal(t, "Marketing", e.Department)
	}

	rr = doRequest(t, handler, http.MethodGet, "/employees?department=Legal", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestListDepartmentEmployees_CaseSensitive(t *testing.T) {
	t.Parallel()

	handler, _ := newTestAPI(t, repository.SeedEmployees())

	rr := doRequest(t, handler, http.MethodGet, "/employees/department/Engineering", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t,
		`[{"id":4,"name":"Mary Brown","email":"mary.brown@example.com","department":"Engineering"}]`,
		rr.Body.String())

	rr = doRequest(t, handler, http.MethodGet, "/employees/department/engineering", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestListDummyEmployees(t *testing.T) {
	t.Parallel()

	handler, _ := newTestAPI(t, repository.SeedEmployees())

	rr := doRequest(t, handler, http.MethodGet, "/employees/dummy", "")

	require.Equal(t, http.StatusOK, rr.Code)
	list := decodeEmployees(t, rr)
	require.Len(t, list, 2)
	assert.Equal(t, "John Doe", list[0].Name)
	assert.Equal(t, "Peter Jones", list[1].Name)
}

func TestGetEmployee(t *testing.T) {
	t.Parallel()

	handler, _ := newTestAPI(t, repository.SeedEmployees())

	rr := doRequest(t, handler, http.MethodGet, "/employees/2", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t,
		`{"id":2,"name":"Jane Smith","email":"jane.smith@example.com","department":"Marketing"}`,
		rr.Body.String())

	rr = doRequest(t, handler, http.MethodGet, "/employees/999", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Employee not found"}`, rr.Body.String())

	rr = doRequest(t, handler, http.MethodGet, "/employees/abc", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateEmployee(t *testing.T) {
	t.Parallel()

	handler, _ := newTestAPI(t, repository.SeedEmployees())

	rr := doRequest(t, handler, http.MethodPost, "/employees",
		`{"name":"Eve Davis","email":"eve.davis@example.com","department":"Sales"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "/employees/6", rr.Header().Get("Location"))
	assert.JSONEq(t,
		`{"id":6,"name":"Eve Davis","email":"eve.davis@example.com","department":"Sales"}`,
		rr.Body.String())

	rr = doRequest(t, handler, http.MethodGet, "/employees/6", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, handler, http.MethodPost, "/employees",
		`{"name":"Eve Again","email":"eve.davis@example.com","department":"Sales"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateEmployee_BadRequests(t *testing.T) {
	t.Parallel()

	handler, _ := newTestAPI(t, nil)

	bodies := []string{
		`not json`,
		`{"name":"X","email":"x@example.com","department":"Ops","salary":80000}`,
		`{"email":"x@example.com","department":"Ops"}`,
		`{"name":"X","email":"nope","department":"Ops"}`,
	}

	for _, body := range bodies {
		rr := doRequest(t, handler, http.MethodPost, "/employees", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "body: %s", body)
	}
}

type failingService struct {
	server.EmployeeService
}

func (failingService) Search(context.Context, string) ([]models.Employee, error) {
	return nil, assert.AnError
}

func TestListEmployees_InternalError(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)
	handler := server.NewAPI(logger, failingService{}, metrics.NewMetrics(prometheus.NewRegistry()))

	rr := doRequest(t, handler, http.MethodGet, "/employees", "")

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), assert.AnError.Error())
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	handler, _ := newTestAPI(t, nil)

	rr := doRequest(t, handler, http.MethodDelete, "/employees", "")

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestAPI_RecordsSpans(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	ctx := context.Background()
	exporter := tracetest.NewInMemoryExporter()
	shutdown, err := telemetry.Install(ctx, "employees-api", "local", exporter)
	require.NoError(t, err)
	defer func() { require.NoError(t, shutdown(ctx)) }()

	handler, _ := newTestAPI(t, repository.SeedEmployees())
	rr := doRequest(t, handler, http.MethodGet, "/employees", "")
	require.Equal(t, http.StatusOK, rr.Code)

	provider, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	require.True(t, ok)
	require.NoError(t, provider.ForceFlush(ctx))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "employees-api", spans[0].Name)
}
