package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Houeta/scrum-agent/internal/lib/logger/sl"
	"github.com/Houeta/scrum-agent/internal/metrics"
	"github.com/Houeta/scrum-agent/internal/models"
	"github.com/Houeta/scrum-agent/internal/services/employees"
)

const maxBodyBytes = 1 << 20

// EmployeeService is the employee directory consumed by the API.
type EmployeeService interface {
	List(ctx context.Context) ([]models.Employee, error)
	ListByDepartment(ctx context.Context, name string) ([]models.Employee, error)
	Search(ctx context.Context, department string) ([]models.Employee, error)
	Dummy(ctx context.Context) ([]models.Employee, error)
	Get(ctx context.Context, identifier int) (models.Employee, error)
	Create(ctx context.Context, employee models.Employee) (models.Employee, error)
}

type API struct {
	log       *slog.Logger
	metrics   *metrics.Metrics
	employees EmployeeService
}

// NewAPI builds the employee HTTP handler, instrumented with metrics and OpenTelemetry.
func NewAPI(log *slog.Logger, svc EmployeeService, metrics *metrics.Metrics) http.Handler {
	api := &API{
		log:       log.With(slog.String("division", "api")),
		metrics:   metrics,
		employees: svc,
	}

	mux := http.NewServeMux()
	api.handle(mux, "GET /employees", api.listEmployees)
	api.handle(mux, "GET /employees/dummy", api.listDummyEmployees)
	api.handle(mux, "GET /employees/department/{name}", api.listDepartmentEmployees)
	api.handle(mux, "GET /employees/{id}", api.getEmployee)
	api.handle(mux, "POST /employees", api.createEmployee)

	return otelhttp.NewHandler(mux, "employees-api")
}

func (a *API) handle(mux *http.ServeMux, pattern string, handler http.HandlerFunc) {
	mux.Handle(pattern, a.instrument(pattern, handler))
}

// listEmployees serves GET /employees with an optional, case-insensitive ?department= filter.
func (a *API) listEmployees(writer http.ResponseWriter, req *http.Request) {
	list, err := a.employees.Search(req.Context(), req.URL.Query().Get("department"))
	if err != nil {
		a.writeError(writer, req, err)
		return
	}

	writeJSON(writer, http.StatusOK, list)
}

func (a *API) listDummyEmployees(writer http.ResponseWriter, req *http.Request) {
	list, err := a.employees.Dummy(req.Context())
	if err != nil {
		a.writeError(writer, req, err)
		return
	}

	writeJSON(writer, http.StatusOK, list)
}

// listDepartmentEmployees serves GET /employees/department/{name}; the match is case-sensitive.
func (a *API) listDepartmentEmployees(writer http.ResponseWriter, req *http.Request) {
	list, err := a.employees.ListByDepartment(req.Context(), req.PathValue("name"))
	if err != nil {
		a.writeError(writer, req, err)
		return
	}

	writeJSON(writer, http.StatusOK, list)
}

func (a *API) getEmployee(writer http.ResponseWriter, req *http.Request) {
	identifier, err := strconv.Atoi(req.PathValue("id"))
	if err != nil {
		writeJSON(writer, http.StatusBadRequest, errorBody{Error: "employee id must be an integer"})
		return
	}

	employee, err := a.employees.Get(req.Context(), identifier)
	if err != nil {
		a.writeError(writer, req, err)
		return
	}

	writeJSON(writer, http.StatusOK, employee)
}

func (a *API) createEmployee(writer http.ResponseWriter, req *http.Request) {
	var input models.Employee

	decoder := json.NewDecoder(http.MaxBytesReader(writer, req.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&input); err != nil {
		writeJSON(writer, http.StatusBadRequest, errorBody{Error: "invalid request body: " + err.Error()})
		return
	}

	created, err := a.employees.Create(req.Context(), input)
	if err != nil {
		a.writeError(writer, req, err)
		return
	}

	writer.Header().Set("Location", fmt.Sprintf("/employees/%d", created.ID))
	writeJSON(writer, http.StatusCreated, created)
}

type errorBody struct {
	Error string `json:"error"`
}

func (a *API) writeError(writer http.ResponseWriter, req *http.Request, err error) {
	switch {
	case errors.Is(err, employees.ErrEmployeeNotFound):
		writeJSON(writer, http.StatusNotFound, errorBody{Error: "Employee not found"})
	case errors.Is(err, employees.ErrInvalidEmployee):
		writeJSON(writer, http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		a.log.ErrorContext(req.Context(), "Request failed", "path", req.URL.Path, sl.Err(err))
		writeJSON(writer, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (a *API) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
		startTime := time.Now()
		recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

		next.ServeHTTP(recorder, req)

		duration := time.Since(startTime)
		a.metrics.HTTPDuration.WithLabelValues(route).Observe(duration.Seconds())
		a.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		a.log.DebugContext(req.Context(), "Request handled",
			"method", req.Method, "path", req.URL.Path, "status", recorder.status, "duration", duration.String())
	})
}
