package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Houeta/scrum-agent/internal/metrics"
	"github.com/Houeta/scrum-agent/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("employee email already exists")
)

type Repository struct {
	db      Database
	metrics *metrics.Metrics
}

// EmployeeRepoIface represents the interface for interacting with employee data in the repository.
type EmployeeRepoIface interface {
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	ListEmployeesByDepartment(ctx context.Context, department string, fold bool) ([]models.Employee, error)
	GetEmployeeByID(ctx context.Context, identifier int) (models.Employee, error)
	SaveEmployee(ctx context.Context, employee models.Employee) (int, error)
	Ping(ctx context.Context) error
}

func NewEmployeeRepository(db Database, metrics *metrics.Metrics) EmployeeRepoIface {
	return &Repository{db: db, metrics: metrics}
}

// RunRepoIface stores the history of agent pipeline runs.
type RunRepoIface interface {
	SaveRun(ctx context.Context, run models.PipelineRun) error
	UpdateRun(ctx context.Context, run models.PipelineRun) error
	GetLastRun(ctx context.Context, issueKey string) (models.PipelineRun, error)
	ListRuns(ctx context.Context, limit int) ([]models.PipelineRun, error)
}

func NewRunRepository(db Database, metrics *metrics.Metrics) RunRepoIface {
	return &Repository{db: db, metrics: metrics}
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *Repository) observe(queryType string, startTime time.Time) {
	r.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(startTime).Seconds())
}
