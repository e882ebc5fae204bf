package employees

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/tamathecxder/randomail"

	"github.com/Houeta/scrum-agent/internal/lib/logger/sl"
	"github.com/Houeta/scrum-agent/internal/metrics"
	"github.com/Houeta/scrum-agent/internal/models"
	"github.com/Houeta/scrum-agent/internal/repository"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrInvalidEmployee  = errors.New("invalid employee")
)

// DefaultDummyDepartment is used by Dummy when no department is configured.
const DefaultDummyDepartment = "Sales"

type Directory struct {
	log             *slog.Logger
	repo            repository.EmployeeRepoIface
	metrics         *metrics.Metrics
	dummyDepartment string
	generateEmail   func() string
}

func NewDirectory(
	log *slog.Logger,
	repo repository.EmployeeRepoIface,
	metrics *metrics.Metrics,
	dummyDepartment string,
) *Directory {
	if strings.TrimSpace(dummyDepartment) == "" {
		dummyDepartment = DefaultDummyDepartment
	}

	return &Directory{
		log:             log,
		repo:            repo,
		metrics:         metrics,
		dummyDepartment: dummyDepartment,
		generateEmail:   randomail.GenerateRandomEmail,
	}
}

func (d *Directory) initLogger(opn string) *slog.Logger {
	return d.log.With(
		slog.String("op", opn),
		slog.String("division", "employee"),
	)
}

// DummyDepartment returns the department served by Dummy.
func (d *Directory) DummyDepartment() string {
	return d.dummyDepartment
}

// List returns every employee. The result is never nil.
func (d *Directory) List(ctx context.Context) ([]models.Employee, error) {
	employees, err := d.repo.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	return nonNil(employees), nil
}

// ListByDepartment returns employees whose department equals name exactly.
func (d *Directory) ListByDepartment(ctx context.Context, name string) ([]models.Employee, error) {
	employees, err := d.repo.ListEmployeesByDepartment(ctx, name, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees by department: %w", err)
	}

	return nonNil(employees), nil
}

// Search returns employees whose department matches ignoring case, or everyone for an empty department.
func (d *Directory) Search(ctx context.Context, department string) ([]models.Employee, error) {
	department = strings.TrimSpace(department)
	if department == "" {
		return d.List(ctx)
	}

	employees, err := d.repo.ListEmployeesByDepartment(ctx, department, true)
	if err != nil {
		return nil, fmt.Errorf("failed to search employees: %w", err)
	}

	return nonNil(employees), nil
}

// Dummy returns employees of the configured dummy department.
func (d *Directory) Dummy(ctx context.Context) ([]models.Employee, error) {
	return d.Search(ctx, d.dummyDepartment)
}

// Get returns the employee with the given id or ErrEmployeeNotFound.
func (d *Directory) Get(ctx context.Context, identifier int) (models.Employee, error) {
	employee, err := d.repo.GetEmployeeByID(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Employee{}, fmt.Errorf("%w: id %d", ErrEmployeeNotFound, identifier)
		}
		return models.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return employee, nil
}

// Create validates and stores a new employee. A missing email is replaced with a generated one.
func (d *Directory) Create(ctx context.Context, employee models.Employee) (models.Employee, error) {
	const opn = "Employee.Create"
	log := d.initLogger(opn)

	employee.ID = 0
	employee.Name = strings.TrimSpace(employee.Name)
	employee.Email = strings.TrimSpace(employee.Email)
	employee.Department = strings.TrimSpace(employee.Department)

	if employee.Name == "" {
		return models.Employee{}, fmt.Errorf("%w: name is required", ErrInvalidEmployee)
	}
	if employee.Department == "" {
		return models.Employee{}, fmt.Errorf("%w: department is required", ErrInvalidEmployee)
	}

	if employee.Email == "" {
		employee.Email = d.generateEmail()
		d.metrics.EmailsGenerated.Inc()
		log.InfoContext(ctx, "Email was not specified, generated a temporary one",
			"name", employee.Name, "email", employee.Email)
	}

	if !ValidateEmail(employee.Email) {
		return models.Employee{}, fmt.Errorf("%w: malformed email '%s'", ErrInvalidEmployee, employee.Email)
	}

	identifier, err := d.repo.SaveEmployee(ctx, employee)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return models.Employee{}, fmt.Errorf("%w: email '%s' is taken", ErrInvalidEmployee, employee.Email)
		}
		log.ErrorContext(ctx, "Failed to save employee", sl.Err(err))
		return models.Employee{}, fmt.Errorf("failed to save new employee %s: %w", employee.Name, err)
	}

	employee.ID = identifier
	log.DebugContext(ctx, "Employee created", "id", identifier)

	return employee, nil
}

// ValidateEmail reports whether email is a bare RFC 5322 address.
func ValidateEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func nonNil(employees []models.Employee) []models.Employee {
	if employees == nil {
		return make([]models.Employee, 0)
	}
	return employees
}
