package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Houeta/scrum-agent/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const employeeColumns = `SELECT id, name, email, department FROM employees`

// ListEmployees returns every employee ordered by id.
func (r *Repository) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	defer r.observe("list_employees", time.Now())

	rows, err := r.db.Query(ctx, employeeColumns+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	return collectEmployees(rows)
}

// ListEmployeesByDepartment returns employees of the given department ordered by id.
// When fold is set the department is compared case-insensitively.
func (r *Repository) ListEmployeesByDepartment(
	ctx context.Context,
	department string,
	fold bool,
) ([]models.Employee, error) {
	defer r.observe("list_employees_by_department", time.Now())

	query := employeeColumns + ` WHERE department = $1 ORDER BY id`
	if fold {
		query = employeeColumns + ` WHERE lower(department) = lower($1) ORDER BY id`
	}

	rows, err := r.db.Query(ctx, query, department)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees of department '%s': %w", department, err)
	}

	return collectEmployees(rows)
}

// GetEmployeeByID retrieves an employee from the database by their ID.
func (r *Repository) GetEmployeeByID(ctx context.Context, identifier int) (models.Employee, error) {
	var result models.Employee

	defer r.observe("get_employee_by_id", time.Now())

	err := r.db.QueryRow(ctx, employeeColumns+` WHERE id = $1`, identifier).Scan(
		&result.ID, &result.Name, &result.Email, &result.Department)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Employee{}, fmt.Errorf("failed to get employee by id %d: %w", identifier, ErrNotFound)
		}
		return models.Employee{}, fmt.Errorf("failed to get employee by id: %w", err)
	}

	return result, nil
}

// SaveEmployee inserts a new employee and returns the identifier assigned by the database.
func (r *Repository) SaveEmployee(ctx context.Context, employee models.Employee) (int, error) {
	var identifier int

	defer r.observe("save_employee", time.Now())

	query := `
		INSERT INTO employees (name, email, department)
		VALUES ($1, $2, $3)
		RETURNING id;
	`

	err := r.db.QueryRow(ctx, query, employee.Name, employee.Email, employee.Department).Scan(&identifier)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, fmt.Errorf("failed to save employee '%s': %w", employee.Email, ErrDuplicateEmail)
		}
		return 0, fmt.Errorf("failed to save employee: %w", err)
	}

	return identifier, nil
}

func collectEmployees(rows pgx.Rows) ([]models.Employee, error) {
	defer rows.Close()

	employees := make([]models.Employee, 0)
	for rows.Next() {
		var employee models.Employee
		if err := rows.Scan(&employee.ID, &employee.Name, &employee.Email, &employee.Department); err != nil {
			return nil, fmt.Errorf("failed to scan employee row: %w", err)
		}
		employees = append(employees, employee)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employee rows: %w", err)
	}

	return employees, nil
}
