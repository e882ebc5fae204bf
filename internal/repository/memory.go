package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/Houeta/scrum-agent/internal/models"
)

// SeedEmployees is the fixed employee list served when no database is configured.
// The same rows are inserted by the seed migration.
func SeedEmployees() []models.Employee {
	return []models.Employee{
		{ID: 1, Name: "John Doe", Email: "john.doe@example.com", Department: "Sales"},
		{ID: 2, Name: "Jane Smith", Email: "jane.smith@example.com", Department: "Marketing"},
		{ID: 3, Name: "Peter Jones", Email: "peter.jones@example.com", Department: "Sales"},
		{ID: 4, Name: "Mary Brown", Email: "mary.brown@example.com", Department: "Engineering"},
		{ID: 5, Name: "David Wilson", Email: "david.wilson@example.com", Department: "Marketing"},
	}
}

// MemoryEmployeeStore is an in-memory implementation of EmployeeRepoIface.
type MemoryEmployeeStore struct {
	mu        sync.RWMutex
	employees []models.Employee
	nextID    int
}

// NewMemoryEmployeeStore creates a store holding a copy of seed.
func NewMemoryEmployeeStore(seed []models.Employee) *MemoryEmployeeStore {
	store := &MemoryEmployeeStore{employees: slices.Clone(seed), nextID: 1}
	sort.Slice(store.employees, func(i, j int) bool { return store.employees[i].ID < store.employees[j].ID })

	for _, employee := range store.employees {
		if employee.ID >= store.nextID {
			store.nextID = employee.ID + 1
		}
	}

	return store
}

func (s *MemoryEmployeeStore) ListEmployees(_ context.Context) ([]models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append(make([]models.Employee, 0, len(s.employees)), s.employees...), nil
}

func (s *MemoryEmployeeStore) ListEmployeesByDepartment(
	_ context.Context,
	department string,
	fold bool,
) ([]models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]models.Employee, 0)
	for _, employee := range s.employees {
		if employee.Department == department || (fold && strings.EqualFold(employee.Department, department)) {
			matched = append(matched, employee)
		}
	}

	return matched, nil
}

func (s *MemoryEmployeeStore) GetEmployeeByID(_ context.Context, identifier int) (models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, employee := range s.employees {
		if employee.ID == identifier {
			return employee, nil
		}
	}

	return models.Employee{}, fmt.Errorf("failed to get employee by id %d: %w", identifier, ErrNotFound)
}

func (s *MemoryEmployeeStore) SaveEmployee(_ context.Context, employee models.Employee) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.employees {
		if strings.EqualFold(existing.Email, employee.Email) {
			return 0, fmt.Errorf("failed to save employee '%s': %w", employee.Email, ErrDuplicateEmail)
		}
	}

	employee.ID = s.nextID
	s.nextID++
	s.employees = append(s.employees, employee)

	return employee.ID, nil
}

// Ping is a no-op for memory store.
func (s *MemoryEmployeeStore) Ping(_ context.Context) error {
	return nil
}
