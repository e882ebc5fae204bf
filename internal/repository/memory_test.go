package repository_test

import (
	"context"
	"sync"
	"testing"

	"github.com/Houeta/scrum-agent/internal/models"
	"github.com/Houeta/scrum-agent/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryEmployeeStore_List(t *testing.T) {
	t.Parallel()

	store := repository.NewMemoryEmployeeStore(repository.SeedEmployees())

	employees, err := store.ListEmployees(context.Background())
	require.NoError(t, err)
	assert.Equal(t, repository.SeedEmployees(), employees)

	// callers must not be able to mutate the store through the returned slice
	employees[0].Name = "Mutated"
	again, err := store.ListEmployees(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "John Doe", again[0].Name)
}

func TestMemoryEmployeeStore_EmptySeed(t *testing.T) {
	t.Parallel()

	store := repository.NewMemoryEmployeeStore(nil)

	employees, err := store.ListEmployees(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, employees)
	assert.Empty(t, employees)
}

func TestMemoryEmployeeStore_ListByDepartment(t *testing.T) {
	t.Parallel()

	store := repository.NewMemoryEmployeeStore(repository.SeedEmployees())
	ctx := context.Background()

	exact, err := store.ListEmployeesByDepartment(ctx, "Sales", false)
	require.NoError(t, err)
	require.Len(t, exact, 2)
	assert.Equal(t, 1, exact[0].ID)
	assert.Equal(t, 3, exact[1].ID)

	wrongCase, err := store.ListEmployeesByDepartment(ctx, "sales", false)
	require.NoError(t, err)
	assert.Empty(t, wrongCase)

	folded, err := store.ListEmployeesByDepartment(ctx, "sales", true)
	require.NoError(t, err)
	assert.Equal(t, exact, folded)

	none, err := store.ListEmployeesByDepartment(ctx, "Legal", true)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMemoryEmployeeStore_GetEmployeeByID(t *testing.T) {
	t.Parallel()

	store := repository.NewMemoryEmployeeStore(repository.SeedEmployees())

	employee, err := store.GetEmployeeByID(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "Mary Brown", employee.Name)

	_, err = store.GetEmployeeByID(context.Background(), 99)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMemoryEmployeeStore_SaveEmployee(t *testing.T) {
	t.Parallel()

	store := repository.NewMemoryEmployeeStore(repository.SeedEmployees())
	ctx := context.Background()

	identifier, err := store.SaveEmployee(ctx, models.Employee{
		Name: "Eve Davis", Email: "eve.davis@example.com", Department: "Sales",
	})
	require.NoError(t, err)
	assert.Equal(t, 6, identifier)

	saved, err := store.GetEmployeeByID(ctx, identifier)
	require.NoError(t, err)
	assert.Equal(t, "Eve Davis", saved.Name)

	_, err = store.SaveEmployee(ctx, models.Employee{
		Name: "Other", Email: "EVE.DAVIS@example.com", Department: "HR",
	})
	require.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestMemoryEmployeeStore_ConcurrentSave(t *testing.T) {
	t.Parallel()

	store := repository.NewMemoryEmployeeStore(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.SaveEmployee(ctx, models.Employee{
				Name: "Worker", Email: "worker" + string(rune('a'+i)) + "@example.com", Department: "Ops",
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	employees, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 20)

	seen := make(map[int]bool)
	for _, e := range employees {
		assert.False(t, seen[e.ID], "duplicate id %d", e.ID)
		seen[e.ID] = true
	}
}

func TestMemoryEmployeeStore_Ping(t *testing.T) {
	t.Parallel()

	require.NoError(t, repository.NewMemoryEmployeeStore(nil).Ping(context.Background()))
}
