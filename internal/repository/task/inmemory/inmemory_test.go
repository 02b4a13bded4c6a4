package inmemory_test

import (
	"context"
	"fmt"
	"sync"
	"taskTimeline/internal/models/task"
	"taskTimeline/internal/repository"
	"taskTimeline/internal/repository/task/inmemory"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(y int, m time.Month, day int) task.Date {
	return task.NewDate(y, m, day)
}

func newTask(title string, start, end task.Date, status task.Status) *task.Task {
	return &task.Task{
		Title:     title,
		StartDate: start,
		EndDate:   end,
		Status:    status,
		TeamID:    1,
	}
}

// TestTaskStorage_Create тестирует создание задачи
func TestTaskStorage_Create(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	first := newTask("First", d(2025, 1, 1), d(2025, 1, 5), task.StatusOpen)
	first.Subtasks = []task.Subtask{{Title: "a"}, {Title: "b"}}
	second := newTask("Second", d(2025, 1, 2), d(2025, 1, 3), task.StatusOpen)

	require.NoError(t, storage.Create(ctx, first))
	require.NoError(t, storage.Create(ctx, second))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, 1, first.Version)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, int64(1), first.Subtasks[0].ID)
	assert.Equal(t, int64(2), first.Subtasks[1].ID)

	got, err := storage.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "First", got.Title)
	assert.Len(t, got.Subtasks, 2)
}

// TestTaskStorage_Isolation проверяет, что хранилище не делит память с вызывающим
func TestTaskStorage_Isolation(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	created := newTask("Original", d(2025, 1, 1), d(2025, 1, 5), task.StatusOpen)
	created.AssigneeIDs = []int64{7}
	require.NoError(t, storage.Create(ctx, created))

	created.Title = "Changed outside"
	created.AssigneeIDs[0] = 8

	got, err := storage.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", got.Title)
	assert.Equal(t, []int64{7}, got.AssigneeIDs)

	got.Title = "Changed copy"
	again, err := storage.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", again.Title)
}

// TestTaskStorage_Update тестирует обновление и конфликт версий
func TestTaskStorage_Update(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	created := newTask("Original", d(2025, 1, 1), d(2025, 1, 5), task.StatusOpen)
	require.NoError(t, storage.Create(ctx, created))

	first, err := storage.GetByID(ctx, created.ID)
	require.NoError(t, err)
	second, err := storage.GetByID(ctx, created.ID)
	require.NoError(t, err)

	first.Title = "Updated"
	first.Subtasks = append(first.Subtasks, task.Subtask{Title: "new"})
	require.NoError(t, storage.Update(ctx, first))
	assert.Equal(t, 2, first.Version)
	assert.NotNil(t, first.UpdatedAt)
	assert.NotZero(t, first.Subtasks[0].ID)

	second.Title = "Stale"
	err = storage.Update(ctx, second)
	assert.ErrorIs(t, err, repository.ErrVersionConflict)

	got, err := storage.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.Title)

	missing := newTask("Missing", d(2025, 1, 1), d(2025, 1, 1), task.StatusOpen)
	missing.ID = 100
	assert.ErrorIs(t, storage.Update(ctx, missing), repository.ErrNotFound)
}

// TestTaskStorage_Delete тестирует удаление
func TestTaskStorage_Delete(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	created := newTask("To delete", d(2025, 1, 1), d(2025, 1, 5), task.StatusOpen)
	require.NoError(t, storage.Create(ctx, created))

	require.NoError(t, storage.Delete(ctx, created.ID))

	_, err := storage.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, storage.Delete(ctx, created.ID), repository.ErrNotFound)

	tasks, err := storage.List(ctx, task.Filter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

// TestTaskStorage_List тестирует выборку по фильтру
func TestTaskStorage_List(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	project := int64(5)
	january := newTask("January", d(2025, 1, 10), d(2025, 1, 20), task.StatusOpen)
	spanning := newTask("Spanning", d(2024, 12, 20), d(2025, 1, 3), task.StatusInProgress)
	spanning.ProjectID = &project
	february := newTask("February", d(2025, 2, 10), d(2025, 2, 12), task.StatusOpen)
	otherTeam := newTask("Other team", d(2025, 1, 10), d(2025, 1, 11), task.StatusOpen)
	otherTeam.TeamID = 2
	assigned := newTask("Assigned", d(2025, 1, 5), d(2025, 1, 6), task.StatusCompleted)
	assigned.AssigneeIDs = []int64{42}

	for _, tk := range []*task.Task{january, spanning, february, otherTeam, assigned} {
		require.NoError(t, storage.Create(ctx, tk))
	}

	team := int64(1)
	tests := []struct {
		name     string
		filter   task.Filter
		expected []string
	}{
		{
			name:     "all",
			filter:   task.Filter{},
			expected: []string{"January", "Spanning", "February", "Other team", "Assigned"},
		},
		{
			name:     "january overlap",
			filter:   task.Filter{TeamID: &team, From: d(2025, 1, 1), To: d(2025, 1, 31)},
			expected: []string{"January", "Spanning", "Assigned"},
		},
		{
			name:     "project",
			filter:   task.Filter{ProjectID: &project},
			expected: []string{"Spanning"},
		},
		{
			name:     "status",
			filter:   task.Filter{Statuses: []task.Status{task.StatusCompleted}},
			expected: []string{"Assigned"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := storage.List(ctx, tt.filter)
			require.NoError(t, err)

			titles := make([]string, 0, len(tasks))
			for _, tk := range tasks {
				titles = append(titles, tk.Title)
			}
			assert.Equal(t, tt.expected, titles)
		})
	}

	assignee := int64(42)
	tasks, err := storage.List(ctx, task.Filter{AssigneeID: &assignee})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Assigned", tasks[0].Title)
}

// TestTaskStorage_GetTasksEndingBefore тестирует поиск кандидатов на просрочку
func TestTaskStorage_GetTasksEndingBefore(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	tasks := []*task.Task{
		newTask("late open", d(2025, 1, 1), d(2025, 1, 9), task.StatusOpen),
		newTask("oldest", d(2025, 1, 1), d(2025, 1, 2), task.StatusInProgress),
		newTask("completed", d(2025, 1, 1), d(2025, 1, 2), task.StatusCompleted),
		newTask("testing", d(2025, 1, 1), d(2025, 1, 2), task.StatusTesting),
		newTask("already overdue", d(2025, 1, 1), d(2025, 1, 2), task.StatusOverdue),
		newTask("cancelled", d(2025, 1, 1), d(2025, 1, 2), task.StatusCancelled),
		newTask("ends today", d(2025, 1, 1), d(2025, 1, 10), task.StatusOpen),
		newTask("no end", d(2025, 1, 1), task.Date{}, task.StatusOpen),
		newTask("postponed", d(2025, 1, 1), d(2025, 1, 5), task.StatusPostponed),
	}
	for _, tk := range tasks {
		require.NoError(t, storage.Create(ctx, tk))
	}

	found, err := storage.GetTasksEndingBefore(ctx, d(2025, 1, 10), 10)
	require.NoError(t, err)

	titles := []string{}
	for _, tk := range found {
		titles = append(titles, tk.Title)
	}
	assert.Equal(t, []string{"oldest", "postponed", "late open"}, titles)

	limited, err := storage.GetTasksEndingBefore(ctx, d(2025, 1, 10), 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

// TestTaskStorage_ConcurrentAccess тестирует конкурентный доступ
func TestTaskStorage_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	const goroutines = 20
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			tk := newTask(fmt.Sprintf("Task %d", i), d(2025, 1, 1), d(2025, 1, 2), task.StatusOpen)
			assert.NoError(t, storage.Create(ctx, tk))
			_, err := storage.List(ctx, task.Filter{})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	tasks, err := storage.List(ctx, task.Filter{})
	require.NoError(t, err)
	assert.Len(t, tasks, goroutines)

	seen := map[int64]bool{}
	for _, tk := range tasks {
		assert.False(t, seen[tk.ID], "duplicate id %d", tk.ID)
		seen[tk.ID] = true
	}
}

func TestTaskStorage_Seed(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	withID := newTask("Kept", d(2025, 1, 1), d(2025, 1, 2), task.StatusOpen)
	withID.ID = 10
	withID.Subtasks = []task.Subtask{{ID: 5, Title: "kept"}, {Title: "new"}}
	withoutID := newTask("Assigned", d(2025, 1, 3), d(2025, 1, 4), task.StatusOpen)

	require.NoError(t, storage.Seed(ctx, []*task.Task{withoutID, withID}))
	assert.Equal(t, int64(11), withoutID.ID)

	got, err := storage.GetByID(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
	assert.Equal(t, int64(5), got.Subtasks[0].ID)
	assert.Equal(t, int64(6), got.Subtasks[1].ID)

	list, err := storage.List(ctx, task.Filter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Assigned", list[0].Title)

	// следующая созданная задача не пересекается со снимком
	created := newTask("Later", d(2025, 1, 5), d(2025, 1, 6), task.StatusOpen)
	require.NoError(t, storage.Create(ctx, created))
	assert.Equal(t, int64(12), created.ID)

	dup := newTask("Dup", d(2025, 1, 1), d(2025, 1, 1), task.StatusOpen)
	dup.ID = 10
	err = storage.Seed(ctx, []*task.Task{dup})
	assert.ErrorIs(t, err, repository.ErrDuplicateID)
}
