package service_test

import (
	"context"
	"errors"
	"taskTimeline/internal/models/task"
	"taskTimeline/internal/repository"
	"taskTimeline/internal/service"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTaskRepository - мок репозитория
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) GetTasksEndingBefore(ctx context.Context, day task.Date, limit int) ([]*task.Task, error) {
	args := m.Called(ctx, day, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) Create(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) Update(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ service.TaskRepository = (*MockTaskRepository)(nil)

func d(y int, m time.Month, day int) task.Date {
	return task.NewDate(y, m, day)
}

func sampleTask() *task.Task {
	return &task.Task{
		ID:        1,
		Title:     "Sample",
		StartDate: d(2025, 1, 10),
		EndDate:   d(2025, 1, 20),
		Status:    task.StatusOpen,
		TeamID:    1,
		Version:   1,
		Subtasks: []task.Subtask{
			{ID: 11, Title: "child"},
		},
	}
}

func businessCode(t *testing.T, err error) string {
	t.Helper()
	var busErr *service.BusinessError
	require.ErrorAs(t, err, &busErr)
	return busErr.Code
}

// TestTaskService_HealthCheck тестирует HealthCheck
func TestTaskService_HealthCheck(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(*MockTaskRepository)
		expectError bool
	}{
		{
			name: "success - health check passes",
			setupMock: func(m *MockTaskRepository) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
			expectError: false,
		},
		{
			name: "error - health check fails",
			setupMock: func(m *MockTaskRepository) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("db connection failed"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			svc := service.NewTaskService(mockRepo, service.DBType)
			err := svc.HealthCheck(context.Background())

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, service.DBType, svc.RepoType)
			mockRepo.AssertExpectations(t)
		})
	}
}

// TestTaskService_CreateTask тестирует создание задачи
func TestTaskService_CreateTask(t *testing.T) {
	tests := []struct {
		name      string
		input     *task.Task
		setupMock func(*MockTaskRepository)
		code      string
	}{
		{
			name:  "success - defaults applied",
			input: &task.Task{Title: "New", StartDate: d(2025, 1, 1), EndDate: d(2025, 1, 2), TeamID: 1},
			setupMock: func(m *MockTaskRepository) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(tk *task.Task) bool {
					return tk.Status == task.StatusOpen &&
						tk.TaskType == task.TypeTask &&
						tk.Priority == task.PriorityNormal
				})).Return(nil)
			},
		},
		{
			name:      "error - empty title",
			input:     &task.Task{Title: "  ", StartDate: d(2025, 1, 1), EndDate: d(2025, 1, 2)},
			setupMock: func(m *MockTaskRepository) {},
			code:      service.CodeValidation,
		},
		{
			name:      "error - missing end date",
			input:     &task.Task{Title: "New", StartDate: d(2025, 1, 1)},
			setupMock: func(m *MockTaskRepository) {},
			code:      service.CodeValidation,
		},
		{
			name:      "error - end before start",
			input:     &task.Task{Title: "New", StartDate: d(2025, 1, 5), EndDate: d(2025, 1, 2)},
			setupMock: func(m *MockTaskRepository) {},
			code:      service.CodeValidation,
		},
		{
			name:      "error - unknown status",
			input:     &task.Task{Title: "New", StartDate: d(2025, 1, 1), EndDate: d(2025, 1, 2), Status: "ARCHIVED"},
			setupMock: func(m *MockTaskRepository) {},
			code:      service.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)
			svc := service.NewTaskService(mockRepo, service.InMemoryType)

			created, err := svc.CreateTask(context.Background(), tt.input)
			if tt.code != "" {
				assert.Equal(t, tt.code, businessCode(t, err))
				assert.Nil(t, created)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "New", created.Title)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

// TestTaskService_GetTask тестирует получение задачи
func TestTaskService_GetTask(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockRepo.On("GetByID", mock.Anything, int64(1)).Return(sampleTask(), nil)
	mockRepo.On("GetByID", mock.Anything, int64(2)).Return(nil, repository.ErrNotFound)
	mockRepo.On("GetByID", mock.Anything, int64(3)).Return(nil, errors.New("connection reset"))

	svc := service.NewTaskService(mockRepo, service.DBType)
	ctx := context.Background()

	got, err := svc.GetTask(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Sample", got.Title)

	_, err = svc.GetTask(ctx, 2)
	assert.Equal(t, service.CodeNotFound, businessCode(t, err))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.GetTask(ctx, 3)
	require.Error(t, err)
	var busErr *service.BusinessError
	assert.False(t, errors.As(err, &busErr))
}

// TestTaskService_UpdateTask тестирует обновление через опции
func TestTaskService_UpdateTask(t *testing.T) {
	ctx := context.Background()

	t.Run("success - nil options skipped", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, int64(1)).Return(sampleTask(), nil)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*task.Task")).Return(nil)
		svc := service.NewTaskService(mockRepo, service.DBType)

		updated, err := svc.UpdateTask(ctx, 1, 1,
			task.WithTitle(""),
			task.WithContent("details"),
			task.WithDates(d(2025, 1, 12), task.Date{}),
			task.WithPriority(task.PriorityUrgent),
		)
		require.NoError(t, err)
		assert.Equal(t, "Sample", updated.Title)
		assert.Equal(t, "details", updated.Content)
		assert.True(t, updated.StartDate.Equal(d(2025, 1, 10)))
		assert.Equal(t, task.PriorityUrgent, updated.Priority)
		mockRepo.AssertExpectations(t)
	})

	t.Run("error - stale version from client", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, int64(1)).Return(sampleTask(), nil)
		svc := service.NewTaskService(mockRepo, service.DBType)

		_, err := svc.UpdateTask(ctx, 1, 5, task.WithTitle("new"))
		assert.Equal(t, service.CodeVersionConflict, businessCode(t, err))
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("error - concurrent update in storage", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, int64(1)).Return(sampleTask(), nil)
		mockRepo.On("Update", mock.Anything, mock.Anything).Return(repository.ErrVersionConflict)
		svc := service.NewTaskService(mockRepo, service.DBType)

		_, err := svc.UpdateTask(ctx, 1, 0, task.WithTitle("new"))
		assert.Equal(t, service.CodeVersionConflict, businessCode(t, err))
		assert.ErrorIs(t, err, repository.ErrVersionConflict)
	})

	t.Run("error - dates become invalid", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, int64(1)).Return(sampleTask(), nil)
		svc := service.NewTaskService(mockRepo, service.DBType)

		_, err := svc.UpdateTask(ctx, 1, 0, task.WithDates(d(2025, 2, 1), d(2025, 1, 1)))
		assert.Equal(t, service.CodeValidation, businessCode(t, err))
	})
}

// TestTaskService_UpdateStatus тестирует смену статуса и правила переноса
func TestTaskService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		start       func() *task.Task
		status      task.Status
		postponedTo task.Date
		check       func(*testing.T, *task.Task)
		code        string
	}{
		{
			name:        "postpone records dates",
			start:       sampleTask,
			status:      task.StatusPostponed,
			postponedTo: d(2025, 2, 1),
			check: func(t *testing.T, tk *task.Task) {
				assert.True(t, tk.IsPostponed)
				assert.True(t, tk.PostponedFromDate.Equal(d(2025, 1, 20)))
				assert.True(t, tk.PostponedToDate.Equal(d(2025, 2, 1)))
				assert.True(t, tk.EndDate.Equal(d(2025, 1, 20)))
			},
		},
		{
			name:   "postpone without target date",
			start:  sampleTask,
			status: task.StatusPostponed,
			check: func(t *testing.T, tk *task.Task) {
				assert.True(t, tk.IsPostponed)
				assert.True(t, tk.PostponedToDate.IsZero())
			},
		},
		{
			name: "resume clears postponed flag",
			start: func() *task.Task {
				tk := sampleTask()
				tk.Status = task.StatusPostponed
				tk.IsPostponed = true
				tk.PostponedFromDate = tk.EndDate
				return tk
			},
			status: task.StatusInProgress,
			check: func(t *testing.T, tk *task.Task) {
				assert.False(t, tk.IsPostponed)
				assert.Equal(t, task.StatusInProgress, tk.Status)
				assert.False(t, tk.PostponedFromDate.IsZero())
			},
		},
		{
			name:        "postpone into the past",
			start:       sampleTask,
			status:      task.StatusPostponed,
			postponedTo: d(2025, 1, 1),
			code:        service.CodeValidation,
		},
		{
			name:   "unknown status",
			start:  sampleTask,
			status: "DONE",
			code:   service.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			mockRepo.On("GetByID", mock.Anything, int64(1)).Return(tt.start(), nil).Maybe()
			mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil).Maybe()
			svc := service.NewTaskService(mockRepo, service.DBType)

			updated, err := svc.UpdateStatus(ctx, 1, tt.status, tt.postponedTo)
			if tt.code != "" {
				assert.Equal(t, tt.code, businessCode(t, err))
				mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.status, updated.Status)
			tt.check(t, updated)
		})
	}
}

// TestTaskService_Subtasks тестирует работу с подзадачами
func TestTaskService_Subtasks(t *testing.T) {
	ctx := context.Background()

	t.Run("add subtask", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, int64(1)).Return(sampleTask(), nil)
		mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
		svc := service.NewTaskService(mockRepo, service.DBType)

		updated, err := svc.AddSubtask(ctx, 1, task.Subtask{ID: 99, Title: "second"})
		require.NoError(t, err)
		require.Len(t, updated.Subtasks, 2)
		assert.Zero(t, updated.Subtasks[1].ID)
		assert.Equal(t, "second", updated.Subtasks[1].Title)
	})

	t.Run("add subtask without title", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, int64(1)).Return(sampleTask(), nil)
		svc := service.NewTaskService(mockRepo, service.DBType)

		_, err := svc.AddSubtask(ctx, 1, task.Subtask{})
		assert.Equal(t, service.CodeValidation, businessCode(t, err))
	})

	t.Run("complete subtask", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, int64(1)).Return(sampleTask(), nil)
		mockRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
		svc := service.NewTaskService(mockRepo, service.DBType)

		updated, err := svc.SetSubtaskCompleted(ctx, 1, 11, true)
		require.NoError(t, err)
		assert.True(t, updated.Subtasks[0].IsCompleted)
	})

	t.Run("missing subtask", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("GetByID", mock.Anything, int64(1)).Return(sampleTask(), nil)
		svc := service.NewTaskService(mockRepo, service.DBType)

		_, err := svc.SetSubtaskCompleted(ctx, 1, 404, true)
		assert.Equal(t, service.CodeNotFound, businessCode(t, err))
	})
}

// TestTaskService_DeleteTask тестирует удаление
func TestTaskService_DeleteTask(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockRepo.On("Delete", mock.Anything, int64(1)).Return(nil)
	mockRepo.On("Delete", mock.Anything, int64(2)).Return(repository.ErrNotFound)
	svc := service.NewTaskService(mockRepo, service.DBType)

	assert.NoError(t, svc.DeleteTask(context.Background(), 1))
	assert.Equal(t, service.CodeNotFound, businessCode(t, svc.DeleteTask(context.Background(), 2)))
}
