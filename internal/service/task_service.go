package service

import (
	"context"
	"fmt"
	"strings"
	"taskTimeline/internal/logger"
	"taskTimeline/internal/models/task"

	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

type RepoType string

const (
	DBType       RepoType = "postgres"
	InMemoryType RepoType = "inmemory"
)

type TaskService struct {
	repo     TaskRepository
	RepoType RepoType
}

func NewTaskService(repo TaskRepository, repoType RepoType) *TaskService {
	return &TaskService{
		repo:     repo,
		RepoType: repoType,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		logger.Error("Service: Хранилище недоступно", err, zap.String("repo", string(s.RepoType)))
		return fmt.Errorf("проверка хранилища: %w", err)
	}
	return nil
}

func validateTask(t *task.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return NewValidationError("title", "не может быть пустым")
	}
	if t.StartDate.IsZero() {
		return NewValidationError("startDate", "обязательное поле")
	}
	if t.EndDate.IsZero() {
		return NewValidationError("endDate", "обязательное поле")
	}
	if t.EndDate.Before(t.StartDate) {
		return NewValidationError("endDate", "раньше даты начала")
	}
	if !t.Status.Known() {
		return NewValidationError("status", fmt.Sprintf("неизвестный статус %q", t.Status))
	}
	for i, st := range t.Subtasks {
		if strings.TrimSpace(st.Title) == "" {
			return NewValidationError(fmt.Sprintf("subtasks[%d].title", i), "не может быть пустым")
		}
		if !st.StartDate.IsZero() && !st.EndDate.IsZero() && st.EndDate.Before(st.StartDate) {
			return NewValidationError(fmt.Sprintf("subtasks[%d].endDate", i), "раньше даты начала")
		}
	}
	return nil
}

func applyDefaults(t *task.Task) {
	if t.Status == "" {
		t.Status = task.StatusOpen
	}
	if t.TaskType == "" {
		t.TaskType = task.TypeTask
	}
	if t.Priority == "" {
		t.Priority = task.PriorityNormal
	}
}

func (s *TaskService) CreateTask(ctx context.Context, t *task.Task) (*task.Task, error) {
	applyDefaults(t)
	if err := validateTask(t); err != nil {
		return nil, err
	}
	t.ID = 0
	t.IsPostponed = t.Status == task.StatusPostponed

	if err := s.repo.Create(ctx, t); err != nil {
		logger.Error("Service: Не удалось создать задачу", err)
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана", zap.Int64("task_id", t.ID), zap.Int64("team_id", t.TeamID))
	return t, nil
}

func (s *TaskService) GetTask(ctx context.Context, id int64) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		logger.Info("Service: Задача не получена", zap.Int64("target_id", id), zap.Error(err))
		return nil, fromRepoError(err, "получение задачи", id, 0)
	}
	return t, nil
}

func (s *TaskService) ListTasks(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	tasks, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

// mutate читает задачу, применяет fn и сохраняет с проверкой версии.
// version == 0 означает "последняя известная хранилищу"
func (s *TaskService) mutate(ctx context.Context, id int64, version int, fn func(*task.Task) error) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepoError(err, "получение задачи", id, version)
	}
	if version != 0 && t.Version != version {
		return nil, NewVersionConflict(id, version)
	}

	if err := fn(t); err != nil {
		return nil, err
	}
	if err := validateTask(t); err != nil {
		return nil, err
	}

	expected := t.Version
	if err := s.repo.Update(ctx, t); err != nil {
		logger.Warn("Service: Не удалось сохранить задачу", zap.Int64("task_id", id), zap.Error(err))
		return nil, fromRepoError(err, "обновление задачи", id, expected)
	}
	return t, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, id int64, version int, options ...task.Option) (*task.Task, error) {
	return s.mutate(ctx, id, version, func(t *task.Task) error {
		for _, opt := range options {
			if opt == nil {
				continue
			}
			opt(t)
		}
		return nil
	})
}

func (s *TaskService) UpdateStatus(ctx context.Context, id int64, status task.Status, postponedTo task.Date) (*task.Task, error) {
	if !status.Known() {
		return nil, NewValidationError("status", fmt.Sprintf("неизвестный статус %q", status))
	}

	updated, err := s.mutate(ctx, id, 0, func(t *task.Task) error {
		if status == task.StatusPostponed {
			if !postponedTo.IsZero() && !t.EndDate.IsZero() && postponedTo.Before(t.EndDate) {
				return NewValidationError("postponedToDate", "раньше текущей даты окончания")
			}
			t.IsPostponed = true
			t.PostponedFromDate = t.EndDate
			if !postponedTo.IsZero() {
				t.PostponedToDate = postponedTo
			}
		} else {
			t.IsPostponed = false
		}
		t.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Service: Статус изменён", zap.Int64("task_id", id), zap.String("status", string(status)))
	return updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fromRepoError(err, "удаление задачи", id, 0)
	}
	logger.Info("Service: Задача удалена", zap.Int64("task_id", id))
	return nil
}

func (s *TaskService) AddSubtask(ctx context.Context, id int64, st task.Subtask) (*task.Task, error) {
	st.ID = 0
	return s.mutate(ctx, id, 0, func(t *task.Task) error {
		t.Subtasks = append(t.Subtasks, st)
		return nil
	})
}

func (s *TaskService) SetSubtaskCompleted(ctx context.Context, id, subtaskID int64, completed bool) (*task.Task, error) {
	return s.mutate(ctx, id, 0, func(t *task.Task) error {
		st, ok := t.Subtask(subtaskID)
		if !ok {
			return NewBusinessError(CodeNotFound,
				fmt.Sprintf("подзадача %d не найдена", subtaskID),
				ToDetail("resource", "подзадача"),
				ToDetail("id", subtaskID),
			)
		}
		st.IsCompleted = completed
		return nil
	})
}
