package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"taskTimeline/internal/logger"
	"taskTimeline/internal/models/task"
	repo "taskTimeline/internal/repository"
	"time"

	"go.uber.org/zap"
)

// TaskStorage хранит копии задач: наружу никогда не отдаётся указатель на внутреннее состояние
type TaskStorage struct {
	storage   map[int64]*task.Task
	mtx       *sync.RWMutex
	ids       []int64
	nextID    int64
	nextSubID int64
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[int64]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []int64{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Соединение стабильно")
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.nextID++
	taskToCreate.ID = s.nextID
	taskToCreate.CreatedAt = time.Now()
	taskToCreate.UpdatedAt = nil
	taskToCreate.Version = 1
	s.assignSubtaskIDs(taskToCreate)

	s.storage[taskToCreate.ID] = taskToCreate.Clone()
	s.ids = append(s.ids, taskToCreate.ID)
	return nil
}

// Seed загружает готовый снимок с сохранением идентификаторов.
// Задачи без id получают следующий свободный
func (s *TaskStorage) Seed(ctx context.Context, tasks []*task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, t := range tasks {
		if t.ID > s.nextID {
			s.nextID = t.ID
		}
	}
	for _, t := range tasks {
		if t.ID == 0 {
			s.nextID++
			t.ID = s.nextID
		}
		if _, ok := s.storage[t.ID]; ok {
			return fmt.Errorf("задача %d: %w", t.ID, repo.ErrDuplicateID)
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now()
		}
		if t.Version == 0 {
			t.Version = 1
		}
		s.assignSubtaskIDs(t)

		s.storage[t.ID] = t.Clone()
		s.ids = append(s.ids, t.ID)
	}
	logger.Debug("Repository: Снимок загружен", zap.Int("count", len(tasks)))
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existed, ok := s.storage[taskToUpdate.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if existed.Version != taskToUpdate.Version {
		return repo.ErrVersionConflict
	}

	now := time.Now()
	taskToUpdate.UpdatedAt = &now
	taskToUpdate.CreatedAt = existed.CreatedAt
	taskToUpdate.Version++
	s.assignSubtaskIDs(taskToUpdate)

	s.storage[taskToUpdate.ID] = taskToUpdate.Clone()
	return nil
}

// assignSubtaskIDs выдаёт идентификаторы новым подзадачам. Вызывать под блокировкой
func (s *TaskStorage) assignSubtaskIDs(t *task.Task) {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID > s.nextSubID {
			s.nextSubID = t.Subtasks[i].ID
		}
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == 0 {
			s.nextSubID++
			t.Subtasks[i].ID = s.nextSubID
		}
	}
}

func (s *TaskStorage) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return taskToGet.Clone(), nil
}

func (s *TaskStorage) Delete(ctx context.Context, id int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}

// List возвращает задачи в порядке создания
func (s *TaskStorage) List(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range s.ids {
		t := s.storage[id]
		if !filter.Match(t) {
			continue
		}
		res = append(res, t.Clone())
	}
	return res, nil
}

// GetTasksEndingBefore отдаёт кандидатов на просрочку, самые старые первыми
func (s *TaskStorage) GetTasksEndingBefore(ctx context.Context, day task.Date, limit int) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	tasks := []*task.Task{}
	for _, id := range s.ids {
		t := s.storage[id]
		if t.EndDate.IsZero() || !t.EndDate.Before(day) || !task.CanBecomeOverdue(t.Status) {
			continue
		}
		tasks = append(tasks, t.Clone())
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].EndDate.Before(tasks[j].EndDate)
	})
	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}
