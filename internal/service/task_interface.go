package service

import (
	"context"
	"taskTimeline/internal/models/task"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *task.Task) error
	Update(context.Context, *task.Task) error
	GetByID(context.Context, int64) (*task.Task, error)
	Delete(context.Context, int64) error
	List(context.Context, task.Filter) ([]*task.Task, error)
	GetTasksEndingBefore(context.Context, task.Date, int) ([]*task.Task, error)
}
