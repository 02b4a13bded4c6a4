package handlers

import (
	"context"
	"taskTimeline/internal/models/task"
	"taskTimeline/internal/service"
	"taskTimeline/internal/timeline"
)

type TaskService interface {
	HealthCheck(context.Context) error
	CreateTask(context.Context, *task.Task) (*task.Task, error)
	GetTask(context.Context, int64) (*task.Task, error)
	ListTasks(context.Context, task.Filter) ([]*task.Task, error)
	UpdateTask(context.Context, int64, int, ...task.Option) (*task.Task, error)
	UpdateStatus(context.Context, int64, task.Status, task.Date) (*task.Task, error)
	DeleteTask(context.Context, int64) error
	AddSubtask(context.Context, int64, task.Subtask) (*task.Task, error)
	SetSubtaskCompleted(context.Context, int64, int64, bool) (*task.Task, error)
}

type ProjectionService interface {
	Today() task.Date
	Calendar(context.Context, service.Query) (*service.CalendarView, error)
	Gantt(context.Context, service.Query, timeline.IDSet) (*service.GanttView, error)
	Kanban(context.Context, service.Query, string) (*service.KanbanView, error)
	Planner(context.Context, service.Query) (*service.PlannerView, error)
	Summary(context.Context, int, service.Scope) (*service.SummaryView, error)
}
