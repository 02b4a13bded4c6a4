package dto

import (
	"taskTimeline/internal/models/task"
	"taskTimeline/internal/timeline"
)

type SubtaskRequest struct {
	Title        string    `json:"title" validate:"required,max=255"`
	Content      string    `json:"content" validate:"max=10000"`
	StartDate    task.Date `json:"startDate"`
	EndDate      task.Date `json:"endDate"`
	AssigneeID   *int64    `json:"assigneeId" validate:"omitempty,gt=0"`
	AssigneeName string    `json:"assigneeName" validate:"max=255"`
}

func (r SubtaskRequest) ToSubtask() task.Subtask {
	return task.Subtask{
		Title:        r.Title,
		Content:      r.Content,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		AssigneeID:   r.AssigneeID,
		AssigneeName: r.AssigneeName,
	}
}

// даты разбираются мягко: неверный формат превращается в пустую дату,
// которую отклоняет сервис
type CreateTaskRequest struct {
	Title         string           `json:"title" validate:"required,max=255"`
	Content       string           `json:"content" validate:"max=10000"`
	StartDate     task.Date        `json:"startDate"`
	EndDate       task.Date        `json:"endDate"`
	Status        task.Status      `json:"status" validate:"omitempty,oneof=OPEN IN_PROGRESS TESTING COMPLETED POSTPONED CANCELLED OVERDUE"`
	TaskType      task.Type        `json:"taskType" validate:"omitempty,oneof=TASK FEATURE BUG"`
	Priority      task.Priority    `json:"priority" validate:"omitempty,oneof=NORMAL HIGH URGENT"`
	TeamID        int64            `json:"teamId" validate:"required,gt=0"`
	TeamName      string           `json:"teamName" validate:"max=255"`
	ProjectID     *int64           `json:"projectId" validate:"omitempty,gt=0"`
	ProjectName   string           `json:"projectName" validate:"max=255"`
	CreatedByID   int64            `json:"createdById" validate:"gte=0"`
	CreatedByName string           `json:"createdByName" validate:"max=255"`
	AssigneeIDs   []int64          `json:"assigneeIds" validate:"dive,gt=0"`
	AssigneeNames []string         `json:"assigneeNames"`
	Subtasks      []SubtaskRequest `json:"subtasks" validate:"dive"`
}

func (r CreateTaskRequest) ToTask() *task.Task {
	t := &task.Task{
		Title:         r.Title,
		Content:       r.Content,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		Status:        r.Status,
		TaskType:      r.TaskType,
		Priority:      r.Priority,
		TeamID:        r.TeamID,
		TeamName:      r.TeamName,
		ProjectID:     r.ProjectID,
		ProjectName:   r.ProjectName,
		CreatedByID:   r.CreatedByID,
		CreatedByName: r.CreatedByName,
		AssigneeIDs:   []int64{},
		AssigneeNames: r.AssigneeNames,
		Subtasks:      make([]task.Subtask, 0, len(r.Subtasks)),
	}
	if opt := task.WithAssignees(r.AssigneeIDs, r.AssigneeNames); opt != nil {
		opt(t)
	}
	for _, st := range r.Subtasks {
		t.Subtasks = append(t.Subtasks, st.ToSubtask())
	}
	return t
}

type UpdateTaskRequest struct {
	Title         *string        `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Content       *string        `json:"content,omitempty" validate:"omitempty,max=10000"`
	StartDate     *task.Date     `json:"startDate,omitempty"`
	EndDate       *task.Date     `json:"endDate,omitempty"`
	TaskType      *task.Type     `json:"taskType,omitempty" validate:"omitempty,oneof=TASK FEATURE BUG"`
	Priority      *task.Priority `json:"priority,omitempty" validate:"omitempty,oneof=NORMAL HIGH URGENT"`
	ProjectID     *int64         `json:"projectId,omitempty" validate:"omitempty,gt=0"`
	AssigneeIDs   []int64        `json:"assigneeIds,omitempty" validate:"omitempty,dive,gt=0"`
	AssigneeNames []string       `json:"assigneeNames,omitempty"`
	Version       int            `json:"version" validate:"gte=0"`
}

// Options переводит запрос в опции обновления. Пустые опции возвращаются как nil
func (r UpdateTaskRequest) Options() []task.Option {
	opts := []task.Option{}
	if r.Title != nil {
		opts = append(opts, task.WithTitle(*r.Title))
	}
	if r.Content != nil {
		opts = append(opts, task.WithContent(*r.Content))
	}
	if r.StartDate != nil && r.EndDate != nil {
		opts = append(opts, task.WithDates(*r.StartDate, *r.EndDate))
	}
	if r.TaskType != nil {
		opts = append(opts, task.WithType(*r.TaskType))
	}
	if r.Priority != nil {
		opts = append(opts, task.WithPriority(*r.Priority))
	}
	if r.ProjectID != nil {
		opts = append(opts, task.WithProject(r.ProjectID))
	}
	if r.AssigneeIDs != nil {
		opts = append(opts, task.WithAssignees(r.AssigneeIDs, r.AssigneeNames))
	}
	return opts
}

type UpdateStatusRequest struct {
	Status          task.Status `json:"status" validate:"required,oneof=OPEN IN_PROGRESS TESTING COMPLETED POSTPONED CANCELLED OVERDUE"`
	PostponedToDate task.Date   `json:"postponedToDate"`
}

type CompleteSubtaskRequest struct {
	Completed *bool `json:"completed"`
}

type TaskResponse struct {
	*task.Task
	IsOverdue bool              `json:"isOverdue"`
	Progress  int               `json:"progress"`
	Deadline  timeline.Deadline `json:"deadline"`
	Color     string            `json:"color"`
}

func FromTask(t *task.Task, today task.Date) TaskResponse {
	dl := timeline.DeadlineOf(t, today)
	return TaskResponse{
		Task:      t,
		IsOverdue: t.Status == task.StatusOverdue || dl.State == timeline.DeadlineOverdue,
		Progress:  timeline.Progress(t, today),
		Deadline:  dl,
		Color:     timeline.StatusStyle(t.Status).Color,
	}
}

func FromTaskList(tasks []*task.Task, today task.Date) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, today)
	}
	return result
}
