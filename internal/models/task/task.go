package task

import (
	"time"
)

type Task struct {
	ID                int64      `json:"id" yaml:"id" db:"id"`
	Title             string     `json:"title" yaml:"title" db:"title"`
	Content           string     `json:"content,omitempty" yaml:"content,omitempty" db:"content"`
	StartDate         Date       `json:"startDate" yaml:"startDate" db:"start_date"`
	EndDate           Date       `json:"endDate" yaml:"endDate" db:"end_date"`
	Status            Status     `json:"status" yaml:"status" db:"status"`
	TaskType          Type       `json:"taskType,omitempty" yaml:"taskType,omitempty" db:"task_type"`
	Priority          Priority   `json:"priority,omitempty" yaml:"priority,omitempty" db:"priority"`
	TeamID            int64      `json:"teamId" yaml:"teamId" db:"team_id"`
	TeamName          string     `json:"teamName,omitempty" yaml:"teamName,omitempty" db:"team_name"`
	ProjectID         *int64     `json:"projectId,omitempty" yaml:"projectId,omitempty" db:"project_id"`
	ProjectName       string     `json:"projectName,omitempty" yaml:"projectName,omitempty" db:"project_name"`
	CreatedByID       int64      `json:"createdById" yaml:"createdById" db:"created_by_id"`
	CreatedByName     string     `json:"createdByName,omitempty" yaml:"createdByName,omitempty" db:"created_by_name"`
	AssigneeIDs       []int64    `json:"assigneeIds" yaml:"assigneeIds"`
	AssigneeNames     []string   `json:"assigneeNames" yaml:"assigneeNames"`
	Subtasks          []Subtask  `json:"subtasks" yaml:"subtasks"`
	IsPostponed       bool       `json:"isPostponed" yaml:"isPostponed" db:"is_postponed"`
	PostponedFromDate Date       `json:"postponedFromDate,omitempty" yaml:"postponedFromDate,omitempty" db:"postponed_from_date"`
	PostponedToDate   Date       `json:"postponedToDate,omitempty" yaml:"postponedToDate,omitempty" db:"postponed_to_date"`
	CreatedAt         time.Time  `json:"createdAt" yaml:"-" db:"created_at"`
	UpdatedAt         *time.Time `json:"updatedAt,omitempty" yaml:"-" db:"updated_at"`
	Version           int        `json:"version" yaml:"-" db:"version"`
}

// Subtask не имеет своего статуса, только флаг выполнения.
// Пустые даты и исполнитель берутся у родителя.
type Subtask struct {
	ID           int64  `json:"id" yaml:"id" db:"id"`
	Title        string `json:"title" yaml:"title" db:"title"`
	Content      string `json:"content,omitempty" yaml:"content,omitempty" db:"content"`
	StartDate    Date   `json:"startDate,omitempty" yaml:"startDate,omitempty" db:"start_date"`
	EndDate      Date   `json:"endDate,omitempty" yaml:"endDate,omitempty" db:"end_date"`
	AssigneeID   *int64 `json:"assigneeId,omitempty" yaml:"assigneeId,omitempty" db:"assignee_id"`
	AssigneeName string `json:"assigneeName,omitempty" yaml:"assigneeName,omitempty" db:"assignee_name"`
	IsCompleted  bool   `json:"isCompleted" yaml:"isCompleted" db:"is_completed"`
}

type Status string
type Type string
type Priority string

const StatusOpen Status = "OPEN"
const StatusInProgress Status = "IN_PROGRESS"
const StatusTesting Status = "TESTING"
const StatusCompleted Status = "COMPLETED"
const StatusPostponed Status = "POSTPONED"
const StatusCancelled Status = "CANCELLED"
const StatusOverdue Status = "OVERDUE"

const TypeTask Type = "TASK"
const TypeFeature Type = "FEATURE"
const TypeBug Type = "BUG"

const PriorityNormal Priority = "NORMAL"
const PriorityHigh Priority = "HIGH"
const PriorityUrgent Priority = "URGENT"

// Statuses в порядке колонок полной доски
var Statuses = []Status{
	StatusOpen,
	StatusInProgress,
	StatusTesting,
	StatusCompleted,
	StatusPostponed,
	StatusCancelled,
	StatusOverdue,
}

func (s Status) Known() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// CanBecomeOverdue - завершённые, отменённые, тестируемые и уже просроченные задачи не трогаем
func CanBecomeOverdue(s Status) bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusTesting, StatusOverdue:
		return false
	}
	return true
}

func (t *Task) HasSubtasks() bool {
	return len(t.Subtasks) > 0
}

// SubtaskProgress возвращает число выполненных подзадач и общее число
func (t *Task) SubtaskProgress() (done, total int) {
	for _, st := range t.Subtasks {
		if st.IsCompleted {
			done++
		}
	}
	return done, len(t.Subtasks)
}

func (t *Task) HasAssignee(id int64) bool {
	for _, a := range t.AssigneeIDs {
		if a == id {
			return true
		}
	}
	return false
}

// AssigneeName берёт имя из параллельного списка AssigneeNames
func (t *Task) AssigneeName(index int) string {
	if index < 0 || index >= len(t.AssigneeNames) {
		return ""
	}
	return t.AssigneeNames[index]
}

func (t *Task) Subtask(id int64) (*Subtask, bool) {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == id {
			return &t.Subtasks[i], true
		}
	}
	return nil, false
}

// Clone копирует задачу вместе со срезами, чтобы хранилище не делило память с вызывающим
func (t *Task) Clone() *Task {
	c := *t
	c.AssigneeIDs = append([]int64(nil), t.AssigneeIDs...)
	c.AssigneeNames = append([]string(nil), t.AssigneeNames...)
	c.Subtasks = append([]Subtask(nil), t.Subtasks...)
	if t.ProjectID != nil {
		id := *t.ProjectID
		c.ProjectID = &id
	}
	if t.UpdatedAt != nil {
		at := *t.UpdatedAt
		c.UpdatedAt = &at
	}
	return &c
}
