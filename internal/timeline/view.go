package timeline

import "taskTimeline/internal/models/task"

type ViewKind string

const KindTask ViewKind = "task"
const KindSubtask ViewKind = "subtask"

// TaskView - строка иерархии: либо сама задача, либо подзадача,
// дополненная полями родителя. Какое поле заполнено, определяет Kind.
type TaskView struct {
	Kind    ViewKind     `json:"kind"`
	Task    *task.Task   `json:"task,omitempty"`
	Subtask *SubtaskView `json:"subtask,omitempty"`
}

type SubtaskView struct {
	ID            int64         `json:"id"`
	ParentID      int64         `json:"parentId"`
	Title         string        `json:"title"`
	Content       string        `json:"content,omitempty"`
	StartDate     task.Date     `json:"startDate"`
	EndDate       task.Date     `json:"endDate"`
	Status        task.Status   `json:"status"`
	TaskType      task.Type     `json:"taskType,omitempty"`
	Priority      task.Priority `json:"priority,omitempty"`
	TeamID        int64         `json:"teamId"`
	TeamName      string        `json:"teamName,omitempty"`
	ProjectID     *int64        `json:"projectId,omitempty"`
	CreatedByID   int64         `json:"createdById"`
	CreatedByName string        `json:"createdByName,omitempty"`
	AssigneeIDs   []int64       `json:"assigneeIds"`
	AssigneeNames []string      `json:"assigneeNames"`
	IsCompleted   bool          `json:"isCompleted"`
}

func TaskOf(t *task.Task) TaskView {
	return TaskView{Kind: KindTask, Task: t}
}

// SubtaskOf строит представление подзадачи. Статус выводится из флага выполнения.
func SubtaskOf(parent *task.Task, st task.Subtask) TaskView {
	sv := &SubtaskView{
		ID:            st.ID,
		ParentID:      parent.ID,
		Title:         st.Title,
		Content:       st.Content,
		StartDate:     st.StartDate,
		EndDate:       st.EndDate,
		Status:        task.StatusInProgress,
		TaskType:      parent.TaskType,
		Priority:      parent.Priority,
		TeamID:        parent.TeamID,
		TeamName:      parent.TeamName,
		ProjectID:     parent.ProjectID,
		CreatedByID:   parent.CreatedByID,
		CreatedByName: parent.CreatedByName,
		AssigneeIDs:   []int64{},
		AssigneeNames: []string{},
		IsCompleted:   st.IsCompleted,
	}
	if st.IsCompleted {
		sv.Status = task.StatusCompleted
	}
	if sv.StartDate.IsZero() {
		sv.StartDate = parent.StartDate
	}
	if sv.EndDate.IsZero() {
		sv.EndDate = parent.EndDate
	}
	if st.AssigneeID != nil {
		sv.AssigneeIDs = []int64{*st.AssigneeID}
		if st.AssigneeName != "" {
			sv.AssigneeNames = []string{st.AssigneeName}
		}
	}
	return TaskView{Kind: KindSubtask, Subtask: sv}
}

func (v TaskView) ID() int64 {
	if v.Kind == KindSubtask {
		return v.Subtask.ID
	}
	return v.Task.ID
}

func (v TaskView) Title() string {
	if v.Kind == KindSubtask {
		return v.Subtask.Title
	}
	return v.Task.Title
}

func (v TaskView) Dates() (task.Date, task.Date) {
	if v.Kind == KindSubtask {
		return v.Subtask.StartDate, v.Subtask.EndDate
	}
	return v.Task.StartDate, v.Task.EndDate
}

func (v TaskView) Status() task.Status {
	if v.Kind == KindSubtask {
		return v.Subtask.Status
	}
	return v.Task.Status
}

func (v TaskView) Priority() task.Priority {
	if v.Kind == KindSubtask {
		return v.Subtask.Priority
	}
	return v.Task.Priority
}

func (v TaskView) TaskType() task.Type {
	if v.Kind == KindSubtask {
		return v.Subtask.TaskType
	}
	return v.Task.TaskType
}
