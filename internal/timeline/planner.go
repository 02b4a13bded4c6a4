package timeline

import "taskTimeline/internal/models/task"

type Assignee struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UnknownAssignee подставляется, когда у задачи нет имени для исполнителя
const UnknownAssignee = "Unknown"

// Assignees - исполнители в порядке первого появления
func Assignees(tasks []*task.Task) []Assignee {
	res := []Assignee{}
	index := make(map[int64]int)
	for _, t := range tasks {
		if t == nil {
			continue
		}
		for i, id := range t.AssigneeIDs {
			name := t.AssigneeName(i)
			if pos, ok := index[id]; ok {
				if res[pos].Name == UnknownAssignee && name != "" {
					res[pos].Name = name
				}
				continue
			}
			if name == "" {
				name = UnknownAssignee
			}
			index[id] = len(res)
			res = append(res, Assignee{ID: id, Name: name})
		}
	}
	return res
}

// SpanDays - индексы дней, которые задача занимает среди days
func SpanDays(start, end task.Date, days []task.Date) []int {
	res := []int{}
	for i, d := range days {
		if Intersects(start, end, d) {
			res = append(res, i)
		}
	}
	return res
}

type PlannedTask struct {
	Task *task.Task `json:"task"`
	Days []int      `json:"days"`
}

type PlannerRow struct {
	Assignee Assignee      `json:"assignee"`
	Tasks    []PlannedTask `json:"tasks"`
}

// PlanWeek строит строки планировщика: по одной на исполнителя,
// в строке задачи, задевающие хотя бы один день из days
func PlanWeek(tasks []*task.Task, days []task.Date) []PlannerRow {
	assignees := Assignees(tasks)
	rows := make([]PlannerRow, 0, len(assignees))
	for _, a := range assignees {
		row := PlannerRow{Assignee: a, Tasks: []PlannedTask{}}
		for _, t := range tasks {
			if t == nil || !t.HasAssignee(a.ID) {
				continue
			}
			spanned := SpanDays(t.StartDate, t.EndDate, days)
			if len(spanned) == 0 {
				continue
			}
			row.Tasks = append(row.Tasks, PlannedTask{Task: t, Days: spanned})
		}
		rows = append(rows, row)
	}
	return rows
}
