package timeline

import "taskTimeline/internal/models/task"

// IDSet - раскрытые в диаграмме задачи. Состояние принадлежит вызывающему.
type IDSet map[int64]struct{}

func NewIDSet(ids ...int64) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Toggle возвращает новое множество, исходное не меняется
func (s IDSet) Toggle(id int64) IDSet {
	res := make(IDSet, len(s)+1)
	for k := range s {
		res[k] = struct{}{}
	}
	if s.Has(id) {
		delete(res, id)
	} else {
		res[id] = struct{}{}
	}
	return res
}

type Row struct {
	View      TaskView `json:"view"`
	Level     int      `json:"level"`
	IsSubtask bool     `json:"isSubtask"`
}

// Flatten выводит сначала задачи с подзадачами (раскрытые - вместе с подзадачами
// уровнем ниже), затем задачи без подзадач. Порядок внутри групп сохраняется.
func Flatten(tasks []*task.Task, expanded IDSet) []Row {
	rows := make([]Row, 0, len(tasks))
	emitted := make(map[int64]struct{})

	for _, parent := range tasks {
		if parent == nil || !parent.HasSubtasks() {
			continue
		}
		rows = append(rows, Row{View: TaskOf(parent), Level: 0})
		emitted[parent.ID] = struct{}{}

		if !expanded.Has(parent.ID) {
			continue
		}
		for _, st := range parent.Subtasks {
			rows = append(rows, Row{View: SubtaskOf(parent, st), Level: 1, IsSubtask: true})
		}
	}

	for _, t := range tasks {
		if t == nil || t.HasSubtasks() {
			continue
		}
		if _, ok := emitted[t.ID]; ok {
			continue
		}
		rows = append(rows, Row{View: TaskOf(t), Level: 0})
	}
	return rows
}

// ParentIDs - идентификаторы всех задач с подзадачами, для "раскрыть всё"
func ParentIDs(tasks []*task.Task) IDSet {
	s := IDSet{}
	for _, t := range tasks {
		if t != nil && t.HasSubtasks() {
			s[t.ID] = struct{}{}
		}
	}
	return s
}
