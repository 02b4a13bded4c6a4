package timeline

import (
	"fmt"

	"taskTimeline/internal/models/task"
)

type Style struct {
	Color string `json:"color" yaml:"color"`
	Label string `json:"label" yaml:"label"`
}

// FallbackColor - нейтральный цвет для статусов, о которых ядро ещё не знает
const FallbackColor = "#CCCCCC"

// StatusStyles - единая таблица цветов и подписей для всех представлений
var StatusStyles = map[task.Status]Style{
	task.StatusOpen:       {Color: "#FFD700", Label: "Open"},
	task.StatusInProgress: {Color: "#4169E1", Label: "In progress"},
	task.StatusTesting:    {Color: "#9370DB", Label: "Testing"},
	task.StatusCompleted:  {Color: "#32CD32", Label: "Completed"},
	task.StatusPostponed:  {Color: "#FF8C00", Label: "Postponed"},
	task.StatusCancelled:  {Color: "#808080", Label: "Cancelled"},
	task.StatusOverdue:    {Color: "#DC143C", Label: "Overdue"},
}

var TypeStyles = map[task.Type]Style{
	task.TypeTask:    {Color: "#89b4fa", Label: "Task"},
	task.TypeFeature: {Color: "#a6e3a1", Label: "Feature"},
	task.TypeBug:     {Color: "#f38ba8", Label: "Bug"},
}

var PriorityStyles = map[task.Priority]Style{
	task.PriorityNormal: {Color: "#6c7086", Label: "Normal"},
	task.PriorityHigh:   {Color: "#fab387", Label: "High"},
	task.PriorityUrgent: {Color: "#f38ba8", Label: "Urgent"},
}

// StatusStyle не падает на неизвестном статусе: нейтральный цвет и сам статус как подпись
func StatusStyle(s task.Status) Style {
	if st, ok := StatusStyles[s]; ok {
		return st
	}
	return Style{Color: FallbackColor, Label: string(s)}
}

// пустой тип отображается как обычная задача
func TypeStyle(t task.Type) Style {
	if st, ok := TypeStyles[t]; ok {
		return st
	}
	return TypeStyles[task.TypeTask]
}

func PriorityStyle(p task.Priority) Style {
	if st, ok := PriorityStyles[p]; ok {
		return st
	}
	return PriorityStyles[task.PriorityNormal]
}

type Column struct {
	Status task.Status `json:"status" yaml:"status"`
	Label  string      `json:"label" yaml:"label"`
}

// Layout - набор колонок доски и явная таблица сворачивания статусов,
// для которых своей колонки нет
type Layout struct {
	Name     string                      `json:"name" yaml:"name"`
	Columns  []Column                    `json:"columns" yaml:"columns"`
	Fold     map[task.Status]task.Status `json:"fold,omitempty" yaml:"fold,omitempty"`
	Fallback task.Status                 `json:"fallback" yaml:"fallback"`
}

const LayoutKanban = "kanban"
const LayoutCompact = "compact"

func KanbanLayout() Layout {
	cols := make([]Column, 0, len(task.Statuses))
	for _, s := range task.Statuses {
		cols = append(cols, Column{Status: s, Label: StatusStyles[s].Label})
	}
	return Layout{Name: LayoutKanban, Columns: cols, Fallback: task.StatusOpen}
}

func CompactLayout() Layout {
	return Layout{
		Name: LayoutCompact,
		Columns: []Column{
			{Status: task.StatusOpen, Label: "Open"},
			{Status: task.StatusInProgress, Label: "In progress"},
			{Status: task.StatusPostponed, Label: "Postponed"},
			{Status: task.StatusCompleted, Label: "Completed"},
		},
		Fold: map[task.Status]task.Status{
			task.StatusCancelled: task.StatusOpen,
			task.StatusOverdue:   task.StatusOpen,
			task.StatusTesting:   task.StatusInProgress,
		},
		Fallback: task.StatusOpen,
	}
}

func DefaultLayouts() map[string]Layout {
	return map[string]Layout{
		LayoutKanban:  KanbanLayout(),
		LayoutCompact: CompactLayout(),
	}
}

func (l Layout) has(s task.Status) bool {
	for _, c := range l.Columns {
		if c.Status == s {
			return true
		}
	}
	return false
}

// ColumnFor - колонка для статуса: своя, свёрнутая или запасная
func (l Layout) ColumnFor(s task.Status) task.Status {
	if l.has(s) {
		return s
	}
	if target, ok := l.Fold[s]; ok && l.has(target) {
		return target
	}
	if l.has(l.Fallback) {
		return l.Fallback
	}
	if len(l.Columns) > 0 {
		return l.Columns[0].Status
	}
	return l.Fallback
}

// Validate проверяет, что сворачивание и запасная колонка указывают на существующие колонки
func (l Layout) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("у раскладки нет имени")
	}
	if len(l.Columns) == 0 {
		return fmt.Errorf("раскладка %s: нет колонок", l.Name)
	}
	seen := make(map[task.Status]struct{}, len(l.Columns))
	for _, c := range l.Columns {
		if _, ok := seen[c.Status]; ok {
			return fmt.Errorf("раскладка %s: колонка %s повторяется", l.Name, c.Status)
		}
		seen[c.Status] = struct{}{}
	}
	for from, to := range l.Fold {
		if !l.has(to) {
			return fmt.Errorf("раскладка %s: %s сворачивается в несуществующую колонку %s", l.Name, from, to)
		}
	}
	if !l.has(l.Fallback) {
		return fmt.Errorf("раскладка %s: запасная колонка %s не найдена", l.Name, l.Fallback)
	}
	return nil
}

type Classification struct {
	Color  string      `json:"color"`
	Label  string      `json:"label"`
	Column task.Status `json:"column"`
}

func Classify(s task.Status, layout Layout) Classification {
	st := StatusStyle(s)
	return Classification{
		Color:  st.Color,
		Label:  st.Label,
		Column: layout.ColumnFor(s),
	}
}

type ColumnBucket struct {
	Column Column       `json:"column"`
	Color  string       `json:"color"`
	Tasks  []*task.Task `json:"tasks"`
	Count  int          `json:"count"`
}

// Board раскладывает задачи по колонкам, сохраняя входной порядок внутри колонки
func Board(tasks []*task.Task, layout Layout) []ColumnBucket {
	buckets := make([]ColumnBucket, len(layout.Columns))
	index := make(map[task.Status]int, len(layout.Columns))
	for i, c := range layout.Columns {
		buckets[i] = ColumnBucket{Column: c, Color: StatusStyle(c.Status).Color, Tasks: []*task.Task{}}
		index[c.Status] = i
	}
	for _, t := range tasks {
		if t == nil {
			continue
		}
		i, ok := index[layout.ColumnFor(t.Status)]
		if !ok {
			continue
		}
		buckets[i].Tasks = append(buckets[i].Tasks, t)
		buckets[i].Count++
	}
	return buckets
}
