package timeline

import (
	"fmt"
	"time"

	"taskTimeline/internal/models/task"
)

// CountByStatus - итоги для дашборда. Неизвестные статусы считаются под своим значением.
func CountByStatus(tasks []*task.Task) map[task.Status]int {
	counts := make(map[task.Status]int, len(task.Statuses))
	for _, s := range task.Statuses {
		counts[s] = 0
	}
	for _, t := range tasks {
		if t == nil {
			continue
		}
		counts[t.Status]++
	}
	return counts
}

type MonthCount struct {
	Month    time.Month          `json:"month"`
	Total    int                 `json:"total"`
	ByStatus map[task.Status]int `json:"byStatus"`
}

// MonthSummary - двенадцать месяцев года, задача относится к месяцу своей даты начала
func MonthSummary(tasks []*task.Task, year int) []MonthCount {
	res := make([]MonthCount, 12)
	for i := range res {
		res[i] = MonthCount{Month: time.Month(i + 1), ByStatus: map[task.Status]int{}}
	}
	for _, t := range tasks {
		if t == nil || t.StartDate.IsZero() || t.StartDate.Year() != year {
			continue
		}
		mc := &res[t.StartDate.Month()-1]
		mc.Total++
		mc.ByStatus[t.Status]++
	}
	return res
}

// WeekKey - ключ недели месяца вида 2025-01-W03, неделя = ceil(день / 7)
func WeekKey(d task.Date) string {
	if d.IsZero() {
		return ""
	}
	week := (d.Day() + 6) / 7
	return fmt.Sprintf("%d-%02d-W%02d", d.Year(), int(d.Month()), week)
}

type WeekGroup struct {
	Key   string       `json:"key"`
	Tasks []*task.Task `json:"tasks"`
}

// GroupByWeek группирует задачи по неделе даты начала в порядке первого появления ключа
func GroupByWeek(tasks []*task.Task) []WeekGroup {
	res := []WeekGroup{}
	index := make(map[string]int)
	for _, t := range tasks {
		if t == nil {
			continue
		}
		key := WeekKey(t.StartDate)
		if key == "" {
			continue
		}
		pos, ok := index[key]
		if !ok {
			pos = len(res)
			index[key] = pos
			res = append(res, WeekGroup{Key: key})
		}
		res[pos].Tasks = append(res[pos].Tasks, t)
	}
	return res
}
