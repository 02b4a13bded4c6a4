// Package timeline содержит чистые преобразования списка задач в представления
// календаря, диаграммы Ганта, канбан-доски и планировщика команды.
// Ни одна функция не читает часы, не кэширует и не меняет входные задачи.
package timeline

import (
	"time"

	"taskTimeline/internal/models/task"
)

// Window - запрошенный период. Week == 0 означает весь месяц,
// Week == N - N-ю неделю с понедельника, считая от первой недели сетки месяца.
type Window struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Week  int        `json:"week,omitempty"`
}

// MaxWeek - больше недель в сетке месяца не бывает
const MaxWeek = 6

func MonthWindow(year int, month time.Month) Window {
	return Window{Year: year, Month: month}
}

func WeekWindow(year int, month time.Month, week int) Window {
	return Window{Year: year, Month: month, Week: week}
}

// Days - дни окна по порядку, всегда с понедельника по воскресенье
func (w Window) Days() []task.Date {
	first, last := monthGrid(w.Year, w.Month)
	if w.Week <= 0 {
		return Range(first, last)
	}
	start := first.AddDays(7 * (w.Week - 1))
	return Range(start, start.AddDays(6))
}

// InMonth сообщает, относится ли день к самому месяцу, а не к соседним дням сетки
func (w Window) InMonth(d task.Date) bool {
	return d.Year() == w.Year && d.Month() == w.Month
}

// WeekCount - число недель в сетке месяца (4-6)
func (w Window) WeekCount() int {
	first, last := monthGrid(w.Year, w.Month)
	return (last.DaysSince(first) + 1) / 7
}

func monthGrid(year int, month time.Month) (task.Date, task.Date) {
	monthStart := task.NewDate(year, month, 1)
	monthEnd := monthStart.AddDays(daysIn(year, month) - 1)
	return StartOfWeek(monthStart), EndOfWeek(monthEnd)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// StartOfWeek - понедельник на или перед d
func StartOfWeek(d task.Date) task.Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// EndOfWeek - воскресенье на или после d
func EndOfWeek(d task.Date) task.Date {
	return StartOfWeek(d).AddDays(6)
}

// Range - все дни от from до to включительно. Пустой срез, если интервал пуст.
func Range(from, to task.Date) []task.Date {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return []task.Date{}
	}
	days := make([]task.Date, 0, to.DaysSince(from)+1)
	for d := from; !d.After(to); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// Intersects - попадает ли day в [start, end] включительно.
// Задача без дат не пересекается ни с одним днём.
func Intersects(start, end, day task.Date) bool {
	if start.IsZero() || end.IsZero() || day.IsZero() {
		return false
	}
	return !day.Before(start) && !day.After(end)
}

func TasksOnDay(tasks []*task.Task, day task.Date) []*task.Task {
	res := []*task.Task{}
	for _, t := range tasks {
		if t == nil {
			continue
		}
		if Intersects(t.StartDate, t.EndDate, day) {
			res = append(res, t)
		}
	}
	return res
}

type DayCell struct {
	Date    task.Date    `json:"date"`
	InMonth bool         `json:"inMonth"`
	Tasks   []*task.Task `json:"tasks"`
}

type TaskSpan struct {
	Task *task.Task `json:"task"`
	Span Span       `json:"span"`
}

// Projection пересчитывается на каждый вызов и нигде не хранится
type Projection struct {
	Days  []DayCell  `json:"days"`
	Spans []TaskSpan `json:"spans"`
}

// Project раскладывает задачи по дням окна и считает их положение на шкале
func Project(tasks []*task.Task, w Window) Projection {
	days := w.Days()
	p := Projection{
		Days:  make([]DayCell, 0, len(days)),
		Spans: make([]TaskSpan, 0, len(tasks)),
	}
	for _, d := range days {
		p.Days = append(p.Days, DayCell{
			Date:    d,
			InMonth: w.InMonth(d),
			Tasks:   TasksOnDay(tasks, d),
		})
	}
	for _, t := range tasks {
		if t == nil {
			continue
		}
		p.Spans = append(p.Spans, TaskSpan{Task: t, Span: BarSpan(t.StartDate, t.EndDate, days)})
	}
	return p
}
