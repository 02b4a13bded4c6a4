package timeline

import (
	"math"

	"taskTimeline/internal/models/task"
)

// Progress - оценка процента выполнения для полосы в интерфейсе.
// Это не состояние задачи: значение зависит от today и считается заново каждый раз.
func Progress(t *task.Task, today task.Date) int {
	done, total := t.SubtaskProgress()
	return statusProgress(t.Status, done, total, t.StartDate, t.EndDate, today)
}

// ViewProgress считает прогресс строки диаграммы. Подзадача без подзадач
// оценивается по своим датам, выполненная даёт 100.
func ViewProgress(v TaskView, today task.Date) int {
	if v.Kind == KindSubtask && v.Subtask != nil {
		return statusProgress(v.Subtask.Status, 0, 0, v.Subtask.StartDate, v.Subtask.EndDate, today)
	}
	if v.Task == nil {
		return 0
	}
	return Progress(v.Task, today)
}

func statusProgress(status task.Status, done, total int, start, end, today task.Date) int {
	switch status {
	case task.StatusCompleted:
		return 100
	case task.StatusTesting:
		if total > 0 {
			return max(80, ratio(done, total))
		}
		return 85
	case task.StatusInProgress:
		if total > 0 {
			return ratio(done, total)
		}
		return interpolate(start, end, today, 10, 95, func(frac float64) int {
			return clamp(int(math.Round(frac*100)), 10, 95)
		})
	case task.StatusPostponed:
		return interpolate(start, end, today, 20, 60, func(frac float64) int {
			return 20 + int(math.Round(frac*40))
		})
	}
	return 0
}

func ratio(done, total int) int {
	return int(math.Round(100 * float64(done) / float64(total)))
}

// interpolate возвращает atEnd с дня окончания, atStart до дня начала включительно,
// между ними - scale от доли прошедших дней
func interpolate(start, end, today task.Date, atStart, atEnd int, scale func(float64) int) int {
	if start.IsZero() || end.IsZero() || today.IsZero() {
		return atStart
	}
	if !today.Before(end) {
		return atEnd
	}
	if !today.After(start) {
		return atStart
	}
	span := end.DaysSince(start)
	if span <= 0 {
		return atEnd
	}
	return scale(float64(today.DaysSince(start)) / float64(span))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DaysRemaining - дней до дня окончания. Отрицательное значение - просрочка,
// ноль - срок сегодня. ok == false, если дата окончания не задана.
func DaysRemaining(t *task.Task, today task.Date) (int, bool) {
	if t.EndDate.IsZero() || today.IsZero() {
		return 0, false
	}
	return t.EndDate.DaysSince(today), true
}

type DeadlineState string

const DeadlineUnknown DeadlineState = "unknown"
const DeadlineOverdue DeadlineState = "overdue"
const DeadlineDueToday DeadlineState = "due_today"
const DeadlineDueSoon DeadlineState = "due_soon"
const DeadlineOnTrack DeadlineState = "on_track"
const DeadlineClosed DeadlineState = "closed"

// DueSoonDays - порог "скоро срок", как у проекта с одним оставшимся днём
const DueSoonDays = 1

type Deadline struct {
	DaysRemaining int           `json:"daysRemaining"`
	Known         bool          `json:"known"`
	State         DeadlineState `json:"state"`
}

// DeadlineOf классифицирует срок. Завершённые и отменённые задачи не просрочиваются.
func DeadlineOf(t *task.Task, today task.Date) Deadline {
	return deadline(t.Status, t.EndDate, today)
}

func ViewDeadline(v TaskView, today task.Date) Deadline {
	_, end := v.Dates()
	return deadline(v.Status(), end, today)
}

func deadline(status task.Status, end, today task.Date) Deadline {
	d := Deadline{}
	if end.IsZero() || today.IsZero() {
		d.State = DeadlineUnknown
		return d
	}
	d.DaysRemaining = end.DaysSince(today)
	d.Known = true
	switch {
	case status == task.StatusCompleted || status == task.StatusCancelled:
		d.State = DeadlineClosed
	case d.DaysRemaining < 0:
		d.State = DeadlineOverdue
	case d.DaysRemaining == 0:
		d.State = DeadlineDueToday
	case d.DaysRemaining <= DueSoonDays:
		d.State = DeadlineDueSoon
	default:
		d.State = DeadlineOnTrack
	}
	return d
}
