package service

import (
	"context"
	"fmt"
	"sort"
	"taskTimeline/internal/logger"
	"taskTimeline/internal/models/task"
	"taskTimeline/internal/timeline"
	"time"

	"go.uber.org/zap"
)

// ProjectionService читает снимок задач на каждый вызов и прогоняет его через timeline.
// Результаты нигде не кэшируются.
type ProjectionService struct {
	repo          TaskRepository
	layouts       map[string]timeline.Layout
	defaultLayout string
	geometry      timeline.Geometry
	location      *time.Location
	now           func() time.Time
}

type ProjectionOption func(*ProjectionService)

// WithLayouts добавляет раскладки к встроенным, одноимённые заменяются
func WithLayouts(layouts map[string]timeline.Layout) ProjectionOption {
	return func(s *ProjectionService) {
		for name, l := range layouts {
			s.layouts[name] = l
		}
	}
}

func WithDefaultLayout(name string) ProjectionOption {
	return func(s *ProjectionService) {
		if name != "" {
			s.defaultLayout = name
		}
	}
}

func WithGeometry(g timeline.Geometry) ProjectionOption {
	return func(s *ProjectionService) {
		s.geometry = g
	}
}

func WithLocation(loc *time.Location) ProjectionOption {
	return func(s *ProjectionService) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithClock(now func() time.Time) ProjectionOption {
	return func(s *ProjectionService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewProjectionService(repo TaskRepository, opts ...ProjectionOption) *ProjectionService {
	s := &ProjectionService{
		repo:          repo,
		layouts:       timeline.DefaultLayouts(),
		defaultLayout: timeline.LayoutKanban,
		geometry:      timeline.NewGeometry(timeline.DefaultMilestonePercent),
		location:      time.UTC,
		now:           time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Scope сужает снимок. nil - без ограничения
type Scope struct {
	TeamID     *int64
	ProjectID  *int64
	AssigneeID *int64
}

func (sc Scope) filter(from, to task.Date) task.Filter {
	return task.Filter{
		TeamID:     sc.TeamID,
		ProjectID:  sc.ProjectID,
		AssigneeID: sc.AssigneeID,
		From:       from,
		To:         to,
	}
}

type Query struct {
	Year  int
	Month time.Month
	// Week == 0 - весь месяц
	Week int
	Scope
}

func (q Query) window() (timeline.Window, error) {
	if q.Year < 1 || q.Year > 9999 {
		return timeline.Window{}, NewValidationError("year", "должен быть от 1 до 9999")
	}
	if q.Month < time.January || q.Month > time.December {
		return timeline.Window{}, NewValidationError("month", "должен быть от 1 до 12")
	}
	if q.Week < 0 || q.Week > timeline.MaxWeek {
		return timeline.Window{}, NewValidationError("week", fmt.Sprintf("должна быть от 0 до %d", timeline.MaxWeek))
	}
	if q.Week == 0 {
		return timeline.MonthWindow(q.Year, q.Month), nil
	}
	return timeline.WeekWindow(q.Year, q.Month, q.Week), nil
}

// Today - текущий календарный день в часовом поясе сервиса
func (s *ProjectionService) Today() task.Date {
	return task.DateOf(s.now().In(s.location))
}

func (s *ProjectionService) Layout(name string) (timeline.Layout, error) {
	if name == "" {
		name = s.defaultLayout
	}
	l, ok := s.layouts[name]
	if !ok {
		return timeline.Layout{}, NewUnknownLayout(name, s.LayoutNames())
	}
	return l, nil
}

func (s *ProjectionService) LayoutNames() []string {
	names := make([]string, 0, len(s.layouts))
	for name := range s.layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *ProjectionService) snapshot(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	tasks, err := s.repo.List(ctx, filter)
	if err != nil {
		logger.Error("Service: Не удалось получить снимок задач", err)
		return nil, fmt.Errorf("снимок задач: %w", err)
	}
	return tasks, nil
}

func (s *ProjectionService) windowSnapshot(ctx context.Context, q Query) (timeline.Window, []task.Date, []*task.Task, error) {
	w, err := q.window()
	if err != nil {
		return timeline.Window{}, nil, nil, err
	}
	days := w.Days()
	tasks, err := s.snapshot(ctx, q.Scope.filter(days[0], days[len(days)-1]))
	if err != nil {
		return timeline.Window{}, nil, nil, err
	}
	return w, days, tasks, nil
}

type TaskCard struct {
	Task     *task.Task              `json:"task"`
	Status   timeline.Classification `json:"status"`
	Type     timeline.Style          `json:"type"`
	Priority timeline.Style          `json:"priority"`
	Progress int                     `json:"progress"`
	Deadline timeline.Deadline       `json:"deadline"`
}

func cardOf(t *task.Task, layout timeline.Layout, today task.Date) TaskCard {
	return TaskCard{
		Task:     t,
		Status:   timeline.Classify(t.Status, layout),
		Type:     timeline.TypeStyle(t.TaskType),
		Priority: timeline.PriorityStyle(t.Priority),
		Progress: timeline.Progress(t, today),
		Deadline: timeline.DeadlineOf(t, today),
	}
}

func cardsOf(tasks []*task.Task, layout timeline.Layout, today task.Date) []TaskCard {
	cards := make([]TaskCard, 0, len(tasks))
	for _, t := range tasks {
		cards = append(cards, cardOf(t, layout, today))
	}
	return cards
}

type CalendarDay struct {
	Date    task.Date  `json:"date"`
	InMonth bool       `json:"inMonth"`
	IsToday bool       `json:"isToday"`
	Tasks   []TaskCard `json:"tasks"`
}

type CalendarBar struct {
	TaskID int64         `json:"taskId"`
	Title  string        `json:"title"`
	Color  string        `json:"color"`
	Span   timeline.Span `json:"span"`
}

type CalendarView struct {
	Year  int           `json:"year"`
	Month time.Month    `json:"month"`
	Week  int           `json:"week"`
	Today task.Date     `json:"today"`
	Days  []CalendarDay `json:"days"`
	Bars  []CalendarBar `json:"bars"`
}

func (s *ProjectionService) Calendar(ctx context.Context, q Query) (*CalendarView, error) {
	w, _, tasks, err := s.windowSnapshot(ctx, q)
	if err != nil {
		return nil, err
	}
	layout, err := s.Layout("")
	if err != nil {
		return nil, err
	}

	today := s.Today()
	p := timeline.Project(tasks, w)

	view := &CalendarView{
		Year:  w.Year,
		Month: w.Month,
		Week:  w.Week,
		Today: today,
		Days:  make([]CalendarDay, 0, len(p.Days)),
		Bars:  []CalendarBar{},
	}
	for _, cell := range p.Days {
		view.Days = append(view.Days, CalendarDay{
			Date:    cell.Date,
			InMonth: cell.InMonth,
			IsToday: cell.Date.Equal(today),
			Tasks:   cardsOf(cell.Tasks, layout, today),
		})
	}
	for _, sp := range p.Spans {
		if !sp.Span.Visible {
			continue
		}
		view.Bars = append(view.Bars, CalendarBar{
			TaskID: sp.Task.ID,
			Title:  sp.Task.Title,
			Color:  timeline.StatusStyle(sp.Task.Status).Color,
			Span:   sp.Span,
		})
	}

	logger.Debug("Service: Календарь построен",
		zap.Int("year", w.Year), zap.Int("month", int(w.Month)), zap.Int("tasks", len(tasks)))
	return view, nil
}

type GanttRow struct {
	View       timeline.TaskView `json:"view"`
	Level      int               `json:"level"`
	IsSubtask  bool              `json:"isSubtask"`
	Expandable bool              `json:"expandable"`
	Expanded   bool              `json:"expanded"`
	Span       timeline.Span     `json:"span"`
	Milestone  bool              `json:"milestone"`
	Color      string            `json:"color"`
	Label      string            `json:"label"`
	Progress   int               `json:"progress"`
	Deadline   timeline.Deadline `json:"deadline"`
}

type GanttView struct {
	Year  int         `json:"year"`
	Month time.Month  `json:"month"`
	Week  int         `json:"week"`
	Today task.Date   `json:"today"`
	Days  []task.Date `json:"days"`
	Rows  []GanttRow  `json:"rows"`
}

func (s *ProjectionService) Gantt(ctx context.Context, q Query, expanded timeline.IDSet) (*GanttView, error) {
	w, days, tasks, err := s.windowSnapshot(ctx, q)
	if err != nil {
		return nil, err
	}

	today := s.Today()
	rows := timeline.Flatten(tasks, expanded)

	view := &GanttView{
		Year:  w.Year,
		Month: w.Month,
		Week:  w.Week,
		Today: today,
		Days:  days,
		Rows:  make([]GanttRow, 0, len(rows)),
	}
	for _, r := range rows {
		span := timeline.ViewSpan(r.View, days)
		style := timeline.StatusStyle(r.View.Status())
		row := GanttRow{
			View:      r.View,
			Level:     r.Level,
			IsSubtask: r.IsSubtask,
			Span:      span,
			Milestone: s.geometry.IsMilestone(span),
			Color:     style.Color,
			Label:     style.Label,
			Progress:  timeline.ViewProgress(r.View, today),
			Deadline:  timeline.ViewDeadline(r.View, today),
		}
		if !r.IsSubtask && r.View.Task.HasSubtasks() {
			row.Expandable = true
			row.Expanded = expanded.Has(r.View.ID())
		}
		view.Rows = append(view.Rows, row)
	}
	return view, nil
}

type KanbanColumn struct {
	Status task.Status `json:"status"`
	Label  string      `json:"label"`
	Color  string      `json:"color"`
	Count  int         `json:"count"`
	Cards  []TaskCard  `json:"cards"`
}

type KanbanView struct {
	Layout  string         `json:"layout"`
	Today   task.Date      `json:"today"`
	Columns []KanbanColumn `json:"columns"`
}

func (s *ProjectionService) Kanban(ctx context.Context, q Query, layoutName string) (*KanbanView, error) {
	layout, err := s.Layout(layoutName)
	if err != nil {
		return nil, err
	}
	_, _, tasks, err := s.windowSnapshot(ctx, q)
	if err != nil {
		return nil, err
	}

	today := s.Today()
	buckets := timeline.Board(tasks, layout)

	view := &KanbanView{
		Layout:  layout.Name,
		Today:   today,
		Columns: make([]KanbanColumn, 0, len(buckets)),
	}
	for _, b := range buckets {
		view.Columns = append(view.Columns, KanbanColumn{
			Status: b.Column.Status,
			Label:  b.Column.Label,
			Color:  b.Color,
			Count:  b.Count,
			Cards:  cardsOf(b.Tasks, layout, today),
		})
	}
	return view, nil
}

type PlannerView struct {
	Year  int                   `json:"year"`
	Month time.Month            `json:"month"`
	Week  int                   `json:"week"`
	Days  []task.Date           `json:"days"`
	Rows  []timeline.PlannerRow `json:"rows"`
}

func (s *ProjectionService) Planner(ctx context.Context, q Query) (*PlannerView, error) {
	w, days, tasks, err := s.windowSnapshot(ctx, q)
	if err != nil {
		return nil, err
	}
	return &PlannerView{
		Year:  w.Year,
		Month: w.Month,
		Week:  w.Week,
		Days:  days,
		Rows:  timeline.PlanWeek(tasks, days),
	}, nil
}

type WeekCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type SummaryView struct {
	Year   int                   `json:"year"`
	Total  int                   `json:"total"`
	Totals map[task.Status]int   `json:"totals"`
	Months []timeline.MonthCount `json:"months"`
	Weeks  []WeekCount           `json:"weeks"`
}

// Summary считает задачи, начинающиеся в году year
func (s *ProjectionService) Summary(ctx context.Context, year int, scope Scope) (*SummaryView, error) {
	if year < 1 || year > 9999 {
		return nil, NewValidationError("year", "должен быть от 1 до 9999")
	}

	tasks, err := s.snapshot(ctx, scope.filter(task.NewDate(year, time.January, 1), task.NewDate(year, time.December, 31)))
	if err != nil {
		return nil, err
	}

	started := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.StartDate.IsZero() && t.StartDate.Year() == year {
			started = append(started, t)
		}
	}

	view := &SummaryView{
		Year:   year,
		Total:  len(started),
		Totals: timeline.CountByStatus(started),
		Months: timeline.MonthSummary(started, year),
		Weeks:  []WeekCount{},
	}
	for _, g := range timeline.GroupByWeek(started) {
		view.Weeks = append(view.Weeks, WeekCount{Key: g.Key, Count: len(g.Tasks)})
	}
	return view, nil
}
