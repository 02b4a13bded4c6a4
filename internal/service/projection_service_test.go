package service_test

import (
	"context"
	"errors"
	"taskTimeline/internal/models/task"
	"taskTimeline/internal/service"
	"taskTimeline/internal/timeline"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fixedClock(y int, m time.Month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(y, m, day, 12, 0, 0, 0, time.UTC)
	}
}

func januarySnapshot() []*task.Task {
	return []*task.Task{
		{ID: 1, Title: "Plain", StartDate: d(2025, 1, 15), EndDate: d(2025, 1, 17), Status: task.StatusInProgress, TeamID: 1,
			AssigneeIDs: []int64{7}, AssigneeNames: []string{"Ann"}},
		{ID: 2, Title: "Parent", StartDate: d(2025, 1, 6), EndDate: d(2025, 1, 10), Status: task.StatusOpen, TeamID: 1,
			Subtasks: []task.Subtask{{ID: 21, Title: "child", IsCompleted: true}}},
		{ID: 3, Title: "Cancelled", StartDate: d(2025, 1, 20), EndDate: d(2025, 1, 20), Status: task.StatusCancelled, TeamID: 1},
	}
}

func newProjectionService(m *MockTaskRepository, opts ...service.ProjectionOption) *service.ProjectionService {
	opts = append([]service.ProjectionOption{service.WithClock(fixedClock(2025, 1, 16))}, opts...)
	return service.NewProjectionService(m, opts...)
}

func TestProjectionService_QueryValidation(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	svc := newProjectionService(mockRepo)
	ctx := context.Background()

	_, err := svc.Calendar(ctx, service.Query{Year: 2025, Month: 13})
	assert.Equal(t, service.CodeValidation, businessCode(t, err))

	_, err = svc.Gantt(ctx, service.Query{Year: 0, Month: 1}, nil)
	assert.Equal(t, service.CodeValidation, businessCode(t, err))

	_, err = svc.Planner(ctx, service.Query{Year: 2025, Month: 1, Week: -1})
	assert.Equal(t, service.CodeValidation, businessCode(t, err))

	_, err = svc.Calendar(ctx, service.Query{Year: 2025, Month: 1, Week: timeline.MaxWeek + 1})
	assert.Equal(t, service.CodeValidation, businessCode(t, err))

	_, err = svc.Planner(ctx, service.Query{Year: 2025, Month: 1, Week: 1 << 60})
	assert.Equal(t, service.CodeValidation, businessCode(t, err))

	_, err = svc.Kanban(ctx, service.Query{Year: 2025, Month: 1}, "swimlanes")
	assert.Equal(t, service.CodeUnknownLayout, businessCode(t, err))

	mockRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestProjectionService_SnapshotFilter(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	team := int64(1)
	mockRepo.On("List", mock.Anything, mock.MatchedBy(func(f task.Filter) bool {
		return f.TeamID != nil && *f.TeamID == team &&
			f.From.Equal(d(2024, 12, 30)) &&
			f.To.Equal(d(2025, 2, 2))
	})).Return(januarySnapshot(), nil)

	svc := newProjectionService(mockRepo)
	_, err := svc.Calendar(context.Background(), service.Query{Year: 2025, Month: time.January, Scope: service.Scope{TeamID: &team}})
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestProjectionService_Calendar(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockRepo.On("List", mock.Anything, mock.Anything).Return(januarySnapshot(), nil)
	svc := newProjectionService(mockRepo)

	view, err := svc.Calendar(context.Background(), service.Query{Year: 2025, Month: time.January})
	require.NoError(t, err)

	assert.Len(t, view.Days, 35)
	assert.True(t, view.Today.Equal(d(2025, 1, 16)))

	// 16 января - индекс 17 в сетке, начинающейся 30 декабря
	day := view.Days[17]
	assert.True(t, day.IsToday)
	require.Len(t, day.Tasks, 1)
	assert.Equal(t, int64(1), day.Tasks[0].Task.ID)
	assert.Equal(t, "#4169E1", day.Tasks[0].Status.Color)
	assert.Equal(t, timeline.DeadlineDueSoon, day.Tasks[0].Deadline.State)
	assert.Equal(t, 50, day.Tasks[0].Progress)

	require.Len(t, view.Bars, 3)
	assert.Equal(t, 16, view.Bars[0].Span.StartIndex)
	assert.InDelta(t, 100.0*3/35, view.Bars[0].Span.WidthPercent, 1e-9)
}

func TestProjectionService_CalendarRepoError(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockRepo.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))
	svc := newProjectionService(mockRepo)

	_, err := svc.Calendar(context.Background(), service.Query{Year: 2025, Month: time.January})
	assert.Error(t, err)
}

func TestProjectionService_Gantt(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockRepo.On("List", mock.Anything, mock.Anything).Return(januarySnapshot(), nil)
	svc := newProjectionService(mockRepo, service.WithGeometry(timeline.NewGeometry(3)))
	ctx := context.Background()

	collapsed, err := svc.Gantt(ctx, service.Query{Year: 2025, Month: time.January}, nil)
	require.NoError(t, err)
	require.Len(t, collapsed.Rows, 3)
	assert.Equal(t, int64(2), collapsed.Rows[0].View.ID())
	assert.True(t, collapsed.Rows[0].Expandable)
	assert.False(t, collapsed.Rows[0].Expanded)

	// однодневная задача уже порога вехи в 3%
	cancelled := collapsed.Rows[2]
	assert.Equal(t, int64(3), cancelled.View.ID())
	assert.True(t, cancelled.Milestone)
	assert.Equal(t, "#808080", cancelled.Color)

	expanded, err := svc.Gantt(ctx, service.Query{Year: 2025, Month: time.January}, timeline.NewIDSet(2))
	require.NoError(t, err)
	require.Len(t, expanded.Rows, 4)
	assert.True(t, expanded.Rows[0].Expanded)

	child := expanded.Rows[1]
	assert.True(t, child.IsSubtask)
	assert.Equal(t, 1, child.Level)
	assert.Equal(t, 100, child.Progress)
	assert.Equal(t, "#32CD32", child.Color)
	assert.Equal(t, collapsed.Rows[0].Span, child.Span)
}

func TestProjectionService_Kanban(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockRepo.On("List", mock.Anything, mock.Anything).Return(januarySnapshot(), nil)
	ctx := context.Background()
	q := service.Query{Year: 2025, Month: time.January}

	svc := newProjectionService(mockRepo)
	full, err := svc.Kanban(ctx, q, "")
	require.NoError(t, err)
	assert.Equal(t, timeline.LayoutKanban, full.Layout)
	assert.Len(t, full.Columns, len(task.Statuses))

	compact, err := svc.Kanban(ctx, q, timeline.LayoutCompact)
	require.NoError(t, err)
	require.Len(t, compact.Columns, 4)
	assert.Equal(t, task.StatusOpen, compact.Columns[0].Status)
	assert.Equal(t, 2, compact.Columns[0].Count)
	assert.Equal(t, "#808080", compact.Columns[0].Cards[1].Status.Color)

	custom := timeline.Layout{
		Name:     "two",
		Columns:  []timeline.Column{{Status: task.StatusOpen, Label: "Todo"}, {Status: task.StatusCompleted, Label: "Done"}},
		Fallback: task.StatusOpen,
	}
	svc = newProjectionService(mockRepo,
		service.WithLayouts(map[string]timeline.Layout{"two": custom}),
		service.WithDefaultLayout("two"),
	)
	two, err := svc.Kanban(ctx, q, "")
	require.NoError(t, err)
	assert.Equal(t, "two", two.Layout)
	assert.Equal(t, 3, two.Columns[0].Count)
	assert.Equal(t, []string{"compact", "kanban", "two"}, svc.LayoutNames())
}

func TestProjectionService_Planner(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	mockRepo.On("List", mock.Anything, mock.Anything).Return(januarySnapshot(), nil)
	svc := newProjectionService(mockRepo)

	view, err := svc.Planner(context.Background(), service.Query{Year: 2025, Month: time.January, Week: 3})
	require.NoError(t, err)
	require.Len(t, view.Days, 7)
	assert.True(t, view.Days[0].Equal(d(2025, 1, 13)))

	require.Len(t, view.Rows, 1)
	assert.Equal(t, "Ann", view.Rows[0].Assignee.Name)
	require.Len(t, view.Rows[0].Tasks, 1)
	assert.Equal(t, []int{2, 3, 4}, view.Rows[0].Tasks[0].Days)
}

func TestProjectionService_Summary(t *testing.T) {
	mockRepo := new(MockTaskRepository)
	snapshot := append(januarySnapshot(),
		&task.Task{ID: 4, Title: "Previous year", StartDate: d(2024, 12, 28), EndDate: d(2025, 1, 3), Status: task.StatusOpen},
		&task.Task{ID: 5, Title: "March", StartDate: d(2025, 3, 1), EndDate: d(2025, 3, 2), Status: task.StatusCompleted},
	)
	mockRepo.On("List", mock.Anything, mock.Anything).Return(snapshot, nil)
	svc := newProjectionService(mockRepo)

	view, err := svc.Summary(context.Background(), 2025, service.Scope{})
	require.NoError(t, err)
	assert.Equal(t, 4, view.Total)
	assert.Equal(t, 1, view.Totals[task.StatusCompleted])
	assert.Equal(t, 0, view.Totals[task.StatusOverdue])
	assert.Equal(t, 3, view.Months[0].Total)
	assert.Equal(t, 1, view.Months[2].Total)
	assert.NotEmpty(t, view.Weeks)

	_, err = svc.Summary(context.Background(), 0, service.Scope{})
	assert.Equal(t, service.CodeValidation, businessCode(t, err))
}

func TestProjectionService_TodayUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	svc := service.NewProjectionService(new(MockTaskRepository),
		service.WithLocation(loc),
		service.WithClock(func() time.Time { return time.Date(2025, 1, 16, 20, 0, 0, 0, time.UTC) }),
	)
	assert.True(t, svc.Today().Equal(d(2025, 1, 17)))
}
