package timeline_test

import (
	"testing"
	"time"

	"taskTimeline/internal/models/task"
	"taskTimeline/internal/timeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hierarchy() []*task.Task {
	projectID := int64(7)
	assignee := int64(42)
	return []*task.Task{
		newTask(1, d(2025, time.January, 2), d(2025, time.January, 4), task.StatusOpen),
		{
			ID:        2,
			Title:     "parent",
			StartDate: d(2025, time.January, 6),
			EndDate:   d(2025, time.January, 20),
			Status:    task.StatusInProgress,
			TaskType:  task.TypeFeature,
			Priority:  task.PriorityUrgent,
			TeamID:    3,
			ProjectID: &projectID,
			Subtasks: []task.Subtask{
				{ID: 21, Title: "first", IsCompleted: true},
				{ID: 22, Title: "second", StartDate: d(2025, time.January, 10), EndDate: d(2025, time.January, 12), AssigneeID: &assignee, AssigneeName: "Ann Lee"},
			},
		},
		newTask(3, d(2025, time.January, 8), d(2025, time.January, 9), task.StatusCompleted),
		{
			ID:        4,
			StartDate: d(2025, time.January, 1),
			EndDate:   d(2025, time.January, 31),
			Status:    task.StatusOpen,
			Subtasks:  []task.Subtask{{ID: 41, Title: "only"}},
		},
	}
}

func ids(rows []timeline.Row) []int64 {
	res := make([]int64, 0, len(rows))
	for _, r := range rows {
		res = append(res, r.View.ID())
	}
	return res
}

// TestFlatten_Collapsed: без раскрытых задач подзадач в выводе нет
func TestFlatten_Collapsed(t *testing.T) {
	rows := timeline.Flatten(hierarchy(), nil)

	assert.Equal(t, []int64{2, 4, 1, 3}, ids(rows))
	for _, r := range rows {
		assert.Equal(t, 0, r.Level)
		assert.False(t, r.IsSubtask)
		assert.Equal(t, timeline.KindTask, r.View.Kind)
	}
}

// TestFlatten_ExpandedAll: каждая подзадача ровно один раз сразу после родителя
func TestFlatten_ExpandedAll(t *testing.T) {
	tasks := hierarchy()
	rows := timeline.Flatten(tasks, timeline.ParentIDs(tasks))

	assert.Equal(t, []int64{2, 21, 22, 4, 41, 1, 3}, ids(rows))
	assert.Equal(t, []int{0, 1, 1, 0, 1, 0, 0}, func() []int {
		levels := []int{}
		for _, r := range rows {
			levels = append(levels, r.Level)
		}
		return levels
	}())
}

func TestFlatten_SubtaskInheritance(t *testing.T) {
	tasks := hierarchy()
	rows := timeline.Flatten(tasks, timeline.NewIDSet(2))
	require.Equal(t, []int64{2, 21, 22, 4, 1, 3}, ids(rows))

	first := rows[1]
	require.Equal(t, timeline.KindSubtask, first.View.Kind)
	require.Nil(t, first.View.Task)
	sv := first.View.Subtask
	assert.True(t, first.IsSubtask)
	assert.Equal(t, int64(2), sv.ParentID)
	assert.Equal(t, task.StatusCompleted, sv.Status)
	assert.Equal(t, task.TypeFeature, sv.TaskType)
	assert.Equal(t, task.PriorityUrgent, sv.Priority)
	assert.Equal(t, int64(3), sv.TeamID)
	require.NotNil(t, sv.ProjectID)
	assert.Equal(t, int64(7), *sv.ProjectID)
	assert.Equal(t, d(2025, time.January, 6), sv.StartDate)
	assert.Equal(t, d(2025, time.January, 20), sv.EndDate)
	assert.Empty(t, sv.AssigneeIDs)

	second := rows[2].View
	assert.Equal(t, task.StatusInProgress, second.Status())
	start, end := second.Dates()
	assert.Equal(t, d(2025, time.January, 10), start)
	assert.Equal(t, d(2025, time.January, 12), end)
	assert.Equal(t, []int64{42}, second.Subtask.AssigneeIDs)
	assert.Equal(t, []string{"Ann Lee"}, second.Subtask.AssigneeNames)
}

// TestFlatten_DuplicateIDs: задача с id уже выведенного родителя пропускается
func TestFlatten_DuplicateIDs(t *testing.T) {
	tasks := hierarchy()
	dup := newTask(2, d(2025, time.January, 1), d(2025, time.January, 1), task.StatusOpen)
	tasks = append(tasks, dup)

	rows := timeline.Flatten(tasks, nil)
	assert.Equal(t, []int64{2, 4, 1, 3}, ids(rows))
}

func TestFlatten_DoesNotMutateInput(t *testing.T) {
	tasks := hierarchy()
	before := *tasks[1]
	_ = timeline.Flatten(tasks, timeline.ParentIDs(tasks))
	assert.Equal(t, before.Subtasks, tasks[1].Subtasks)
	assert.Equal(t, before.Status, tasks[1].Status)
}

func TestFlatten_Empty(t *testing.T) {
	assert.Empty(t, timeline.Flatten(nil, nil))
	assert.Empty(t, timeline.Flatten([]*task.Task{}, timeline.NewIDSet(1)))
}

func TestIDSet_Toggle(t *testing.T) {
	s := timeline.NewIDSet(1)
	added := s.Toggle(2)
	removed := added.Toggle(1)

	assert.True(t, added.Has(1))
	assert.True(t, added.Has(2))
	assert.False(t, removed.Has(1))
	assert.False(t, s.Has(2), "исходное множество не меняется")
}
