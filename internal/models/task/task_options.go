package task

type Option func(*Task)

func WithTitle(title string) Option {
	if title == "" {
		return nil
	}
	return func(task *Task) {
		task.Title = title
	}
}

func WithContent(content string) Option {
	return func(task *Task) {
		task.Content = content
	}
}

// даты меняются только парой, чтобы не получить конец раньше начала по отдельности
func WithDates(start, end Date) Option {
	if start.IsZero() || end.IsZero() {
		return nil
	}
	return func(task *Task) {
		task.StartDate = start
		task.EndDate = end
	}
}

func WithType(taskType Type) Option {
	if taskType == "" {
		return nil
	}
	return func(task *Task) {
		task.TaskType = taskType
	}
}

func WithPriority(priority Priority) Option {
	if priority == "" {
		return nil
	}
	return func(task *Task) {
		task.Priority = priority
	}
}

func WithProject(projectID *int64) Option {
	return func(task *Task) {
		task.ProjectID = projectID
	}
}

func WithAssignees(ids []int64, names []string) Option {
	if ids == nil {
		return nil
	}
	return func(task *Task) {
		task.AssigneeIDs = dedupe(ids)
		task.AssigneeNames = names
	}
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	res := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		res = append(res, id)
	}
	return res
}
