package task

// Filter - выборка задач для одного снимка.
// From/To отбирают задачи, пересекающие интервал, а не лежащие внутри него.
type Filter struct {
	TeamID     *int64
	ProjectID  *int64
	AssigneeID *int64
	From       Date
	To         Date
	Statuses   []Status
}

func (f Filter) Match(t *Task) bool {
	if f.TeamID != nil && t.TeamID != *f.TeamID {
		return false
	}
	if f.ProjectID != nil && (t.ProjectID == nil || *t.ProjectID != *f.ProjectID) {
		return false
	}
	if f.AssigneeID != nil && !t.HasAssignee(*f.AssigneeID) {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if s == t.Status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.From.IsZero() && !t.EndDate.IsZero() && t.EndDate.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !t.StartDate.IsZero() && t.StartDate.After(f.To) {
		return false
	}
	return true
}
