package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"taskTimeline/internal/models/task"
	"taskTimeline/internal/service"
	"taskTimeline/internal/timeline"
	"time"

	"github.com/go-chi/chi/v5"
)

func parseID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("неверный %s %q", name, raw)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%s должен быть положительным", name)
	}
	return id, nil
}

func optionalInt(q url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("неверное значение %s %q", key, raw)
	}
	return v, nil
}

func optionalInt64(q url.Values, key string) (*int64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("неверное значение %s %q", key, raw)
	}
	return &v, nil
}

func optionalDate(q url.Values, key string) (task.Date, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return task.Date{}, nil
	}
	d, err := task.ParseDate(raw)
	if err != nil {
		return task.Date{}, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// parseIDList разбирает список вида "1,2,3"
func parseIDList(raw string) ([]int64, error) {
	ids := []int64{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("неверный id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseScope(q url.Values) (service.Scope, error) {
	var scope service.Scope
	var err error
	if scope.TeamID, err = optionalInt64(q, "team_id"); err != nil {
		return scope, err
	}
	if scope.ProjectID, err = optionalInt64(q, "project_id"); err != nil {
		return scope, err
	}
	if scope.AssigneeID, err = optionalInt64(q, "assignee_id"); err != nil {
		return scope, err
	}
	return scope, nil
}

// parseQuery читает окно и фильтры. Год и месяц по умолчанию берутся из today
func parseQuery(r *http.Request, today task.Date) (service.Query, error) {
	q := r.URL.Query()

	year, err := optionalInt(q, "year", today.Year())
	if err != nil {
		return service.Query{}, err
	}
	month, err := optionalInt(q, "month", int(today.Month()))
	if err != nil {
		return service.Query{}, err
	}
	week, err := optionalInt(q, "week", 0)
	if err != nil {
		return service.Query{}, err
	}
	scope, err := parseScope(q)
	if err != nil {
		return service.Query{}, err
	}

	return service.Query{
		Year:  year,
		Month: time.Month(month),
		Week:  week,
		Scope: scope,
	}, nil
}

func parseExpanded(q url.Values) (timeline.IDSet, error) {
	ids, err := parseIDList(q.Get("expanded"))
	if err != nil {
		return nil, err
	}
	return timeline.NewIDSet(ids...), nil
}

func parseStatuses(raw string) ([]task.Status, error) {
	res := []task.Status{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		s := task.Status(part)
		if !s.Known() {
			return nil, fmt.Errorf("неизвестный статус %q", part)
		}
		res = append(res, s)
	}
	return res, nil
}

func parseFilter(q url.Values) (task.Filter, error) {
	scope, err := parseScope(q)
	if err != nil {
		return task.Filter{}, err
	}
	from, err := optionalDate(q, "from")
	if err != nil {
		return task.Filter{}, err
	}
	to, err := optionalDate(q, "to")
	if err != nil {
		return task.Filter{}, err
	}
	statuses, err := parseStatuses(q.Get("status"))
	if err != nil {
		return task.Filter{}, err
	}
	return task.Filter{
		TeamID:     scope.TeamID,
		ProjectID:  scope.ProjectID,
		AssigneeID: scope.AssigneeID,
		From:       from,
		To:         to,
		Statuses:   statuses,
	}, nil
}
