package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"taskTimeline/internal/config"
	"taskTimeline/internal/models/task"
	"taskTimeline/internal/repository/task/inmemory"
	"taskTimeline/internal/service"
	"taskTimeline/internal/timeline"
	"time"

	"gopkg.in/yaml.v3"
)

type options struct {
	file             string
	year             int
	month            int
	week             int
	today            string
	timezone         string
	layoutsFile      string
	teamID           int64
	projectID        int64
	assigneeID       int64
	milestonePercent float64
	verbose          bool

	storage *inmemory.TaskStorage
}

type snapshotFile struct {
	Tasks []*task.Task `yaml:"tasks"`
}

// readSnapshot принимает либо список задач, либо документ с ключом tasks
func readSnapshot(r io.Reader) ([]*task.Task, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return []*task.Task{}, nil
	}

	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		var tasks []*task.Task
		if err := root.Decode(&tasks); err != nil {
			return nil, err
		}
		return tasks, nil
	}

	var file snapshotFile
	if err := root.Decode(&file); err != nil {
		return nil, err
	}
	if file.Tasks == nil {
		return nil, errors.New("в снимке нет ключа tasks")
	}
	return file.Tasks, nil
}

func (o *options) load(ctx context.Context) (*inmemory.TaskStorage, error) {
	if o.storage != nil {
		return o.storage, nil
	}

	f, err := os.Open(o.file)
	if err != nil {
		return nil, fmt.Errorf("не могу открыть снимок: %w", err)
	}
	defer f.Close()

	tasks, err := readSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга %s: %w", o.file, err)
	}

	storage := inmemory.NewTaskStorage()
	if err := storage.Seed(ctx, tasks); err != nil {
		return nil, fmt.Errorf("%s: %w", o.file, err)
	}
	o.storage = storage
	return storage, nil
}

func (o *options) clock() (func() time.Time, *time.Location, error) {
	loc, err := time.LoadLocation(o.timezone)
	if err != nil {
		return nil, nil, fmt.Errorf("часовой пояс %q: %w", o.timezone, err)
	}
	if o.today == "" {
		return time.Now, loc, nil
	}
	day, err := task.ParseDate(o.today)
	if err != nil {
		return nil, nil, fmt.Errorf("--today: %w", err)
	}
	fixed := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, loc)
	return func() time.Time { return fixed }, loc, nil
}

func (o *options) projections(ctx context.Context) (*service.ProjectionService, error) {
	storage, err := o.load(ctx)
	if err != nil {
		return nil, err
	}
	layouts, err := config.LoadLayouts(o.layoutsFile)
	if err != nil {
		return nil, err
	}
	now, loc, err := o.clock()
	if err != nil {
		return nil, err
	}
	return service.NewProjectionService(storage,
		service.WithLayouts(layouts),
		service.WithGeometry(timeline.NewGeometry(o.milestonePercent)),
		service.WithLocation(loc),
		service.WithClock(now),
	), nil
}

func (o *options) allParents(ctx context.Context) (timeline.IDSet, error) {
	storage, err := o.load(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := storage.List(ctx, task.Filter{})
	if err != nil {
		return nil, err
	}
	return timeline.ParentIDs(tasks), nil
}

func optionalID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

func (o *options) query(today task.Date) service.Query {
	q := service.Query{
		Year:  o.year,
		Month: time.Month(o.month),
		Week:  o.week,
		Scope: service.Scope{
			TeamID:     optionalID(o.teamID),
			ProjectID:  optionalID(o.projectID),
			AssigneeID: optionalID(o.assigneeID),
		},
	}
	if q.Year == 0 {
		q.Year = today.Year()
	}
	if q.Month == 0 {
		q.Month = today.Month()
	}
	return q
}
