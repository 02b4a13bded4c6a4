package worker

import (
	"context"
	"errors"
	"fmt"
	"taskTimeline/internal/logger"
	"taskTimeline/internal/models/task"
	repo "taskTimeline/internal/repository"
	"taskTimeline/internal/service"
	"taskTimeline/internal/timeline"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSchedule - каждый день в 01:00, первое поле - секунды
const DefaultSchedule = "0 0 1 * * *"

const DefaultBatchSize = 100

type OverdueWorker struct {
	repo      service.TaskRepository
	schedule  string
	batchSize int
	location  *time.Location
	now       func() time.Time
}

type Option func(*OverdueWorker)

func WithLocation(loc *time.Location) Option {
	return func(w *OverdueWorker) {
		if loc != nil {
			w.location = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *OverdueWorker) {
		if now != nil {
			w.now = now
		}
	}
}

func NewOverdueWorker(repo service.TaskRepository, schedule *string, batchSize *int, opts ...Option) *OverdueWorker {
	scheduleToSet := DefaultSchedule
	if schedule != nil && *schedule != "" {
		scheduleToSet = *schedule
	}

	batchToSet := DefaultBatchSize
	if batchSize != nil && *batchSize > 0 {
		batchToSet = *batchSize
	}

	w := &OverdueWorker{
		repo:      repo,
		schedule:  scheduleToSet,
		batchSize: batchToSet,
		location:  time.UTC,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start блокируется до отмены ctx. Ошибка возвращается только при неверном расписании
func (w *OverdueWorker) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(w.location), cron.WithSeconds())

	_, err := c.AddFunc(w.schedule, func() {
		logger.Info("Worker: Фоновая проверка задач на просроченность", zap.Time("started_at", w.now()))
		if _, err := w.Check(ctx); err != nil {
			logger.Warn("Worker: Проверка завершилась с ошибкой", zap.Error(err))
		}
	})
	if err != nil {
		logger.Error("Worker: Неверное расписание", err, zap.String("schedule", w.schedule))
		return fmt.Errorf("расписание %q: %w", w.schedule, err)
	}

	c.Start()
	logger.Info("Worker: Запущен", zap.String("schedule", w.schedule), zap.Int("batch", w.batchSize))

	<-ctx.Done()
	logger.Info("Worker: Фоновая проверка останавливается")
	<-c.Stop().Done()
	return nil
}

func (w *OverdueWorker) today() task.Date {
	return task.DateOf(w.now().In(w.location))
}

// Check помечает просроченными задачи, срок которых прошёл до сегодняшнего дня.
// Возвращает число помеченных задач
func (w *OverdueWorker) Check(ctx context.Context) (int, error) {
	start := time.Now()
	today := w.today()

	tasks, err := w.repo.GetTasksEndingBefore(ctx, today, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("получение задач: %w", err)
	}

	overdueCount := 0
	for _, t := range tasks {
		if overdueCount >= w.batchSize {
			break
		}
		if !task.CanBecomeOverdue(t.Status) {
			continue
		}
		if days, ok := timeline.DaysRemaining(t, today); !ok || days >= 0 {
			continue
		}

		if err := w.MarkAsOverdue(ctx, t); err != nil {
			if errors.Is(err, repo.ErrVersionConflict) {
				logger.Info("Worker: Задача изменена параллельно, пропуск", zap.Int64("task_id", t.ID))
				continue
			}
			logger.Warn("Worker: Ошибка обновления задачи", zap.Int64("task_id", t.ID), zap.Error(err))
			continue
		}
		overdueCount++
	}

	logger.Info(
		"Worker: Завершение проверки задач",
		zap.Duration("ms", time.Since(start)),
		zap.Int("checked", len(tasks)),
		zap.Int("overdue", overdueCount),
	)
	return overdueCount, nil
}

func (w *OverdueWorker) MarkAsOverdue(ctx context.Context, t *task.Task) error {
	t.Status = task.StatusOverdue
	t.IsPostponed = false

	if err := w.repo.Update(ctx, t); err != nil {
		return fmt.Errorf("обновление статуса: %w", err)
	}
	return nil
}
