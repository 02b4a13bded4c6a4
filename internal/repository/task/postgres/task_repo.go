package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"taskTimeline/internal/logger"
	"taskTimeline/internal/models/task"
	repo "taskTimeline/internal/repository"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const slowQuery = time.Millisecond * 100

const taskColumns = `id,
				title,
				content,
				start_date,
				end_date,
				status,
				task_type,
				priority,
				team_id,
				team_name,
				project_id,
				project_name,
				created_by_id,
				created_by_name,
				assignee_ids,
				assignee_names,
				is_postponed,
				postponed_from_date,
				postponed_to_date,
				created_at,
				updated_at,
				version`

type Storage struct {
	pool       *pgxpool.Pool
	connString string
}

type PoolConfig struct {
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
}

func New(ctx context.Context, connString string, poolCfg PoolConfig) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5
	if poolCfg.MaxConns > 0 {
		config.MaxConns = poolCfg.MaxConns
	}
	if poolCfg.MinConns > 0 {
		config.MinConns = poolCfg.MinConns
	}
	if poolCfg.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = poolCfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool, connString: connString}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	logger.Info("Repository: Соединение стабильно")
	return nil
}

func warnIfSlow(op string, start time.Time, limit time.Duration) {
	if elapsed := time.Since(start); elapsed > limit {
		logger.Warn("Repository: Медленный запрос", zap.String("op", op), zap.Duration("ms", elapsed))
	}
}

func toPgDate(d task.Date) pgtype.Date {
	if d.IsZero() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: d.Time(), Valid: true}
}

func fromPgDate(d pgtype.Date) task.Date {
	if !d.Valid || d.InfinityModifier != pgtype.Finite {
		return task.Date{}
	}
	return task.DateOf(d.Time)
}

func statusStrings(statuses []task.Status) []string {
	res := make([]string, 0, len(statuses))
	for _, s := range statuses {
		res = append(res, string(s))
	}
	return res
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	t := &task.Task{}
	var start, end, postponedFrom, postponedTo pgtype.Date

	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Content,
		&start,
		&end,
		&t.Status,
		&t.TaskType,
		&t.Priority,
		&t.TeamID,
		&t.TeamName,
		&t.ProjectID,
		&t.ProjectName,
		&t.CreatedByID,
		&t.CreatedByName,
		&t.AssigneeIDs,
		&t.AssigneeNames,
		&t.IsPostponed,
		&postponedFrom,
		&postponedTo,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.Version,
	)
	if err != nil {
		return nil, err
	}

	t.StartDate = fromPgDate(start)
	t.EndDate = fromPgDate(end)
	t.PostponedFromDate = fromPgDate(postponedFrom)
	t.PostponedToDate = fromPgDate(postponedTo)
	return t, nil
}

func assigneeArrays(t *task.Task) ([]int64, []string) {
	ids := t.AssigneeIDs
	if ids == nil {
		ids = []int64{}
	}
	names := t.AssigneeNames
	if names == nil {
		names = []string{}
	}
	return ids, names
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()
	defer warnIfSlow("create", start, slowQuery)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logger.Error("Repository: Не удалось открыть транзакцию", err)
		return fmt.Errorf("открытие транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO tasks
				(title, content, start_date, end_date, status, task_type, priority,
				team_id, team_name, project_id, project_name, created_by_id, created_by_name,
				assignee_ids, assignee_names, is_postponed, postponed_from_date, postponed_to_date)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
				RETURNING id, created_at, version`

	ids, names := assigneeArrays(taskToCreate)
	err = tx.QueryRow(ctx, query,
		taskToCreate.Title,
		taskToCreate.Content,
		toPgDate(taskToCreate.StartDate),
		toPgDate(taskToCreate.EndDate),
		taskToCreate.Status,
		taskToCreate.TaskType,
		taskToCreate.Priority,
		taskToCreate.TeamID,
		taskToCreate.TeamName,
		taskToCreate.ProjectID,
		taskToCreate.ProjectName,
		taskToCreate.CreatedByID,
		taskToCreate.CreatedByName,
		ids,
		names,
		taskToCreate.IsPostponed,
		toPgDate(taskToCreate.PostponedFromDate),
		toPgDate(taskToCreate.PostponedToDate),
	).Scan(&taskToCreate.ID, &taskToCreate.CreatedAt, &taskToCreate.Version)
	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	if err := insertSubtasks(ctx, tx, taskToCreate); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Repository: Не удалось зафиксировать транзакцию", err)
		return fmt.Errorf("фиксация транзакции: %w", err)
	}
	taskToCreate.UpdatedAt = nil
	return nil
}

func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()
	defer warnIfSlow("update", start, slowQuery)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logger.Error("Repository: Не удалось открыть транзакцию", err)
		return fmt.Errorf("открытие транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `UPDATE tasks
			SET title = $1,
				content = $2,
				start_date = $3,
				end_date = $4,
				status = $5,
				task_type = $6,
				priority = $7,
				team_id = $8,
				team_name = $9,
				project_id = $10,
				project_name = $11,
				assignee_ids = $12,
				assignee_names = $13,
				is_postponed = $14,
				postponed_from_date = $15,
				postponed_to_date = $16,
				version = version + 1,
				updated_at = NOW()
			WHERE id = $17 AND version = $18
			RETURNING updated_at, version`

	ids, names := assigneeArrays(taskToUpdate)
	err = tx.QueryRow(ctx, query,
		taskToUpdate.Title,
		taskToUpdate.Content,
		toPgDate(taskToUpdate.StartDate),
		toPgDate(taskToUpdate.EndDate),
		taskToUpdate.Status,
		taskToUpdate.TaskType,
		taskToUpdate.Priority,
		taskToUpdate.TeamID,
		taskToUpdate.TeamName,
		taskToUpdate.ProjectID,
		taskToUpdate.ProjectName,
		ids,
		names,
		taskToUpdate.IsPostponed,
		toPgDate(taskToUpdate.PostponedFromDate),
		toPgDate(taskToUpdate.PostponedToDate),
		taskToUpdate.ID,
		taskToUpdate.Version,
	).Scan(&taskToUpdate.UpdatedAt, &taskToUpdate.Version)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)`, taskToUpdate.ID).Scan(&exists); err != nil {
				return fmt.Errorf("проверка существования задачи: %w", err)
			}
			if !exists {
				return repo.ErrNotFound
			}
			logger.Warn("Repository: Конфликт версий при обновлении задачи",
				zap.Int64("task_id", taskToUpdate.ID),
				zap.Int("expected_version", taskToUpdate.Version))
			return repo.ErrVersionConflict
		}
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM subtasks WHERE task_id = $1`, taskToUpdate.ID); err != nil {
		logger.Error("Repository: Не удалось очистить подзадачи", err)
		return fmt.Errorf("очистка подзадач: %w", err)
	}
	if err := insertSubtasks(ctx, tx, taskToUpdate); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Repository: Не удалось зафиксировать транзакцию", err)
		return fmt.Errorf("фиксация транзакции: %w", err)
	}
	return nil
}

// insertSubtasks сохраняет подзадачи в порядке среза. Новые подзадачи получают id из последовательности
func insertSubtasks(ctx context.Context, tx pgx.Tx, t *task.Task) error {
	for i := range t.Subtasks {
		st := &t.Subtasks[i]

		var err error
		if st.ID == 0 {
			err = tx.QueryRow(ctx, `INSERT INTO subtasks
					(task_id, position, title, content, start_date, end_date, assignee_id, assignee_name, is_completed)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
					RETURNING id`,
				t.ID, i, st.Title, st.Content, toPgDate(st.StartDate), toPgDate(st.EndDate),
				st.AssigneeID, st.AssigneeName, st.IsCompleted,
			).Scan(&st.ID)
		} else {
			_, err = tx.Exec(ctx, `INSERT INTO subtasks
					(id, task_id, position, title, content, start_date, end_date, assignee_id, assignee_name, is_completed)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				st.ID, t.ID, i, st.Title, st.Content, toPgDate(st.StartDate), toPgDate(st.EndDate),
				st.AssigneeID, st.AssigneeName, st.IsCompleted,
			)
		}
		if err != nil {
			logger.Error("Repository: Не удалось сохранить подзадачу", err, zap.Int64("task_id", t.ID))
			return fmt.Errorf("сохранение подзадачи: %w", err)
		}
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	start := time.Now()
	defer warnIfSlow("get", start, slowQuery)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	t, err := scanTask(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	if err := s.loadSubtasks(ctx, []*task.Task{t}); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Storage) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	defer warnIfSlow("delete", start, slowQuery)

	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: Не удалось удалить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// buildListQuery повторяет семантику task.Filter.Match: пустые даты не отсекают задачу
func buildListQuery(f task.Filter) (string, []any) {
	conds := []string{}
	args := []any{}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.TeamID != nil {
		add("team_id = $%d", *f.TeamID)
	}
	if f.ProjectID != nil {
		add("project_id = $%d", *f.ProjectID)
	}
	if f.AssigneeID != nil {
		add("$%d = ANY(assignee_ids)", *f.AssigneeID)
	}
	if len(f.Statuses) > 0 {
		add("status = ANY($%d)", statusStrings(f.Statuses))
	}
	if !f.From.IsZero() {
		add("(end_date IS NULL OR end_date >= $%d)", toPgDate(f.From))
	}
	if !f.To.IsZero() {
		add("(start_date IS NULL OR start_date <= $%d)", toPgDate(f.To))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	return query + ` ORDER BY id`, args
}

func (s *Storage) List(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	start := time.Now()
	defer warnIfSlow("list", start, slowQuery*2)

	query, args := buildListQuery(filter)
	tasks, err := s.queryTasks(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if err := s.loadSubtasks(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Storage) GetTasksEndingBefore(ctx context.Context, day task.Date, limit int) ([]*task.Task, error) {
	start := time.Now()
	defer warnIfSlow("ending_before", start, slowQuery*2)

	var lim *int
	if limit > 0 {
		lim = &limit
	}

	query := `SELECT ` + taskColumns + ` FROM tasks
				WHERE end_date < $1
				AND status <> ALL($2)
				ORDER BY end_date, id
				LIMIT $3`

	skipped := statusStrings([]task.Status{
		task.StatusCompleted,
		task.StatusCancelled,
		task.StatusTesting,
		task.StatusOverdue,
	})
	tasks, err := s.queryTasks(ctx, query, toPgDate(day), skipped, lim)
	if err != nil {
		return nil, err
	}
	if err := s.loadSubtasks(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Storage) queryTasks(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err)
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования задачи", zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	return tasks, nil
}

func (s *Storage) loadSubtasks(ctx context.Context, tasks []*task.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	byID := make(map[int64]*task.Task, len(tasks))
	ids := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	rows, err := s.pool.Query(ctx, `SELECT id, task_id, title, content, start_date, end_date,
				assignee_id, assignee_name, is_completed
				FROM subtasks
				WHERE task_id = ANY($1)
				ORDER BY task_id, position`, ids)
	if err != nil {
		logger.Error("Repository: Не удалось получить подзадачи", err)
		return fmt.Errorf("получение подзадач: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var st task.Subtask
		var taskID int64
		var start, end pgtype.Date

		err := rows.Scan(&st.ID, &taskID, &st.Title, &st.Content, &start, &end,
			&st.AssigneeID, &st.AssigneeName, &st.IsCompleted)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования подзадачи", zap.Error(err))
			continue
		}
		st.StartDate = fromPgDate(start)
		st.EndDate = fromPgDate(end)

		if parent, ok := byID[taskID]; ok {
			parent.Subtasks = append(parent.Subtasks, st)
		}
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по подзадачам", err)
		return fmt.Errorf("итерация по подзадачам: %w", err)
	}
	return nil
}
