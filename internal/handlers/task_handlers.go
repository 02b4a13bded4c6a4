package handlers

import (
	"net/http"
	"taskTimeline/internal/handlers/dto"
	"taskTimeline/internal/logger"
	"taskTimeline/internal/models/task"
	"time"

	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
	today       func() task.Date
}

// NewTaskHandler - today задаёт "сегодня" для производных полей ответа, nil - текущий день UTC
func NewTaskHandler(taskService TaskService, today func() task.Date) *TaskHandler {
	if today == nil {
		today = func() task.Date { return task.DateOf(time.Now().UTC()) }
	}
	return &TaskHandler{
		TaskService: taskService,
		today:       today,
	}
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	healthCheck(w, s.TaskService.HealthCheck(r.Context()))
}

func (s *TaskHandler) badID(w http.ResponseWriter, r *http.Request, err error) {
	logger.Warn("HTTP: Не удалось получить id",
		zap.Error(err),
		zap.String("client_ip", r.RemoteAddr))

	responseWithError(w, http.StatusBadRequest, err.Error())
}

func (s *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		logger.Warn("HTTP: Неверные параметры фильтра",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	tasks, err := s.TaskService.ListTasks(r.Context(), filter)
	if err != nil {
		handleServiceError(w, r, err, "list_tasks")
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	respondJSON(w, http.StatusOK, dto.FromTaskList(tasks, s.today()))
}

func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CreateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	logger.Info("HTTP: Вызов сервиса создания задач")
	created, err := s.TaskService.CreateTask(r.Context(), request.ToTask())
	if err != nil {
		handleServiceError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.Int64("task_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	respondJSON(w, http.StatusCreated, dto.FromTask(created, s.today()))
}

func (s *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, err := parseID(r, "id")
	if err != nil {
		s.badID(w, r, err)
		return
	}

	found, err := s.TaskService.GetTask(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_task")
		return
	}

	logger.Info("HTTP_OUT: Задача получена",
		zap.Int64("task_id", found.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	respondJSON(w, http.StatusOK, dto.FromTask(found, s.today()))
}

func (s *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, err := parseID(r, "id")
	if err != nil {
		s.badID(w, r, err)
		return
	}

	var request dto.UpdateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	updated, err := s.TaskService.UpdateTask(r.Context(), id, request.Version, request.Options()...)
	if err != nil {
		handleServiceError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.Int64("task_id", id),
		zap.Int("version", updated.Version),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	respondJSON(w, http.StatusOK, dto.FromTask(updated, s.today()))
}

func (s *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, err := parseID(r, "id")
	if err != nil {
		s.badID(w, r, err)
		return
	}

	var request dto.UpdateStatusRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	updated, err := s.TaskService.UpdateStatus(r.Context(), id, request.Status, request.PostponedToDate)
	if err != nil {
		handleServiceError(w, r, err, "update_status")
		return
	}

	logger.Info("HTTP_OUT: Статус обновлён",
		zap.Int64("task_id", id),
		zap.String("status", string(updated.Status)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	respondJSON(w, http.StatusOK, dto.FromTask(updated, s.today()))
}

func (s *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, err := parseID(r, "id")
	if err != nil {
		s.badID(w, r, err)
		return
	}

	if err := s.TaskService.DeleteTask(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.Int64("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}

func (s *TaskHandler) PostSubtask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, err := parseID(r, "id")
	if err != nil {
		s.badID(w, r, err)
		return
	}

	var request dto.SubtaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	updated, err := s.TaskService.AddSubtask(r.Context(), id, request.ToSubtask())
	if err != nil {
		handleServiceError(w, r, err, "add_subtask")
		return
	}

	logger.Info("HTTP_OUT: Подзадача добавлена",
		zap.Int64("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	respondJSON(w, http.StatusCreated, dto.FromTask(updated, s.today()))
}

// CompleteSubtask без тела отмечает подзадачу выполненной
func (s *TaskHandler) CompleteSubtask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, err := parseID(r, "id")
	if err != nil {
		s.badID(w, r, err)
		return
	}
	subtaskID, err := parseID(r, "subtaskID")
	if err != nil {
		s.badID(w, r, err)
		return
	}

	completed := true
	if r.ContentLength > 0 {
		var request dto.CompleteSubtaskRequest
		if !decodeJSON(w, r, &request) {
			return
		}
		if request.Completed != nil {
			completed = *request.Completed
		}
	}

	updated, err := s.TaskService.SetSubtaskCompleted(r.Context(), id, subtaskID, completed)
	if err != nil {
		handleServiceError(w, r, err, "complete_subtask")
		return
	}

	logger.Info("HTTP_OUT: Подзадача обновлена",
		zap.Int64("task_id", id),
		zap.Int64("subtask_id", subtaskID),
		zap.Bool("completed", completed),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	respondJSON(w, http.StatusOK, dto.FromTask(updated, s.today()))
}
