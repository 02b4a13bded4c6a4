package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"taskTimeline/internal/config"
	"taskTimeline/internal/handlers"
	"taskTimeline/internal/logger"
	"taskTimeline/internal/middleware"
	"taskTimeline/internal/repository/task/inmemory"
	"taskTimeline/internal/repository/task/postgres"
	"taskTimeline/internal/service"
	"taskTimeline/internal/timeline"
	"taskTimeline/internal/worker"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type App struct {
	config      *config.Config
	server      *http.Server
	router      *chi.Mux
	repository  service.TaskRepository
	tasks       *service.TaskService
	projections *service.ProjectionService
	worker      *worker.OverdueWorker
	shutdowns   []func() // выполняются в обратном порядке
	wg          sync.WaitGroup
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(logger.Options{
		Development: a.config.Logging.Development,
		Level:       a.config.Logging.Level,
		Encoding:    a.config.Logging.Encoding,
	}); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	repoType, err := a.initRepository(ctx)
	if err != nil {
		return err
	}

	if err := a.initServices(repoType); err != nil {
		return err
	}

	if a.config.Worker.Enabled {
		loc, _ := a.config.Calendar.Location()
		a.worker = worker.NewOverdueWorker(a.repository,
			&a.config.Worker.Schedule,
			&a.config.Worker.BatchSize,
			worker.WithLocation(loc),
		)
	}

	a.router = a.newRouter()
	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}
	return nil
}

func (a *App) initRepository(ctx context.Context) (service.RepoType, error) {
	switch a.config.Repository.Type {
	case string(service.DBType):
		storage, err := postgres.New(ctx, a.config.Database.URL, postgres.PoolConfig{
			MaxConns:        a.config.Database.MaxConnections,
			MinConns:        a.config.Database.MinConnections,
			MaxConnIdleTime: a.config.Database.IdleTimeout,
		})
		if err != nil {
			return "", fmt.Errorf("подключение к postgres: %w", err)
		}
		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("Закрытие пула соединений...")
			storage.Close()
		})

		if a.config.Database.Migrate {
			if err := storage.Migrate(); err != nil {
				return "", fmt.Errorf("миграции: %w", err)
			}
		}
		a.repository = storage
		return service.DBType, nil

	case string(service.InMemoryType):
		a.repository = inmemory.NewTaskStorage()
		return service.InMemoryType, nil

	default:
		return "", fmt.Errorf("неизвестный тип репозитория %q", a.config.Repository.Type)
	}
}

func (a *App) initServices(repoType service.RepoType) error {
	a.tasks = service.NewTaskService(a.repository, repoType)

	layouts, err := config.LoadLayouts(a.config.Calendar.LayoutsFile)
	if err != nil {
		return fmt.Errorf("раскладки доски: %w", err)
	}
	if _, ok := layouts[a.config.Calendar.DefaultLayout]; !ok {
		return fmt.Errorf("раскладка по умолчанию %q не найдена", a.config.Calendar.DefaultLayout)
	}

	loc, err := a.config.Calendar.Location()
	if err != nil {
		return err
	}

	a.projections = service.NewProjectionService(a.repository,
		service.WithLayouts(layouts),
		service.WithDefaultLayout(a.config.Calendar.DefaultLayout),
		service.WithGeometry(timeline.NewGeometry(a.config.Calendar.MilestonePercent)),
		service.WithLocation(loc),
	)
	return nil
}

func (a *App) newRouter() *chi.Mux {
	taskHandler := handlers.NewTaskHandler(a.tasks, a.projections.Today)
	viewHandler := handlers.NewProjectionHandler(a.projections)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.config.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	if a.config.Server.RequestTimeout > 0 {
		r.Use(chimw.Timeout(a.config.Server.RequestTimeout))
	}
	r.Use(middleware.RateLimit(a.config.Server.RateLimit))

	r.Get("/health", taskHandler.HealthCheck)

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", taskHandler.ListTasks) // GET /tasks
		r.Post("/", taskHandler.PostTask) // POST /tasks

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", taskHandler.GetTaskByID)       // GET /tasks/{id}
			r.Put("/", taskHandler.UpdateTaskByID)    // PUT /tasks/{id}
			r.Delete("/", taskHandler.DeleteTaskByID) // DELETE /tasks/{id}

			r.Post("/status", taskHandler.UpdateTaskStatus)
			r.Post("/subtasks", taskHandler.PostSubtask)
			r.Post("/subtasks/{subtaskID}/complete", taskHandler.CompleteSubtask)
		})
	})

	r.Route("/views", func(r chi.Router) {
		r.Get("/calendar", viewHandler.Calendar)
		r.Get("/gantt", viewHandler.Gantt)
		r.Get("/kanban", viewHandler.Kanban)
		r.Get("/planner", viewHandler.Planner)
		r.Get("/summary", viewHandler.Summary)
	})

	return r
}

// Handler отдаёт собранный роутер, нужен для тестов
func (a *App) Handler() http.Handler {
	return a.router
}

// Run запускает сервер и воркер и блокируется до отмены ctx
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.worker != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.worker.Start(ctx); err != nil {
				logger.Error("Worker: Не удалось запустить", err)
			}
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serverErr:
		if ok {
			runErr = fmt.Errorf("сервер: %w", err)
		}
	}

	cancel()
	a.Shutdown()
	return runErr
}

func (a *App) Shutdown() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			logger.Error("Ошибка остановки сервера", err)
		}
	}
	a.wg.Wait()

	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}

func (a *App) shutdownTimeout() time.Duration {
	if a.config.Server.ShutdownTimeout > 0 {
		return a.config.Server.ShutdownTimeout
	}
	return 15 * time.Second
}
