package worker

import (
	"context"
	"fmt"

	"backend/internal/approval"
	"backend/internal/config"
	"backend/internal/worker/handlers"
	"backend/internal/worker/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Server runs background approval jobs off a redis-backed queue and
// schedules the periodic overtime scan.
type Server struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	logger    *zap.Logger
}

func NewServer(
	cfg *config.Config,
	resolver *approval.Resolver,
	logger *zap.Logger,
) (*Server, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"approval": 6,
				"default":  1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("task failed",
					zap.String("type", task.Type()),
					zap.Error(err),
				)
			}),
		},
	)

	mux := asynq.NewServeMux()

	overtimeHandler := handlers.NewOvertimeHandler(resolver, logger)
	mux.HandleFunc(tasks.TypeOvertimeScan, overtimeHandler.HandleOvertimeScan)
	mux.HandleFunc(tasks.TypeOvertimeResolve, overtimeHandler.HandleOvertimeResolve)

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		EnqueueErrorHandler: func(task *asynq.Task, opts []asynq.Option, err error) {
			logger.Error("failed to enqueue scheduled task",
				zap.String("type", task.Type()),
				zap.Error(err),
			)
		},
	})

	cron := cfg.Approval.OvertimeScanCron
	if cron == "" {
		cron = "*/10 * * * *"
	}
	scanTask := asynq.NewTask(tasks.TypeOvertimeScan, nil, asynq.Queue("approval"))
	if _, err := scheduler.Register(cron, scanTask); err != nil {
		return nil, fmt.Errorf("register overtime scan schedule: %w", err)
	}

	return &Server{
		server:    srv,
		scheduler: scheduler,
		mux:       mux,
		logger:    logger,
	}, nil
}

// Run starts the worker and scheduler, blocking until Shutdown.
func (s *Server) Run() error {
	if err := s.scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	s.logger.Info("worker server starting")
	return s.server.Run(s.mux)
}

// Start runs the worker and scheduler without blocking.
func (s *Server) Start() error {
	if err := s.scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	s.logger.Info("worker server starting in background")
	return s.server.Start(s.mux)
}

// Shutdown stops the scheduler and drains in-flight tasks.
func (s *Server) Shutdown() {
	s.logger.Info("worker server stopping")
	s.scheduler.Shutdown()
	s.server.Shutdown()
}
