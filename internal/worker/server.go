// Package worker 运行 asynq 后台任务服务器。
package worker

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/Kent0710/classroom-announcement-app/internal/repository"
	"github.com/Kent0710/classroom-announcement-app/internal/tasks"
)

// WorkerServer 封装了 asynq Server 的启动与关闭。
type WorkerServer struct {
	server        *asynq.Server
	log           *logrus.Entry
	reactionRepo  repository.ReactionRepository
	reactionCache repository.ReactionCacheRepository
}

// NewWorkerServer 创建 WorkerServer 实例。
func NewWorkerServer(
	redisOpt asynq.RedisClientOpt,
	reactionRepo repository.ReactionRepository,
	reactionCache repository.ReactionCacheRepository,
	logger *logrus.Logger,
) *WorkerServer {
	logEntry := logger.WithField("component", "worker_server")

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				taskID := ""
				if rw := task.ResultWriter(); rw != nil {
					taskID = rw.TaskID()
				}
				retryCount, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logEntry.WithFields(logrus.Fields{
					"task_id":   taskID,
					"task_type": task.Type(),
					"retries":   retryCount,
					"max_retry": maxRetry,
				}).Errorf("Task failed: %v", err)
			}),
		},
	)

	return &WorkerServer{
		server:        server,
		log:           logEntry,
		reactionRepo:  reactionRepo,
		reactionCache: reactionCache,
	}
}

// Start 运行 worker，应在单独的 goroutine 中调用。
func (ws *WorkerServer) Start() {
	mux := asynq.NewServeMux()

	recountHandler := NewReactionRecountHandler(ws.reactionRepo, ws.reactionCache)
	mux.HandleFunc(tasks.TypeReactionRecount, recountHandler.ProcessTask)

	ws.log.Info("Worker server starting...")
	if err := ws.server.Run(mux); err != nil {
		if !errors.Is(err, asynq.ErrServerClosed) {
			ws.log.Fatalf("Could not run worker server: %v", err)
		}
		ws.log.Info("Worker server stopped.")
	}
}

// Shutdown 优雅地关闭 worker。
func (ws *WorkerServer) Shutdown() {
	ws.log.Info("Shutting down worker server...")
	ws.server.Shutdown()
	ws.log.Info("Worker server shut down complete.")
}
