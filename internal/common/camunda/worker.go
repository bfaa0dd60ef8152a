// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"fmt"
	"sync"

	"dealflow-workers/internal/common/config"
	"dealflow-workers/internal/common/errors"
	"dealflow-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler is implemented by every worker package's Handler.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// Registration binds a task type to its handler and worker settings.
type Registration struct {
	TaskType string
	Config   config.WorkerConfig
	Handler  JobHandler
}

// WorkerSet holds the open job workers so they can be closed together.
type WorkerSet struct {
	mu      sync.Mutex
	workers map[string]worker.JobWorker
	logger  logger.Logger
}

func NewWorkerSet(log logger.Logger) *WorkerSet {
	return &WorkerSet{
		workers: make(map[string]worker.JobWorker),
		logger:  log,
	}
}

// Start opens a job worker for reg. Disabled registrations are skipped.
func (s *WorkerSet) Start(client zbc.Client, reg Registration) error {
	if !reg.Config.Enabled {
		s.logger.Info("worker disabled by configuration", map[string]interface{}{
			"taskType": reg.TaskType,
		})
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.workers[reg.TaskType]; exists {
		return fmt.Errorf("worker for %s already started", reg.TaskType)
	}

	jobWorker := client.NewJobWorker().
		JobType(reg.TaskType).
		Handler(s.recovering(reg.TaskType, reg.Handler)).
		MaxJobsActive(reg.Config.MaxJobsActive).
		Timeout(reg.Config.TimeoutDuration()).
		Open()

	s.workers[reg.TaskType] = jobWorker
	s.logger.Info("worker started", map[string]interface{}{
		"taskType":      reg.TaskType,
		"maxJobsActive": reg.Config.MaxJobsActive,
		"timeoutMs":     reg.Config.Timeout,
	})
	return nil
}

// recovering turns a handler panic into a failed job instead of crashing
// the poller goroutine.
func (s *WorkerSet) recovering(taskType string, h JobHandler) worker.JobHandler {
	errHandler := errors.NewErrorHandler(s.logger)
	return func(client worker.JobClient, job entities.Job) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("handler panicked", map[string]interface{}{
					"taskType": taskType,
					"jobKey":   job.GetKey(),
					"panic":    fmt.Sprint(r),
				})
				errHandler.HandleJobError(context.Background(), client, job,
					errors.NewInternalError(fmt.Errorf("panic in %s handler: %v", taskType, r)))
			}
		}()
		h.Handle(client, job)
	}
}

func (s *WorkerSet) TaskTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.workers))
	for taskType := range s.workers {
		out = append(out, taskType)
	}
	return out
}

// Close stops polling and waits for in-flight jobs to finish.
func (s *WorkerSet) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for taskType, w := range s.workers {
		s.logger.Info("stopping worker", map[string]interface{}{"taskType": taskType})
		w.Close()
		w.AwaitClose()
	}
	s.workers = make(map[string]worker.JobWorker)
}
