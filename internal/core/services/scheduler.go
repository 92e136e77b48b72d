package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/drawsync/internal/core/domain"
	"github.com/custodia-labs/drawsync/internal/core/ports/driven"
	"github.com/custodia-labs/drawsync/internal/core/ports/driving"
	"github.com/custodia-labs/drawsync/internal/logger"
)

// historyKeep is how many results are retained per task.
const historyKeep = 100

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// Scheduler manages background task execution.
type Scheduler struct {
	config  domain.SchedulerConfig
	store   driven.SchedulerStore
	syncSvc driving.SyncService

	// checkEvery is how often due tasks are looked for.
	checkEvery time.Duration

	mu       sync.Mutex
	running  bool
	inFlight map[string]bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	syncSvc driving.SyncService,
) *Scheduler {
	return &Scheduler{
		config:     config,
		store:      store,
		syncSvc:    syncSvc,
		checkEvery: time.Minute,
		inFlight:   make(map[string]bool),
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is cancelled. It returns immediately if the scheduler is disabled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		logger.Info("Scheduler disabled")
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	// Initialise tasks in store
	if err := s.initialiseTasks(ctx); err != nil {
		logger.Warn("scheduler: failed to initialise tasks: %v", err)
	}

	return s.run(ctx, stopCh)
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	// Wait for running tasks to complete
	s.wg.Wait()

	return nil
}

// UpdateInterval changes a task's schedule. The next run is recalculated
// from now when the interval changes.
func (s *Scheduler) UpdateInterval(ctx context.Context, taskID string, enabled bool, interval time.Duration) error {
	if taskID != domain.TaskIDDrawSync {
		return fmt.Errorf("%w: unknown task %q", domain.ErrNotFound, taskID)
	}
	if interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", domain.ErrInvalidInput)
	}

	cfg := domain.TaskConfig{Enabled: enabled, Interval: interval}

	s.mu.Lock()
	if s.config.TaskConfigs == nil {
		s.config.TaskConfigs = make(map[string]domain.TaskConfig)
	}
	s.config.TaskConfigs[taskID] = cfg
	s.mu.Unlock()

	logger.Info("Task %s: enabled=%t interval=%s", taskID, enabled, interval)
	return s.ensureTask(ctx, taskID, taskName(taskID), cfg)
}

// initialiseTasks ensures all configured tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	s.mu.Lock()
	taskCfg := s.config.GetTaskConfig(domain.TaskIDDrawSync)
	s.mu.Unlock()

	if taskCfg.Interval <= 0 {
		return nil
	}
	return s.ensureTask(ctx, domain.TaskIDDrawSync, taskName(domain.TaskIDDrawSync), taskCfg)
}

// ensureTask creates or updates a task in the store.
// A new task is due immediately.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  time.Now(),
		}
	} else {
		// Update interval if changed
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			task.NextRun = time.Now().Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}) error {
	// Check for due tasks immediately on startup
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.checkEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("scheduler: failed to list tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		task := &tasks[i]
		if !task.Enabled {
			continue
		}
		if task.NextRun.IsZero() || !task.NextRun.After(now) {
			s.runTask(ctx, task)
		}
	}
}

// runTask executes a single task in the background.
// A task that is still running from a previous tick is not started again.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.mu.Lock()
	if s.inFlight[task.ID] {
		s.mu.Unlock()
		return
	}
	s.inFlight[task.ID] = true
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.inFlight, task.ID)
			s.mu.Unlock()
			s.wg.Done()
		}()

		result := &domain.TaskResult{
			TaskID:    task.ID,
			StartedAt: time.Now(),
		}

		var err error
		switch task.ID {
		case domain.TaskIDDrawSync:
			err = s.runDrawSync(ctx, result)
		default:
			logger.Warn("scheduler: unknown task ID: %s", task.ID)
			return
		}

		result.EndedAt = time.Now()
		if err != nil {
			result.Success = false
			result.Error = err.Error()
			task.LastError = err.Error()
		} else {
			result.Success = true
			task.LastError = ""
			task.LastSuccess = result.EndedAt
		}

		// Update task state
		task.LastRun = result.StartedAt
		task.NextRun = result.EndedAt.Add(task.Interval)

		// Persist even if ctx was cancelled mid-run.
		saveCtx := context.WithoutCancel(ctx)

		if saveErr := s.store.SaveTask(saveCtx, task); saveErr != nil {
			logger.Warn("scheduler: failed to save task %s: %v", task.ID, saveErr)
		}

		// Record result for history
		if recordErr := s.store.RecordResult(saveCtx, result); recordErr != nil {
			logger.Warn("scheduler: failed to record result for %s: %v", task.ID, recordErr)
		}

		// Prune old history
		if pruneErr := s.store.PruneHistory(saveCtx, historyKeep); pruneErr != nil {
			logger.Warn("scheduler: failed to prune history: %v", pruneErr)
		}
	}()
}

// runDrawSync runs one sync and copies its outcome into result.
// A run that stopped on a fetch or store failure counts as a failed task.
func (s *Scheduler) runDrawSync(ctx context.Context, result *domain.TaskResult) error {
	if s.syncSvc == nil {
		return nil
	}

	report, err := s.syncSvc.Sync(ctx)
	if report != nil {
		result.RunID = report.RunID
		result.ItemsProcessed = report.Inserted
	}
	if err != nil {
		return err
	}
	if report != nil && report.StopReason.IsFailure() {
		return fmt.Errorf("sync stopped: %s: %s", report.StopReason, report.LastError)
	}
	return nil
}

func taskName(taskID string) string {
	if taskID == domain.TaskIDDrawSync {
		return "Draw Sync"
	}
	return taskID
}
