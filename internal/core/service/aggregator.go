package service

import (
	"context"
	"errors"
	"sync"

	"municipal-tasks/internal/core/domain/entities"
	"municipal-tasks/internal/core/ports"

	"go.uber.org/zap"
)

// ProgressAggregator combines one task's live document with its live subtask
// collection and recomputes the full ProgressSnapshot on every emission from
// either side. Recomputation is last-write-wins over the most recent
// (task, subtasks) pair; nothing accumulates between emissions.
type ProgressAggregator struct {
	watcher  ports.TaskWatcher
	subtasks *SubtaskStream
	log      *zap.Logger
}

func NewProgressAggregator(watcher ports.TaskWatcher, subtasks *SubtaskStream, log *zap.Logger) (*ProgressAggregator, error) {
	if watcher == nil {
		return nil, errors.New("task watcher is nil")
	}
	if subtasks == nil {
		return nil, errors.New("subtask stream is nil")
	}
	if log == nil {
		return nil, errors.New("logger is nil")
	}
	return &ProgressAggregator{
		watcher:  watcher,
		subtasks: subtasks,
		log:      log,
	}, nil
}

// Subscribe delivers a fresh snapshot per change, or nil while the task
// document does not exist. The cancel is idempotent.
func (a *ProgressAggregator) Subscribe(ctx context.Context, taskID string, onChange func(*entities.ProgressSnapshot)) ports.CancelFunc {
	state := &aggregatorState{onChange: onChange}

	cancelTask := a.watcher.WatchTask(ctx, taskID, state.onTask, func(err error) {
		a.log.Warn("progress aggregator: task watch failed",
			zap.String("task_id", taskID), zap.Error(err))
		state.onTask(nil, false)
	})
	cancelSubtasks := a.subtasks.Subscribe(ctx, taskID, state.onSubtasks)

	var once sync.Once
	return func() {
		once.Do(func() {
			state.close()
			cancelTask()
			cancelSubtasks()
		})
	}
}

type aggregatorState struct {
	mu       sync.Mutex
	closed   bool
	task     *entities.Task
	exists   bool
	subtasks []entities.Subtask
	onChange func(*entities.ProgressSnapshot)
}

func (s *aggregatorState) onTask(task *entities.Task, exists bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.task = task
	s.exists = exists && task != nil
	s.emitLocked()
}

func (s *aggregatorState) onSubtasks(subtasks []entities.Subtask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subtasks = subtasks
	s.emitLocked()
}

// emitLocked runs under the state mutex so that recomputations are serialized
// and delivered in the order their inputs arrived.
func (s *aggregatorState) emitLocked() {
	if s.closed {
		return
	}
	if !s.exists {
		s.onChange(nil)
		return
	}
	s.onChange(entities.ComputeProgress(s.task, s.subtasks))
}

func (s *aggregatorState) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
