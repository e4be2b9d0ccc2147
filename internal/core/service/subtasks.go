package service

import (
	"context"
	"errors"
	"sync"

	"municipal-tasks/internal/core/domain/entities"
	"municipal-tasks/internal/core/ports"

	"go.uber.org/zap"
)

// SubtaskStream opens the live, creation-ordered subtask feed of one task.
// A missing parent or a transport failure both surface as an empty emission;
// consumers cannot and need not tell "no data" apart from "no subtasks".
type SubtaskStream struct {
	reader  ports.TaskReader
	watcher ports.SubtaskWatcher
	log     *zap.Logger
}

func NewSubtaskStream(reader ports.TaskReader, watcher ports.SubtaskWatcher, log *zap.Logger) (*SubtaskStream, error) {
	if reader == nil {
		return nil, errors.New("task reader is nil")
	}
	if watcher == nil {
		return nil, errors.New("subtask watcher is nil")
	}
	if log == nil {
		return nil, errors.New("logger is nil")
	}
	return &SubtaskStream{
		reader:  reader,
		watcher: watcher,
		log:     log,
	}, nil
}

// Subscribe confirms the parent task exists before opening the watch; an
// absent parent emits one empty collection and opens nothing, since the task
// may have been legitimately deleted while this call was in flight. The
// returned cancel is idempotent.
func (s *SubtaskStream) Subscribe(ctx context.Context, taskID string, onChange func([]entities.Subtask)) ports.CancelFunc {
	sub := &subtaskSubscription{onChange: onChange}

	go func() {
		_, exists, err := s.reader.GetTask(ctx, taskID)
		if err != nil {
			s.log.Warn("subtask stream: parent check failed",
				zap.String("task_id", taskID), zap.Error(err))
			sub.emit([]entities.Subtask{})
			return
		}
		if !exists {
			s.log.Debug("subtask stream: parent task missing", zap.String("task_id", taskID))
			sub.emit([]entities.Subtask{})
			return
		}

		cancel := s.watcher.WatchSubtasks(ctx, taskID, sub.emit, func(err error) {
			s.log.Warn("subtask stream: watch failed",
				zap.String("task_id", taskID), zap.Error(err))
			sub.emit([]entities.Subtask{})
		})
		if !sub.attach(cancel) {
			cancel()
		}
	}()

	return sub.cancel
}

type subtaskSubscription struct {
	mu       sync.Mutex
	closed   bool
	upstream ports.CancelFunc
	onChange func([]entities.Subtask)
}

func (s *subtaskSubscription) emit(subtasks []entities.Subtask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.onChange(subtasks)
}

// attach records the upstream cancel; it reports false when the subscription
// was already cancelled, in which case the caller must release the watch.
func (s *subtaskSubscription) attach(cancel ports.CancelFunc) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.upstream = cancel
	return true
}

func (s *subtaskSubscription) cancel() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	upstream := s.upstream
	s.mu.Unlock()

	if upstream != nil {
		upstream()
	}
}
