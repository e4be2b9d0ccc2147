package service

import (
	"context"
	"errors"
	"sync"

	"municipal-tasks/internal/core/domain/entities"
	"municipal-tasks/internal/core/ports"

	"go.uber.org/zap"
)

// ProgressCoordinator fans one ProgressAggregator out per task id and merges
// their snapshots into a single keyed map. Consumers always receive a fresh
// copy of the whole map, so a missing key means "deleted or not found", never
// "not yet delivered to you".
type ProgressCoordinator struct {
	aggregator *ProgressAggregator
	log        *zap.Logger
}

func NewProgressCoordinator(aggregator *ProgressAggregator, log *zap.Logger) (*ProgressCoordinator, error) {
	if aggregator == nil {
		return nil, errors.New("progress aggregator is nil")
	}
	if log == nil {
		return nil, errors.New("logger is nil")
	}
	return &ProgressCoordinator{
		aggregator: aggregator,
		log:        log,
	}, nil
}

// Subscribe opens one aggregator per distinct id in taskIDs. An empty input
// emits one empty map and returns a no-op cancel. The cancel tears down every
// aggregator exactly once; a panicking teardown is logged and the remaining
// teardowns still run.
func (c *ProgressCoordinator) Subscribe(ctx context.Context, taskIDs []string, onChange func(map[string]*entities.ProgressSnapshot)) ports.CancelFunc {
	if len(taskIDs) == 0 {
		onChange(map[string]*entities.ProgressSnapshot{})
		return func() {}
	}

	table := &progressTable{
		entries:  make(map[string]*entities.ProgressSnapshot, len(taskIDs)),
		onChange: onChange,
	}

	seen := make(map[string]struct{}, len(taskIDs))
	cancels := make([]ports.CancelFunc, 0, len(taskIDs))
	for _, taskID := range taskIDs {
		if _, dup := seen[taskID]; dup {
			continue
		}
		seen[taskID] = struct{}{}
		id := taskID
		cancels = append(cancels, c.aggregator.Subscribe(ctx, id, func(snapshot *entities.ProgressSnapshot) {
			table.set(id, snapshot)
		}))
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			table.close()
			for _, cancel := range cancels {
				c.teardown(cancel)
			}
		})
	}
}

func (c *ProgressCoordinator) teardown(cancel ports.CancelFunc) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("progress coordinator: teardown panicked", zap.Any("panic", r))
		}
	}()
	cancel()
}

// progressTable is the shared keyed table behind one coordinator
// subscription. Every update hands the consumer a copy, under the table lock
// so that emissions stay ordered with the mutations that produced them.
type progressTable struct {
	mu       sync.Mutex
	closed   bool
	entries  map[string]*entities.ProgressSnapshot
	onChange func(map[string]*entities.ProgressSnapshot)
}

func (t *progressTable) set(taskID string, snapshot *entities.ProgressSnapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if snapshot == nil {
		delete(t.entries, taskID)
	} else {
		t.entries[taskID] = snapshot
	}

	view := make(map[string]*entities.ProgressSnapshot, len(t.entries))
	for id, snap := range t.entries {
		view[id] = snap
	}
	t.onChange(view)
}

func (t *progressTable) close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
}
