package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"municipal-tasks/internal/core/domain/entities"
	"municipal-tasks/internal/core/ports"

	"go.uber.org/zap"
)

const DefaultSettleDelay = 500 * time.Millisecond

type BoardConfig struct {
	// Area scopes the task-list watch; empty means every area.
	Area string
	// SessionAttempts / SessionInitialDelay parameterize the session gate.
	SessionAttempts     int
	SessionInitialDelay time.Duration
	// SettleDelay is the pause between session confirmation and the list
	// watch, a debounce against subscribing before the backend is ready.
	SettleDelay time.Duration
}

// BoardService owns the live pipeline for one client session: session gate,
// task-list watch, deletion reconciliation, and the progress coordinator over
// the visible tasks. It is the explicit context object the UI layer holds,
// with a Start/Stop lifecycle instead of ambient singletons.
type BoardService struct {
	gate        *SessionGate
	lists       ports.ListWatcher
	reconciler  *ListReconciler
	coordinator *ProgressCoordinator
	cfg         BoardConfig
	sleep       func(ctx context.Context, d time.Duration) bool
	log         *zap.Logger

	// refilterMu serializes whole refilter runs. Refilter fires from the
	// list-watch callback and from the deletion mutations concurrently; an
	// unserialized overlap could let a slower run overwrite a fresher
	// coordinator subscription without cancelling it, leaking every
	// aggregator watch underneath it.
	refilterMu sync.Mutex

	mu             sync.Mutex
	ctx            context.Context
	started        bool
	stopped        bool
	cancelList     ports.CancelFunc
	cancelProgress ports.CancelFunc
	lastRaw        []entities.Task
	tasks          []entities.Task
	progress       map[string]*entities.ProgressSnapshot
	progressKey    string
	watchers       map[uint64]func(entities.BoardState)
	nextWatcher    uint64
}

func NewBoardService(
	gate *SessionGate,
	lists ports.ListWatcher,
	reconciler *ListReconciler,
	coordinator *ProgressCoordinator,
	cfg BoardConfig,
	log *zap.Logger,
) (*BoardService, error) {
	if gate == nil {
		return nil, errors.New("session gate is nil")
	}
	if lists == nil {
		return nil, errors.New("list watcher is nil")
	}
	if reconciler == nil {
		return nil, errors.New("list reconciler is nil")
	}
	if coordinator == nil {
		return nil, errors.New("progress coordinator is nil")
	}
	if log == nil {
		return nil, errors.New("logger is nil")
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
	return &BoardService{
		gate:        gate,
		lists:       lists,
		reconciler:  reconciler,
		coordinator: coordinator,
		cfg:         cfg,
		sleep:       sleepContext,
		log:         log,
		tasks:       []entities.Task{},
		progress:    map[string]*entities.ProgressSnapshot{},
		watchers:    make(map[uint64]func(entities.BoardState)),
	}, nil
}

// Start waits for a session, settles, then opens the list watch. It blocks
// for the duration of the gate, so callers run it on its own goroutine. An
// exhausted gate is not an error: the board stays idle and empty.
func (b *BoardService) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return errors.New("board service already started")
	}
	b.started = true
	b.ctx = ctx
	b.mu.Unlock()

	session := b.gate.WaitForSession(ctx, b.cfg.SessionAttempts, b.cfg.SessionInitialDelay)
	if session == nil {
		b.log.Warn("board: no session, feed stays idle")
		b.publish()
		return nil
	}
	b.log.Info("board: session confirmed",
		zap.String("uid", session.UID), zap.String("area", b.cfg.Area))

	if !b.sleep(ctx, b.cfg.SettleDelay) {
		return ctx.Err()
	}

	cancel := b.lists.WatchTaskList(ctx, b.cfg.Area, b.onRawList, func(err error) {
		b.log.Warn("board: task list watch failed", zap.Error(err))
		b.onRawList(nil)
	})

	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		cancel()
		return nil
	}
	b.cancelList = cancel
	b.mu.Unlock()
	return nil
}

// Stop releases the list watch and every progress subscription as a unit.
func (b *BoardService) Stop() {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.stopped = true
	cancelList := b.cancelList
	cancelProgress := b.cancelProgress
	b.cancelList = nil
	b.cancelProgress = nil
	b.watchers = make(map[uint64]func(entities.BoardState))
	b.mu.Unlock()

	if cancelList != nil {
		cancelList()
	}
	if cancelProgress != nil {
		cancelProgress()
	}
	b.log.Info("board: stopped")
}

// State returns the current reconciled view.
func (b *BoardService) State() entities.BoardState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return entities.BoardState{Tasks: b.tasks, Progress: b.progress}
}

// Watch registers a feed consumer and immediately replays the current state
// to it. The returned cancel is idempotent.
func (b *BoardService) Watch(fn func(entities.BoardState)) ports.CancelFunc {
	b.mu.Lock()
	id := b.nextWatcher
	b.nextWatcher++
	b.watchers[id] = fn
	state := entities.BoardState{Tasks: b.tasks, Progress: b.progress}
	b.mu.Unlock()

	fn(state)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.watchers, id)
			b.mu.Unlock()
		})
	}
}

// MarkDeleting hides the task optimistically while the delete is in flight.
func (b *BoardService) MarkDeleting(taskID string) {
	b.reconciler.MarkDeleting(taskID)
	b.refilter()
}

// ConfirmDelete resolves the in-flight delete into the permanent set.
func (b *BoardService) ConfirmDelete(ctx context.Context, taskID string) {
	b.reconciler.UnmarkDeleting(ctx, taskID)
	b.refilter()
}

// RestoreDeleted is the explicit un-delete escape hatch.
func (b *BoardService) RestoreDeleted(ctx context.Context, taskID string) {
	b.reconciler.ClearDeleted(ctx, taskID)
	b.refilter()
}

func (b *BoardService) onRawList(raw []entities.Task) {
	b.mu.Lock()
	b.lastRaw = raw
	b.mu.Unlock()
	b.refilter()
}

// refilter re-applies the deletion shadow to the last raw snapshot and, when
// the visible membership changed, swaps the progress coordinator over to the
// new id set. Runs are serialized: a later run always sees the subscription
// the previous run stored, so every superseded subscription gets cancelled.
func (b *BoardService) refilter() {
	b.refilterMu.Lock()
	defer b.refilterMu.Unlock()

	b.mu.Lock()
	raw := b.lastRaw
	ctx := b.ctx
	b.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	visible := b.reconciler.Apply(raw)
	ids := make([]string, 0, len(visible))
	for _, task := range visible {
		ids = append(ids, task.ID)
	}
	key := progressKey(ids)

	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.tasks = visible
	refresh := key != b.progressKey
	var oldCancel ports.CancelFunc
	if refresh {
		b.progressKey = key
		oldCancel = b.cancelProgress
		b.cancelProgress = nil
	}
	b.mu.Unlock()

	if refresh {
		if oldCancel != nil {
			oldCancel()
		}
		cancel := b.coordinator.Subscribe(ctx, ids, b.onProgress)
		b.mu.Lock()
		if b.stopped {
			b.mu.Unlock()
			cancel()
			return
		}
		b.cancelProgress = cancel
		b.mu.Unlock()
		b.log.Debug("board: progress coordinator refreshed", zap.Int("tasks", len(ids)))
	}

	b.publish()
}

func (b *BoardService) onProgress(progress map[string]*entities.ProgressSnapshot) {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.progress = progress
	b.mu.Unlock()
	b.publish()
}

func (b *BoardService) publish() {
	b.mu.Lock()
	state := entities.BoardState{Tasks: b.tasks, Progress: b.progress}
	fns := make([]func(entities.BoardState), 0, len(b.watchers))
	for _, fn := range b.watchers {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

func progressKey(ids []string) string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x00")
}
