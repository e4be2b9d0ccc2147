package service

import (
	"context"
	"sync"

	"municipal-tasks/internal/core/domain/entities"
	"municipal-tasks/internal/core/domain/exceptions"
	"municipal-tasks/internal/core/ports"
)

// fakeSessionSource fails until attempt succeedAt (0 = never succeeds).
type fakeSessionSource struct {
	mu        sync.Mutex
	attempts  int
	succeedAt int
	session   *entities.Session
}

func (f *fakeSessionSource) Current(_ context.Context) (*entities.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.succeedAt > 0 && f.attempts >= f.succeedAt {
		if f.session != nil {
			return f.session, nil
		}
		return &entities.Session{UID: "uid-1"}, nil
	}
	return nil, exceptions.ErrNoSession
}

func (f *fakeSessionSource) attemptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

// fakeStore implements every store port with hand-triggered emissions.
type fakeStore struct {
	mu sync.Mutex

	tasks  map[string]*entities.Task
	getErr error

	taskSnaps    map[string]func(*entities.Task, bool)
	taskErrs     map[string]func(error)
	subtaskSnaps map[string]func([]entities.Subtask)
	subtaskErrs  map[string]func(error)
	listSnaps    []func([]entities.Task)
	listErrs     []func(error)

	taskWatchCalls    map[string]int
	subtaskWatchCalls map[string]int
	cancelCounts      map[string]int

	// panicOnCancel makes the task-watch cancel for that id panic, to
	// exercise teardown isolation.
	panicOnCancel map[string]bool

	// watchGates makes WatchTask for that id block until the channel is
	// closed, to pin a subscriber mid-flight.
	watchGates      map[string]chan struct{}
	taskWatchStarts map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tasks:             make(map[string]*entities.Task),
		taskSnaps:         make(map[string]func(*entities.Task, bool)),
		taskErrs:          make(map[string]func(error)),
		subtaskSnaps:      make(map[string]func([]entities.Subtask)),
		subtaskErrs:       make(map[string]func(error)),
		taskWatchCalls:    make(map[string]int),
		subtaskWatchCalls: make(map[string]int),
		cancelCounts:      make(map[string]int),
		panicOnCancel:     make(map[string]bool),
		watchGates:        make(map[string]chan struct{}),
		taskWatchStarts:   make(map[string]int),
	}
}

func (f *fakeStore) GetTask(_ context.Context, id string) (*entities.Task, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	task, ok := f.tasks[id]
	return task, ok, nil
}

func (f *fakeStore) WatchTask(_ context.Context, id string, onSnapshot func(*entities.Task, bool), onError func(error)) ports.CancelFunc {
	f.mu.Lock()
	f.taskWatchStarts[id]++
	gate := f.watchGates[id]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	f.taskSnaps[id] = onSnapshot
	f.taskErrs[id] = onError
	f.taskWatchCalls[id]++
	shouldPanic := f.panicOnCancel[id]
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		f.cancelCounts["task:"+id]++
		delete(f.taskSnaps, id)
		delete(f.taskErrs, id)
		f.mu.Unlock()
		if shouldPanic {
			panic("task watch teardown failed")
		}
	}
}

func (f *fakeStore) WatchSubtasks(_ context.Context, taskID string, onSnapshot func([]entities.Subtask), onError func(error)) ports.CancelFunc {
	f.mu.Lock()
	f.subtaskSnaps[taskID] = onSnapshot
	f.subtaskErrs[taskID] = onError
	f.subtaskWatchCalls[taskID]++
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		f.cancelCounts["subtasks:"+taskID]++
		delete(f.subtaskSnaps, taskID)
		delete(f.subtaskErrs, taskID)
		f.mu.Unlock()
	}
}

func (f *fakeStore) WatchTaskList(_ context.Context, _ string, onSnapshot func([]entities.Task), onError func(error)) ports.CancelFunc {
	f.mu.Lock()
	f.listSnaps = append(f.listSnaps, onSnapshot)
	f.listErrs = append(f.listErrs, onError)
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		f.cancelCounts["list"]++
		f.listSnaps = nil
		f.listErrs = nil
		f.mu.Unlock()
	}
}

func (f *fakeStore) emitTask(id string, task *entities.Task, exists bool) {
	f.mu.Lock()
	fn := f.taskSnaps[id]
	f.mu.Unlock()
	if fn != nil {
		fn(task, exists)
	}
}

func (f *fakeStore) emitSubtasks(taskID string, subtasks []entities.Subtask) {
	f.mu.Lock()
	fn := f.subtaskSnaps[taskID]
	f.mu.Unlock()
	if fn != nil {
		fn(subtasks)
	}
}

func (f *fakeStore) emitSubtaskError(taskID string, err error) {
	f.mu.Lock()
	fn := f.subtaskErrs[taskID]
	f.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

func (f *fakeStore) emitList(tasks []entities.Task) {
	f.mu.Lock()
	fns := append([]func([]entities.Task){}, f.listSnaps...)
	f.mu.Unlock()
	for _, fn := range fns {
		fn(tasks)
	}
}

func (f *fakeStore) subtaskWatcherOpen(taskID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subtaskSnaps[taskID] != nil
}

func (f *fakeStore) listWatcherOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listSnaps) > 0
}

func (f *fakeStore) cancelCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancelCounts[key]
}

func (f *fakeStore) watchCalls(taskID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.taskWatchCalls[taskID]
}

func (f *fakeStore) watchStarts(taskID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.taskWatchStarts[taskID]
}

// memoryArchive is an in-process deletion archive shared across simulated
// restarts.
type memoryArchive struct {
	mu      sync.Mutex
	ids     map[string]struct{}
	addErr  error
	loadErr error
}

func newMemoryArchive() *memoryArchive {
	return &memoryArchive{ids: make(map[string]struct{})}
}

func (a *memoryArchive) Add(_ context.Context, taskID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.addErr != nil {
		return a.addErr
	}
	a.ids[taskID] = struct{}{}
	return nil
}

func (a *memoryArchive) Remove(_ context.Context, taskID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.ids, taskID)
	return nil
}

func (a *memoryArchive) LoadAll(_ context.Context) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loadErr != nil {
		return nil, a.loadErr
	}
	ids := make([]string, 0, len(a.ids))
	for id := range a.ids {
		ids = append(ids, id)
	}
	return ids, nil
}

func (a *memoryArchive) contains(taskID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.ids[taskID]
	return ok
}
