package ports

import (
	"context"
	"municipal-tasks/internal/core/domain/entities"
)

// CancelFunc releases a live watch. Implementations must make it safe to call
// more than once; after the first call no further callbacks are delivered.
type CancelFunc func()

// TaskReader is the one-shot read primitive, used for existence checks before
// a live watch is opened.
type TaskReader interface {
	GetTask(ctx context.Context, id string) (*entities.Task, bool, error)
}

// TaskWatcher pushes full document snapshots for a single task. onSnapshot
// receives (nil, false) when the document does not exist.
type TaskWatcher interface {
	WatchTask(ctx context.Context, id string, onSnapshot func(task *entities.Task, exists bool), onError func(error)) CancelFunc
}

// SubtaskWatcher pushes the full subtask collection of one task, ordered by
// creation time ascending, with timestamps already normalized to epoch millis.
type SubtaskWatcher interface {
	WatchSubtasks(ctx context.Context, taskID string, onSnapshot func([]entities.Subtask), onError func(error)) CancelFunc
}

// ListWatcher pushes whole-list snapshots of the tasks in one municipal area
// (every task when area is empty). Snapshots supersede each other; no deltas.
type ListWatcher interface {
	WatchTaskList(ctx context.Context, area string, onSnapshot func([]entities.Task), onError func(error)) CancelFunc
}
