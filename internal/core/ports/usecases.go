package ports

import (
	"context"
	"municipal-tasks/internal/core/domain/entities"
)

// BoardUseCases is the surface the input adapters consume: pull the current
// board state, follow live updates, and drive the deletion state machine.
type BoardUseCases interface {
	State() entities.BoardState
	Watch(fn func(entities.BoardState)) CancelFunc
	MarkDeleting(taskID string)
	ConfirmDelete(ctx context.Context, taskID string)
	RestoreDeleted(ctx context.Context, taskID string)
}
