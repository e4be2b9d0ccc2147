package service

import (
	"context"
	"errors"
	"sync"

	"municipal-tasks/internal/core/domain/entities"
	"municipal-tasks/internal/core/ports"

	"go.uber.org/zap"
)

// ListReconciler filters live task-list snapshots against the local deletion
// shadow, so an optimistic delete is never resurrected by a trailing snapshot.
// A task id moves visible -> deleting (MarkDeleting) -> permanently hidden
// (UnmarkDeleting); only ClearDeleted brings it back. The permanent set is
// flushed to the archive on every mutation and reloaded at construction, so a
// confirmed delete survives a process restart even before the live
// subscription converges.
type ListReconciler struct {
	mu      sync.Mutex
	shadow  *entities.DeletionShadow
	archive ports.DeletionArchive
	log     *zap.Logger
}

func NewListReconciler(ctx context.Context, archive ports.DeletionArchive, log *zap.Logger) (*ListReconciler, error) {
	if archive == nil {
		return nil, errors.New("deletion archive is nil")
	}
	if log == nil {
		return nil, errors.New("logger is nil")
	}

	r := &ListReconciler{
		shadow:  entities.NewDeletionShadow(),
		archive: archive,
		log:     log,
	}

	ids, err := archive.LoadAll(ctx)
	if err != nil {
		// In-memory behavior stays correct for this session; only restart
		// durability is degraded.
		log.Warn("reconciler: loading deletion archive failed", zap.Error(err))
		return r, nil
	}
	for _, id := range ids {
		r.shadow.Permanent[id] = struct{}{}
	}
	log.Debug("reconciler: deletion archive loaded", zap.Int("permanent", len(ids)))
	return r, nil
}

// Apply returns the raw snapshot minus every shadowed task, as a fresh slice.
func (r *ListReconciler) Apply(raw []entities.Task) []entities.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	visible := make([]entities.Task, 0, len(raw))
	for _, task := range raw {
		if r.shadow.Hides(task.ID) {
			continue
		}
		visible = append(visible, task)
	}
	return visible
}

// Hides reports whether a task id is currently shadowed.
func (r *ListReconciler) Hides(taskID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shadow.Hides(taskID)
}

// MarkDeleting records an in-flight delete. Process-local only.
func (r *ListReconciler) MarkDeleting(taskID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shadow.Deleting[taskID] = struct{}{}
	r.log.Debug("reconciler: marked deleting", zap.String("task_id", taskID))
}

// UnmarkDeleting resolves an in-flight delete: the id leaves the in-flight set
// and joins the permanent set, in that order, so a completed delete can never
// reappear through an eventually-consistent snapshot.
func (r *ListReconciler) UnmarkDeleting(ctx context.Context, taskID string) {
	r.mu.Lock()
	delete(r.shadow.Deleting, taskID)
	r.shadow.Permanent[taskID] = struct{}{}
	r.mu.Unlock()

	if err := r.archive.Add(ctx, taskID); err != nil {
		r.log.Warn("reconciler: persisting deletion failed",
			zap.String("task_id", taskID), zap.Error(err))
	}
}

// ClearDeleted is the explicit un-delete escape hatch: it removes the id from
// the permanent set, returning it to visible.
func (r *ListReconciler) ClearDeleted(ctx context.Context, taskID string) {
	r.mu.Lock()
	delete(r.shadow.Permanent, taskID)
	r.mu.Unlock()

	if err := r.archive.Remove(ctx, taskID); err != nil {
		r.log.Warn("reconciler: clearing deletion failed",
			zap.String("task_id", taskID), zap.Error(err))
	}
}
