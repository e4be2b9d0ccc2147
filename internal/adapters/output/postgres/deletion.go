package postgres

import (
	"context"

	"municipal-tasks/internal/infrastructure/db"

	"go.uber.org/zap"
)

// DeletionArchive persists the permanent deletion set in the deleted_tasks
// table, one row per task id. Add is idempotent so replaying a confirm after
// a crash cannot fail.
type DeletionArchive struct {
	db  db.Querier
	log *zap.Logger
}

func NewDeletionArchive(db db.Querier, log *zap.Logger) *DeletionArchive {
	if db == nil {
		log.Fatal("database querier is nil")
	}
	if log == nil {
		log.Fatal("logger is nil")
	}
	return &DeletionArchive{
		db:  db,
		log: log,
	}
}

func (r *DeletionArchive) Add(ctx context.Context, taskID string) error {
	query := `INSERT INTO deleted_tasks (task_id, deleted_at)
		VALUES ($1, now())
		ON CONFLICT (task_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, taskID); err != nil {
		r.log.Error("failed to archive deleted task", zap.String("task_id", taskID), zap.Error(err))
		return err
	}
	return nil
}

func (r *DeletionArchive) Remove(ctx context.Context, taskID string) error {
	query := `DELETE FROM deleted_tasks WHERE task_id = $1`

	if _, err := r.db.Exec(ctx, query, taskID); err != nil {
		r.log.Error("failed to clear deleted task", zap.String("task_id", taskID), zap.Error(err))
		return err
	}
	return nil
}

func (r *DeletionArchive) LoadAll(ctx context.Context) ([]string, error) {
	query := `SELECT task_id FROM deleted_tasks`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("failed to load deleted tasks", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			r.log.Error("failed to scan deleted task row", zap.Error(err))
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("failed to iterate deleted task rows", zap.Error(err))
		return nil, err
	}

	return ids, nil
}
