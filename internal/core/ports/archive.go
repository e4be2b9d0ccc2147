package ports

import "context"

// DeletionArchive is the durable record of permanently deleted task ids. The
// reconciler flushes every mutation through it and reloads the set at startup;
// archive failures are logged and skipped, never surfaced to the UI.
type DeletionArchive interface {
	Add(ctx context.Context, taskID string) error
	Remove(ctx context.Context, taskID string) error
	LoadAll(ctx context.Context) ([]string, error)
}
