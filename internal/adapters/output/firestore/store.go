package firestore

import (
	"context"
	"time"

	"municipal-tasks/internal/core/domain/entities"
	"municipal-tasks/internal/core/ports"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	tasksCollection    = "tasks"
	subtasksCollection = "subtasks"
)

// Store implements the one-shot read and live watch ports on Firestore
// snapshot listeners. Every server timestamp is normalized to epoch
// milliseconds here, at the boundary, so nothing downstream ever touches the
// store-native temporal type.
type Store struct {
	client *firestore.Client
	log    *zap.Logger
}

func NewStore(client *firestore.Client, log *zap.Logger) *Store {
	if client == nil {
		log.Fatal("firestore client is nil")
	}
	if log == nil {
		log.Fatal("logger is nil")
	}
	return &Store{
		client: client,
		log:    log,
	}
}

type taskDoc struct {
	Title     string    `firestore:"title"`
	Status    string    `firestore:"status"`
	Priority  string    `firestore:"priority"`
	Area      string    `firestore:"area"`
	DueAt     time.Time `firestore:"due_at"`
	Assignees []string  `firestore:"assignees"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type subtaskDoc struct {
	TaskID      string    `firestore:"task_id"`
	Title       string    `firestore:"title"`
	Description string    `firestore:"description"`
	Status      string    `firestore:"status"`
	AssignedTo  string    `firestore:"assigned_to"`
	CreatedAt   time.Time `firestore:"created_at"`
	UpdatedAt   time.Time `firestore:"updated_at"`
	CompletedAt time.Time `firestore:"completed_at"`
}

func (s *Store) GetTask(ctx context.Context, id string) (*entities.Task, bool, error) {
	snap, err := s.client.Collection(tasksCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, false, nil
	}
	if err != nil {
		s.log.Error("firestore: get task failed", zap.String("task_id", id), zap.Error(err))
		return nil, false, err
	}

	var doc taskDoc
	if err := snap.DataTo(&doc); err != nil {
		s.log.Error("firestore: decode task failed", zap.String("task_id", id), zap.Error(err))
		return nil, false, err
	}
	return taskFromDoc(snap.Ref.ID, &doc), true, nil
}

func (s *Store) WatchTask(ctx context.Context, id string, onSnapshot func(task *entities.Task, exists bool), onError func(error)) ports.CancelFunc {
	wctx, cancel := context.WithCancel(ctx)

	go func() {
		it := s.client.Collection(tasksCollection).Doc(id).Snapshots(wctx)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled {
					return
				}
				s.log.Warn("firestore: task watch failed", zap.String("task_id", id), zap.Error(err))
				onError(err)
				return
			}
			if !snap.Exists() {
				onSnapshot(nil, false)
				continue
			}

			var doc taskDoc
			if err := snap.DataTo(&doc); err != nil {
				s.log.Warn("firestore: decode task failed", zap.String("task_id", id), zap.Error(err))
				onError(err)
				continue
			}
			onSnapshot(taskFromDoc(snap.Ref.ID, &doc), true)
		}
	}()

	return func() { cancel() }
}

func (s *Store) WatchSubtasks(ctx context.Context, taskID string, onSnapshot func([]entities.Subtask), onError func(error)) ports.CancelFunc {
	wctx, cancel := context.WithCancel(ctx)

	go func() {
		query := s.client.Collection(subtasksCollection).
			Where("task_id", "==", taskID).
			OrderBy("created_at", firestore.Asc)
		it := query.Snapshots(wctx)
		defer it.Stop()

		for {
			qs, err := it.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled {
					return
				}
				s.log.Warn("firestore: subtask watch failed", zap.String("task_id", taskID), zap.Error(err))
				onError(err)
				return
			}

			docs, err := qs.Documents.GetAll()
			if err != nil {
				s.log.Warn("firestore: subtask snapshot read failed", zap.String("task_id", taskID), zap.Error(err))
				onError(err)
				continue
			}

			subtasks := make([]entities.Subtask, 0, len(docs))
			for _, ds := range docs {
				var doc subtaskDoc
				if err := ds.DataTo(&doc); err != nil {
					s.log.Warn("firestore: decode subtask failed", zap.String("subtask_id", ds.Ref.ID), zap.Error(err))
					continue
				}
				subtasks = append(subtasks, subtaskFromDoc(ds.Ref.ID, &doc))
			}
			onSnapshot(subtasks)
		}
	}()

	return func() { cancel() }
}

func (s *Store) WatchTaskList(ctx context.Context, area string, onSnapshot func([]entities.Task), onError func(error)) ports.CancelFunc {
	wctx, cancel := context.WithCancel(ctx)

	go func() {
		query := s.client.Collection(tasksCollection).Query
		if area != "" {
			query = query.Where("area", "==", area)
		}
		it := query.Snapshots(wctx)
		defer it.Stop()

		for {
			qs, err := it.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled {
					return
				}
				s.log.Warn("firestore: task list watch failed", zap.String("area", area), zap.Error(err))
				onError(err)
				return
			}

			docs, err := qs.Documents.GetAll()
			if err != nil {
				s.log.Warn("firestore: task list snapshot read failed", zap.String("area", area), zap.Error(err))
				onError(err)
				continue
			}

			tasks := make([]entities.Task, 0, len(docs))
			for _, ds := range docs {
				var doc taskDoc
				if err := ds.DataTo(&doc); err != nil {
					s.log.Warn("firestore: decode task failed", zap.String("task_id", ds.Ref.ID), zap.Error(err))
					continue
				}
				tasks = append(tasks, *taskFromDoc(ds.Ref.ID, &doc))
			}
			onSnapshot(tasks)
		}
	}()

	return func() { cancel() }
}

func taskFromDoc(id string, doc *taskDoc) *entities.Task {
	return &entities.Task{
		ID:        id,
		Title:     doc.Title,
		Status:    entities.TaskStatus(doc.Status),
		Priority:  entities.TaskPriority(doc.Priority),
		Area:      doc.Area,
		DueAt:     millis(doc.DueAt),
		Assignees: doc.Assignees,
		UpdatedAt: millis(doc.UpdatedAt),
	}
}

func subtaskFromDoc(id string, doc *subtaskDoc) entities.Subtask {
	return entities.Subtask{
		ID:          id,
		TaskID:      doc.TaskID,
		Title:       doc.Title,
		Description: doc.Description,
		Status:      entities.SubtaskStatus(doc.Status),
		AssignedTo:  doc.AssignedTo,
		CreatedAt:   millis(doc.CreatedAt),
		UpdatedAt:   millis(doc.UpdatedAt),
		CompletedAt: millis(doc.CompletedAt),
	}
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
