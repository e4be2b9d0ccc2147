package entities

type SubtaskStatus string

const (
	SubtaskStatusPending   SubtaskStatus = "pendiente"
	SubtaskStatusInProcess SubtaskStatus = "en_proceso"
	SubtaskStatusInReview  SubtaskStatus = "en_revision"
	SubtaskStatusCompleted SubtaskStatus = "completada"
)

// Subtask belongs to exactly one Task. CompletedAt is zero until the subtask
// reaches SubtaskStatusCompleted and non-zero from then on.
type Subtask struct {
	ID          string        `json:"id"`
	TaskID      string        `json:"task_id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Status      SubtaskStatus `json:"status"`
	AssignedTo  string        `json:"assigned_to,omitempty"`
	CreatedAt   int64         `json:"created_at"`
	UpdatedAt   int64         `json:"updated_at"`
	CompletedAt int64         `json:"completed_at,omitempty"`
}

func (s *Subtask) IsCompleted() bool {
	return s.Status == SubtaskStatusCompleted
}
