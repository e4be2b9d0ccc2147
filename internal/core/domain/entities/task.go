package entities

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusInReview   TaskStatus = "in_review"
	TaskStatusClosed     TaskStatus = "closed"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "baja"
	TaskPriorityMedium TaskPriority = "media"
	TaskPriorityHigh   TaskPriority = "alta"
)

// Task is owned by the store; this core only observes it. All instants are
// milliseconds since epoch, normalized at the store boundary (0 = unset).
type Task struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Status    TaskStatus   `json:"status"`
	Priority  TaskPriority `json:"priority"`
	Area      string       `json:"area"`
	DueAt     int64        `json:"due_at,omitempty"`
	Assignees []string     `json:"assignees"`
	UpdatedAt int64        `json:"updated_at,omitempty"`
}
