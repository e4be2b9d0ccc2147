package entities

import "math"

type AssigneeStatus string

const (
	AssigneeStatusNoTasks    AssigneeStatus = "sin-tareas"
	AssigneeStatusNotStarted AssigneeStatus = "no-iniciada"
	AssigneeStatusInProgress AssigneeStatus = "en-progreso"
	AssigneeStatusCompleted  AssigneeStatus = "completada"
)

type AssigneeProgress struct {
	Total      int            `json:"total"`
	Completed  int            `json:"completed"`
	Percentage int            `json:"percentage"`
	Status     AssigneeStatus `json:"status"`
}

type SubtaskStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pendiente"`
	InProcess int `json:"en_proceso"`
	InReview  int `json:"en_revision"`
}

// ProgressSnapshot is derived, never persisted. It is always recomputed in
// full from the current (task, subtasks) pair so that fields that must agree
// (IsComplete vs OverallProgress) cannot drift apart.
type ProgressSnapshot struct {
	TaskID             string                      `json:"task_id"`
	OverallProgress    int                         `json:"overall_progress"`
	ProgressByAssignee map[string]AssigneeProgress `json:"progress_by_assignee"`
	SubtaskStats       SubtaskStats                `json:"subtask_stats"`
	NextPending        *Subtask                    `json:"next_pending,omitempty"`
	LastActivity       *Subtask                    `json:"last_activity,omitempty"`
	IsComplete         bool                        `json:"is_complete"`
}

// ComputeProgress derives the full snapshot from a task and its subtasks.
// Subtasks are expected in ascending creation order, as delivered by the
// subtask stream. A collection with no subtasks yields 0% progress, not NaN.
func ComputeProgress(task *Task, subtasks []Subtask) *ProgressSnapshot {
	snapshot := &ProgressSnapshot{
		TaskID:             task.ID,
		ProgressByAssignee: make(map[string]AssigneeProgress, len(task.Assignees)),
	}

	completed := 0
	for i := range subtasks {
		sub := &subtasks[i]
		snapshot.SubtaskStats.Total++
		switch sub.Status {
		case SubtaskStatusCompleted:
			snapshot.SubtaskStats.Completed++
			completed++
		case SubtaskStatusPending:
			snapshot.SubtaskStats.Pending++
			if snapshot.NextPending == nil {
				snapshot.NextPending = sub
			}
		case SubtaskStatusInProcess:
			snapshot.SubtaskStats.InProcess++
		case SubtaskStatusInReview:
			snapshot.SubtaskStats.InReview++
		}

		last := snapshot.LastActivity
		if last == nil || sub.UpdatedAt > last.UpdatedAt ||
			(sub.UpdatedAt == last.UpdatedAt && sub.ID < last.ID) {
			snapshot.LastActivity = sub
		}
	}

	snapshot.OverallProgress = percentage(completed, len(subtasks))
	snapshot.IsComplete = snapshot.OverallProgress == 100

	for _, assignee := range task.Assignees {
		var total, done int
		for i := range subtasks {
			if subtasks[i].AssignedTo != assignee {
				continue
			}
			total++
			if subtasks[i].IsCompleted() {
				done++
			}
		}
		snapshot.ProgressByAssignee[assignee] = AssigneeProgress{
			Total:      total,
			Completed:  done,
			Percentage: percentage(done, total),
			Status:     assigneeStatus(done, total),
		}
	}

	return snapshot
}

func percentage(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

func assigneeStatus(completed, total int) AssigneeStatus {
	switch {
	case total == 0:
		return AssigneeStatusNoTasks
	case completed == 0:
		return AssigneeStatusNotStarted
	case completed == total:
		return AssigneeStatusCompleted
	default:
		return AssigneeStatusInProgress
	}
}
