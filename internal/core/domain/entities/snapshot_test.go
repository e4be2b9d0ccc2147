package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeProgress_MixedStatuses(t *testing.T) {
	task := &Task{ID: "t1"}
	subtasks := []Subtask{
		{ID: "s1", TaskID: "t1", Status: SubtaskStatusPending, CreatedAt: 1000, UpdatedAt: 1000},
		{ID: "s2", TaskID: "t1", Status: SubtaskStatusCompleted, CreatedAt: 2000, UpdatedAt: 3000, CompletedAt: 3000},
	}

	snap := ComputeProgress(task, subtasks)

	assert.Equal(t, 50, snap.OverallProgress)
	assert.False(t, snap.IsComplete)
	assert.Equal(t, SubtaskStats{Total: 2, Completed: 1, Pending: 1}, snap.SubtaskStats)
	require.NotNil(t, snap.NextPending)
	assert.Equal(t, "s1", snap.NextPending.ID)
	require.NotNil(t, snap.LastActivity)
	assert.Equal(t, "s2", snap.LastActivity.ID)
}

func TestComputeProgress_NoSubtasks(t *testing.T) {
	snap := ComputeProgress(&Task{ID: "t1"}, nil)

	assert.Equal(t, 0, snap.OverallProgress)
	assert.False(t, snap.IsComplete)
	assert.Nil(t, snap.NextPending)
	assert.Nil(t, snap.LastActivity)
	assert.Equal(t, SubtaskStats{}, snap.SubtaskStats)
}

func TestComputeProgress_ByAssignee(t *testing.T) {
	task := &Task{ID: "t1", Assignees: []string{"a@x.com", "b@x.com"}}
	subtasks := []Subtask{
		{ID: "s1", AssignedTo: "a@x.com", Status: SubtaskStatusCompleted, CompletedAt: 1},
		{ID: "s2", AssignedTo: "a@x.com", Status: SubtaskStatusCompleted, CompletedAt: 2},
		{ID: "s3", AssignedTo: "a@x.com", Status: SubtaskStatusCompleted, CompletedAt: 3},
	}

	snap := ComputeProgress(task, subtasks)

	require.Len(t, snap.ProgressByAssignee, 2)
	assert.Equal(t, AssigneeProgress{
		Total: 3, Completed: 3, Percentage: 100, Status: AssigneeStatusCompleted,
	}, snap.ProgressByAssignee["a@x.com"])
	assert.Equal(t, AssigneeProgress{
		Status: AssigneeStatusNoTasks,
	}, snap.ProgressByAssignee["b@x.com"])

	assert.Equal(t, 100, snap.OverallProgress)
	assert.True(t, snap.IsComplete)
}

func TestComputeProgress_AssigneeStatusLabels(t *testing.T) {
	task := &Task{ID: "t1", Assignees: []string{"started", "untouched"}}
	subtasks := []Subtask{
		{ID: "s1", AssignedTo: "started", Status: SubtaskStatusCompleted},
		{ID: "s2", AssignedTo: "started", Status: SubtaskStatusInProcess},
		{ID: "s3", AssignedTo: "untouched", Status: SubtaskStatusPending},
	}

	snap := ComputeProgress(task, subtasks)

	assert.Equal(t, AssigneeStatusInProgress, snap.ProgressByAssignee["started"].Status)
	assert.Equal(t, 50, snap.ProgressByAssignee["started"].Percentage)
	assert.Equal(t, AssigneeStatusNotStarted, snap.ProgressByAssignee["untouched"].Status)
}

func TestComputeProgress_RoundsToNearestInteger(t *testing.T) {
	task := &Task{ID: "t1"}
	subtasks := []Subtask{
		{ID: "s1", Status: SubtaskStatusCompleted},
		{ID: "s2", Status: SubtaskStatusPending},
		{ID: "s3", Status: SubtaskStatusPending},
	}

	snap := ComputeProgress(task, subtasks)

	// 100/3 rounds to 33, never a truncated float artifact.
	assert.Equal(t, 33, snap.OverallProgress)

	subtasks[1].Status = SubtaskStatusCompleted
	snap = ComputeProgress(task, subtasks)
	assert.Equal(t, 67, snap.OverallProgress)
}

func TestComputeProgress_NextPendingFollowsCreationOrder(t *testing.T) {
	task := &Task{ID: "t1"}
	subtasks := []Subtask{
		{ID: "s1", Status: SubtaskStatusCompleted, CreatedAt: 1},
		{ID: "s2", Status: SubtaskStatusPending, CreatedAt: 2},
		{ID: "s3", Status: SubtaskStatusPending, CreatedAt: 3},
	}

	snap := ComputeProgress(task, subtasks)

	require.NotNil(t, snap.NextPending)
	assert.Equal(t, "s2", snap.NextPending.ID)
}

func TestComputeProgress_LastActivityTieBreaksByID(t *testing.T) {
	task := &Task{ID: "t1"}
	subtasks := []Subtask{
		{ID: "s2", Status: SubtaskStatusInProcess, UpdatedAt: 5000},
		{ID: "s1", Status: SubtaskStatusInProcess, UpdatedAt: 5000},
	}

	snap := ComputeProgress(task, subtasks)

	require.NotNil(t, snap.LastActivity)
	assert.Equal(t, "s1", snap.LastActivity.ID)
}

func TestHides(t *testing.T) {
	shadow := NewDeletionShadow()
	assert.False(t, shadow.Hides("t1"))

	shadow.Deleting["t1"] = struct{}{}
	assert.True(t, shadow.Hides("t1"))

	delete(shadow.Deleting, "t1")
	shadow.Permanent["t1"] = struct{}{}
	assert.True(t, shadow.Hides("t1"))
}
