package entities

// DeletionShadow suppresses tasks the client has asked to delete from every
// surfaced list, regardless of what the live subscription still reports.
// Deleting holds in-flight deletes and lives only for the current process;
// Permanent survives restarts through the deletion archive.
type DeletionShadow struct {
	Deleting  map[string]struct{}
	Permanent map[string]struct{}
}

func NewDeletionShadow() *DeletionShadow {
	return &DeletionShadow{
		Deleting:  make(map[string]struct{}),
		Permanent: make(map[string]struct{}),
	}
}

// Hides reports whether the task identifier must be withheld from the UI.
func (d *DeletionShadow) Hides(taskID string) bool {
	if _, ok := d.Deleting[taskID]; ok {
		return true
	}
	_, ok := d.Permanent[taskID]
	return ok
}
