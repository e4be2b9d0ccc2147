package entities

// BoardState is the combined view handed to feed consumers: the reconciled
// visible task list plus the latest progress snapshot per visible task.
type BoardState struct {
	Tasks    []Task                       `json:"tasks"`
	Progress map[string]*ProgressSnapshot `json:"progress"`
}
