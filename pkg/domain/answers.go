package domain

import "maps"

// Answers maps question names to their final values.
type Answers map[string]any

// Clone returns a shallow copy of the answers.
func (a Answers) Clone() Answers {
	if a == nil {
		return Answers{}
	}
	return maps.Clone(a)
}

// Status is the terminal state of a traversal.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Result is the outcome of a traversal that did not fail.
// Answers is nil when the traversal was cancelled.
type Result struct {
	Status  Status  `json:"status"`
	Answers Answers `json:"answers,omitempty"`
}

// Cancelled reports whether the user cancelled the traversal.
func (r Result) Cancelled() bool {
	return r.Status == StatusCancelled
}
