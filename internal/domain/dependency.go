package domain

import "time"

// Dependency links a successor task to the predecessor it waits on.
// Edges are unique per (TaskID, PredecessorTaskID) and never self-referential.
type Dependency struct {
	ID                string
	TaskID            string
	PredecessorTaskID string
	Type              DependencyType
	CreatedAt         time.Time
}
