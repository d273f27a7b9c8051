package domain

import "strings"

type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectOnHold   ProjectStatus = "on_hold"
	ProjectDone     ProjectStatus = "done"
	ProjectArchived ProjectStatus = "archived"
)

var ValidProjectStatuses = map[string]bool{
	"active": true, "on_hold": true, "done": true, "archived": true,
}

type TaskStatus string

const (
	TaskPlanned    TaskStatus = "planned"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
	TaskBlocked    TaskStatus = "blocked"
	TaskOnHold     TaskStatus = "on_hold"
)

// ValidTaskStatuses is the canonical set of accepted task status strings.
var ValidTaskStatuses = map[string]bool{
	"planned": true, "in_progress": true, "done": true,
	"blocked": true, "on_hold": true,
}

// ParseTaskStatus matches s case-insensitively against the task status set.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	lower := strings.ToLower(strings.TrimSpace(s))
	if !ValidTaskStatuses[lower] {
		return "", false
	}
	return TaskStatus(lower), true
}

type DependencyType string

const (
	FinishToStart  DependencyType = "FS"
	StartToStart   DependencyType = "SS"
	FinishToFinish DependencyType = "FF"
	StartToFinish  DependencyType = "SF"
)

// DefaultDependencyType applies when a row or request carries no type.
const DefaultDependencyType = FinishToStart

// ValidDependencyTypes is the canonical set of accepted dependency type tokens.
var ValidDependencyTypes = map[string]bool{"FS": true, "SS": true, "FF": true, "SF": true}

// ParseDependencyType matches s case-insensitively. Empty input yields FS.
func ParseDependencyType(s string) (DependencyType, bool) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	if upper == "" {
		return DefaultDependencyType, true
	}
	if !ValidDependencyTypes[upper] {
		return "", false
	}
	return DependencyType(upper), true
}

// ParseBoolToken accepts true/false, 1/0 and yes/no in any case.
func ParseBoolToken(s string) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}
