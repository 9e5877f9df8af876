package domain

import "time"

// SemanticRole tags a status with lifecycle meaning so behavior never keys
// off user-editable display names.
type SemanticRole string

const (
	RoleNone     SemanticRole = "none"
	RoleResolved SemanticRole = "resolved"
	RoleClosed   SemanticRole = "closed"
)

// Category classifies tickets by subject area.
type Category struct {
	ID          string
	Name        string
	Description string
	Color       string
	CreatedAt   time.Time
}

// Priority ranks ticket urgency. Level orders severities: 1=Low .. 4=Critical.
type Priority struct {
	ID        string
	Name      string
	Level     int
	Color     string
	CreatedAt time.Time
}

// Status is one stop in the ticket workflow. IsClosed marks terminal states.
type Status struct {
	ID           string
	Name         string
	SortOrder    int
	Color        string
	IsClosed     bool
	SemanticRole SemanticRole
	CreatedAt    time.Time
}
