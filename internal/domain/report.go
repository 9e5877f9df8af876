package domain

import "time"

// DateRange bounds a report by created_at, inclusive on both ends. A nil
// bound imposes no constraint.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// ReportMetrics is the aggregation output for a ticket snapshot.
type ReportMetrics struct {
	Total          int            `json:"total"`
	ByStatus       map[string]int `json:"by_status"`
	ByCategory     map[string]int `json:"by_category"`
	ByPriority     map[string]int `json:"by_priority"`
	ResolvedCount  int            `json:"resolved_count"`
	ClosedCount    int            `json:"closed_count"`
	ResolutionRate float64        `json:"resolution_rate"`
	ClosureRate    float64        `json:"closure_rate"`

	// AvgResolutionHours is nil when no ticket in the snapshot has been
	// resolved; zero would read as instantaneous resolution.
	AvgResolutionHours *int `json:"avg_resolution_hours"`
}
