// Package alerting aggregates operational signals from the rental domain
// into a single classified, deduplicated, ranked alert feed.
package alerting

import (
	"fmt"
	"time"
)

// Category identifies the operational domain an alert came from.
type Category string

const (
	CategoryVehicle       Category = "vehicle"
	CategoryFuel          Category = "fuel"
	CategoryMaintenance   Category = "maintenance"
	CategoryRental        Category = "rental"
	CategoryPriceApproval Category = "price_approval"
)

// Categories lists every known category in a fixed order.
func Categories() []Category {
	return []Category{
		CategoryVehicle,
		CategoryFuel,
		CategoryMaintenance,
		CategoryRental,
		CategoryPriceApproval,
	}
}

// Severity reflects how wrong the underlying situation is.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// severityRank orders severities for deduplication; higher wins.
var severityRank = map[Severity]int{
	SeverityInfo:    0,
	SeverityWarning: 1,
	SeverityError:   2,
}

// Priority reflects how urgently the situation must be acted on.
// It is a distinct axis from severity.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// priorityRank orders priorities for sorting; higher sorts first.
var priorityRank = map[Priority]int{
	PriorityLow:    0,
	PriorityMedium: 1,
	PriorityHigh:   2,
}

// Alert is the canonical unit surfaced to consumers.
type Alert struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Category  Category       `json:"category"`
	Severity  Severity       `json:"severity"`
	Priority  Priority       `json:"priority"`
	Source    string         `json:"source"` // adapter that produced it
	CreatedAt time.Time      `json:"created_at"`
	Read      bool           `json:"read"`
	Dismissed bool           `json:"dismissed"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// AlertID derives the stable identity of an alert from its category and
// the underlying record, so re-aggregation keeps the same ID for the same
// condition. The window state (due-soon vs overdue) is deliberately not
// part of the identity: an escalating condition keeps its flags.
func AlertID(category Category, recordID uint) string {
	return fmt.Sprintf("%s:%d", category, recordID)
}

// displayNames maps each category to its human-readable label.
var displayNames = map[Category]string{
	CategoryVehicle:       "Fleet",
	CategoryFuel:          "Fuel",
	CategoryMaintenance:   "Maintenance",
	CategoryRental:        "Rentals",
	CategoryPriceApproval: "Price Approvals",
}

// DisplayName returns the label for a known category and an error for an
// unknown one. Callers validate at startup instead of silently falling
// back to the raw string.
func DisplayName(category Category) (string, error) {
	name, ok := displayNames[category]
	if !ok {
		return "", fmt.Errorf("no display name registered for category %q", category)
	}
	return name, nil
}

// ValidateDisplayNames checks that every category has a label. Called
// during startup so a missing mapping fails fast.
func ValidateDisplayNames() error {
	for _, c := range Categories() {
		if _, err := DisplayName(c); err != nil {
			return err
		}
	}
	return nil
}

// ParseCategory validates a category string from a filter or API query.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := displayNames[c]; !ok {
		return "", fmt.Errorf("unknown alert category %q", s)
	}
	return c, nil
}

// ParsePriority validates a priority string from a filter or API query.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if _, ok := priorityRank[p]; !ok {
		return "", fmt.Errorf("unknown alert priority %q", s)
	}
	return p, nil
}
