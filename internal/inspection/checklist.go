package inspection

import (
	"strings"

	"github.com/roomcheck/roomcheck/internal/fault"
)

type ChecklistStatus string

const (
	StatusUnverified ChecklistStatus = "unverified"
	StatusVerified   ChecklistStatus = "verified"
	StatusDeclined   ChecklistStatus = "declined"
)

// ChecklistItem is a named assertion to be confirmed or refuted against a
// submitted video. Status is the only mutable field.
type ChecklistItem struct {
	Title       string          `json:"title" yaml:"title"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Status      ChecklistStatus `json:"status" yaml:"status"`
}

// WorkflowState is the verification screen's aggregate state after a round.
type WorkflowState string

const (
	WorkflowSuccess WorkflowState = "success"
	WorkflowUpdate  WorkflowState = "update"
)

func (s ChecklistStatus) Valid() bool {
	return s == StatusUnverified || s == StatusVerified || s == StatusDeclined
}

// ValidateChecklist rejects empty lists, blank titles and duplicate titles
// before a verification round is submitted.
func ValidateChecklist(items []ChecklistItem) error {
	if len(items) == 0 {
		return fault.Validationf("checklist is empty")
	}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			return fault.Validationf("checklist item has an empty title")
		}
		if seen[title] {
			return fault.Validationf("duplicate checklist item %q", title)
		}
		seen[title] = true
	}
	return nil
}

// ResetStatuses returns a copy of items with every status set back to
// unverified, the required state before each verification round.
func ResetStatuses(items []ChecklistItem) []ChecklistItem {
	reset := make([]ChecklistItem, len(items))
	for i, item := range items {
		item.Status = StatusUnverified
		reset[i] = item
	}
	return reset
}

// AllVerified is the terminal success predicate for a verification round.
func AllVerified(items []ChecklistItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if item.Status != StatusVerified {
			return false
		}
	}
	return true
}

// StateFor maps a verified checklist to the success state; anything else
// keeps the workflow in the update state so the user re-records and resubmits.
func StateFor(items []ChecklistItem) WorkflowState {
	if AllVerified(items) {
		return WorkflowSuccess
	}
	return WorkflowUpdate
}

// CycleStatus advances a manually tapped item: unverified -> verified ->
// declined -> unverified.
func CycleStatus(s ChecklistStatus) ChecklistStatus {
	switch s {
	case StatusUnverified:
		return StatusVerified
	case StatusVerified:
		return StatusDeclined
	default:
		return StatusUnverified
	}
}

// MergeStatuses copies AI-returned statuses onto the caller's checklist,
// matched by title. Titles and descriptions stay authoritative from the
// caller; unknown titles in results are ignored (the AI client already
// rejects invented items).
func MergeStatuses(items, results []ChecklistItem) []ChecklistItem {
	byTitle := make(map[string]ChecklistStatus, len(results))
	for _, r := range results {
		byTitle[strings.TrimSpace(r.Title)] = r.Status
	}
	merged := make([]ChecklistItem, len(items))
	for i, item := range items {
		if status, ok := byTitle[strings.TrimSpace(item.Title)]; ok && status.Valid() {
			item.Status = status
		} else {
			item.Status = StatusUnverified
		}
		merged[i] = item
	}
	return merged
}
