// Package types provides type definitions for structured data used throughout the talentscope system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// WorkHistoryEntry represents a single position in a candidate's employment history.
// EndDate may be empty or one of the open-ended sentinels ("present", "current"),
// both of which mean the position is still held.
type WorkHistoryEntry struct {
	Title     string `json:"title"`
	Company   string `json:"company"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`
}

// Current reports whether the entry is an open-ended position.
func (w WorkHistoryEntry) Current() bool {
	switch strings.ToLower(strings.TrimSpace(w.EndDate)) {
	case "", "present", "current":
		return true
	}
	return false
}

// CandidateRecord is the raw candidate produced by the upstream extractor.
// It is immutable once handed to the pipeline; only Name is required.
type CandidateRecord struct {
	Name        string             `json:"name" validate:"required"`
	Email       string             `json:"email,omitempty"`
	Phone       string             `json:"phone,omitempty"`
	Company     string             `json:"company,omitempty"`
	Title       string             `json:"title,omitempty"`
	Location    string             `json:"location,omitempty"`
	ProfileURL  string             `json:"profile_url,omitempty"`
	Skills      []string           `json:"skills,omitempty"`
	WorkHistory []WorkHistoryEntry `json:"work_history,omitempty"`
	SourceFile  string             `json:"source_file,omitempty"`
}
