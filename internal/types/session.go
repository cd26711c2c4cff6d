package types

// CandidateSummary is the per-candidate payload broadcast when a file in an
// upload session finishes processing.
type CandidateSummary struct {
	Name     string       `json:"name"`
	File     string       `json:"file,omitempty"`
	Score    float64      `json:"score"`
	Priority PriorityTier `json:"priority"`
}

// UploadError records a file that failed during a session.
type UploadError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// EnrichmentSession tracks a multi-file batch upload. Sessions are held in
// memory by the broadcaster and garbage-collected a fixed delay after
// completion.
type EnrichmentSession struct {
	SessionID      string             `json:"session_id"`
	TenantID       string             `json:"tenant_id"`
	TotalFiles     int                `json:"total_files"`
	CompletedFiles int                `json:"completed_files"`
	Candidates     []CandidateSummary `json:"candidates"`
	Errors         []UploadError      `json:"errors"`
}

// Percent returns session completion as 0-100.
func (s *EnrichmentSession) Percent() int {
	if s.TotalFiles <= 0 {
		return 0
	}
	p := s.CompletedFiles * 100 / s.TotalFiles
	if p > 100 {
		p = 100
	}
	return p
}
