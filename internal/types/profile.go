package types

import "time"

// EnrichedProfile is the result of looking a candidate up against the external
// profile service. A degraded profile (Degraded=true) is a valid outcome, not
// an error state: it is synthesized locally when the upstream call fails.
type EnrichedProfile struct {
	Headline       string     `json:"headline"`
	CurrentCompany string     `json:"current_company"`
	Skills         []string   `json:"skills"`
	OpenToWork     bool       `json:"open_to_work"`
	LastActivity   *time.Time `json:"last_activity,omitempty"`
	RecentSignals  []string   `json:"recent_signals,omitempty"`
	Degraded       bool       `json:"degraded,omitempty"`
}
