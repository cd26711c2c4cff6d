// Package stability scores the steadiness of a candidate's employment history.
package stability

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/talentscope/talentscope/internal/types"
)

// Component weights for the final stability score (0-100 scale inputs).
const (
	avgTenureWeight     = 0.30
	longestTenureWeight = 0.20
	jobChangesWeight    = 0.25
	gapWeight           = 0.15
	continuityWeight    = 0.10
)

// minSignificantGapMonths is the threshold below which an employment gap is ignored.
const minSignificantGapMonths = 2

// Breakdown exposes the intermediate signals behind a stability score.
type Breakdown struct {
	AvgTenureMonths     float64 `json:"avg_tenure_months"`
	LongestTenureMonths float64 `json:"longest_tenure_months"`
	JobChangesLast5y    int     `json:"job_changes_last_5y"`
	LargestGapMonths    float64 `json:"largest_gap_months"`
	ContinuityScore     float64 `json:"continuity_score"`
	Score               float64 `json:"score"`
}

type parsedEntry struct {
	title string
	start time.Time
	end   time.Time
}

// Score computes the 0-10 job stability score for an employment history.
// The result is independent of the input ordering; an empty (or entirely
// unparseable) history scores 0.
func Score(history []types.WorkHistoryEntry) float64 {
	return Analyze(history).Score
}

// Analyze computes the stability score along with its intermediate signals.
func Analyze(history []types.WorkHistoryEntry) Breakdown {
	now := time.Now()
	entries := parseEntries(history, now)
	if len(entries) == 0 {
		return Breakdown{}
	}

	// Sort by start ascending so gap detection does not depend on input order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].start.Before(entries[j].start)
	})

	b := Breakdown{
		AvgTenureMonths:     avgRecentTenure(entries),
		LongestTenureMonths: longestTenure(entries),
		JobChangesLast5y:    jobChangesLast5Years(entries, now),
		LargestGapMonths:    largestGap(entries),
		ContinuityScore:     continuityScore(entries),
	}

	weighted := avgTenureWeight*avgTenureSubScore(b.AvgTenureMonths) +
		longestTenureWeight*longestTenureSubScore(b.LongestTenureMonths) +
		jobChangesWeight*jobChangesSubScore(b.JobChangesLast5y) +
		gapWeight*gapSubScore(b.LargestGapMonths) +
		continuityWeight*b.ContinuityScore

	b.Score = round2(weighted / 10)
	return b
}

// parseEntries drops entries whose start date cannot be parsed. Open-ended
// entries ("present"/"current"/empty end) are treated as running until now.
func parseEntries(history []types.WorkHistoryEntry, now time.Time) []parsedEntry {
	entries := make([]parsedEntry, 0, len(history))
	for _, h := range history {
		start, ok := parseDate(h.StartDate, now)
		if !ok {
			continue
		}
		var end time.Time
		if h.Current() {
			end = now
		} else if parsed, ok := parseDate(h.EndDate, now); ok {
			end = parsed
		} else {
			end = now
		}
		if end.Before(start) {
			end = start
		}
		entries = append(entries, parsedEntry{title: h.Title, start: start, end: end})
	}
	return entries
}

// parseDate accepts "2006-01", "2006-01-02" and bare year forms.
func parseDate(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	switch strings.ToLower(s) {
	case "present", "current", "now":
		return now, true
	}
	for _, layout := range []string{"2006-01-02", "2006-01", "2006", "Jan 2006", "January 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func monthsBetween(a, b time.Time) float64 {
	if b.Before(a) {
		return 0
	}
	return b.Sub(a).Hours() / 24 / 30.44
}

// avgRecentTenure averages the tenure of the two most recent entries by start date.
func avgRecentTenure(sorted []parsedEntry) float64 {
	recent := sorted
	if len(recent) > 2 {
		recent = recent[len(recent)-2:]
	}
	total := 0.0
	for _, e := range recent {
		total += monthsBetween(e.start, e.end)
	}
	return total / float64(len(recent))
}

func longestTenure(sorted []parsedEntry) float64 {
	longest := 0.0
	for _, e := range sorted {
		if t := monthsBetween(e.start, e.end); t > longest {
			longest = t
		}
	}
	return longest
}

func jobChangesLast5Years(sorted []parsedEntry, now time.Time) int {
	cutoff := now.AddDate(-5, 0, 0)
	count := 0
	for _, e := range sorted {
		if !e.start.Before(cutoff) {
			count++
		}
	}
	if count <= 1 {
		return 0
	}
	return count - 1
}

// largestGap returns the largest inter-entry gap in months, ignoring gaps of
// two months or less.
func largestGap(sorted []parsedEntry) float64 {
	largest := 0.0
	for i := 1; i < len(sorted); i++ {
		gap := monthsBetween(sorted[i-1].end, sorted[i].start)
		if gap > minSignificantGapMonths && gap > largest {
			largest = gap
		}
	}
	return largest
}

// Career track keywords used to judge title continuity.
var trackKeywords = map[string][]string{
	"technical":  {"engineer", "developer", "programmer", "architect", "devops", "sre", "software", "data", "scientist", "analyst", "qa"},
	"management": {"manager", "lead", "head", "director", "vp", "chief", "principal"},
	"design":     {"design", "designer", "ux", "ui", "creative"},
	"sales":      {"sales", "account", "business", "marketing", "growth", "partnership"},
}

// continuityScore buckets titles into career tracks and scores how much of
// the history the best-matching track covers.
func continuityScore(entries []parsedEntry) float64 {
	counts := make(map[string]int, len(trackKeywords))
	for _, e := range entries {
		title := strings.ToLower(e.title)
		for track, keywords := range trackKeywords {
			for _, kw := range keywords {
				if strings.Contains(title, kw) {
					counts[track]++
					break
				}
			}
		}
	}

	best := 0
	for _, c := range counts {
		if c > best {
			best = c
		}
	}
	coverage := float64(best) / float64(len(entries))
	switch {
	case coverage >= 0.7:
		return 100
	case coverage >= 0.5:
		return 70
	case coverage >= 0.3:
		return 40
	default:
		return 20
	}
}

func avgTenureSubScore(months float64) float64 {
	switch {
	case months >= 24:
		return 100
	case months >= 18:
		return 75
	case months >= 12:
		return 50
	case months >= 6:
		return 25
	default:
		return 0
	}
}

func longestTenureSubScore(months float64) float64 {
	switch {
	case months >= 60:
		return 100
	case months >= 36:
		return 80
	case months >= 24:
		return 60
	case months >= 12:
		return 40
	default:
		return 20
	}
}

func jobChangesSubScore(changes int) float64 {
	switch {
	case changes <= 1:
		return 100
	case changes == 2:
		return 80
	case changes == 3:
		return 60
	case changes == 4:
		return 40
	default:
		return 20
	}
}

func gapSubScore(months float64) float64 {
	switch {
	case months == 0:
		return 100
	case months <= 6:
		return 70
	case months <= 12:
		return 40
	default:
		return 20
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
