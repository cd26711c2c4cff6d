package scheduler

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/talentscope/talentscope/internal/types"
)

// identityKey computes the normalized cache digest for one candidate under a
// given weight set: lowercase name, email and company, sorted lowercase
// skills, and the four weights at 2-decimal precision.
//
// The key deliberately carries no tenant identifier, matching the behavior
// of the original service; see DESIGN.md for the open question around
// cross-tenant cache collisions.
func identityKey(kind RequestType, record *types.CandidateRecord, weights types.ScoringWeights) string {
	skills := make([]string, 0, len(record.Skills))
	for _, s := range record.Skills {
		skills = append(skills, strings.ToLower(strings.TrimSpace(s)))
	}
	sort.Strings(skills)

	var sb strings.Builder
	sb.WriteString(strings.ToLower(strings.TrimSpace(record.Name)))
	sb.WriteByte('|')
	sb.WriteString(strings.ToLower(strings.TrimSpace(record.Email)))
	sb.WriteByte('|')
	sb.WriteString(strings.ToLower(strings.TrimSpace(record.Company)))
	sb.WriteByte('|')
	sb.WriteString(strings.Join(skills, ","))
	sb.WriteByte('|')
	fmt.Fprintf(&sb, "%.2f:%.2f:%.2f:%.2f",
		weights.OpenToWork, weights.SkillMatch, weights.JobStability, weights.PlatformEngagement)

	sum := sha256.Sum256([]byte(sb.String()))
	return string(kind) + ":" + hex.EncodeToString(sum[:])
}

// batchKey digests the per-item keys of a combined request so a repeated
// batch within the TTL window is answered from cache as a whole.
func batchKey(records []*types.CandidateRecord, weights types.ScoringWeights) string {
	parts := make([]string, 0, len(records))
	for _, r := range records {
		parts = append(parts, identityKey(TypeScore, r, weights))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return "batch:" + hex.EncodeToString(sum[:])
}
