package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/talentscope/talentscope/internal/types"
)

// NopStore discards all writes. Used by CLI runs without a database, the way
// the pipeline continues without persistence when no DATABASE_URL is set.
type NopStore struct{}

// UpdateJob implements Store.
func (NopStore) UpdateJob(context.Context, *types.EnrichmentJob) error { return nil }

// SaveCandidate implements Store.
func (NopStore) SaveCandidate(context.Context, string, *types.CandidateRecord, *types.ScoreCard) (uuid.UUID, error) {
	return uuid.New(), nil
}

// InsertActivity implements Store.
func (NopStore) InsertActivity(context.Context, uuid.UUID, string, string) error { return nil }
