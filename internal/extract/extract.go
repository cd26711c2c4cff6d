// Package extract turns uploaded resume files into raw candidate records.
// Extraction strategies form an explicit fallback chain: the primary
// structured extractor is tried first, then the pattern-based fallback.
package extract

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/talentscope/talentscope/internal/types"
)

// Upload is one file handed to the extractor chain.
type Upload struct {
	Filename string
	Data     []byte
}

// Extractor produces a candidate record from an uploaded file.
type Extractor interface {
	// Name identifies the strategy in logs and activities.
	Name() string
	// Extract parses the upload. Implementations return an error when the
	// file is not in a shape they understand, letting the chain move on.
	Extract(ctx context.Context, up Upload) (*types.CandidateRecord, error)
}

// Chain tries extractors in order and returns the first successful record.
type Chain struct {
	extractors []Extractor
	log        *logrus.Logger
}

// NewChain builds the standard chain: structured JSON first, then the
// pattern-based text fallback.
func NewChain(log *logrus.Logger) *Chain {
	return &Chain{
		extractors: []Extractor{
			&PrimaryExtractor{},
			&FallbackExtractor{},
		},
		log: log,
	}
}

// Extract runs the chain. Every strategy failing yields an error carrying
// the last cause.
func (c *Chain) Extract(ctx context.Context, up Upload) (*types.CandidateRecord, error) {
	var lastErr error
	for _, ex := range c.extractors {
		record, err := ex.Extract(ctx, up)
		if err == nil {
			if record.Name == "" {
				lastErr = fmt.Errorf("%s: extracted record has no name", ex.Name())
				continue
			}
			record.SourceFile = up.Filename
			c.log.WithFields(logrus.Fields{
				"file":      up.Filename,
				"extractor": ex.Name(),
			}).Debug("extracted candidate record")
			return record, nil
		}
		lastErr = fmt.Errorf("%s: %w", ex.Name(), err)
	}
	return nil, fmt.Errorf("no extractor could parse %s: %w", up.Filename, lastErr)
}
