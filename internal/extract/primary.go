package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/talentscope/talentscope/internal/types"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// PrimaryExtractor parses structured JSON resume exports. This is the
// model-based path: the uploaded file already carries typed fields.
type PrimaryExtractor struct{}

// Name implements Extractor.
func (*PrimaryExtractor) Name() string { return "primary" }

// Extract implements Extractor.
func (*PrimaryExtractor) Extract(_ context.Context, up Upload) (*types.CandidateRecord, error) {
	ext := strings.ToLower(filepath.Ext(up.Filename))
	if ext != ".json" && !json.Valid(up.Data) {
		return nil, fmt.Errorf("not a structured resume")
	}

	var record types.CandidateRecord
	if err := json.Unmarshal(up.Data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse structured resume: %w", err)
	}
	if err := validate.Struct(&record); err != nil {
		return nil, fmt.Errorf("structured resume is missing required fields: %w", err)
	}
	return &record, nil
}
