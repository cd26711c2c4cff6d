// Package enrich provides the client for the external profile-lookup and
// scoring service. Enrichment lookups never fail: upstream errors degrade to
// a synthesized minimal profile. Scoring calls propagate errors, since a
// score is essential to pipeline correctness.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	retry "github.com/avast/retry-go"
	"github.com/sirupsen/logrus"

	"github.com/talentscope/talentscope/internal/types"
)

// ErrMalformedBatch signals that a batch scoring response was not the
// expected array shape. Callers degrade to sequential single-item scoring
// instead of failing hard.
var ErrMalformedBatch = errors.New("batch scoring response is not array-shaped")

// Identity is the lookup key sent to the profile service.
type Identity struct {
	Name       string `json:"name"`
	Company    string `json:"company,omitempty"`
	Title      string `json:"title,omitempty"`
	ProfileURL string `json:"profile_url,omitempty"`
}

// IdentityFor builds the lookup identity from a raw candidate record.
func IdentityFor(record *types.CandidateRecord) Identity {
	return Identity{
		Name:       record.Name,
		Company:    record.Company,
		Title:      record.Title,
		ProfileURL: record.ProfileURL,
	}
}

// Client is the interface onto the external enrichment/scoring service.
type Client interface {
	// Enrich looks up a candidate profile. It never returns an error; on
	// upstream failure the returned profile is the degraded minimal variant.
	Enrich(ctx context.Context, identity Identity) *types.EnrichedProfile
	// ScoreOne scores a single candidate against the given weights.
	ScoreOne(ctx context.Context, record *types.CandidateRecord, weights types.ScoringWeights) (types.ScoreComponents, error)
	// ScoreBatch scores candidates in one combined call. Returns
	// ErrMalformedBatch when the response shape is unusable.
	ScoreBatch(ctx context.Context, records []*types.CandidateRecord, weights types.ScoringWeights) ([]types.ScoreComponents, error)
}

// HTTPClient talks to the profile service over HTTP with bounded retries.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *logrus.Logger
	attempts   uint
	retryDelay time.Duration
}

// Options configures an HTTPClient.
type Options struct {
	Timeout    time.Duration
	Attempts   uint
	RetryDelay time.Duration
}

// DefaultOptions returns sensible client defaults.
func DefaultOptions() *Options {
	return &Options{
		Timeout:    15 * time.Second,
		Attempts:   3,
		RetryDelay: 250 * time.Millisecond,
	}
}

// NewHTTPClient creates a client for the profile service at baseURL.
func NewHTTPClient(baseURL, apiKey string, log *logrus.Logger, opts *Options) *HTTPClient {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTTPClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: opts.Timeout},
		log:        log,
		attempts:   opts.Attempts,
		retryDelay: opts.RetryDelay,
	}
}

// DegradedProfile synthesizes the minimal profile returned when enrichment
// fails. This is a valid pipeline outcome, not an error state.
func DegradedProfile(identity Identity) *types.EnrichedProfile {
	headline := identity.Title
	if headline == "" {
		headline = "Unknown title"
	}
	return &types.EnrichedProfile{
		Headline:       headline,
		CurrentCompany: identity.Company,
		Skills:         []string{},
		OpenToWork:     false,
		Degraded:       true,
	}
}

// Enrich looks up a candidate profile, degrading on any failure.
func (c *HTTPClient) Enrich(ctx context.Context, identity Identity) *types.EnrichedProfile {
	body, err := c.post(ctx, "/v1/profiles/lookup", map[string]any{"identity": identity})
	if err != nil {
		c.log.WithField("name", identity.Name).WithError(err).Warn("enrichment degraded to minimal profile")
		return DegradedProfile(identity)
	}
	if err := validateProfileShape(body); err != nil {
		c.log.WithField("name", identity.Name).WithError(err).Warn("enrichment response unusable, degrading")
		return DegradedProfile(identity)
	}
	var profile types.EnrichedProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		c.log.WithField("name", identity.Name).WithError(err).Warn("enrichment response unusable, degrading")
		return DegradedProfile(identity)
	}
	if profile.Skills == nil {
		profile.Skills = []string{}
	}
	return &profile
}

// ScoreOne scores a single candidate.
func (c *HTTPClient) ScoreOne(ctx context.Context, record *types.CandidateRecord, weights types.ScoringWeights) (types.ScoreComponents, error) {
	body, err := c.post(ctx, "/v1/scores", map[string]any{
		"candidate": record,
		"weights":   weights,
	})
	if err != nil {
		return types.ScoreComponents{}, fmt.Errorf("scoring request failed: %w", err)
	}
	var components types.ScoreComponents
	if err := json.Unmarshal(body, &components); err != nil {
		return types.ScoreComponents{}, fmt.Errorf("failed to parse scoring response: %w", err)
	}
	return components.Clamped(), nil
}

// ScoreBatch scores N candidates in one combined call. A response that is
// not array-shaped, or whose length does not cover the request, yields
// ErrMalformedBatch so the caller can fall back to per-item scoring.
func (c *HTTPClient) ScoreBatch(ctx context.Context, records []*types.CandidateRecord, weights types.ScoringWeights) ([]types.ScoreComponents, error) {
	body, err := c.post(ctx, "/v1/scores/batch", map[string]any{
		"candidates": records,
		"weights":    weights,
	})
	if err != nil {
		return nil, fmt.Errorf("batch scoring request failed: %w", err)
	}
	if err := validateBatchShape(body); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedBatch, err)
	}
	var components []types.ScoreComponents
	if err := json.Unmarshal(body, &components); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedBatch, err)
	}
	if len(components) < len(records) {
		return nil, fmt.Errorf("%w: got %d entries for %d candidates", ErrMalformedBatch, len(components), len(records))
	}
	for i := range components {
		components[i] = components[i].Clamped()
	}
	return components[:len(records)], nil
}

// post sends a JSON request with bounded retries and returns the raw body.
func (c *HTTPClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var respBody []byte
	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")
			if c.apiKey != "" {
				req.Header.Set("Authorization", "Bearer "+c.apiKey)
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if resp.StatusCode >= 500 {
				return fmt.Errorf("upstream returned %d", resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("upstream returned %d", resp.StatusCode))
			}
			respBody = body
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return respBody, nil
}
