// Package scheduler serializes calls to the rate-limited external
// enrichment/scoring service. It maintains a FIFO queue drained by a worker
// loop that keeps at most MaxConcurrent upstream calls in flight, inserts a
// fixed pacing delay between dequeues, and answers repeated requests from a
// TTL response cache keyed by a normalized identity digest.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/talentscope/talentscope/internal/enrich"
	"github.com/talentscope/talentscope/internal/observability"
	"github.com/talentscope/talentscope/internal/types"
)

// RequestType selects the upstream operation.
type RequestType string

// Supported request types.
const (
	TypeEnrich RequestType = "enrich"
	TypeScore  RequestType = "score"
)

// ErrSchedulerClosed is returned by Submit after Close.
var ErrSchedulerClosed = errors.New("scheduler is closed")

// ErrInvalidRequest is returned for requests missing required fields.
var ErrInvalidRequest = errors.New("invalid scheduler request")

// Request describes one unit of upstream work. Enrichment and single-item
// scoring use Record; batch scoring uses Records.
type Request struct {
	Type    RequestType
	Record  *types.CandidateRecord
	Records []*types.CandidateRecord
	Weights types.ScoringWeights
}

// Response carries the upstream result. Profile is set for enrichment
// requests, Components for scoring requests (one entry per candidate).
type Response struct {
	Profile    *types.EnrichedProfile
	Components []types.ScoreComponents
	FromCache  bool
}

// Options configures a Scheduler.
type Options struct {
	MaxConcurrent int
	PacingDelay   time.Duration
	CacheTTL      time.Duration
	QueueSize     int
}

// DefaultOptions mirrors the original service defaults: 3 concurrent
// upstream calls, 100ms pacing, 5 minute cache TTL.
func DefaultOptions() *Options {
	return &Options{
		MaxConcurrent: 3,
		PacingDelay:   100 * time.Millisecond,
		CacheTTL:      5 * time.Minute,
		QueueSize:     256,
	}
}

type task struct {
	req  Request
	done chan result
}

type result struct {
	resp Response
	err  error
}

// Scheduler is the rate-limited, cache-aware front onto the external service.
// Construct one with New and inject it; there is no ambient global instance.
type Scheduler struct {
	client  enrich.Client
	cache   *gocache.Cache
	queue   chan *task
	slots   chan struct{}
	pace    time.Duration
	log     *logrus.Logger
	metrics *observability.Metrics

	active atomic.Int64

	mu     sync.Mutex
	closed bool
}

// New creates a scheduler and starts its dispatch loop.
func New(client enrich.Client, log *logrus.Logger, metrics *observability.Metrics, opts *Options) *Scheduler {
	if opts == nil {
		opts = DefaultOptions()
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	s := &Scheduler{
		client: client,
		// No janitor: expiry is checked lazily on read, entries are never
		// actively evicted early.
		cache:   gocache.New(opts.CacheTTL, 0),
		queue:   make(chan *task, opts.QueueSize),
		slots:   make(chan struct{}, opts.MaxConcurrent),
		pace:    opts.PacingDelay,
		log:     log,
		metrics: metrics,
	}
	go s.dispatch()
	return s
}

// Submit enqueues a request and blocks until its response is available, the
// context is canceled, or the scheduler is closed. A live cache entry is
// returned immediately, bypassing the queue and the active-request counter.
func (s *Scheduler) Submit(ctx context.Context, req Request) (Response, error) {
	key, err := s.keyFor(req)
	if err != nil {
		return Response{}, err
	}

	if cached, ok := s.cache.Get(key); ok {
		s.metrics.CacheHits.Inc()
		resp := cached.(Response)
		resp.FromCache = true
		return resp, nil
	}
	s.metrics.CacheMisses.Inc()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Response{}, ErrSchedulerClosed
	}
	t := &task{req: req, done: make(chan result, 1)}
	select {
	case s.queue <- t:
		s.metrics.QueueDepth.Inc()
		s.mu.Unlock()
	default:
		s.mu.Unlock()
		return Response{}, fmt.Errorf("scheduler queue is full")
	}

	select {
	case res := <-t.done:
		return res.resp, res.err
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// ActiveRequests reports how many upstream calls are currently in flight.
func (s *Scheduler) ActiveRequests() int {
	return int(s.active.Load())
}

// Close stops accepting new requests. Queued work is still drained.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.queue)
}

// dispatch is the worker loop: it dequeues in FIFO order, waits for a free
// concurrency slot, and paces dequeues by a fixed delay.
func (s *Scheduler) dispatch() {
	for t := range s.queue {
		s.metrics.QueueDepth.Dec()
		s.slots <- struct{}{}
		go s.process(t)
		time.Sleep(s.pace)
	}
}

func (s *Scheduler) process(t *task) {
	s.active.Add(1)
	s.metrics.ActiveRequests.Inc()
	defer func() {
		s.active.Add(-1)
		s.metrics.ActiveRequests.Dec()
		<-s.slots
	}()

	ctx := context.Background()
	var res result
	switch t.req.Type {
	case TypeEnrich:
		res = s.processEnrich(ctx, t.req)
	case TypeScore:
		res = s.processScore(ctx, t.req)
	default:
		res = result{err: fmt.Errorf("%w: unknown type %q", ErrInvalidRequest, t.req.Type)}
	}
	t.done <- res
}

func (s *Scheduler) processEnrich(ctx context.Context, req Request) result {
	profile := s.client.Enrich(ctx, enrich.IdentityFor(req.Record))
	if profile.Degraded {
		s.metrics.UpstreamDegraded.Inc()
	}
	resp := Response{Profile: profile}
	s.cache.SetDefault(identityKey(TypeEnrich, req.Record, req.Weights), resp)
	return result{resp: resp}
}

func (s *Scheduler) processScore(ctx context.Context, req Request) result {
	if len(req.Records) > 0 {
		return s.processBatchScore(ctx, req)
	}

	components, err := s.client.ScoreOne(ctx, req.Record, req.Weights)
	if err != nil {
		return result{err: err}
	}
	resp := Response{Components: []types.ScoreComponents{components}}
	s.cache.SetDefault(identityKey(TypeScore, req.Record, req.Weights), resp)
	return result{resp: resp}
}

// processBatchScore attempts one combined call for all candidates. When the
// response is malformed it degrades to sequential single-item calls through
// the same cached path; this is a deliberate contract, not a failure mode.
func (s *Scheduler) processBatchScore(ctx context.Context, req Request) result {
	components, err := s.client.ScoreBatch(ctx, req.Records, req.Weights)
	if err == nil {
		resp := Response{Components: components}
		s.cache.SetDefault(batchKey(req.Records, req.Weights), resp)
		for i, record := range req.Records {
			s.cache.SetDefault(identityKey(TypeScore, record, req.Weights),
				Response{Components: []types.ScoreComponents{components[i]}})
		}
		return result{resp: resp}
	}
	if !errors.Is(err, enrich.ErrMalformedBatch) {
		return result{err: err}
	}

	s.log.WithField("candidates", len(req.Records)).
		Warn("batch scoring response malformed, falling back to per-item calls")

	out := make([]types.ScoreComponents, 0, len(req.Records))
	for _, record := range req.Records {
		itemKey := identityKey(TypeScore, record, req.Weights)
		if cached, ok := s.cache.Get(itemKey); ok {
			out = append(out, cached.(Response).Components[0])
			continue
		}
		components, err := s.client.ScoreOne(ctx, record, req.Weights)
		if err != nil {
			return result{err: fmt.Errorf("fallback scoring failed for %q: %w", record.Name, err)}
		}
		s.cache.SetDefault(itemKey, Response{Components: []types.ScoreComponents{components}})
		out = append(out, components)
	}
	resp := Response{Components: out}
	s.cache.SetDefault(batchKey(req.Records, req.Weights), resp)
	return result{resp: resp}
}

func (s *Scheduler) keyFor(req Request) (string, error) {
	switch req.Type {
	case TypeEnrich:
		if req.Record == nil || req.Record.Name == "" {
			return "", fmt.Errorf("%w: enrichment requires a named candidate", ErrInvalidRequest)
		}
		return identityKey(TypeEnrich, req.Record, req.Weights), nil
	case TypeScore:
		if len(req.Records) > 0 {
			return batchKey(req.Records, req.Weights), nil
		}
		if req.Record == nil || req.Record.Name == "" {
			return "", fmt.Errorf("%w: scoring requires a named candidate", ErrInvalidRequest)
		}
		return identityKey(TypeScore, req.Record, req.Weights), nil
	default:
		return "", fmt.Errorf("%w: unknown type %q", ErrInvalidRequest, req.Type)
	}
}
