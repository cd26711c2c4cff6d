// Package broadcast provides session-scoped, best-effort progress fan-out.
// Events are delivered to currently connected subscribers only; there is no
// persistence, no replay and no delivery guarantee.
package broadcast

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/talentscope/talentscope/internal/types"
)

// Event types emitted over a session stream.
const (
	EventUploadProgress  = "upload_progress"
	EventResumeCompleted = "resume_completed"
	EventUploadError     = "upload_error"
	EventUploadComplete  = "upload_complete"
)

// Event is one progress notification for a session.
type Event struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	TenantID  string `json:"tenant_id"`
	Payload   any    `json:"payload,omitempty"`
}

// ProgressPatch carries partial session fields for UpdateProgress. Nil
// pointers leave the current value untouched.
type ProgressPatch struct {
	TotalFiles     *int
	CompletedFiles *int
}

// defaultRemoveDelay is how long a completed session lingers before it is
// garbage-collected.
const defaultRemoveDelay = 30 * time.Second

type session struct {
	state       types.EnrichmentSession
	subscribers map[int]chan Event
	nextSub     int
}

// Broadcaster fans progress events out to per-session subscribers.
type Broadcaster struct {
	mu          sync.Mutex
	sessions    map[string]*session
	removeDelay time.Duration
	log         *logrus.Logger
}

// New creates a broadcaster. A zero removeDelay uses the 30s default.
func New(log *logrus.Logger, removeDelay time.Duration) *Broadcaster {
	if removeDelay <= 0 {
		removeDelay = defaultRemoveDelay
	}
	return &Broadcaster{
		sessions:    make(map[string]*session),
		removeDelay: removeDelay,
		log:         log,
	}
}

// CreateSession registers a new upload session.
func (b *Broadcaster) CreateSession(sessionID, tenantID string, totalFiles int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[sessionID] = &session{
		state: types.EnrichmentSession{
			SessionID:  sessionID,
			TenantID:   tenantID,
			TotalFiles: totalFiles,
		},
		subscribers: make(map[int]chan Event),
	}
}

// Session returns a snapshot of the session state, if it exists.
func (b *Broadcaster) Session(sessionID string) (types.EnrichmentSession, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sess, ok := b.sessions[sessionID]
	if !ok {
		return types.EnrichmentSession{}, false
	}
	return sess.state, true
}

// Subscribe attaches a listener to a session. The returned cancel function
// must be called when the listener goes away. Subscribing to an unknown
// session returns a channel that never fires.
func (b *Broadcaster) Subscribe(sessionID string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sess, ok := b.sessions[sessionID]
	if !ok {
		ch := make(chan Event)
		return ch, func() {}
	}
	id := sess.nextSub
	sess.nextSub++
	ch := make(chan Event, 16)
	sess.subscribers[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sess, ok := b.sessions[sessionID]; ok {
			delete(sess.subscribers, id)
		}
	}
}

// UpdateProgress merges partial fields into the session, recomputes the
// completion percentage and broadcasts an upload_progress event.
func (b *Broadcaster) UpdateProgress(sessionID string, patch ProgressPatch) {
	b.mu.Lock()
	sess, ok := b.sessions[sessionID]
	if !ok {
		b.mu.Unlock()
		return
	}
	if patch.TotalFiles != nil {
		sess.state.TotalFiles = *patch.TotalFiles
	}
	if patch.CompletedFiles != nil {
		sess.state.CompletedFiles = *patch.CompletedFiles
	}
	event := b.progressEventLocked(sess)
	b.mu.Unlock()
	b.send(sessionID, event)
}

// AddCompletedCandidate appends a finished candidate, increments the file
// counter, broadcasts, and auto-completes the session once every file is
// accounted for.
func (b *Broadcaster) AddCompletedCandidate(sessionID string, candidate types.CandidateSummary) {
	b.mu.Lock()
	sess, ok := b.sessions[sessionID]
	if !ok {
		b.mu.Unlock()
		return
	}
	sess.state.Candidates = append(sess.state.Candidates, candidate)
	sess.state.CompletedFiles++
	complete := sess.state.CompletedFiles >= sess.state.TotalFiles
	event := Event{
		Type:      EventResumeCompleted,
		SessionID: sess.state.SessionID,
		TenantID:  sess.state.TenantID,
		Payload:   candidate,
	}
	b.mu.Unlock()

	b.send(sessionID, event)
	if complete {
		b.CompleteSession(sessionID)
	}
}

// AddError records a failed file with the same completion accounting as a
// success, broadcast as an upload_error event.
func (b *Broadcaster) AddError(sessionID, file, errMsg string) {
	b.mu.Lock()
	sess, ok := b.sessions[sessionID]
	if !ok {
		b.mu.Unlock()
		return
	}
	uploadErr := types.UploadError{File: file, Error: errMsg}
	sess.state.Errors = append(sess.state.Errors, uploadErr)
	sess.state.CompletedFiles++
	complete := sess.state.CompletedFiles >= sess.state.TotalFiles
	event := Event{
		Type:      EventUploadError,
		SessionID: sess.state.SessionID,
		TenantID:  sess.state.TenantID,
		Payload:   uploadErr,
	}
	b.mu.Unlock()

	b.send(sessionID, event)
	if complete {
		b.CompleteSession(sessionID)
	}
}

// CompleteSession broadcasts the final summary and schedules session removal
// after the configured delay.
func (b *Broadcaster) CompleteSession(sessionID string) {
	b.mu.Lock()
	sess, ok := b.sessions[sessionID]
	if !ok {
		b.mu.Unlock()
		return
	}
	event := Event{
		Type:      EventUploadComplete,
		SessionID: sess.state.SessionID,
		TenantID:  sess.state.TenantID,
		Payload:   sess.state,
	}
	b.mu.Unlock()

	b.send(sessionID, event)
	time.AfterFunc(b.removeDelay, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.sessions, sessionID)
	})
}

// progressEventLocked builds an upload_progress event; callers hold b.mu.
func (b *Broadcaster) progressEventLocked(sess *session) Event {
	return Event{
		Type:      EventUploadProgress,
		SessionID: sess.state.SessionID,
		TenantID:  sess.state.TenantID,
		Payload: map[string]any{
			"total_files":     sess.state.TotalFiles,
			"completed_files": sess.state.CompletedFiles,
			"percent":         sess.state.Percent(),
		},
	}
}

// send delivers an event to every current subscriber without blocking. A
// slow subscriber simply misses the event.
func (b *Broadcaster) send(sessionID string, event Event) {
	b.mu.Lock()
	sess, ok := b.sessions[sessionID]
	if !ok {
		b.mu.Unlock()
		return
	}
	channels := make([]chan Event, 0, len(sess.subscribers))
	for _, ch := range sess.subscribers {
		channels = append(channels, ch)
	}
	b.mu.Unlock()

	for _, ch := range channels {
		select {
		case ch <- event:
		default:
			b.log.WithField("session_id", sessionID).Debug("dropping event for slow subscriber")
		}
	}
}
