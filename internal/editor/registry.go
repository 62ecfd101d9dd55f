package editor

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("editing session not found")

// ErrExportInProgress is returned when an image export is already running for a session.
var ErrExportInProgress = errors.New("export already in progress")

// Session is one editing session. Every access to its editor goes through Do
// or View, which serialize callers on the session's own lock.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	editor    *Editor
	lastUsed  atomic.Int64
	exporting atomic.Bool
}

func newSession(e *Editor, now time.Time) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		editor:    e,
	}
	s.lastUsed.Store(now.UnixNano())
	return s
}

// Do runs fn with exclusive access to the session's editor.
func (s *Session) Do(fn func(*Editor) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return fn(s.editor)
}

// Snapshot returns a deep copy of the document together with the selected template.
func (s *Session) Snapshot() (*Editor, error) {
	var snap *Editor
	err := s.Do(func(e *Editor) error {
		snap = FromDocument(e.Document(), e.Template())
		snap.step = e.step
		return nil
	})
	return snap, err
}

// BeginExport marks an image export as running. The returned func ends it and
// must be called exactly once. A second BeginExport before that fails with
// ErrExportInProgress.
func (s *Session) BeginExport() (func(), error) {
	if !s.exporting.CompareAndSwap(false, true) {
		return nil, ErrExportInProgress
	}
	s.touch()
	var once sync.Once
	return func() {
		once.Do(func() { s.exporting.Store(false) })
	}, nil
}

// Exporting reports whether an image export is running.
func (s *Session) Exporting() bool {
	return s.exporting.Load()
}

// LastUsed is the time of the most recent access.
func (s *Session) LastUsed() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

func (s *Session) touch() {
	s.lastUsed.Store(time.Now().UnixNano())
}

// Registry holds the editing sessions of the process keyed by id.
type Registry struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	idleTTL  time.Duration

	sweepTicker *time.Ticker
	sweepStop   chan struct{}
	stopOnce    sync.Once
}

// NewRegistry creates a registry. Sessions idle for longer than idleTTL are
// dropped every sweepInterval; a non-positive interval disables sweeping.
func NewRegistry(idleTTL, sweepInterval time.Duration) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		idleTTL:  idleTTL,
	}
	if idleTTL > 0 && sweepInterval > 0 {
		r.sweepTicker = time.NewTicker(sweepInterval)
		r.sweepStop = make(chan struct{})
		go r.sweepLoop()
	}
	return r
}

// Create starts a session around e, or around a freshly scaffolded editor when e is nil.
func (r *Registry) Create(e *Editor) *Session {
	if e == nil {
		e = New()
	}
	s := newSession(e, time.Now())

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete drops a session. Unknown ids are ignored.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions idle since before now-idleTTL and returns how many it
// dropped. Sessions with an export in flight are kept.
func (r *Registry) Sweep(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := 0
	for id, s := range r.sessions {
		if s.Exporting() || !s.LastUsed().Before(cutoff) {
			continue
		}
		delete(r.sessions, id)
		dropped++
	}
	return dropped
}

func (r *Registry) sweepLoop() {
	for {
		select {
		case now := <-r.sweepTicker.C:
			if n := r.Sweep(now); n > 0 {
				log.Printf("[editor] expired %d idle session(s)", n)
			}
		case <-r.sweepStop:
			return
		}
	}
}

// Stop stops the sweep goroutine.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() {
		if r.sweepTicker != nil {
			r.sweepTicker.Stop()
		}
		if r.sweepStop != nil {
			close(r.sweepStop)
		}
	})
}
