package db

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrNotConfigured is returned by Lazy.Get when no database URL is set.
var ErrNotConfigured = errors.New("database is not configured")

// ErrClosed is returned by Lazy.Get after Close.
var ErrClosed = errors.New("database handle is closed")

// DefaultConnectTimeout bounds a single connection attempt.
const DefaultConnectTimeout = 5 * time.Second

// Lazy is a process-wide database handle opened on first use.
// Concurrent first callers share one connection attempt. A failed attempt is
// not remembered, so the next call tries again.
type Lazy struct {
	url     string
	timeout time.Duration
	connect func(ctx context.Context, url string) (*DB, error)
	// onConnect runs once per successful connection, before it is published.
	onConnect func(ctx context.Context, db *DB) error

	group  singleflight.Group
	mu     sync.Mutex
	db     *DB
	closed bool
}

// NewLazy creates a handle for databaseURL. An empty URL yields a handle whose
// Get always fails with ErrNotConfigured.
func NewLazy(databaseURL string) *Lazy {
	return &Lazy{
		url:     databaseURL,
		timeout: DefaultConnectTimeout,
		connect: Connect,
	}
}

// OnConnect registers a hook (typically migrations) run on each new connection.
// A hook failure closes the pool and fails the attempt.
func (l *Lazy) OnConnect(fn func(ctx context.Context, db *DB) error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onConnect = fn
}

// Configured reports whether a database URL was provided.
func (l *Lazy) Configured() bool {
	return l.url != ""
}

// Get returns the shared connection, opening it if needed.
func (l *Lazy) Get(ctx context.Context) (*DB, error) {
	if l.url == "" {
		return nil, ErrNotConfigured
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, ErrClosed
	}
	if l.db != nil {
		db := l.db
		l.mu.Unlock()
		return db, nil
	}
	l.mu.Unlock()

	ch := l.group.DoChan("connect", func() (any, error) {
		return l.open(ctx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*DB), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Lazy) open(ctx context.Context) (*DB, error) {
	l.mu.Lock()
	if l.db != nil {
		db := l.db
		l.mu.Unlock()
		return db, nil
	}
	hook := l.onConnect
	l.mu.Unlock()

	// The attempt is shared, so one caller giving up must not cancel it.
	attemptCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
	defer cancel()

	db, err := l.connect(attemptCtx, l.url)
	if err != nil {
		log.Printf("[db] connection failed: %v", err)
		return nil, err
	}
	if hook != nil {
		if err := hook(attemptCtx, db); err != nil {
			db.Close()
			log.Printf("[db] connection setup failed: %v", err)
			return nil, err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		db.Close()
		return nil, ErrClosed
	}
	l.db = db
	log.Printf("[db] connected")
	return db, nil
}

// Close closes the shared connection. Later calls to Get fail with ErrClosed.
func (l *Lazy) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	if l.db != nil {
		l.db.Close()
		l.db = nil
	}
}
