// Package ratelimit throttles callers with a token bucket per client,
// endpoint scope and method.
package ratelimit

import (
	"strings"
	"sync"
	"time"
)

// Client identifies who a request is charged to: the account when signed
// in, the IP otherwise.
type Client struct {
	IP    string
	Email string
}

func (c Client) key() string {
	if c.Email != "" {
		return "user:" + strings.ToLower(c.Email)
	}
	return "ip:" + c.IP
}

// bucket refills continuously at rate tokens per second up to capacity.
type bucket struct {
	mu       sync.Mutex
	capacity float64
	rate     float64
	tokens   float64
	updated  time.Time
	lastUsed time.Time
}

func newBucket(capacity int, rate float64, now time.Time) *bucket {
	return &bucket{
		capacity: float64(capacity),
		rate:     rate,
		tokens:   float64(capacity),
		updated:  now,
		lastUsed: now,
	}
}

// take refills the bucket up to now and consumes a token if one is available.
func (b *bucket) take(now time.Time) (allowed bool, remaining int, full, next time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if elapsed := now.Sub(b.updated); elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed.Seconds()*b.rate)
	}
	b.updated = now
	b.lastUsed = now

	if b.tokens >= 1 {
		b.tokens--
		allowed = true
	}

	remaining = int(b.tokens)
	full = now.Add(b.wait(b.capacity - b.tokens))
	next = now
	if b.tokens < 1 {
		next = now.Add(b.wait(1 - b.tokens))
	}
	return allowed, remaining, full, next
}

// wait is how long it takes to refill n tokens.
func (b *bucket) wait(n float64) time.Duration {
	if n <= 0 || b.rate <= 0 {
		return 0
	}
	return time.Duration(n / b.rate * float64(time.Second))
}

func (b *bucket) idleSince() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastUsed
}

// Info describes the outcome of one Allow call.
type Info struct {
	Allowed    bool
	Limit      int // 0 when the request is not metered
	Remaining  int
	ResetTime  time.Time     // when the bucket is full again
	RetryAfter time.Duration // until the next token, set only when denied
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration   // buckets unused this long are dropped; default 1h
	Whitelist       map[string]bool // by IP
	Blacklist       map[string]bool // by IP
	EndpointConfigs []EndpointConfig
}

// Limiter holds the buckets of every active client.
type Limiter struct {
	config   *Config
	now      func() time.Time
	mu       sync.Mutex
	buckets  map[string]*bucket
	stop     chan struct{}
	stopOnce sync.Once
}

// NewLimiter creates a limiter. A nil config meters every endpoint at
// 1000 requests per minute.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		}
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = time.Hour
	}

	l := &Limiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}

	if config.Enabled && config.CleanupInterval > 0 {
		go l.sweepEvery(config.CleanupInterval)
	}
	return l
}

// Allow charges one request by client to endpoint and reports whether it may proceed.
func (l *Limiter) Allow(client Client, endpoint, method string) (bool, Info) {
	unmetered := Info{Allowed: true}

	switch {
	case !l.config.Enabled:
		return true, unmetered
	case l.config.Whitelist[client.IP]:
		return true, unmetered
	case l.config.Blacklist[client.IP]:
		return false, Info{}
	}

	rule := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if rule == nil {
		rule = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}
	if rule.Limit <= 0 {
		return true, unmetered
	}

	// A matched rule is one budget for every path it covers, so
	// "/sessions/a/export/pdf" and "/sessions/b/export/pdf" share tokens.
	scope := endpoint
	if rule.Path != "" {
		scope = rule.Path
	}

	now := l.now()
	b := l.bucket(client.key()+" "+method+" "+scope, rule, now)
	allowed, remaining, full, next := b.take(now)

	info := Info{
		Allowed:   allowed,
		Limit:     rule.Limit,
		Remaining: remaining,
		ResetTime: full,
	}
	if !allowed {
		info.RetryAfter = next.Sub(now)
	}
	return allowed, info
}

func (l *Limiter) bucket(key string, rule *EndpointConfig, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[key]; ok {
		return b
	}
	capacity := rule.Burst
	if capacity <= 0 {
		capacity = rule.Limit
	}
	b := newBucket(capacity, float64(rule.Limit)/rule.Window.Seconds(), now)
	l.buckets[key] = b
	return b
}

// Len reports the number of live buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Limiter) sweepEvery(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep drops buckets idle for longer than IdleTTL.
func (l *Limiter) sweep() int {
	cutoff := l.now().Add(-l.config.IdleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	dropped := 0
	for key, b := range l.buckets {
		if b.idleSince().Before(cutoff) {
			delete(l.buckets, key)
			dropped++
		}
	}
	return dropped
}

// Stop ends the sweeper. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
