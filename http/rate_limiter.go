package http

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	bucketCleanupThreshold = 1 * time.Hour
	cleanupInterval        = 30 * time.Minute
)

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client.
type RateLimiter struct {
	mu          sync.Mutex
	rps         rate.Limit
	burst       int
	clients     map[string]*clientBucket
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		rps:         rate.Limit(rps),
		burst:       burst,
		clients:     make(map[string]*clientBucket),
		stopCleanup: make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (r *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.cleanup(time.Now().Add(-bucketCleanupThreshold))
		case <-r.stopCleanup:
			return
		}
	}
}

// cleanup drops clients not seen since cutoff.
func (r *RateLimiter) cleanup(cutoff time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for ip, bucket := range r.clients {
		if bucket.lastSeen.Before(cutoff) {
			delete(r.clients, ip)
		}
	}
}

func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.stopCleanup) })
}

// Allow reports whether the client may make a request now.
func (r *RateLimiter) Allow(ip string) bool {
	now := time.Now()

	r.mu.Lock()
	bucket, exists := r.clients[ip]
	if !exists {
		bucket = &clientBucket{limiter: rate.NewLimiter(r.rps, r.burst)}
		r.clients[ip] = bucket
	}
	bucket.lastSeen = now
	r.mu.Unlock()

	return bucket.limiter.AllowN(now, 1)
}

// RetryAfter is the delay until the next token for a drained bucket.
func (r *RateLimiter) RetryAfter() time.Duration {
	if r.rps <= 0 {
		return time.Second
	}
	d := time.Duration(float64(time.Second) / float64(r.rps))
	if d < time.Second {
		d = time.Second
	}
	return d
}

func (r *RateLimiter) clientCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}
