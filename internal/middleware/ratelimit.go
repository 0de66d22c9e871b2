package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

type bucket struct {
	count       int
	windowStart time.Time
}

// RateLimiter enforces a fixed-window request budget per requester.
// Mutating routes run behind JWT auth, so authenticated traffic is keyed
// by user id; anonymous traffic falls back to the client address and a
// NAT'd crowd shares one bucket.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		window:  window,
	}
	go rl.evictStale()
	return rl
}

func (rl *RateLimiter) evictStale() {
	for {
		time.Sleep(rl.window)
		rl.mu.Lock()
		for key, b := range rl.buckets {
			if time.Since(b.windowStart) > rl.window {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

func requesterKey(r *http.Request) string {
	if userID := GetUserID(r.Context()); userID != uuid.Nil {
		return userID.String()
	}
	return r.RemoteAddr
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := requesterKey(r)

		rl.mu.Lock()
		b, ok := rl.buckets[key]
		if !ok || time.Since(b.windowStart) > rl.window {
			rl.buckets[key] = &bucket{count: 1, windowStart: time.Now()}
			rl.mu.Unlock()
			next.ServeHTTP(w, r)
			return
		}

		b.count++
		count := b.count
		rl.mu.Unlock()

		if count > rl.limit {
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.", r)
			return
		}

		next.ServeHTTP(w, r)
	})
}
