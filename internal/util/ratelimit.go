package util

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
)

var digits = regexp.MustCompile(`\d+`)

// NormalizeIdentifier normalizes an email address, phone number or client address
func NormalizeIdentifier(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		return strings.ToLower(identifier)
	}
	if strings.HasPrefix(identifier, "+") || strings.HasPrefix(identifier, "0") {
		return strings.Join(digits.FindAllString(identifier, -1), "")
	}
	return identifier
}

// RateLimiter allows at most Max events per Window for each identifier
type RateLimiter struct {
	Max    int
	Window time.Duration

	mu       sync.Mutex
	requests map[string][]time.Time
	now      func() time.Time
}

// NewRateLimiter creates a sliding-window limiter
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		Max:      max,
		Window:   window,
		requests: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Allow records an event for identifier, or returns an error naming the wait
// when the identifier is over its limit.
func (l *RateLimiter) Allow(identifier string) error {
	normalized := NormalizeIdentifier(identifier)

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	valid := l.prune(normalized, now)

	if len(valid) >= l.Max {
		wait := valid[0].Add(l.Window).Sub(now)
		return fmt.Errorf("rate limit exceeded: maximum %d submissions per %v, retry in %v", l.Max, l.Window, wait.Round(time.Second))
	}

	l.requests[normalized] = append(valid, now)
	return nil
}

// Cleanup drops identifiers without events inside the window
func (l *RateLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key := range l.requests {
		if len(l.prune(key, now)) == 0 {
			delete(l.requests, key)
		}
	}
}

func (l *RateLimiter) prune(key string, now time.Time) []time.Time {
	cutoff := now.Add(-l.Window)
	var valid []time.Time
	for _, t := range l.requests[key] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	l.requests[key] = valid
	return valid
}
