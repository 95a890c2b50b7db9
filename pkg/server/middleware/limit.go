/* Copyright 2025 SolarCareer Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/solarcareer/solarcareer/pkg/server/log"
	"golang.org/x/time/rate"
)

const (
	// DefaultRateLimitPerSecond is the max requests per second accepted per IP
	DefaultRateLimitPerSecond = 50
	// DefaultRateLimitBurst is the burst capacity per IP
	DefaultRateLimitBurst = 100

	visitorTTL = 3 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter limits requests per client IP
type RateLimiter struct {
	visitors  map[string]*visitor
	mtx       sync.Mutex
	perSecond int
	burst     int
	// OnReject is called with the client IP of every rejected request
	OnReject func(ip string)

	done chan struct{}
	once sync.Once
}

// NewRateLimiter creates a rate limiter and starts evicting idle visitors
// until Close is called
func NewRateLimiter(perSecond, burst int) *RateLimiter {
	rl := &RateLimiter{
		visitors:  map[string]*visitor{},
		perSecond: perSecond,
		burst:     burst,
		done:      make(chan struct{}),
	}
	go rl.cleanupVisitors(time.Minute)

	return rl
}

// Close stops the eviction loop
func (rl *RateLimiter) Close() {
	rl.once.Do(func() {
		close(rl.done)
	})
}

// getVisitor returns the limiter of a visitor, adding the visitor if not seen before
func (rl *RateLimiter) getVisitor(identifier string) *rate.Limiter {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	v, ok := rl.visitors[identifier]
	if !ok {
		interval := time.Second / time.Duration(rl.perSecond)
		v = &visitor{limiter: rate.NewLimiter(rate.Every(interval), rl.burst)}
		rl.visitors[identifier] = v
	}
	v.lastSeen = time.Now()

	return v.limiter
}

func (rl *RateLimiter) evict(now time.Time) {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	for identifier, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(rl.visitors, identifier)
		}
	}
}

func (rl *RateLimiter) cleanupVisitors(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case now := <-t.C:
			rl.evict(now)
		case <-rl.done:
			return
		}
	}
}

// lookupIP returns the request's client IP
func lookupIP(r *http.Request) string {
	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

// Limit is a middleware to rate limit the handler
func (rl *RateLimiter) Limit(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identifier := lookupIP(r)

		if !rl.getVisitor(identifier).Allow() {
			log.WithFields(log.Fields{
				"ip": identifier,
			}).Warn("Too many requests")
			if rl.OnReject != nil {
				rl.OnReject(identifier)
			}

			RespondError(w, http.StatusTooManyRequests, "too many requests")
			return
		}

		next.ServeHTTP(w, r)
	}
}

// ApplyLimit rate limits h with rl. A nil limiter disables the limit.
func ApplyLimit(rl *RateLimiter, h http.Handler) http.Handler {
	if rl == nil {
		return h
	}

	return rl.Limit(h)
}
