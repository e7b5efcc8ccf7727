package contact

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const honeypotField = "_honeypot"

// rateLimiter is a simple in-memory rate limiter by IP.
type rateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time

	stop chan struct{}
	once sync.Once
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

// run prunes expired entries every interval until close is called.
func (rl *rateLimiter) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.prune()
		case <-rl.stop:
			return
		}
	}
}

func (rl *rateLimiter) close() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *rateLimiter) prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window)
	for ip, times := range rl.requests {
		valid := recent(times, cutoff)
		if len(valid) == 0 {
			delete(rl.requests, ip)
		} else {
			rl.requests[ip] = valid
		}
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	if rl.limit <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	valid := recent(rl.requests[ip], now.Add(-rl.window))

	if len(valid) >= rl.limit {
		rl.requests[ip] = valid
		return false
	}

	rl.requests[ip] = append(valid, now)
	return true
}

func recent(times []time.Time, cutoff time.Time) []time.Time {
	var valid []time.Time
	for _, t := range times {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	return valid
}

func (h *Handler) rateLimit(rl *rateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := extractIP(r)
			if !rl.allow(ip) {
				h.log.Warnf("Contact rate limit exceeded for %s on %s", ip, r.URL.Path)
				if wantsJSON(r) {
					h.jsonResponse(w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
					return
				}
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// honeypot answers bot submissions as if they had been accepted, without
// touching the visitor's form.
func (h *Handler) honeypot(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		if r.PostFormValue(honeypotField) == "" {
			next.ServeHTTP(w, r)
			return
		}

		h.log.Debugf("Contact honeypot triggered from %s", extractIP(r))
		if wantsJSON(r) {
			h.jsonResponse(w, http.StatusAccepted, map[string]string{"state": string(StateSending)})
			return
		}
		http.Redirect(w, r, backURL(r), http.StatusSeeOther)
	})
}

// extractIP returns the host of RemoteAddr. Forwarding headers are only
// honored upstream, when the proxy is trusted and RealIP rewrites RemoteAddr.
func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// backURL is where a browser returns after a form post: the Referer when it
// is on this host, the contact page otherwise.
func backURL(r *http.Request) string {
	if ref, err := url.Parse(r.Header.Get("Referer")); err == nil && strings.HasPrefix(ref.Path, "/") {
		if ref.Host == "" || strings.EqualFold(ref.Host, r.Host) {
			back := ref.EscapedPath()
			if ref.RawQuery != "" {
				back += "?" + ref.RawQuery
			}
			return back
		}
	}
	return strings.TrimSuffix(r.URL.Path, "/reset")
}
