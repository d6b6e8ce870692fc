package api

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimitConfig bounds request throughput per project. A zero PerSecond
// disables limiting.
type RateLimitConfig struct {
	PerSecond int
	Burst     int
}

type projectLimiters struct {
	cfg      RateLimitConfig
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newProjectLimiters(cfg RateLimitConfig) *projectLimiters {
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.PerSecond
	}
	return &projectLimiters{
		cfg:      cfg,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (p *projectLimiters) allow(projectID string) bool {
	if p.cfg.PerSecond <= 0 {
		return true
	}

	p.mu.Lock()
	limiter, ok := p.limiters[projectID]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(p.cfg.PerSecond), p.cfg.Burst)
		p.limiters[projectID] = limiter
	}
	p.mu.Unlock()

	return limiter.Allow()
}

// rateLimit rejects requests above the project's token budget.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiters.allow(projectID(r)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
