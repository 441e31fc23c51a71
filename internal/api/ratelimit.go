package api

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Subscribe requests allowed per user per minute.
const subscribeRequestsPerMinute = 10

// userLimiter holds one token bucket per user.
type userLimiter struct {
	mu     sync.Mutex
	limits map[string]*rate.Limiter
	every  rate.Limit
	burst  int
	now    func() time.Time
}

func newUserLimiter(perMinute int, now func() time.Time) *userLimiter {
	return &userLimiter{
		limits: make(map[string]*rate.Limiter),
		every:  rate.Every(time.Minute / time.Duration(perMinute)),
		burst:  perMinute,
		now:    now,
	}
}

func (l *userLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.limits[key]; ok {
		return lim
	}
	lim := rate.NewLimiter(l.every, l.burst)
	l.limits[key] = lim
	return lim
}

// allow takes one token for key. When none is left it reports how long
// until one is.
func (l *userLimiter) allow(key string) (bool, time.Duration) {
	now := l.now()
	res := l.get(key).ReserveN(now, 1)
	if !res.OK() {
		return false, time.Minute
	}
	delay := res.DelayFrom(now)
	if delay == 0 {
		return true, 0
	}
	res.CancelAt(now)
	return false, delay
}

// limitPerUser rejects authenticated requests over the per-user budget.
func (s *Server) limitPerUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := userIDFrom(r.Context())
		ok, wait := s.limiter.allow(userID)
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			respondError(w, r, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
