package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"ordermgmt-be/internal/utils"

	"golang.org/x/time/rate"
)

// Tier is one rate limit policy.
type Tier struct {
	Name  string
	Limit rate.Limit
	Burst int
}

var (
	// Order writes (create, done, close)
	TierWrite = Tier{Name: "write", Limit: rate.Limit(5), Burst: 10}

	// General (Default)
	TierGeneral = Tier{Name: "general", Limit: rate.Limit(10), Burst: 20}

	// Kitchen displays polling the order lists
	TierFrontend = Tier{Name: "frontend", Limit: rate.Limit(20), Burst: 40}

	// Internal / trusted services
	TierInternal = Tier{Name: "internal", Limit: rate.Limit(100), Burst: 200}
)

const visitorTTL = 3 * time.Minute

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per identity and tier.
type RateLimiter struct {
	internalKey string
	now         func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter builds a limiter. Requests carrying X-Service-Auth equal to
// internalKey get the internal tier; an empty key disables that tier.
func NewRateLimiter(internalKey string) *RateLimiter {
	return &RateLimiter{
		internalKey: internalKey,
		now:         time.Now,
		visitors:    make(map[string]*visitor),
		stop:        make(chan struct{}),
	}
}

// StartCleanup evicts idle visitors every interval until Stop is called.
func (l *RateLimiter) StartCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.cleanup()
			case <-l.stop:
				return
			}
		}
	}()
}

func (l *RateLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// getVisitor retrieves or creates the limiter for the given bucket key.
func (l *RateLimiter) getVisitor(key string, tier Tier) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, exists := l.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(tier.Limit, tier.Burst)
		l.visitors[key] = &visitor{limiter, l.now()}
		return limiter
	}

	v.lastSeen = l.now()
	return v.limiter
}

func (l *RateLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, v := range l.visitors {
		if l.now().Sub(v.lastSeen) > visitorTTL {
			delete(l.visitors, key)
		}
	}
}

// Len reports how many buckets are currently tracked.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// Middleware rejects requests over their tier's budget with 429.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tier := l.resolveTier(r)

		// Same client gets separate quotas per tier, e.g. "device:abc:write".
		key := identity(r) + ":" + tier.Name

		if !l.getVisitor(key, tier).Allow() {
			utils.WriteJSONError(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// identity prefers a client supplied device id and falls back to the remote IP.
func identity(r *http.Request) string {
	if deviceID := r.Header.Get("X-Device-ID"); deviceID != "" {
		return "device:" + deviceID
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}

// resolveTier determines which rate limit policy applies to the request.
func (l *RateLimiter) resolveTier(r *http.Request) Tier {
	if l.internalKey != "" && r.Header.Get("X-Service-Auth") == l.internalKey {
		return TierInternal
	}

	if r.Method == http.MethodPost || r.Method == http.MethodPut {
		return TierWrite
	}

	if r.Header.Get("X-Client-Type") == "frontend-heavy" {
		return TierFrontend
	}

	return TierGeneral
}
