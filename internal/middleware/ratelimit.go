package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tasktrace/tasktrace/pkg/response"
	"golang.org/x/time/rate"
)

const (
	// visitorTTL is how long an idle bucket survives before pruning.
	visitorTTL = 5 * time.Minute
	// pruneThreshold caps map growth between prune passes.
	pruneThreshold = 1024
)

// keyFunc derives the bucket key for a request.
type keyFunc func(*gin.Context) string

// visitor is one token bucket plus its last activity time.
type visitor struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// Throttle enforces a token-bucket limit per derived key. Profiles below
// choose the key: credential traffic buckets per client IP, join traffic
// per IP and project so hammering one project's invitation code does not
// consume the caller's allowance on other projects.
type Throttle struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	key      keyFunc
}

func newThrottle(rps float64, burst int, key keyFunc) *Throttle {
	return &Throttle{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(rps),
		burst:    burst,
		key:      key,
	}
}

// CredentialThrottle limits register, login and refresh attempts per
// client IP.
func CredentialThrottle() *Throttle {
	return newThrottle(5, 10, byIP)
}

// JoinThrottle limits invitation redemption and membership request
// submission, keyed per IP and target project.
func JoinThrottle() *Throttle {
	return newThrottle(2, 5, byIPAndProject)
}

func byIP(c *gin.Context) string {
	return c.ClientIP()
}

func byIPAndProject(c *gin.Context) string {
	if project := c.Param("id"); project != "" {
		return c.ClientIP() + "/" + project
	}
	return c.ClientIP()
}

func (t *Throttle) take(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.visitors[key]
	if !ok {
		if len(t.visitors) >= pruneThreshold {
			t.prune()
		}
		v = &visitor{bucket: rate.NewLimiter(t.limit, t.burst)}
		t.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.bucket.Allow()
}

// prune drops idle buckets. Caller holds the mutex.
func (t *Throttle) prune() {
	for key, v := range t.visitors {
		if time.Since(v.lastSeen) > visitorTTL {
			delete(t.visitors, key)
		}
	}
}

// Middleware rejects over-limit requests with 429 before the handler runs.
func (t *Throttle) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !t.take(t.key(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.Response{
				Code:    http.StatusTooManyRequests,
				Message: "too many requests, slow down and retry",
			})
			return
		}
		c.Next()
	}
}
