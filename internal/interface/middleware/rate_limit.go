package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/user-account-service/pkg/response"
)

// KeyFunc names the redis counter a request is charged to.
type KeyFunc func(c *gin.Context) string

// AllowFunc reports requests that bypass the limiter.
type AllowFunc func(*gin.Context) bool

func routeOf(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

func KeyByIP() KeyFunc {
	return func(c *gin.Context) string { return "rl:ip:" + ipFromCtx(c) }
}

func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string { return "rl:path:" + routeOf(c) + ":ip:" + ipFromCtx(c) }
}

// KeyByIPAndScope charges a named bucket per client, so reads and writes on
// the users routes have separate budgets.
func KeyByIPAndScope(scope string) KeyFunc {
	return func(c *gin.Context) string { return "rl:" + scope + ":ip:" + ipFromCtx(c) }
}

// hitScript increments the window counter, starts the window on first hit and
// returns {count, remaining window in ms}.
var hitScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

type windowCounter struct {
	rdb    *redis.Client
	max    int
	window time.Duration
}

// hit charges key once and returns the count in the current window and the
// seconds until it resets.
func (w windowCounter) hit(ctx context.Context, key string) (count, resetSec int, err error) {
	res, err := hitScript.Run(ctx, w.rdb, []string{key}, w.window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(res) != 2 {
		return 0, 0, fmt.Errorf("rate limit script returned %d values", len(res))
	}
	if res[1] > 0 {
		resetSec = int((time.Duration(res[1])*time.Millisecond + time.Second - 1) / time.Second)
	}
	return int(res[0]), resetSec, nil
}

// RateLimit allows max requests per key in fixed windows and answers 429
// beyond that. A nil client disables it; redis errors let requests through.
func RateLimit(rdb *redis.Client, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	counter := windowCounter{rdb: rdb, max: max, window: window}

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (allow != nil && allow(c)) {
			c.Next()
			return
		}

		count, resetSec, err := counter.hit(c.Request.Context(), keyFn(c))
		if err != nil {
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining(max, count)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > max {
			c.Header("Retry-After", strconv.Itoa(resetSec))
			response.Error[any](c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func remaining(max, count int) int {
	if count >= max {
		return 0
	}
	return max - count
}
