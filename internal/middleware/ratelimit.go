package middleware

import (
    "fmt"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/perfeicloud/cashbook-api/internal/config"
)

// NewLoginLimiter returns a fixed-window rate limiter for the
// authorization endpoints, keyed by route and client address.  The
// window counter lives in Redis (INCR + EXPIRE on first hit) so all
// server instances share it.  With limiting disabled or no Redis
// available the middleware is a passthrough.
func NewLoginLimiter(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc {
            return func(c echo.Context) error { return next(c) }
        }
    }

    window := int64(cfg.Window / time.Second)
    if window < 1 {
        window = 1
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            ctx := c.Request().Context()
            bucket := time.Now().Unix() / window
            key := fmt.Sprintf("%s:%s:%s:%d", cfg.Prefix, c.Path(), c.RealIP(), bucket)

            n, err := rdb.Incr(ctx, key).Result()
            if err != nil {
                // Redis trouble must not lock users out.
                return next(c)
            }
            if n == 1 {
                _ = rdb.Expire(ctx, key, cfg.Window).Err()
            }
            if n > int64(cfg.Limit) {
                c.Response().Header().Set("Retry-After", fmt.Sprint(window))
                return c.JSON(http.StatusTooManyRequests,
                    echo.Map{"code": http.StatusTooManyRequests, "msg": "too many requests"})
            }
            return next(c)
        }
    }
}
