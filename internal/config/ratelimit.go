package config

import "time"

// RateLimitConfig controls the fixed-window limiter applied to the login
// and verification-code endpoints.  Those are the only routes worth
// protecting: everything else already requires a valid token.
type RateLimitConfig struct {
    Enabled bool
    Limit   int           // requests allowed per window
    Window  time.Duration // window length
    Prefix  string        // redis key namespace
}

// LoadRateLimitConfig reads environment variables to build a
// RateLimitConfig.  Defaults allow 10 authorization attempts per minute
// per client address.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled: getenv("RATE_LIMIT_ENABLED", "true") == "true",
        Limit:   getenvInt("RATE_LIMIT_LIMIT", 10),
        Window:  parseDur(getenv("RATE_LIMIT_WINDOW", "1m")),
        Prefix:  getenv("RATE_LIMIT_PREFIX", "rl"),
    }
    if cfg.Limit < 1 {
        cfg.Limit = 1
    }
    if cfg.Window <= 0 {
        cfg.Window = time.Minute
    }
    return cfg
}

func parseDur(s string) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil {
        return time.Minute
    }
    return d
}
