package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "strings" // strings supports case-insensitive boolean parsing
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Token signing secrets are NOT configured here:
// every client application carries its own secret key in the application
// table, and tokens are signed per application.
type Config struct {
    Env          string // application environment (e.g. "dev", "prod")
    Port         string // HTTP port to listen on
    DBUser       string // database username
    DBPass       string // database password (optional)
    DBHost       string // database host address
    DBPort       string // database port number
    DBName       string // database name
    PasswordSalt string // fixed salt of the legacy password digest scheme
    BcryptCost   int    // bcrypt cost for newly hashed passwords
    VCodeTTLSec  int    // verification code lifetime in seconds
    WXAPIBase    string // WeChat API base URL (override for tests/proxies)

    DBMaxOpen  int // connection pool cap
    DBMaxIdle  int // idle connections kept open
    DBConnLife int // connection lifetime in minutes

    RedisAddr     string // host:port of the Redis server
    RedisPassword string // optional Redis password
    RedisDB       int    // Redis database number
    RedisTLS      bool   // dial Redis over TLS
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The password salt
// defaults to the value used by the historical data set so that migrated
// password digests keep verifying.
func Load() Config {
    return Config{
        Env:          must("APP_ENV"),      // environment (dev/test/prod)
        Port:         must("APP_PORT"),     // port to bind the HTTP server
        DBUser:       must("DB_USER"),      // database user
        DBPass:       os.Getenv("DB_PASS"), // database password (empty allowed)
        DBHost:       must("DB_HOST"),      // database host
        DBPort:       must("DB_PORT"),      // database port
        DBName:       must("DB_NAME"),      // database name
        PasswordSalt: getenv("PASSWORD_SALT", "perfei#md5"),
        BcryptCost:   getenvInt("BCRYPT_COST", 10),
        VCodeTTLSec:  getenvInt("VCODE_TTL_SEC", 300),
        WXAPIBase:    getenv("WX_API_BASE", "https://api.weixin.qq.com"),

        DBMaxOpen:  getenvInt("DB_MAX_OPEN", 25),
        DBMaxIdle:  getenvInt("DB_MAX_IDLE", 25),
        DBConnLife: getenvInt("DB_CONN_LIFE_MIN", 30),

        RedisAddr:     redisAddr(),
        RedisPassword: os.Getenv("REDIS_PASSWORD"),
        RedisDB:       getenvInt("REDIS_DB", 0),
        RedisTLS:      getenvBool("REDIS_TLS"),
    }
}

// redisAddr resolves the Redis address from either the REDIS_ADDR
// shorthand or the REDIS_HOST/REDIS_PORT pair, the pair winning when
// both are set.
func redisAddr() string {
    addr := os.Getenv("REDIS_ADDR")
    if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
        addr = host + ":" + port
    }
    if addr == "" {
        addr = "localhost:6379"
    }
    return addr
}

// getenvBool treats "true" (any case) and "1" as true.
func getenvBool(key string) bool {
    v := os.Getenv(key)
    return strings.EqualFold(v, "true") || v == "1"
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// getenv returns the value of an optional environment variable, falling
// back to the provided default when unset or empty.
func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// getenvInt is like getenv() but converts the retrieved string into an
// integer.  An unparsable value falls back to the default.
func getenvInt(key string, def int) int {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return def
}
