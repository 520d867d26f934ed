package docstore

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
	BackendHTTP     = "http"
)

// Backends lists every supported backend name.
func Backends() []string {
	return []string{BackendMemory, BackendRedis, BackendPostgres, BackendMySQL, BackendHTTP}
}

// IsBackend reports whether name is a supported backend.
func IsBackend(name string) bool {
	for _, b := range Backends() {
		if b == name {
			return true
		}
	}
	return false
}

// Config selects and configures a backend.
type Config struct {
	Backend string
	Timeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	PostgresDSN string
	MySQLDSN    string

	HTTPURL   string
	HTTPToken string
}

// Open builds the configured backend. Remote backends are contacted before
// Open returns, bounded by cfg.Timeout.
func Open(ctx context.Context, cfg Config) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = BackendMemory
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	switch backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendRedis:
		s, err := OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix)
		return nonNil(s, err)
	case BackendPostgres:
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			return nil, fmt.Errorf("postgres backend requires postgres_dsn")
		}
		s, err := OpenPostgres(ctx, cfg.PostgresDSN)
		return nonNil(s, err)
	case BackendMySQL:
		if strings.TrimSpace(cfg.MySQLDSN) == "" {
			return nil, fmt.Errorf("mysql backend requires mysql_dsn")
		}
		s, err := OpenMySQL(ctx, cfg.MySQLDSN)
		return nonNil(s, err)
	case BackendHTTP:
		s, err := NewHTTP(cfg.HTTPURL, cfg.HTTPToken, cfg.Timeout)
		return nonNil(s, err)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// nonNil keeps a typed nil pointer from escaping as a non-nil Store.
func nonNil[S Store](store S, err error) (Store, error) {
	if err != nil {
		return nil, err
	}
	return store, nil
}
