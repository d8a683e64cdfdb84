package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/devilmonastery/eventdesk/internal/client"
	"github.com/devilmonastery/eventdesk/internal/tokenstore"
	"github.com/devilmonastery/eventdesk/internal/tokenstore/redisstore"
)

// Credentials backends
const (
	backendFile  = "file"
	backendRedis = "redis"
)

func (ctx *Context) credentialsBackend() string {
	if ctx.Credentials.Backend == "" {
		return backendFile
	}
	return ctx.Credentials.Backend
}

func (ctx *Context) redisPrefix(contextName string) string {
	if ctx.Credentials.RedisPrefix != "" {
		return ctx.Credentials.RedisPrefix
	}
	return "eventdesk:" + contextName + ":"
}

func (ctx *Context) cacheTTL() time.Duration {
	if ctx.Cache.TTL <= 0 {
		return client.DefaultCacheTTL
	}
	return ctx.Cache.TTL
}

// credentialsPath returns the path to the credentials file for a context
func credentialsPath(contextName string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", "eventdesk")
	filename := fmt.Sprintf("credentials-%s.json", contextName)
	return filepath.Join(configDir, filename), nil
}

// openTokenStore returns the token store configured for the current context.
// The returned close function releases any connection the store holds.
func openTokenStore(config *Config) (client.TokenStore, func() error, error) {
	ctx, err := config.GetCurrentContext()
	if err != nil {
		return nil, nil, err
	}

	switch ctx.credentialsBackend() {
	case backendFile:
		path, err := credentialsPath(config.CurrentContext)
		if err != nil {
			return nil, nil, err
		}
		slog.Debug("using file credentials",
			slog.String("component", "cli-creds"),
			slog.String("path", path))
		return tokenstore.NewFileStore(path), func() error { return nil }, nil

	case backendRedis:
		if ctx.Credentials.RedisAddr == "" {
			return nil, nil, fmt.Errorf("context %q uses redis credentials but has no redis_addr", config.CurrentContext)
		}
		rdb := redis.NewClient(&redis.Options{
			Addr:        ctx.Credentials.RedisAddr,
			Password:    os.Getenv("EVENTDESK_REDIS_PASSWORD"),
			DialTimeout: 2 * time.Second,
		})
		prefix := ctx.redisPrefix(config.CurrentContext)
		slog.Debug("using redis credentials",
			slog.String("component", "cli-creds"),
			slog.String("addr", ctx.Credentials.RedisAddr),
			slog.String("prefix", prefix))
		return redisstore.New(rdb, prefix), rdb.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown credentials backend %q", ctx.Credentials.Backend)
	}
}
