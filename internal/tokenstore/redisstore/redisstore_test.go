package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/devilmonastery/eventdesk/internal/client"
	"github.com/devilmonastery/eventdesk/internal/tokenstore/redisstore"
)

var _ client.TokenStore = (*redisstore.RedisStore)(nil)

func TestSetGet(t *testing.T) {
	rdb := getRedisDB(t)

	s := redisstore.New(rdb, "eventdesk:test:")
	if err := s.Set(client.AccessTokenKey, "access-1"); err != nil {
		t.Fatal(err)
	}
	value, found, err := s.Get(client.AccessTokenKey)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatalf("expected 'true' got '%v'", found)
	}
	if value != "access-1" {
		t.Fatalf("expected 'access-1' got '%s'", value)
	}

	raw, err := rdb.Get(context.Background(), "eventdesk:test:"+client.AccessTokenKey).Result()
	if err != nil || raw != "access-1" {
		t.Fatalf("prefixed key = %q, %v", raw, err)
	}
}

func TestEmptyGet(t *testing.T) {
	rdb := getRedisDB(t)

	s := redisstore.New(rdb, "")
	_, found, err := s.Get(client.RefreshTokenKey)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatalf("expected 'false' got '%v'", found)
	}
}

func TestDelete(t *testing.T) {
	rdb := getRedisDB(t)

	s := redisstore.New(rdb, "ctx-a:")
	if err := s.Set(client.RefreshTokenKey, "refresh-1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(client.RefreshTokenKey); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(client.RefreshTokenKey); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	_, found, err := s.Get(client.RefreshTokenKey)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatalf("expected 'false' got '%v'", found)
	}
}

func TestPrefixesIsolateSessions(t *testing.T) {
	rdb := getRedisDB(t)

	dev := redisstore.New(rdb, "dev:")
	prod := redisstore.New(rdb, "prod:")
	if err := dev.Set(client.AccessTokenKey, "dev-token"); err != nil {
		t.Fatal(err)
	}
	if _, found, err := prod.Get(client.AccessTokenKey); err != nil || found {
		t.Fatalf("prod store saw dev token: found %v, err %v", found, err)
	}
}

func TestUnreachableRedisIsAnError(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	})
	t.Cleanup(func() { rdb.Close() })

	s := redisstore.New(rdb, "")
	if _, _, err := s.Get(client.AccessTokenKey); err == nil {
		t.Fatal("expected error from unreachable redis")
	}

	// The client treats an unreachable store as no session.
	c, err := client.New("http://localhost:4153", client.WithTokenStore(s))
	if err != nil {
		t.Fatal(err)
	}
	if c.Authenticated() {
		t.Error("client authenticated with unreachable store")
	}
}

func getRedisDB(t *testing.T) *redis.Client {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	server, err := testcontainers.Run(
		ctx, "redis:latest",
		testcontainers.WithExposedPorts("6379/tcp"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("6379/tcp"),
			wait.ForLog("Ready to accept connections"),
		),
	)
	testcontainers.CleanupContainer(t, server)
	if err != nil {
		t.Fatal(err)
	}
	endpoint, err := server.Endpoint(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: endpoint,
		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}
