package testutil

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisLockPrefix = "hiring:testutil:db_lock:"

// SetupTestRedis returns a client on an emptied Redis database reserved for t.
// REDIS_ADDR wins; otherwise the compose service, localhost:6379 and localhost:56379 are tried in order.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()

	addr, err := findRedis()
	if err != nil {
		if envBool("TEST_REQUIRE_REDIS") || envBool("TEST_REQUIRE_INFRA") {
			t.Fatal("redis not available:", err)
		}
		t.Skip("redis not available:", err)
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: reserveRedisDB(t, addr)})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.FlushDB(ctx).Err(); err != nil {
		closeQuietly(t, "redis", client)
		t.Fatal("flush test redis db:", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.FlushDB(ctx).Err(); err != nil {
			t.Logf("flush test redis db: %v", err)
		}
		closeQuietly(t, "redis", client)
	})
	return client
}

func findRedis() (string, error) {
	candidates := []string{"redis:6379", "localhost:6379", "localhost:56379"}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		candidates = []string{addr}
	}
	var lastErr error
	for _, addr := range candidates {
		if lastErr = pingRedis(addr); lastErr == nil {
			return addr, nil
		}
	}
	return "", lastErr
}

func pingRedis(addr string) error {
	c := redis.NewClient(&redis.Options{Addr: addr})
	defer c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%s: %w", addr, err)
	}
	return nil
}

// reserveRedisDB picks TEST_REDIS_DB when set, otherwise claims one of databases 1..15 with a lock
// kept in database 0 so that FlushDB on the claimed database leaves it intact. Falls back to 1.
func reserveRedisDB(t TestingTB, addr string) int {
	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
		t.Logf("ignoring TEST_REDIS_DB=%q", v)
	}

	meta := redis.NewClient(&redis.Options{Addr: addr})
	owner := fmt.Sprintf("%d:%d", os.Getpid(), time.Now().UnixNano())
	for n := 1; n <= 15; n++ {
		key := redisLockPrefix + strconv.Itoa(n)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		ok, err := meta.SetNX(ctx, key, owner, 30*time.Minute).Result()
		cancel()
		if err != nil || !ok {
			continue
		}
		t.Cleanup(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := meta.Del(ctx, key).Err(); err != nil {
				t.Logf("release redis db %d: %v", n, err)
			}
			closeQuietly(t, "redis meta", meta)
		})
		return n
	}
	closeQuietly(t, "redis meta", meta)
	return 1
}
