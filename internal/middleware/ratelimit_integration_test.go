//go:build integration

package middleware

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/plumecms/cloud/internal/cache"
	"github.com/plumecms/cloud/internal/testutil"
)

// TestAuthRateLimitConcurrency verifies the token bucket under
// concurrent load. Requires Redis.
func TestAuthRateLimitConcurrency(t *testing.T) {
	ctx := context.Background()

	redisURL := testutil.RequireEnv(t, "REDIS_URL")
	cacheClient, err := cache.New(ctx, redisURL)
	if err != nil {
		t.Skipf("Skipping integration test: Redis not available: %v", err)
	}
	defer cacheClient.Close()

	// Clear any existing rate limit state
	if err := testutil.FlushRedis(ctx, cacheClient.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	ip := "198.51.100.7"
	rpm := 10 // Low limit to trigger easily
	burst := 5

	var allowed, rejected int64

	// 20 concurrent goroutines, each making 3 requests
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 3; j++ {
				result, err := cacheClient.CheckAuthRateLimit(ctx, ip, rpm, burst)
				if err != nil {
					t.Errorf("CheckAuthRateLimit error: %v", err)
					return
				}
				if result.Allowed {
					atomic.AddInt64(&allowed, 1)
				} else {
					atomic.AddInt64(&rejected, 1)
				}
			}
		}()
	}

	wg.Wait()

	total := allowed + rejected
	t.Logf("Concurrency test: %d allowed, %d rejected (total: %d)", allowed, rejected, total)

	// With 60 requests total against 10 RPM (burst 5), most should be rejected.
	if allowed > int64(burst+rpm) {
		t.Errorf("Too many requests allowed: %d (expected <= %d)", allowed, burst+rpm)
	}
	if rejected == 0 {
		t.Error("Expected some requests to be rejected")
	}
}
