package counter

import (
	"context"
	"fmt"
	"time"

	"github.com/DanielHoffmann/AuthGate/internal/pkg/cache"
)

// Fixed-window attempt counters in Redis, used to throttle credential
// guessing on the login and password-reset endpoints. The key carries the
// window start so counts reset when the window rolls over; EXPIRE keeps
// stale windows from accumulating.

const (
	loginPrefix = "auth:counters:login"
	resetPrefix = "auth:counters:reset"
)

func windowKey(prefix, subject string, window time.Duration) string {
	bucket := time.Now().Unix() / int64(window.Seconds())
	return fmt.Sprintf("%s:%s:%d", prefix, subject, bucket)
}

func hit(prefix, subject string, window time.Duration) (int64, error) {
	ctx := context.Background()
	rdb := cache.GetClient()
	key := windowKey(prefix, subject, window)

	n, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		// First hit in this window owns the expiry.
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// HitLogin counts a login attempt for the subject (email or client address)
// and returns the attempt count within the current window.
func HitLogin(subject string, window time.Duration) (int64, error) {
	return hit(loginPrefix, subject, window)
}

// HitReset counts a password-reset request for the subject.
func HitReset(subject string, window time.Duration) (int64, error) {
	return hit(resetPrefix, subject, window)
}

// ClearLogin drops the current login window for the subject, e.g. after a
// successful authentication.
func ClearLogin(subject string, window time.Duration) error {
	ctx := context.Background()
	return cache.GetClient().Del(ctx, windowKey(loginPrefix, subject, window)).Err()
}
