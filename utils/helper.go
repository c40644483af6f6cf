package utils

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"strings"
	"time"

	"github.com/Glitch-Aswin/DevArticles/middlewares"
)

// IsRecoverableError reports whether err looks transient: network timeouts
// and SQLite lock contention.
func IsRecoverableError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, s := range []string{"timeout", "temporarily unavailable", "database is locked", "sqlite_busy"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// RetryWithExponentialBackoff runs operation until it succeeds, fails with a
// non-recoverable error, ctx ends or maxRetries attempts were made.
func RetryWithExponentialBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration) error {
	delay := initialDelay
	var err error

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if !IsRecoverableError(err) {
			return err
		}
		if i == maxRetries-1 {
			break
		}

		middlewares.DebugLogger.Printf("Attempt %d failed: %v. Retrying in %v...", i+1, err, delay)

		// Apply jitter: add a random duration between 0 and half the current delay.
		var jitter time.Duration
		if half := int64(delay / 2); half > 0 {
			jitter = time.Duration(rand.Int64N(half))
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry aborted after %d attempts: %w", i+1, errors.Join(ctx.Err(), err))
		case <-time.After(delay + jitter):
		}
		delay *= 2 // Exponential backoff.
	}
	// After exhausting retries, return an error wrapping the last failure.
	middlewares.ErrorLogger.Printf("operation failed after %d attempts: %v", maxRetries, err)
	return fmt.Errorf("operation failed after %d attempts: %w", maxRetries, err)
}
