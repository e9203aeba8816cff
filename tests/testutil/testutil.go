// Package testutil provides fixtures and helpers shared by the integration tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// NewTestUUID generates a deterministic UUID from a seed
func NewTestUUID(seed string) uuid.UUID {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed))
}

// TenantA returns the first tenant used by isolation tests
func TenantA() uuid.UUID {
	return NewTestUUID("tenant-a")
}

// TenantB returns the second tenant used by isolation tests
func TenantB() uuid.UUID {
	return NewTestUUID("tenant-b")
}

// TestUserID returns a standard user ID for tests
func TestUserID() uuid.UUID {
	return NewTestUUID("test-user")
}

// ContextWithTimeout returns a context cancelled when the test ends or the timeout passes
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// RequireEventually polls condition until it holds or the timeout passes
func RequireEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...interface{}) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(interval)
	}

	require.Fail(t, "Condition not met within timeout", msgAndArgs...)
}

// RunConcurrently starts n workers behind a common gate and waits for all of
// them. Each worker's error is returned at its index.
func RunConcurrently(n int, worker func(i int) error) []error {
	errs := make([]error, n)
	start := make(chan struct{})
	done := make(chan struct{}, n)

	for i := 0; i < n; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			<-start
			errs[i] = worker(i)
		}(i)
	}

	close(start)
	for i := 0; i < n; i++ {
		<-done
	}
	return errs
}
