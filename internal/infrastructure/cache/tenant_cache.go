// Package cache holds the tenant directory cache: the mapping from a user to
// the tenant they act for when their token carries none.
package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TenantCache stores default tenant lookups with a TTL.
// Get reports a miss with ok false and a nil error.
type TenantCache interface {
	Get(ctx context.Context, userID uuid.UUID) (tenantID uuid.UUID, ok bool, err error)
	Set(ctx context.Context, userID, tenantID uuid.UUID, ttl time.Duration) error
	Delete(ctx context.Context, userID uuid.UUID) error
	Close() error
}
