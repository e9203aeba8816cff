package tenancy

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/tenancy"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultCacheTTL applies when no TTL is configured
const DefaultCacheTTL = 10 * time.Minute

// Cache is the lookup cache in front of the membership table
type Cache interface {
	Get(ctx context.Context, userID uuid.UUID) (uuid.UUID, bool, error)
	Set(ctx context.Context, userID, tenantID uuid.UUID, ttl time.Duration) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// Directory resolves the tenant a user acts for when the token carries none.
// The cache is best effort: its failures are logged and the repository answers.
type Directory struct {
	repo   tenancy.MembershipRepository
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewDirectory creates a tenant directory. cache may be nil.
func NewDirectory(repo tenancy.MembershipRepository, cache Cache, ttl time.Duration, log *zap.Logger) *Directory {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Directory{repo: repo, cache: cache, ttl: ttl, logger: log, now: time.Now}
}

// Resolve returns the default tenant of a user
func (d *Directory) Resolve(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	if userID == uuid.Nil {
		return uuid.Nil, shared.ErrNoTenantBound
	}

	if d.cache != nil {
		tenantID, ok, err := d.cache.Get(ctx, userID)
		if err != nil {
			logger.Enrich(ctx, d.logger).Warn("tenant cache read failed", zap.Error(err))
		} else if ok {
			return tenantID, nil
		}
	}

	tenantID, err := d.repo.FindDefaultTenant(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}

	if d.cache != nil {
		if err := d.cache.Set(ctx, userID, tenantID, d.ttl); err != nil {
			logger.Enrich(ctx, d.logger).Warn("tenant cache write failed", zap.Error(err))
		}
	}
	return tenantID, nil
}

// SetDefault binds a user to a default tenant and drops the cached lookup
func (d *Directory) SetDefault(ctx context.Context, userID, tenantID uuid.UUID) error {
	m, err := tenancy.NewMembership(userID, tenantID, d.now())
	if err != nil {
		return err
	}
	if err := d.repo.Save(ctx, m); err != nil {
		return err
	}

	if d.cache != nil {
		if err := d.cache.Delete(ctx, userID); err != nil {
			logger.Enrich(ctx, d.logger).Warn("tenant cache invalidation failed",
				zap.String("user_id", userID.String()),
				zap.Error(err))
		}
	}
	return nil
}
