package middleware

import (
	"context"
	"errors"
	"strconv"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantResolver finds the default tenant of a user
type TenantResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

// TenantBinding binds exactly one tenant to the request context. A tenant
// named by the identity wins; otherwise the user's default tenant is looked
// up. Requests left without a tenant are rejected.
func TenantBinding(resolver TenantResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, _ := GetIdentity(c)
		tenantID := identity.TenantID

		if tenantID == uuid.Nil && identity.UserID != uuid.Nil && resolver != nil {
			resolved, err := resolver.Resolve(c.Request.Context(), identity.UserID)
			switch {
			case err == nil:
				tenantID = resolved
			case errors.Is(err, shared.ErrNoTenantBound):
			case shared.IsRetryable(err):
				logger.GetGinLogger(c).Warn("Tenant lookup unavailable", zap.Error(err))
				c.Header("Retry-After", strconv.Itoa(RetryAfterSeconds))
				abortWithError(c, dto.ErrCodeTransient, "Tenant lookup is temporarily unavailable")
				return
			default:
				logger.GetGinLogger(c).Error("Tenant lookup failed", zap.Error(err))
				abortWithError(c, dto.ErrCodeInternal, "An unexpected error occurred")
				return
			}
		}

		if tenantID == uuid.Nil {
			abortWithError(c, dto.ErrCodeNoTenant, shared.ErrNoTenantBound.Message)
			return
		}

		c.Request = c.Request.WithContext(logger.WithTenant(c.Request.Context(), tenantID))
		c.Next()
	}
}

// RetryAfterSeconds is the Retry-After hint sent with transient failures
const RetryAfterSeconds = 1
