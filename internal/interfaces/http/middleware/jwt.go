package middleware

import (
	"errors"
	"strings"

	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IdentityKey is the gin context key of the authenticated auth.Identity
const IdentityKey = "identity"

const bearerPrefix = "Bearer "

// TokenValidator verifies bearer tokens
type TokenValidator interface {
	Validate(token string) (auth.Identity, error)
}

// JWTAuth requires a valid bearer token and binds its identity to the request
func JWTAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, dto.ErrCodeUnauthorized, "Missing authorization header")
			return
		}
		token, ok := strings.CutPrefix(header, bearerPrefix)
		if !ok || strings.TrimSpace(token) == "" {
			abortWithError(c, dto.ErrCodeUnauthorized, "Invalid authorization header format")
			return
		}

		identity, err := validator.Validate(strings.TrimSpace(token))
		if err != nil {
			logger.GetGinLogger(c).Debug("Token rejected", zap.Error(err))
			if errors.Is(err, auth.ErrExpiredToken) {
				abortWithError(c, dto.ErrCodeTokenExpired, "Token has expired")
				return
			}
			abortWithError(c, dto.ErrCodeTokenInvalid, "Invalid token")
			return
		}

		bindIdentity(c, identity)
		c.Next()
	}
}

// HeaderIdentity trusts the X-User-ID and X-Tenant-ID headers. It stands in
// for JWTAuth when auth is disabled in development.
func HeaderIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		var identity auth.Identity
		if raw := c.GetHeader(UserHeader); raw != "" {
			userID, err := uuid.Parse(raw)
			if err != nil {
				abortWithError(c, dto.ErrCodeBadRequest, "Invalid X-User-ID header")
				return
			}
			identity.UserID = userID
		}
		if raw := c.GetHeader(TenantHeader); raw != "" {
			tenantID, err := uuid.Parse(raw)
			if err != nil {
				abortWithError(c, dto.ErrCodeBadRequest, "Invalid X-Tenant-ID header")
				return
			}
			identity.TenantID = tenantID
		}

		bindIdentity(c, identity)
		c.Next()
	}
}

func bindIdentity(c *gin.Context, identity auth.Identity) {
	c.Set(IdentityKey, identity)
	if identity.UserID != uuid.Nil {
		c.Request = c.Request.WithContext(logger.WithUser(c.Request.Context(), identity.UserID))
	}
}

// GetIdentity returns the identity bound by JWTAuth or HeaderIdentity
func GetIdentity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return auth.Identity{}, false
	}
	identity, ok := v.(auth.Identity)
	return identity, ok
}
