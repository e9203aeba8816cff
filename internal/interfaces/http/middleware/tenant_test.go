package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubResolver struct {
	tenantID uuid.UUID
	err      error
	calls    int
}

func (s *stubResolver) Resolve(context.Context, uuid.UUID) (uuid.UUID, error) {
	s.calls++
	return s.tenantID, s.err
}

func tenantRouter(identity auth.Identity, resolver TenantResolver) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), func(c *gin.Context) {
		bindIdentity(c, identity)
		c.Next()
	}, TenantBinding(resolver))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, logger.TenantID(c.Request.Context()).String())
	})
	return r
}

func TestTenantBinding(t *testing.T) {
	userID := uuid.New()
	tokenTenant := uuid.New()
	defaultTenant := uuid.New()

	t.Run("token tenant wins", func(t *testing.T) {
		resolver := &stubResolver{tenantID: defaultTenant}
		w := serve(tenantRouter(auth.Identity{UserID: userID, TenantID: tokenTenant}, resolver),
			httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, tokenTenant.String(), w.Body.String())
		assert.Zero(t, resolver.calls)
	})

	t.Run("default tenant is resolved", func(t *testing.T) {
		resolver := &stubResolver{tenantID: defaultTenant}
		w := serve(tenantRouter(auth.Identity{UserID: userID}, resolver),
			httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, defaultTenant.String(), w.Body.String())
	})

	t.Run("user without membership", func(t *testing.T) {
		w := serve(tenantRouter(auth.Identity{UserID: userID}, &stubResolver{err: shared.ErrNoTenantBound}),
			httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_NO_TENANT")
	})

	t.Run("anonymous", func(t *testing.T) {
		w := serve(tenantRouter(auth.Identity{}, nil), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("transient lookup failure", func(t *testing.T) {
		err := shared.ErrTransientStore.WithCause(errors.New("connection reset"))
		w := serve(tenantRouter(auth.Identity{UserID: userID}, &stubResolver{err: err}),
			httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "1", w.Header().Get("Retry-After"))
	})

	t.Run("unexpected lookup failure", func(t *testing.T) {
		w := serve(tenantRouter(auth.Identity{UserID: userID}, &stubResolver{err: errors.New("boom")}),
			httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
