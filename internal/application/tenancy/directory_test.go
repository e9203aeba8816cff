package tenancy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/tenancy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) FindDefaultTenant(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockMembershipRepository) Save(ctx context.Context, membership *tenancy.Membership) error {
	return m.Called(ctx, membership).Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, userID uuid.UUID) (uuid.UUID, bool, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(uuid.UUID), args.Bool(1), args.Error(2)
}

func (m *MockCache) Set(ctx context.Context, userID, tenantID uuid.UUID, ttl time.Duration) error {
	return m.Called(ctx, userID, tenantID, ttl).Error(0)
}

func (m *MockCache) Delete(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func TestDirectory_Resolve(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	tenantID := uuid.New()

	t.Run("cache hit skips the repository", func(t *testing.T) {
		repo := new(MockMembershipRepository)
		cache := new(MockCache)
		cache.On("Get", ctx, userID).Return(tenantID, true, nil)

		got, err := NewDirectory(repo, cache, time.Minute, nil).Resolve(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, tenantID, got)
		repo.AssertNotCalled(t, "FindDefaultTenant", mock.Anything, mock.Anything)
	})

	t.Run("cache miss loads and stores", func(t *testing.T) {
		repo := new(MockMembershipRepository)
		cache := new(MockCache)
		cache.On("Get", ctx, userID).Return(uuid.Nil, false, nil)
		repo.On("FindDefaultTenant", ctx, userID).Return(tenantID, nil)
		cache.On("Set", ctx, userID, tenantID, time.Minute).Return(nil)

		got, err := NewDirectory(repo, cache, time.Minute, nil).Resolve(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, tenantID, got)
		cache.AssertExpectations(t)
	})

	t.Run("cache failures are logged and ignored", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		repo := new(MockMembershipRepository)
		cache := new(MockCache)
		cache.On("Get", ctx, userID).Return(uuid.Nil, false, errors.New("connection refused"))
		repo.On("FindDefaultTenant", ctx, userID).Return(tenantID, nil)
		cache.On("Set", ctx, userID, tenantID, DefaultCacheTTL).Return(errors.New("connection refused"))

		got, err := NewDirectory(repo, cache, 0, zap.New(core)).Resolve(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, tenantID, got)
		assert.Equal(t, 2, logs.Len())
	})

	t.Run("user without membership", func(t *testing.T) {
		repo := new(MockMembershipRepository)
		repo.On("FindDefaultTenant", ctx, userID).Return(uuid.Nil, shared.ErrNoTenantBound)

		_, err := NewDirectory(repo, nil, time.Minute, nil).Resolve(ctx, userID)
		assert.ErrorIs(t, err, shared.ErrNoTenantBound)
	})

	t.Run("nil user", func(t *testing.T) {
		_, err := NewDirectory(new(MockMembershipRepository), nil, 0, nil).Resolve(ctx, uuid.Nil)
		assert.ErrorIs(t, err, shared.ErrNoTenantBound)
	})
}

func TestDirectory_SetDefault(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	tenantID := uuid.New()

	repo := new(MockMembershipRepository)
	cache := new(MockCache)
	repo.On("Save", ctx, mock.MatchedBy(func(m *tenancy.Membership) bool {
		return m.UserID == userID && m.TenantID == tenantID
	})).Return(nil)
	cache.On("Delete", ctx, userID).Return(nil)

	require.NoError(t, NewDirectory(repo, cache, time.Minute, nil).SetDefault(ctx, userID, tenantID))
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)

	err := NewDirectory(repo, cache, time.Minute, nil).SetDefault(ctx, userID, uuid.Nil)
	assert.ErrorIs(t, err, shared.ErrNoTenantBound)
}
