package agent

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"humesync/internal/adapters/hume"
	"humesync/internal/domain/agent"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, a *agent.Agent) error {
	args := m.Called(ctx, a)
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*agent.Agent, error) {
	args := m.Called(ctx, id)
	if a, ok := args.Get(0).(*agent.Agent); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) GetByName(ctx context.Context, name string) (*agent.Agent, error) {
	args := m.Called(ctx, name)
	if a, ok := args.Get(0).(*agent.Agent); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) Update(ctx context.Context, a *agent.Agent) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockRepository) SetRemoteConfigID(ctx context.Context, id uuid.UUID, configID string) error {
	return m.Called(ctx, id, configID).Error(0)
}

func (m *mockRepository) List(ctx context.Context) ([]*agent.Agent, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*agent.Agent), args.Error(1)
}

func (m *mockRepository) ListSynced(ctx context.Context) ([]*agent.Agent, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*agent.Agent), args.Error(1)
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockRemote struct {
	mock.Mock
}

func (m *mockRemote) DoCreate(ctx context.Context, req hume.CreateRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockRemote) DoUpdate(ctx context.Context, configID string, req hume.UpdateRequest) error {
	return m.Called(ctx, configID, req).Error(0)
}

func (m *mockRemote) DoDelete(ctx context.Context, configID string) error {
	return m.Called(ctx, configID).Error(0)
}

func (m *mockRemote) DoGet(ctx context.Context, configID string) (agent.Snapshot, error) {
	args := m.Called(ctx, configID)
	if snap, ok := args.Get(0).(agent.Snapshot); ok {
		return snap, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRemote) DoList(ctx context.Context) ([]agent.Snapshot, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]agent.Snapshot); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, configID string) (agent.Snapshot, bool, error) {
	args := m.Called(ctx, configID)
	snap, _ := args.Get(0).(agent.Snapshot)
	return snap, args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, configID string, snapshot agent.Snapshot, ttl time.Duration) error {
	return m.Called(ctx, configID, snapshot, ttl).Error(0)
}

func (m *mockCache) Invalidate(ctx context.Context, configIDs ...string) error {
	return m.Called(ctx, configIDs).Error(0)
}

type mockLocker struct {
	mock.Mock
}

func (m *mockLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, name, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockLocker) Release(ctx context.Context, name, token string) error {
	return m.Called(ctx, name, token).Error(0)
}

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) PublishAgentSynced(ctx context.Context, id uuid.UUID, name, configID, operation string) error {
	return m.Called(ctx, id, name, configID, operation).Error(0)
}

func (m *mockEvents) PublishAgentDeleted(ctx context.Context, id uuid.UUID, name, configID string, remoteDeleted bool) error {
	return m.Called(ctx, id, name, configID, remoteDeleted).Error(0)
}

func (m *mockEvents) PublishSyncFailed(ctx context.Context, id uuid.UUID, name, operation string, cause error) error {
	return m.Called(ctx, id, name, operation, cause).Error(0)
}

func (m *mockEvents) PublishReconciled(ctx context.Context, checked int, missing, orphaned []string) error {
	return m.Called(ctx, checked, missing, orphaned).Error(0)
}

type fixedComposer string

func (f fixedComposer) Compose(string, *agent.Agent) string { return string(f) }
