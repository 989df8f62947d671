//go:build !production

package testutil

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/holdem-table/internal/protocol"
)

// MockStore 复制服务存储 mock
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveSnapshot(ctx context.Context, tableID string, state json.RawMessage, notifications []string) (*protocol.Snapshot, error) {
	args := m.Called(ctx, tableID, state, notifications)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*protocol.Snapshot), args.Error(1)
}

func (m *MockStore) LoadSnapshot(ctx context.Context, tableID string) (*protocol.Snapshot, error) {
	args := m.Called(ctx, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*protocol.Snapshot), args.Error(1)
}

func (m *MockStore) SaveAction(ctx context.Context, tableID string, seat int, action string, amount int64) (*protocol.ActionRecord, error) {
	args := m.Called(ctx, tableID, seat, action, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*protocol.ActionRecord), args.Error(1)
}

func (m *MockStore) LoadAction(ctx context.Context, tableID string, seat int) (*protocol.ActionRecord, error) {
	args := m.Called(ctx, tableID, seat)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*protocol.ActionRecord), args.Error(1)
}

func (m *MockStore) DeleteAction(ctx context.Context, tableID string, seat int) error {
	args := m.Called(ctx, tableID, seat)
	return args.Error(0)
}

func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockLimiter 速率限制器 mock
type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(key string) bool {
	args := m.Called(key)
	return args.Bool(0)
}
