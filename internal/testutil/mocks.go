package testutil

import (
	"relaybot/internal/domain"
	"relaybot/internal/transport"

	"github.com/stretchr/testify/mock"
)

// MockBanRepository is a mock for repository.BanRepository
type MockBanRepository struct {
	mock.Mock
}

func (m *MockBanRepository) Ban(userID int64) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockBanRepository) Unban(userID int64) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockBanRepository) IsBanned(userID int64) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}

// MockCourier is a mock for transport.Courier
type MockCourier struct {
	mock.Mock
}

func (m *MockCourier) Send(to domain.Address, text string, opts ...interface{}) (int, error) {
	args := m.Called(to, text)
	return args.Int(0), args.Error(1)
}

func (m *MockCourier) Copy(to domain.Address, src transport.MessageRef) (int, error) {
	args := m.Called(to, src)
	return args.Int(0), args.Error(1)
}

func (m *MockCourier) Resolve(handle string) (int64, error) {
	args := m.Called(handle)
	return args.Get(0).(int64), args.Error(1)
}
