package service

import (
	"fmt"
	"testing"

	"relaybot/internal/domain"
	"relaybot/internal/testutil"

	"github.com/stretchr/testify/assert"
)

func TestOperatorDirectory_ResolveAll(t *testing.T) {
	dir := NewOperatorDirectory([]string{"alice", "bob"}, testutil.NewTestLogger())

	courier := new(testutil.MockCourier)
	courier.On("Resolve", "alice").Return(int64(100), nil)
	courier.On("Resolve", "bob").Return(int64(0), fmt.Errorf("chat not found"))

	dir.ResolveAll(courier)

	// alice resolved, bob still addressed by handle
	assert.Equal(t, []domain.Address{domain.Numeric(100), domain.ByHandle("bob")}, dir.Candidates())
	assert.Equal(t, []domain.Address{domain.Numeric(100), domain.ByHandle("bob")}, dir.Recipients())
	courier.AssertExpectations(t)
}

func TestOperatorDirectory_ResolveAll_TotalFailure(t *testing.T) {
	dir := NewOperatorDirectory([]string{"alice", "bob"}, testutil.NewTestLogger())

	courier := new(testutil.MockCourier)
	courier.On("Resolve", "alice").Return(int64(0), fmt.Errorf("unreachable"))
	courier.On("Resolve", "bob").Return(int64(0), fmt.Errorf("unreachable"))

	dir.ResolveAll(courier)

	// Handle-based addressing remains available for every operator.
	assert.Equal(t, []domain.Address{domain.ByHandle("alice"), domain.ByHandle("bob")}, dir.Candidates())
}

func TestOperatorDirectory_Register(t *testing.T) {
	tests := []struct {
		name     string
		id       int64
		handle   string
		expected bool
	}{
		{
			name:     "configured handle",
			id:       100,
			handle:   "alice",
			expected: true,
		},
		{
			name:     "case insensitive match",
			id:       100,
			handle:   "ALICE",
			expected: true,
		},
		{
			name:     "unknown handle refused",
			id:       200,
			handle:   "mallory",
			expected: false,
		},
		{
			name:     "empty handle refused",
			id:       300,
			handle:   "",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := NewOperatorDirectory([]string{"alice"}, testutil.NewTestLogger())

			assert.Equal(t, tt.expected, dir.Register(tt.id, tt.handle))
			if tt.expected {
				assert.True(t, dir.IsOperator(tt.id, ""))
			} else {
				assert.False(t, dir.IsOperator(tt.id, tt.handle))
			}
		})
	}
}

func TestOperatorDirectory_Register_Idempotent(t *testing.T) {
	dir := NewOperatorDirectory([]string{"alice"}, testutil.NewTestLogger())

	assert.True(t, dir.Register(100, "alice"))
	assert.True(t, dir.Register(100, "alice"))
	assert.Equal(t, []domain.Address{domain.Numeric(100)}, dir.Candidates())
}

func TestOperatorDirectory_IsOperator(t *testing.T) {
	dir := NewOperatorDirectory([]string{"Alice"}, testutil.NewTestLogger())

	assert.True(t, dir.IsOperator(0, "alice"), "configured handle, case-insensitive")
	assert.False(t, dir.IsOperator(999, "mallory"))
	assert.False(t, dir.IsOperator(999, ""))

	dir.Register(999, "alice")
	assert.True(t, dir.IsOperator(999, ""), "known numeric ID without handle")
}

func TestOperatorDirectory_CandidateOrder(t *testing.T) {
	dir := NewOperatorDirectory([]string{"carol", "alice", "bob"}, testutil.NewTestLogger())
	dir.Register(300, "carol")
	dir.Register(100, "alice")

	// Numeric IDs first in ascending order, then unresolved handles in
	// configured order.
	assert.Equal(t, []domain.Address{
		domain.Numeric(100),
		domain.Numeric(300),
		domain.ByHandle("bob"),
	}, dir.Candidates())

	// Recipients keep configured order, one address per operator.
	assert.Equal(t, []domain.Address{
		domain.Numeric(300),
		domain.Numeric(100),
		domain.ByHandle("bob"),
	}, dir.Recipients())
}
