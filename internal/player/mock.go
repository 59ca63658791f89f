package player

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRunner is a testify mock of Runner.
//
//	runner := new(MockRunner)
//	runner.On("Run", mock.Anything, "/usr/bin/paplay", "/tmp/bell.oga").Return(nil)
type MockRunner struct {
	mock.Mock
}

// Run records the invocation and returns the configured error.
func (m *MockRunner) Run(ctx context.Context, player, sound string) error {
	args := m.Called(ctx, player, sound)
	return args.Error(0)
}
