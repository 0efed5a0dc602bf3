package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Rrens/profilesync/internal/transport"
)

// MockRequester mocks the Requester interface
type MockRequester struct {
	mock.Mock
	expired []func()
}

func (m *MockRequester) Request(ctx context.Context, endpoint string, opts transport.Options, out any) error {
	args := m.Called(ctx, endpoint, opts, out)
	return args.Error(0)
}

func (m *MockRequester) OnSessionExpired(fn func()) {
	m.expired = append(m.expired, fn)
}

func (m *MockRequester) Close() error {
	return nil
}

// expire runs the registered session-expired listeners.
func (m *MockRequester) expire() {
	for _, fn := range m.expired {
		fn()
	}
}
