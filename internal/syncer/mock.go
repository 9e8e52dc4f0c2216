package syncer

import "sync"

// MockSyncer is a mock implementation of the Syncer interface for testing.
// It is safe for concurrent use.
type MockSyncer struct {
	mu sync.Mutex

	// Spies for method calls
	PullAllFunc      func() error
	PushPlayersFunc  func() error
	PushSessionsFunc func() error
	PushGamesFunc    func() error
	PushSettingsFunc func() error
	PushAllFunc      func() error

	// Call records
	PullAllCalls      int
	PushPlayersCalls  int
	PushSessionsCalls int
	PushGamesCalls    int
	PushSettingsCalls int
	PushAllCalls      int
}

// NewMock creates a new mock Syncer.
func NewMock() *MockSyncer {
	return &MockSyncer{}
}

var _ Syncer = (*MockSyncer)(nil)

func (m *MockSyncer) PullAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PullAllCalls++
	if m.PullAllFunc != nil {
		return m.PullAllFunc()
	}
	return nil
}

func (m *MockSyncer) PushPlayers() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PushPlayersCalls++
	if m.PushPlayersFunc != nil {
		return m.PushPlayersFunc()
	}
	return nil
}

func (m *MockSyncer) PushSessions() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PushSessionsCalls++
	if m.PushSessionsFunc != nil {
		return m.PushSessionsFunc()
	}
	return nil
}

func (m *MockSyncer) PushGames() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PushGamesCalls++
	if m.PushGamesFunc != nil {
		return m.PushGamesFunc()
	}
	return nil
}

func (m *MockSyncer) PushSettings() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PushSettingsCalls++
	if m.PushSettingsFunc != nil {
		return m.PushSettingsFunc()
	}
	return nil
}

func (m *MockSyncer) PushAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PushAllCalls++
	if m.PushAllFunc != nil {
		return m.PushAllFunc()
	}
	return nil
}
