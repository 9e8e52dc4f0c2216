package metrics

import "sync"

// Mock is a no-op Metrics implementation that records call counts for tests.
type Mock struct {
	mu sync.Mutex

	GamesRecordedCalls     int
	SessionsClosedCalls    int
	SheetPushCalls         int
	SheetPushFailureCalls  int
	SlackNotifSentCalls    int
	SlackNotifFailedCalls  int
	SelectorObservations   []float64
	StartupTimeObservation float64
}

var _ Metrics = (*Mock)(nil)

func NewMockMetrics() *Mock {
	return &Mock{}
}

func (m *Mock) IncGamesRecorded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GamesRecordedCalls++
}

func (m *Mock) IncSessionsClosed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionsClosedCalls++
}

func (m *Mock) IncSheetPushes() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SheetPushCalls++
}

func (m *Mock) IncSheetPushFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SheetPushFailureCalls++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SlackNotifSentCalls++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SlackNotifFailedCalls++
}

func (m *Mock) ObserveSelectorDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SelectorObservations = append(m.SelectorObservations, duration)
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartupTimeObservation = duration
}
