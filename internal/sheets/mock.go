package sheets

import "sync"

// MockClient is a mock implementation of the SheetsClient interface for
// testing. It is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	// Spies for method calls
	GetFunc    func(entity Entity) ([]Row, error)
	UpsertFunc func(entity Entity, rows []Row) error

	// Call records
	GetCalls    []Entity
	UpsertCalls map[Entity][][]Row
}

// NewMockClient creates a new mock instance.
func NewMockClient() *MockClient {
	return &MockClient{UpsertCalls: map[Entity][][]Row{}}
}

// Reset clears all call records.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls = nil
	m.UpsertCalls = map[Entity][][]Row{}
}

func (m *MockClient) Get(entity Entity) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls = append(m.GetCalls, entity)
	if m.GetFunc != nil {
		return m.GetFunc(entity)
	}
	return []Row{}, nil
}

func (m *MockClient) Upsert(entity Entity, rows []Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls[entity] = append(m.UpsertCalls[entity], rows)
	if m.UpsertFunc != nil {
		return m.UpsertFunc(entity, rows)
	}
	return nil
}
