package notifier

import (
	"sync"

	"github.com/kritsw/courtledger/internal/ledger"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	SendSessionSummaryFunc func(sess *ledger.Session, costs []ledger.PlayerCost, settings ledger.Settings, dryRun bool) error
	SendGameResultFunc     func(game *ledger.GameRecord, players []ledger.Player, dryRun bool) error

	// Call records
	SendSessionSummaryCalls []SessionSummaryCall
	SendGameResultCalls     []GameResultCall
}

// SessionSummaryCall holds the arguments for a call to SendSessionSummary.
type SessionSummaryCall struct {
	Session *ledger.Session
	Costs   []ledger.PlayerCost
	DryRun  bool
}

// GameResultCall holds the arguments for a call to SendGameResult.
type GameResultCall struct {
	Game   *ledger.GameRecord
	DryRun bool
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendSessionSummaryCalls = nil
	m.SendGameResultCalls = nil
}

var _ Notifier = (*Mock)(nil)

func (m *Mock) SendSessionSummary(sess *ledger.Session, costs []ledger.PlayerCost, settings ledger.Settings, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendSessionSummaryCalls = append(m.SendSessionSummaryCalls, SessionSummaryCall{Session: sess, Costs: costs, DryRun: dryRun})
	if m.SendSessionSummaryFunc != nil {
		return m.SendSessionSummaryFunc(sess, costs, settings, dryRun)
	}
	return nil
}

func (m *Mock) SendGameResult(game *ledger.GameRecord, players []ledger.Player, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendGameResultCalls = append(m.SendGameResultCalls, GameResultCall{Game: game, DryRun: dryRun})
	if m.SendGameResultFunc != nil {
		return m.SendGameResultFunc(game, players, dryRun)
	}
	return nil
}
