package ledger

import "sync"

// MockStore is a mock implementation of the LedgerStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	AddPlayerFunc           func(name string, gender Gender, level Level) (*Player, error)
	UpdatePlayerFunc        func(p Player) error
	GetPlayerFunc           func(id string) (*Player, error)
	GetPlayersFunc          func(ids []string) ([]Player, error)
	GetAllPlayersFunc       func() ([]Player, error)
	TogglePresenceFunc      func(playerID string) error
	TogglePaymentStatusFunc func(playerID, sessionID string) error
	AddGameFunc             func(params GameParams) (*GameRecord, error)
	UpdateGameFunc          func(gameID string, params GameParams) error
	EndGameFunc             func(gameID string, scores *Scores) error
	UpdateGameScoresFunc    func(gameID string, scores Scores) error
	GetGameFunc             func(id string) (*GameRecord, error)
	GetSessionGamesFunc     func(sessionID string) ([]GameRecord, error)
	GetAllGamesFunc         func() ([]GameRecord, error)
	StartSessionFunc        func() (*Session, error)
	CloseSessionFunc        func() error
	GetSessionFunc          func(id string) (*Session, error)
	GetAllSessionsFunc      func() ([]Session, error)
	ActiveSessionFunc       func() (*Session, error)
	ViewedSessionFunc       func() (*Session, error)
	GetSettingsFunc         func() (Settings, error)
	UpdateSettingsFunc      func(s Settings) error
	ReplacePlayersFunc      func(players []Player) error
	ReplaceSessionsFunc     func(sessions []Session) error
	ReplaceGamesFunc        func(games []GameRecord) error

	// Call records
	AddGameCalls        []GameParams
	UpdateGameCalls     []string
	EndGameCalls        []string
	CloseSessionCalls   int
	StartSessionCalls   int
	TogglePresenceCalls []string
	SetViewedCalls      []string
	ReplacePlayersCalls [][]Player
	ReplaceSessionsCalls [][]Session
	ReplaceGamesCalls   [][]GameRecord
}

var _ LedgerStore = (*MockStore)(nil)

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) AddPlayer(name string, gender Gender, level Level) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddPlayerFunc != nil {
		return m.AddPlayerFunc(name, gender, level)
	}
	return &Player{Name: name, Gender: gender, Level: level, Active: true, Status: StatusFree}, nil
}

func (m *MockStore) UpdatePlayer(p Player) error {
	if m.UpdatePlayerFunc != nil {
		return m.UpdatePlayerFunc(p)
	}
	return nil
}

func (m *MockStore) GetPlayer(id string) (*Player, error) {
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(id)
	}
	return nil, nil
}

func (m *MockStore) GetPlayers(ids []string) ([]Player, error) {
	if m.GetPlayersFunc != nil {
		return m.GetPlayersFunc(ids)
	}
	return nil, nil
}

func (m *MockStore) GetAllPlayers() ([]Player, error) {
	if m.GetAllPlayersFunc != nil {
		return m.GetAllPlayersFunc()
	}
	return nil, nil
}

func (m *MockStore) TogglePresence(playerID string) error {
	m.mu.Lock()
	m.TogglePresenceCalls = append(m.TogglePresenceCalls, playerID)
	m.mu.Unlock()
	if m.TogglePresenceFunc != nil {
		return m.TogglePresenceFunc(playerID)
	}
	return nil
}

func (m *MockStore) TogglePaymentStatus(playerID, sessionID string) error {
	if m.TogglePaymentStatusFunc != nil {
		return m.TogglePaymentStatusFunc(playerID, sessionID)
	}
	return nil
}

func (m *MockStore) AddGame(params GameParams) (*GameRecord, error) {
	m.mu.Lock()
	m.AddGameCalls = append(m.AddGameCalls, params)
	m.mu.Unlock()
	if m.AddGameFunc != nil {
		return m.AddGameFunc(params)
	}
	return &GameRecord{PlayerIDs: params.PlayerIDs, ShuttlesUsed: params.ShuttlesUsed}, nil
}

func (m *MockStore) UpdateGame(gameID string, params GameParams) error {
	m.mu.Lock()
	m.UpdateGameCalls = append(m.UpdateGameCalls, gameID)
	m.mu.Unlock()
	if m.UpdateGameFunc != nil {
		return m.UpdateGameFunc(gameID, params)
	}
	return nil
}

func (m *MockStore) EndGame(gameID string, scores *Scores) error {
	m.mu.Lock()
	m.EndGameCalls = append(m.EndGameCalls, gameID)
	m.mu.Unlock()
	if m.EndGameFunc != nil {
		return m.EndGameFunc(gameID, scores)
	}
	return nil
}

func (m *MockStore) UpdateGameScores(gameID string, scores Scores) error {
	if m.UpdateGameScoresFunc != nil {
		return m.UpdateGameScoresFunc(gameID, scores)
	}
	return nil
}

func (m *MockStore) GetGame(id string) (*GameRecord, error) {
	if m.GetGameFunc != nil {
		return m.GetGameFunc(id)
	}
	return nil, nil
}

func (m *MockStore) GetSessionGames(sessionID string) ([]GameRecord, error) {
	if m.GetSessionGamesFunc != nil {
		return m.GetSessionGamesFunc(sessionID)
	}
	return nil, nil
}

func (m *MockStore) GetAllGames() ([]GameRecord, error) {
	if m.GetAllGamesFunc != nil {
		return m.GetAllGamesFunc()
	}
	return nil, nil
}

func (m *MockStore) StartSession() (*Session, error) {
	m.mu.Lock()
	m.StartSessionCalls++
	m.mu.Unlock()
	if m.StartSessionFunc != nil {
		return m.StartSessionFunc()
	}
	return &Session{}, nil
}

func (m *MockStore) CloseSession() error {
	m.mu.Lock()
	m.CloseSessionCalls++
	m.mu.Unlock()
	if m.CloseSessionFunc != nil {
		return m.CloseSessionFunc()
	}
	return nil
}

func (m *MockStore) GetSession(id string) (*Session, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(id)
	}
	return nil, nil
}

func (m *MockStore) GetAllSessions() ([]Session, error) {
	if m.GetAllSessionsFunc != nil {
		return m.GetAllSessionsFunc()
	}
	return nil, nil
}

func (m *MockStore) ActiveSession() (*Session, error) {
	if m.ActiveSessionFunc != nil {
		return m.ActiveSessionFunc()
	}
	return nil, nil
}

func (m *MockStore) SetViewedSession(sessionID string) {
	m.mu.Lock()
	m.SetViewedCalls = append(m.SetViewedCalls, sessionID)
	m.mu.Unlock()
}

func (m *MockStore) ViewedSession() (*Session, error) {
	if m.ViewedSessionFunc != nil {
		return m.ViewedSessionFunc()
	}
	return nil, nil
}

func (m *MockStore) GetSettings() (Settings, error) {
	if m.GetSettingsFunc != nil {
		return m.GetSettingsFunc()
	}
	return DefaultSettings(), nil
}

func (m *MockStore) UpdateSettings(s Settings) error {
	if m.UpdateSettingsFunc != nil {
		return m.UpdateSettingsFunc(s)
	}
	return nil
}

func (m *MockStore) ReplacePlayers(players []Player) error {
	m.mu.Lock()
	m.ReplacePlayersCalls = append(m.ReplacePlayersCalls, players)
	m.mu.Unlock()
	if m.ReplacePlayersFunc != nil {
		return m.ReplacePlayersFunc(players)
	}
	return nil
}

func (m *MockStore) ReplaceSessions(sessions []Session) error {
	m.mu.Lock()
	m.ReplaceSessionsCalls = append(m.ReplaceSessionsCalls, sessions)
	m.mu.Unlock()
	if m.ReplaceSessionsFunc != nil {
		return m.ReplaceSessionsFunc(sessions)
	}
	return nil
}

func (m *MockStore) ReplaceGames(games []GameRecord) error {
	m.mu.Lock()
	m.ReplaceGamesCalls = append(m.ReplaceGamesCalls, games)
	m.mu.Unlock()
	if m.ReplaceGamesFunc != nil {
		return m.ReplaceGamesFunc(games)
	}
	return nil
}
