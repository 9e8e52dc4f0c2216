package ledger

// LedgerStore is the single source of truth for players, sessions and games.
// Mutation operations keep the derived fields (player status, shuttle counts,
// gender mix, average level) consistent with the underlying facts.
type LedgerStore interface {
	// Players
	AddPlayer(name string, gender Gender, level Level) (*Player, error)
	UpdatePlayer(p Player) error
	GetPlayer(id string) (*Player, error)
	GetPlayers(ids []string) ([]Player, error)
	GetAllPlayers() ([]Player, error)
	TogglePresence(playerID string) error
	TogglePaymentStatus(playerID, sessionID string) error

	// Games
	AddGame(params GameParams) (*GameRecord, error)
	UpdateGame(gameID string, params GameParams) error
	EndGame(gameID string, scores *Scores) error
	UpdateGameScores(gameID string, scores Scores) error
	GetGame(id string) (*GameRecord, error)
	GetSessionGames(sessionID string) ([]GameRecord, error)
	GetAllGames() ([]GameRecord, error)

	// Sessions
	StartSession() (*Session, error)
	CloseSession() error
	GetSession(id string) (*Session, error)
	GetAllSessions() ([]Session, error)
	ActiveSession() (*Session, error)
	SetViewedSession(sessionID string)
	ViewedSession() (*Session, error)

	// Settings
	GetSettings() (Settings, error)
	UpdateSettings(s Settings) error

	// Full-collection replacement, used by remote sync pulls.
	ReplacePlayers(players []Player) error
	ReplaceSessions(sessions []Session) error
	ReplaceGames(games []GameRecord) error
}
