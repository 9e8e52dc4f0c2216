package ledger

import (
	"database/sql"
	"errors"
	"sync"
)

// store handles all database operations for the ledger.
type store struct {
	db *sql.DB
	mu sync.RWMutex

	// viewedSessionID is the session currently selected for management.
	// It is UI state and deliberately not persisted; when empty, the
	// active session (if any) is considered viewed.
	viewedSessionID string
}

// Sentinel errors returned by mutation operations. Validation and conflict
// failures leave every collection untouched.
var (
	ErrNoViewedSession = errors.New("no session is currently viewed")
	ErrPlayerCount     = errors.New("a game requires exactly 4 distinct players")
	ErrPlayerBusy      = errors.New("player is already playing in the active session")
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Level is the ordinal skill scale, Beginner..Pro mapped to 1..6.
type Level int

const (
	LevelBeginner Level = iota + 1
	LevelNovice
	LevelIntermediate
	LevelAdvanced
	LevelExpert
	LevelPro
)

var levelNames = map[Level]string{
	LevelBeginner:     "Beginner",
	LevelNovice:       "Novice",
	LevelIntermediate: "Intermediate",
	LevelAdvanced:     "Advanced",
	LevelExpert:       "Expert",
	LevelPro:          "Pro",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "Beginner"
}

// ParseLevel maps a level name back to its ordinal. Unknown names map to Beginner.
func ParseLevel(name string) Level {
	for l, n := range levelNames {
		if n == name {
			return l
		}
	}
	return LevelBeginner
}

type PlayerStatus string

const (
	StatusFree    PlayerStatus = "Free"
	StatusPlaying PlayerStatus = "Playing"
)

// Player is a club member. Players are never hard-deleted, only deactivated.
type Player struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Gender       Gender       `json:"gender"`
	Level        Level        `json:"level"`
	Active       bool         `json:"active"`
	Status       PlayerStatus `json:"status"`
	VisitCount   int          `json:"visitCount"`
	ShuttleCount float64      `json:"shuttleCount"`
}

// Session is a bounded block of court time with its own roster and game history.
// At most one session is open at any time.
type Session struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	StartTime        int64           `json:"startTime"`
	EndTime          *int64          `json:"endTime,omitempty"`
	Currency         string          `json:"currency"`
	IsClosed         bool            `json:"isClosed"`
	GameIDs          []string        `json:"gameIds"`
	PresentPlayerIDs []string        `json:"presentPlayerIds"`
	PaymentStatus    map[string]bool `json:"paymentStatus"`
}

// GameRecord is one 2v2 match. Slots 0-1 are team A, slots 2-3 team B.
type GameRecord struct {
	ID           string   `json:"id"`
	SessionID    string   `json:"sessionId"`
	CreatedAt    int64    `json:"createdAt"`
	SequenceID   int      `json:"sequenceId"`
	ShuttlesUsed float64  `json:"shuttlesUsed"`
	PlayerIDs    []string `json:"players"`
	GenderMix    string   `json:"genderMix"`
	AvgLevel     float64  `json:"avgLevel"`
	Notes        string   `json:"notes,omitempty"`
	IsActive     bool     `json:"isActive"`
	ScoreA       string   `json:"scoreA,omitempty"`
	ScoreB       string   `json:"scoreB,omitempty"`
}

// Scores carries the optional final score strings for each team.
type Scores struct {
	TeamA string `json:"scoreA"`
	TeamB string `json:"scoreB"`
}

// GameParams is the caller-supplied portion of a game record, shared by
// AddGame and UpdateGame.
type GameParams struct {
	PlayerIDs    []string `json:"players"`
	SequenceID   int      `json:"sequenceId"`
	ShuttlesUsed float64  `json:"shuttlesUsed"`
	Notes        string   `json:"notes"`
}

// Settings is the operator configuration stored alongside the collections.
type Settings struct {
	Currency         string  `json:"currency"`
	CourtFee         float64 `json:"courtFee"`
	ShuttlePrice     float64 `json:"shuttlePrice"`
	EnableAutoSelect bool    `json:"enableAutoSelect"`
}

// DefaultSettings mirrors the defaults a fresh install starts with.
func DefaultSettings() Settings {
	return Settings{
		Currency:         "THB",
		CourtFee:         70,
		ShuttlePrice:     25,
		EnableAutoSelect: true,
	}
}
