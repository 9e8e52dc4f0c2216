package selector

import (
	"errors"

	"github.com/kritsw/courtledger/internal/ledger"
)

// ErrInsufficientPlayers is returned when fewer than 4 candidates are available.
var ErrInsufficientPlayers = errors.New("not enough free players to form a team")

// Pairing is a 2v2 split of four players. Diff is the absolute difference
// of the teams' summed skill levels.
type Pairing struct {
	TeamA [2]ledger.Player `json:"teamA"`
	TeamB [2]ledger.Player `json:"teamB"`
	Diff  int              `json:"diff"`
}

// Players flattens the pairing back into slot order: 0-1 team A, 2-3 team B.
func (p Pairing) Players() []ledger.Player {
	return []ledger.Player{p.TeamA[0], p.TeamA[1], p.TeamB[0], p.TeamB[1]}
}

// GenderFilter narrows the random suggestion pool by gender composition.
type GenderFilter string

const (
	GenderAny    GenderFilter = "Any"
	GenderMale   GenderFilter = "Male"
	GenderFemale GenderFilter = "Female"
	GenderMixed  GenderFilter = "Mixed"
)
