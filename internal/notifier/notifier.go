package notifier

import (
	"github.com/kritsw/courtledger/internal/ledger"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// Sent when a session is closed out, with the per-player cost breakdown.
	SendSessionSummary(sess *ledger.Session, costs []ledger.PlayerCost, settings ledger.Settings, dryRun bool) error
	// Sent when a game finishes with a recorded score.
	SendGameResult(game *ledger.GameRecord, players []ledger.Player, dryRun bool) error
}
