package syncer

// Syncer reconciles the local ledger with the shared spreadsheet backend.
// Pulls replace local collections wholesale; pushes are best-effort and
// never fail the operation that triggered them.
type Syncer interface {
	PullAll() error
	PushPlayers() error
	PushSessions() error
	PushGames() error
	PushSettings() error
	PushAll() error
}
