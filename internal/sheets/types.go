package sheets

// Entity names the remote tabs the sheet backend exposes.
type Entity string

const (
	EntityPlayers  Entity = "players"
	EntitySessions Entity = "sessions"
	EntityGames    Entity = "gameuses"
	EntitySettings Entity = "settings"
)

// Row is a single spreadsheet row keyed by column header. The backend is
// loosely typed, so values arrive as strings, numbers or booleans depending
// on how the cell was last written.
type Row map[string]any

// envelope is the response wrapper the sheet backend returns for every call.
type envelope struct {
	OK    bool   `json:"ok"`
	Rows  []Row  `json:"rows"`
	Error string `json:"error,omitempty"`
}

// pushRequest is the POST body for an upsert.
type pushRequest struct {
	Entity       Entity `json:"entity"`
	Rows         []Row  `json:"rows"`
	CaptchaToken string `json:"captchaToken,omitempty"`
}
