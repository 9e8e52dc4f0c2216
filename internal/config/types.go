package config

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	Turso         TursoConfig
	Sheets        SheetsConfig
	Slack         SlackConfig
	ProjectID     string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// SheetsConfig points at the spreadsheet CRUD proxy used for remote sync.
// An empty URL disables remote sync entirely.
type SheetsConfig struct {
	URL    string
	Secret string
}

type SlackConfig struct {
	Token     string
	ChannelID string
}
