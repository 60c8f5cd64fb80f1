package domain

// Settings holds user-facing application configuration.
type Settings struct {
	// HistoryPath is the path to the local message-history database.
	HistoryPath string `toml:"history_path"`

	// PageSize is the number of results fetched per backend round-trip.
	PageSize int `toml:"page_size"`

	// RemoteURL is the base URL of a remote search API, if any.
	RemoteURL string `toml:"remote_url"`

	// RemoteToken is the bearer token for the remote search API.
	RemoteToken string `toml:"remote_token"`

	// Theme selects the TUI colour theme.
	Theme string `toml:"theme"`
}

// DefaultPageSize is used when settings carry no page size.
const DefaultPageSize = 20

// DefaultSettings returns settings with sane defaults.
func DefaultSettings() *Settings {
	return &Settings{
		PageSize: DefaultPageSize,
		Theme:    "default",
	}
}

// Normalise fills in defaults for unset fields.
func (s *Settings) Normalise() {
	if s.PageSize <= 0 {
		s.PageSize = DefaultPageSize
	}
	if s.Theme == "" {
		s.Theme = "default"
	}
}
