package cli

import "time"

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	Debug      bool
	ListModels bool
	HistoryDB  string

	// Client flags
	ServerURL string
	Timeout   time.Duration
	Format    string
	NoAudio   bool

	// Server flags
	Listen    string
	PublicURL string
	Provider  string
	Fallback  string
	NoSpeech  bool
	AccessLog bool

	// History flags
	Limit int
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		ServerURL: "http://localhost:5000",
		Format:    "text",
		Provider:  "openai",
		AccessLog: true,
		Limit:     20,
	}
}
