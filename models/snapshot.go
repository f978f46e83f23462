package models

// SchemaVersion identifies the snapshot document format. Bump only when the
// front-end contract changes incompatibly.
const SchemaVersion = 1

// Row is one normalized leaderboard entry, independent of the originating
// source's raw field names.
type Row struct {
	Rank     int     `json:"rank"`
	Username string  `json:"username"`
	Wagered  float64 `json:"wagered"`
	Prize    float64 `json:"prize"`
}

// PrizeEntry maps a leaderboard rank to its prize amount. Currency and Label
// are only populated when a source supplies them.
type PrizeEntry struct {
	Rank     int     `json:"rank"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
	Label    string  `json:"label,omitempty"`
}

// Period is the date window the leaderboard covers, when known.
type Period struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// Metadata describes how and when a snapshot was produced. Error is set when
// the source's fetch cycle failed and the snapshot is a fallback document.
type Metadata struct {
	Source       string   `json:"source"`
	RunID        string   `json:"runId,omitempty"`
	FetchedAt    string   `json:"fetchedAt"`
	URL          string   `json:"url"`
	Error        string   `json:"error,omitempty"`
	Tried        []string `json:"tried,omitempty"`
	Period       *Period  `json:"period,omitempty"`
	TotalEntries int      `json:"totalEntries,omitempty"`
}

// Snapshot is one complete normalized leaderboard document. It replaces any
// prior snapshot for the same source wholesale.
type Snapshot struct {
	SchemaVersion int          `json:"schemaVersion"`
	Rows          []Row        `json:"rows"`
	Prizes        []PrizeEntry `json:"prizes"`
	Metadata      Metadata     `json:"metadata"`
}
