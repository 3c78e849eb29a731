package domain

import "time"

// TruthAuthor is the sentinel author of the slot carrying the round's correct answer.
const TruthAuthor = "TRUTH"

// HiddenAuthor replaces the author of an unrevealed row in the audience view.
const HiddenAuthor = "???"

// DisplayRow indexes a shuffled answer row as shown on screen. It is a
// distinct type from ColumnPos on purpose: rows address shuffled content,
// columns address cosmetic player positions, and the two must never be mixed.
type DisplayRow int

// NoSelection marks a player who has not picked a row yet.
const NoSelection DisplayRow = -1

// ColumnPos indexes a rotated player column in the selection grid.
type ColumnPos int

// RoundTemplate is one authored round. Read-only after load; the video field
// is an opaque path/URI handed to the renderer, never interpreted here.
type RoundTemplate struct {
	Title string `json:"title"`
	Video string `json:"video"`
	Truth string `json:"truth"`
}

// Pack is an ordered set of rounds stored under one id.
type Pack struct {
	ID     string          `json:"id"`
	Rounds []RoundTemplate `json:"rounds"`
}

// Slot is one candidate answer eligible for display: authored by a player
// (a decoy) or by the truth sentinel.
type Slot struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// IsTruth reports whether the slot carries the round's correct answer.
func (s Slot) IsTruth() bool { return s.Author == TruthAuthor }

// ScoreDelta is the set of points applied by a single reveal. An empty delta
// means the reveal awarded nobody (or was an idempotent repeat).
type ScoreDelta map[string]int

// PlaybackState mirrors the audience display's transport controls.
type PlaybackState string

const (
	PlaybackStopped PlaybackState = "stopped"
	PlaybackPlaying PlaybackState = "playing"
	PlaybackPaused  PlaybackState = "paused"
)

// RowView is one display row as pushed to a renderer. Text is the raw slot
// text; rendering an empty answer as "(empty)" is the renderer's business.
type RowView struct {
	Author   string `json:"author"`
	Text     string `json:"text"`
	Revealed bool   `json:"revealed"`
}

// ShowSnapshot is the full-state projection pushed to renderers after every
// mutation. Renderers never mutate it and never read state back into the core.
type ShowSnapshot struct {
	ShowID     string                `json:"showId"`
	SetUp      bool                  `json:"setUp"`
	RoundIndex int                   `json:"roundIndex"`
	RoundCount int                   `json:"roundCount"`
	RoundTitle string                `json:"roundTitle"`
	Video      string                `json:"video"`
	Volume     float64               `json:"volume"` // normalized to 0.0-1.0
	Playback   PlaybackState         `json:"playback"`
	Players    []string              `json:"players"` // canonical setup order
	Columns    []string              `json:"columns"` // rotated presentation order
	Rows       []RowView             `json:"rows"`    // display order; empty before a shuffle
	Selections map[string]DisplayRow `json:"selections"`
	Scores     map[string]int        `json:"scores"`
	UpdatedAt  time.Time             `json:"updatedAt"`
}

// Masked returns the audience view of the snapshot: authors of unrevealed
// rows are hidden. The moderator view always carries real authors.
func (s ShowSnapshot) Masked() ShowSnapshot {
	out := s
	out.Rows = make([]RowView, len(s.Rows))
	copy(out.Rows, s.Rows)
	for i := range out.Rows {
		if !out.Rows[i].Revealed {
			out.Rows[i].Author = HiddenAuthor
		}
	}
	return out
}
