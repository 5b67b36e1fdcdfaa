package models

import "time"

// MatchStatus mirrors the match_status ENUM in the database.
type MatchStatus string

const (
	MatchStatusWaiting   MatchStatus = "waiting"
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusPlayed    MatchStatus = "played"
)

// Slot identifies which side of a match a winner advances into.
type Slot string

const (
	SlotA Slot = "A"
	SlotB Slot = "B"
)

// Match rounds for the fixed 8-team bracket.
const (
	RoundQuarterfinal = 1
	RoundSemifinal    = 2
	RoundFinal        = 3
)

// Match is a node of the knockout bracket. NextMatchID/NextSlot are nil only
// for the final. Scores and winner are nil until the match is played.
type Match struct {
	ID           int         `json:"id"`
	TournamentID int         `json:"tournament_id"`
	Round        int         `json:"round"`
	MatchNumber  int         `json:"match_number"`
	Status       MatchStatus `json:"status"`
	TeamAID      *int        `json:"team_a_id"`
	TeamBID      *int        `json:"team_b_id"`
	ScoreA       *int        `json:"score_a"`
	ScoreB       *int        `json:"score_b"`
	WinnerTeamID *int        `json:"winner_team_id"`
	NextMatchID  *int        `json:"next_match_id"`
	NextSlot     *Slot       `json:"next_slot"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`

	// Enrichment for the bracket payload, not mapped to match columns.
	TeamAName    *string     `json:"team_a_name,omitempty"`
	TeamBName    *string     `json:"team_b_name,omitempty"`
	TeamALogoURL *string     `json:"team_a_logo_url,omitempty"`
	TeamBLogoURL *string     `json:"team_b_logo_url,omitempty"`
	WinnerName   *string     `json:"winner_name,omitempty"`
	GoalEvents   []GoalEvent `json:"goal_events,omitempty"`
}
