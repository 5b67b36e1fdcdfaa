package models

import "time"

// Participant links a team to a tournament with its seed rank (1..8).
// The set is replaced atomically and becomes immutable once the bracket
// has been generated.
type Participant struct {
	ID           int       `json:"id"`
	TournamentID int       `json:"tournament_id"`
	TeamID       int       `json:"team_id"`
	Seed         *int      `json:"seed,omitempty"`
	CreatedAt    time.Time `json:"created_at"`

	Team *Team `json:"team,omitempty"`
}
