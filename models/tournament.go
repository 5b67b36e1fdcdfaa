package models

import "time"

// TournamentStatus mirrors the tournament_status ENUM in the database.
type TournamentStatus string

const (
	TournamentStatusDraft     TournamentStatus = "draft"
	TournamentStatusOngoing   TournamentStatus = "ongoing"
	TournamentStatusCompleted TournamentStatus = "completed"
)

// Tournament is an 8-team knockout cup. WinnerTeamID is set if and only if
// the status is completed.
type Tournament struct {
	ID           int              `json:"id"`
	Name         string           `json:"name"`
	StartDate    time.Time        `json:"start_date"`
	Status       TournamentStatus `json:"status"`
	WinnerTeamID *int             `json:"winner_team_id,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`

	// Enrichment for list/detail payloads, not mapped to tournament columns.
	WinnerName        *string       `json:"winner_name,omitempty"`
	WinnerTeamLogoURL *string       `json:"winner_team_logo_url,omitempty"`
	HasResults        bool          `json:"has_results"`
	HasMatches        bool          `json:"has_matches"`
	Participants      []Participant `json:"participants,omitempty"`
}
