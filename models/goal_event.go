package models

import "time"

// GoalEvent is a single goal recorded for a played match. AssistPlayerID is
// nil when there was no assist; a self-assist is stored as nil rather than
// rejected.
type GoalEvent struct {
	ID             int       `json:"id"`
	MatchID        int       `json:"match_id"`
	TeamID         int       `json:"team_id"`
	ScorerPlayerID int       `json:"scorer_player_id"`
	AssistPlayerID *int      `json:"assist_player_id"`
	Minute         int       `json:"minute"`
	CreatedAt      time.Time `json:"created_at"`

	// Scorer/assist details joined from players for history payloads.
	ScorerFirstName *string `json:"scorer_first_name,omitempty"`
	ScorerLastName  *string `json:"scorer_last_name,omitempty"`
	ScorerAvatarURL *string `json:"scorer_avatar_url,omitempty"`
	AssistFirstName *string `json:"assist_first_name,omitempty"`
	AssistLastName  *string `json:"assist_last_name,omitempty"`
	AssistAvatarURL *string `json:"assist_avatar_url,omitempty"`
}

// Participation marks a player's presence in a match.
type Participation struct {
	ID        int       `json:"id"`
	MatchID   int       `json:"match_id"`
	PlayerID  int       `json:"player_id"`
	TeamID    int       `json:"team_id"`
	CreatedAt time.Time `json:"created_at"`
}
