package models

import "time"

// Team is soft-deleted: DeletedAt non-nil hides it from listings but keeps
// historical match references intact.
type Team struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	LogoURL   *string    `json:"logo_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	Players []Player `json:"players,omitempty"`
}
