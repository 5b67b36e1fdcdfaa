package models

import "time"

type Player struct {
	ID          int        `json:"id"`
	TeamID      int        `json:"team_id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Number      *int       `json:"number"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	Nationality *string    `json:"nationality,omitempty"`
	Role        *string    `json:"role,omitempty"`
	HeightCM    *int       `json:"height_cm,omitempty"`
	WeightKG    *int       `json:"weight_kg,omitempty"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	FullName string       `json:"full_name,omitempty"`
	Stats    *PlayerStats `json:"stats,omitempty"`
	Team     *Team        `json:"team,omitempty"`
}

// PlayerStats aggregates goals, assists and appearances over played matches.
type PlayerStats struct {
	Matches int `json:"matches"`
	Goals   int `json:"goals"`
	Assists int `json:"assists"`
}
