package services

import "errors"

// Shared errors reused across services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules.
	ErrValidationFailed       = errors.New("validation failed")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrTeamNameRequired       = errors.New("team name is required")
	ErrPlayerNameRequired     = errors.New("player first and last name are required")

	// Participant registration.
	ErrParticipantCountInvalid = errors.New("tournament requires exactly 8 unique teams")
	ErrParticipantsLocked      = errors.New("participants cannot change after the bracket is generated")
	ErrTeamNotReady            = errors.New("team roster is not complete")

	// Bracket generation.
	ErrBracketAlreadyGenerated = errors.New("bracket has already been generated")
	ErrBracketIncomplete       = errors.New("bracket generation produced an incomplete bracket")
	ErrBracketNotGenerated     = errors.New("bracket has not been generated yet")

	// Pairing fixups.
	ErrMatchNotInTournament = errors.New("match does not belong to this tournament")

	// Match results.
	ErrNegativeScore       = errors.New("scores must be non-negative")
	ErrDrawNotAllowed      = errors.New("knockout matches cannot end in a draw")
	ErrMatchAlreadyPlayed  = errors.New("match result has already been recorded")
	ErrMatchMissingTeam    = errors.New("match does not have both teams assigned")
	ErrTooManyGoalEvents   = errors.New("goal event count exceeds the total score")
	ErrEventTeamNotInMatch = errors.New("goal event team is not playing in this match")

	// Tournament lifecycle.
	ErrTournamentCompleted  = errors.New("completed tournaments cannot be modified")
	ErrTournamentHasResults = errors.New("tournaments with recorded results cannot be modified")

	// Rosters.
	ErrTeamRosterFull = errors.New("team roster already has 5 players")

	// Conflicts.
	ErrTeamNameConflict       = errors.New("team name is already in use")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrTeamAlreadyRegistered  = errors.New("team is already registered for this tournament")

	// Authentication.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Entity-specific not-found errors.
	ErrTeamNotFound       = errors.New("team not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")
)
