package brackets

import "github.com/opencup/cup-system/models"

// PlannedMatch is one node of a bracket plan before it is persisted. Rounds
// are numbered from the first round up; Number is 1-based within a round.
// NextRound/NextNumber point at the match the winner advances into and are
// zero for the final.
type PlannedMatch struct {
	Round      int
	Number     int
	Status     models.MatchStatus
	TeamAID    *int
	TeamBID    *int
	NextRound  int
	NextNumber int
	NextSlot   *models.Slot
}

// Generator produces a bracket plan for a set of teams given in seed order.
type Generator interface {
	Generate(teamIDs []int) ([]PlannedMatch, error)
	Name() string
}
