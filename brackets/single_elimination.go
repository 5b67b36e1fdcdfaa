package brackets

import (
	"errors"
	"fmt"

	"github.com/opencup/cup-system/models"
)

// TeamCount is the only bracket size the cup supports.
const TeamCount = 8

var ErrTeamCount = errors.New("bracket requires exactly 8 teams")

type SingleElimination8 struct{}

func NewSingleElimination8() Generator {
	return &SingleElimination8{}
}

func (g *SingleElimination8) Name() string {
	return "SingleElimination8"
}

// Generate lays out the 7 matches of an 8-team knockout. Teams arrive in
// seed order and are paired consecutively: 1v2, 3v4, 5v6, 7v8. The plan is
// emitted final first, then semifinals, then quarterfinals, so callers can
// persist each match after the one its winner advances into.
func (g *SingleElimination8) Generate(teamIDs []int) ([]PlannedMatch, error) {
	if len(teamIDs) != TeamCount {
		return nil, fmt.Errorf("%w: got %d", ErrTeamCount, len(teamIDs))
	}
	seen := make(map[int]struct{}, TeamCount)
	for _, id := range teamIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate team %d in bracket", id)
		}
		seen[id] = struct{}{}
	}

	plan := make([]PlannedMatch, 0, 7)

	plan = append(plan, PlannedMatch{
		Round:  models.RoundFinal,
		Number: 1,
		Status: models.MatchStatusWaiting,
	})

	for number := 1; number <= 2; number++ {
		slot := slotFor(number)
		plan = append(plan, PlannedMatch{
			Round:      models.RoundSemifinal,
			Number:     number,
			Status:     models.MatchStatusWaiting,
			NextRound:  models.RoundFinal,
			NextNumber: 1,
			NextSlot:   &slot,
		})
	}

	for number := 1; number <= 4; number++ {
		teamA := teamIDs[(number-1)*2]
		teamB := teamIDs[(number-1)*2+1]
		slot := slotFor(number)
		plan = append(plan, PlannedMatch{
			Round:      models.RoundQuarterfinal,
			Number:     number,
			Status:     models.MatchStatusScheduled,
			TeamAID:    &teamA,
			TeamBID:    &teamB,
			NextRound:  models.RoundSemifinal,
			NextNumber: (number + 1) / 2,
			NextSlot:   &slot,
		})
	}

	return plan, nil
}

// slotFor maps a match number to the slot its winner fills in the next
// round: odd-numbered matches feed slot A, even-numbered feed slot B.
func slotFor(number int) models.Slot {
	if number%2 == 1 {
		return models.SlotA
	}
	return models.SlotB
}
