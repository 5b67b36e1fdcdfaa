package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencup/cup-system/models"
)

func TestSingleElimination8Generate(t *testing.T) {
	g := NewSingleElimination8()
	teamIDs := []int{10, 20, 30, 40, 50, 60, 70, 80}

	plan, err := g.Generate(teamIDs)
	require.NoError(t, err)
	require.Len(t, plan, 7)

	// Insert order: final, semifinals, quarterfinals.
	assert.Equal(t, models.RoundFinal, plan[0].Round)
	assert.Equal(t, models.RoundSemifinal, plan[1].Round)
	assert.Equal(t, models.RoundSemifinal, plan[2].Round)
	for i := 3; i < 7; i++ {
		assert.Equal(t, models.RoundQuarterfinal, plan[i].Round)
	}
}

func TestSingleElimination8Pairing(t *testing.T) {
	g := NewSingleElimination8()
	teamIDs := []int{10, 20, 30, 40, 50, 60, 70, 80}

	plan, err := g.Generate(teamIDs)
	require.NoError(t, err)

	quarters := plan[3:]
	tests := []struct {
		number int
		teamA  int
		teamB  int
	}{
		{1, 10, 20},
		{2, 30, 40},
		{3, 50, 60},
		{4, 70, 80},
	}
	for i, tt := range tests {
		qf := quarters[i]
		assert.Equal(t, tt.number, qf.Number)
		require.NotNil(t, qf.TeamAID)
		require.NotNil(t, qf.TeamBID)
		assert.Equal(t, tt.teamA, *qf.TeamAID)
		assert.Equal(t, tt.teamB, *qf.TeamBID)
		assert.Equal(t, models.MatchStatusScheduled, qf.Status)
	}
}

func TestSingleElimination8Advancement(t *testing.T) {
	g := NewSingleElimination8()
	plan, err := g.Generate([]int{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)

	final := plan[0]
	assert.Zero(t, final.NextRound)
	assert.Nil(t, final.NextSlot)
	assert.Nil(t, final.TeamAID)
	assert.Nil(t, final.TeamBID)
	assert.Equal(t, models.MatchStatusWaiting, final.Status)

	sf1, sf2 := plan[1], plan[2]
	assert.Equal(t, models.RoundFinal, sf1.NextRound)
	assert.Equal(t, 1, sf1.NextNumber)
	require.NotNil(t, sf1.NextSlot)
	assert.Equal(t, models.SlotA, *sf1.NextSlot)
	require.NotNil(t, sf2.NextSlot)
	assert.Equal(t, models.SlotB, *sf2.NextSlot)

	// QF1/QF2 feed SF1, QF3/QF4 feed SF2, odd to slot A, even to slot B.
	quarters := plan[3:]
	expected := []struct {
		nextNumber int
		slot       models.Slot
	}{
		{1, models.SlotA},
		{1, models.SlotB},
		{2, models.SlotA},
		{2, models.SlotB},
	}
	for i, exp := range expected {
		qf := quarters[i]
		assert.Equal(t, models.RoundSemifinal, qf.NextRound)
		assert.Equal(t, exp.nextNumber, qf.NextNumber)
		require.NotNil(t, qf.NextSlot)
		assert.Equal(t, exp.slot, *qf.NextSlot)
	}
}

func TestSingleElimination8Rejects(t *testing.T) {
	g := NewSingleElimination8()

	tests := []struct {
		name    string
		teamIDs []int
	}{
		{"too few", []int{1, 2, 3, 4}},
		{"too many", []int{1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{"empty", nil},
		{"duplicate", []int{1, 2, 3, 4, 5, 6, 7, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Generate(tt.teamIDs)
			assert.Error(t, err)
		})
	}
}
