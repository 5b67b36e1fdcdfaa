package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencup/cup-system/brackets"
	"github.com/opencup/cup-system/models"
)

type bracketFixture struct {
	service         BracketService
	tournamentRepo  *fakeTournamentRepo
	participantRepo *fakeParticipantRepo
	matchRepo       *fakeMatchRepo
	goalEventRepo   *fakeGoalEventRepo
	tournament      *models.Tournament
}

func newBracketFixture(t *testing.T) *bracketFixture {
	t.Helper()

	tournamentRepo := newFakeTournamentRepo()
	participantRepo := newFakeParticipantRepo()
	matchRepo := newFakeMatchRepo()
	goalEventRepo := newFakeGoalEventRepo(matchRepo)
	playerRepo := newFakePlayerRepo()
	participationRepo := newFakeParticipationRepo(matchRepo, playerRepo)

	tournament := tournamentRepo.add(models.Tournament{
		Name:      "Spring Cup",
		StartDate: time.Now(),
		Status:    models.TournamentStatusDraft,
	})

	service := NewBracketService(
		fakeTxRunner{}, tournamentRepo, participantRepo, matchRepo, goalEventRepo,
		participationRepo, brackets.NewSingleElimination8(), nil, testLogger(),
	)

	return &bracketFixture{
		service:         service,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		goalEventRepo:   goalEventRepo,
		tournament:      tournament,
	}
}

func (f *bracketFixture) register(t *testing.T, teamIDs ...int) {
	t.Helper()
	for i, teamID := range teamIDs {
		seed := i + 1
		err := f.participantRepo.Create(context.Background(), nil, &models.Participant{
			TournamentID: f.tournament.ID,
			TeamID:       teamID,
			Seed:         &seed,
		})
		require.NoError(t, err)
	}
}

func TestBracketGenerate(t *testing.T) {
	f := newBracketFixture(t)
	f.register(t, 11, 12, 13, 14, 15, 16, 17, 18)

	view, err := f.service.Generate(context.Background(), f.tournament.ID)
	require.NoError(t, err)
	require.Len(t, view.Matches, 7)

	assert.Equal(t, models.TournamentStatusOngoing, view.Tournament.Status)

	var quarters, semis, finals []models.Match
	for _, m := range view.Matches {
		switch m.Round {
		case models.RoundQuarterfinal:
			quarters = append(quarters, m)
		case models.RoundSemifinal:
			semis = append(semis, m)
		case models.RoundFinal:
			finals = append(finals, m)
		}
	}
	require.Len(t, quarters, 4)
	require.Len(t, semis, 2)
	require.Len(t, finals, 1)

	for _, qf := range quarters {
		assert.Equal(t, models.MatchStatusScheduled, qf.Status)
		assert.NotNil(t, qf.TeamAID)
		assert.NotNil(t, qf.TeamBID)
		assert.NotNil(t, qf.NextMatchID)
	}
	for _, sf := range semis {
		assert.Equal(t, models.MatchStatusWaiting, sf.Status)
		assert.Nil(t, sf.TeamAID)
		assert.Nil(t, sf.TeamBID)
		require.NotNil(t, sf.NextMatchID)
		assert.Equal(t, finals[0].ID, *sf.NextMatchID)
	}
	assert.Nil(t, finals[0].NextMatchID)

	// Seed-order pairing: 1v2, 3v4, 5v6, 7v8.
	assert.Equal(t, 11, *quarters[0].TeamAID)
	assert.Equal(t, 12, *quarters[0].TeamBID)
	assert.Equal(t, 17, *quarters[3].TeamAID)
	assert.Equal(t, 18, *quarters[3].TeamBID)
}

func TestBracketGenerateRequiresEightTeams(t *testing.T) {
	f := newBracketFixture(t)
	f.register(t, 11, 12, 13)

	_, err := f.service.Generate(context.Background(), f.tournament.ID)
	assert.ErrorIs(t, err, ErrParticipantCountInvalid)

	exists, _ := f.matchRepo.ExistsByTournament(context.Background(), nil, f.tournament.ID)
	assert.False(t, exists)
}

func TestBracketGenerateTwiceFails(t *testing.T) {
	f := newBracketFixture(t)
	f.register(t, 11, 12, 13, 14, 15, 16, 17, 18)

	_, err := f.service.Generate(context.Background(), f.tournament.ID)
	require.NoError(t, err)

	_, err = f.service.Generate(context.Background(), f.tournament.ID)
	assert.ErrorIs(t, err, ErrBracketAlreadyGenerated)
}

func TestBracketGenerateCompletedTournament(t *testing.T) {
	f := newBracketFixture(t)
	f.register(t, 11, 12, 13, 14, 15, 16, 17, 18)
	f.tournamentRepo.tournaments[f.tournament.ID].Status = models.TournamentStatusCompleted

	_, err := f.service.Generate(context.Background(), f.tournament.ID)
	assert.ErrorIs(t, err, ErrTournamentCompleted)
}

func TestBracketGenerateUnknownTournament(t *testing.T) {
	f := newBracketFixture(t)

	_, err := f.service.Generate(context.Background(), 999)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestUpdatePairings(t *testing.T) {
	f := newBracketFixture(t)
	f.register(t, 11, 12, 13, 14, 15, 16, 17, 18)

	view, err := f.service.Generate(context.Background(), f.tournament.ID)
	require.NoError(t, err)
	qf1 := view.Matches[0]

	teamA, teamB := 17, 18
	view, err = f.service.UpdatePairings(context.Background(), f.tournament.ID, []PairingUpdate{
		{MatchID: qf1.ID, TeamAID: &teamA, TeamBID: &teamB},
	})
	require.NoError(t, err)

	updated := view.Matches[0]
	require.NotNil(t, updated.TeamAID)
	require.NotNil(t, updated.TeamBID)
	assert.Equal(t, teamA, *updated.TeamAID)
	assert.Equal(t, teamB, *updated.TeamBID)
	assert.Equal(t, models.MatchStatusScheduled, updated.Status)

	// Clearing slot B drops the match back to waiting.
	view, err = f.service.UpdatePairings(context.Background(), f.tournament.ID, []PairingUpdate{
		{MatchID: qf1.ID, TeamAID: &teamA},
	})
	require.NoError(t, err)
	assert.Nil(t, view.Matches[0].TeamBID)
	assert.Equal(t, models.MatchStatusWaiting, view.Matches[0].Status)
}

func TestUpdatePairingsRejections(t *testing.T) {
	f := newBracketFixture(t)
	f.register(t, 11, 12, 13, 14, 15, 16, 17, 18)

	_, err := f.service.UpdatePairings(context.Background(), f.tournament.ID, []PairingUpdate{{MatchID: 1}})
	assert.ErrorIs(t, err, ErrBracketNotGenerated)

	view, err := f.service.Generate(context.Background(), f.tournament.ID)
	require.NoError(t, err)
	qf1 := view.Matches[0]

	_, err = f.service.UpdatePairings(context.Background(), f.tournament.ID, nil)
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = f.service.UpdatePairings(context.Background(), f.tournament.ID, []PairingUpdate{{MatchID: 999}})
	assert.ErrorIs(t, err, ErrMatchNotInTournament)

	require.NoError(t, f.matchRepo.UpdateResult(context.Background(), nil, qf1.ID, 1, 0, *qf1.TeamAID))
	_, err = f.service.UpdatePairings(context.Background(), f.tournament.ID, []PairingUpdate{
		{MatchID: qf1.ID, TeamAID: qf1.TeamAID, TeamBID: qf1.TeamBID},
	})
	assert.ErrorIs(t, err, ErrMatchAlreadyPlayed)
}

func TestBracketGetAttachesGoalEvents(t *testing.T) {
	f := newBracketFixture(t)
	f.register(t, 11, 12, 13, 14, 15, 16, 17, 18)

	view, err := f.service.Generate(context.Background(), f.tournament.ID)
	require.NoError(t, err)

	matchID := view.Matches[0].ID
	err = f.goalEventRepo.Create(context.Background(), nil, &models.GoalEvent{
		MatchID:        matchID,
		TeamID:         11,
		ScorerPlayerID: 1,
		Minute:         23,
	})
	require.NoError(t, err)

	view, err = f.service.Get(context.Background(), f.tournament.ID)
	require.NoError(t, err)

	var withEvents *models.Match
	for i := range view.Matches {
		if view.Matches[i].ID == matchID {
			withEvents = &view.Matches[i]
		}
	}
	require.NotNil(t, withEvents)
	require.Len(t, withEvents.GoalEvents, 1)
	assert.Equal(t, 23, withEvents.GoalEvents[0].Minute)
}
