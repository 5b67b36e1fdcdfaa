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

type matchFixture struct {
	service         MatchService
	bracketService  BracketService
	tournamentRepo  *fakeTournamentRepo
	participantRepo *fakeParticipantRepo
	matchRepo       *fakeMatchRepo
	goalEventRepo   *fakeGoalEventRepo
	partRepo        *fakeParticipationRepo
	playerRepo      *fakePlayerRepo
	tournament      *models.Tournament
	teams           []int
	rosters         map[int][]int
}

// newMatchFixture builds a tournament with a generated bracket and full
// 5-player rosters for all 8 teams.
func newMatchFixture(t *testing.T) *matchFixture {
	t.Helper()

	tournamentRepo := newFakeTournamentRepo()
	participantRepo := newFakeParticipantRepo()
	matchRepo := newFakeMatchRepo()
	goalEventRepo := newFakeGoalEventRepo(matchRepo)
	playerRepo := newFakePlayerRepo()
	partRepo := newFakeParticipationRepo(matchRepo, playerRepo)

	tournament := tournamentRepo.add(models.Tournament{
		Name:      "Autumn Cup",
		StartDate: time.Now(),
		Status:    models.TournamentStatusDraft,
	})

	teams := []int{11, 12, 13, 14, 15, 16, 17, 18}
	rosters := make(map[int][]int, len(teams))
	for i, teamID := range teams {
		seed := i + 1
		require.NoError(t, participantRepo.Create(context.Background(), nil, &models.Participant{
			TournamentID: tournament.ID,
			TeamID:       teamID,
			Seed:         &seed,
		}))
		rosters[teamID] = playerRepo.addRoster(teamID, 5)
	}

	bracketService := NewBracketService(
		fakeTxRunner{}, tournamentRepo, participantRepo, matchRepo, goalEventRepo,
		partRepo, brackets.NewSingleElimination8(), nil, testLogger(),
	)
	_, err := bracketService.Generate(context.Background(), tournament.ID)
	require.NoError(t, err)

	service := NewMatchService(
		fakeTxRunner{}, matchRepo, tournamentRepo, goalEventRepo, partRepo,
		nil, testLogger(),
	)

	return &matchFixture{
		service:         service,
		bracketService:  bracketService,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		goalEventRepo:   goalEventRepo,
		partRepo:        partRepo,
		playerRepo:      playerRepo,
		tournament:      tournament,
		teams:           teams,
		rosters:         rosters,
	}
}

// matchByRoundNumber finds a match in the stored bracket.
func (f *matchFixture) matchByRoundNumber(t *testing.T, round, number int) *models.Match {
	t.Helper()
	for _, m := range f.matchRepo.matches {
		if m.Round == round && m.MatchNumber == number {
			copied := *m
			return &copied
		}
	}
	t.Fatalf("no match for round %d number %d", round, number)
	return nil
}

func TestSetResultValidation(t *testing.T) {
	f := newMatchFixture(t)
	qf1 := f.matchByRoundNumber(t, models.RoundQuarterfinal, 1)

	tests := []struct {
		name    string
		input   MatchResultInput
		wantErr error
	}{
		{"negative score a", MatchResultInput{ScoreA: -1, ScoreB: 2}, ErrNegativeScore},
		{"negative score b", MatchResultInput{ScoreA: 1, ScoreB: -2}, ErrNegativeScore},
		{"draw", MatchResultInput{ScoreA: 2, ScoreB: 2}, ErrDrawNotAllowed},
		{
			"more events than goals",
			MatchResultInput{ScoreA: 1, ScoreB: 0, GoalEvents: []GoalEventInput{
				{TeamID: 11, ScorerPlayerID: 1}, {TeamID: 11, ScorerPlayerID: 2},
			}},
			ErrTooManyGoalEvents,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.SetResult(context.Background(), qf1.ID, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSetResultMissingTeam(t *testing.T) {
	f := newMatchFixture(t)
	sf1 := f.matchByRoundNumber(t, models.RoundSemifinal, 1)

	_, err := f.service.SetResult(context.Background(), sf1.ID, MatchResultInput{ScoreA: 2, ScoreB: 1})
	assert.ErrorIs(t, err, ErrMatchMissingTeam)
}

func TestSetResultPlayedIsImmutable(t *testing.T) {
	f := newMatchFixture(t)
	qf1 := f.matchByRoundNumber(t, models.RoundQuarterfinal, 1)

	_, err := f.service.SetResult(context.Background(), qf1.ID, MatchResultInput{ScoreA: 3, ScoreB: 1})
	require.NoError(t, err)

	_, err = f.service.SetResult(context.Background(), qf1.ID, MatchResultInput{ScoreA: 0, ScoreB: 1})
	assert.ErrorIs(t, err, ErrMatchAlreadyPlayed)

	stored := f.matchByRoundNumber(t, models.RoundQuarterfinal, 1)
	assert.Equal(t, 3, *stored.ScoreA)
	assert.Equal(t, 1, *stored.ScoreB)
}

func TestSetResultPropagatesWinner(t *testing.T) {
	f := newMatchFixture(t)
	qf1 := f.matchByRoundNumber(t, models.RoundQuarterfinal, 1)
	qf2 := f.matchByRoundNumber(t, models.RoundQuarterfinal, 2)

	updated, err := f.service.SetResult(context.Background(), qf1.ID, MatchResultInput{ScoreA: 2, ScoreB: 0})
	require.NoError(t, err)
	require.NotNil(t, updated.WinnerTeamID)
	assert.Equal(t, 11, *updated.WinnerTeamID)

	// Winner of QF1 lands in SF1 slot A; SF1 still waits for QF2.
	sf1 := f.matchByRoundNumber(t, models.RoundSemifinal, 1)
	require.NotNil(t, sf1.TeamAID)
	assert.Equal(t, 11, *sf1.TeamAID)
	assert.Nil(t, sf1.TeamBID)
	assert.Equal(t, models.MatchStatusWaiting, sf1.Status)

	_, err = f.service.SetResult(context.Background(), qf2.ID, MatchResultInput{ScoreA: 0, ScoreB: 1})
	require.NoError(t, err)

	sf1 = f.matchByRoundNumber(t, models.RoundSemifinal, 1)
	require.NotNil(t, sf1.TeamBID)
	assert.Equal(t, 14, *sf1.TeamBID)
	assert.Equal(t, models.MatchStatusScheduled, sf1.Status)
}

func TestFinalCompletesTournament(t *testing.T) {
	f := newMatchFixture(t)

	// Play the whole bracket, lower seed always winning 1:0 at home.
	for _, pos := range []struct{ round, number int }{
		{models.RoundQuarterfinal, 1}, {models.RoundQuarterfinal, 2},
		{models.RoundQuarterfinal, 3}, {models.RoundQuarterfinal, 4},
		{models.RoundSemifinal, 1}, {models.RoundSemifinal, 2},
		{models.RoundFinal, 1},
	} {
		m := f.matchByRoundNumber(t, pos.round, pos.number)
		_, err := f.service.SetResult(context.Background(), m.ID, MatchResultInput{ScoreA: 1, ScoreB: 0})
		require.NoError(t, err)
	}

	tournament, err := f.tournamentRepo.GetByID(context.Background(), nil, f.tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusCompleted, tournament.Status)
	require.NotNil(t, tournament.WinnerTeamID)
	assert.Equal(t, 11, *tournament.WinnerTeamID)
}

func TestSetResultGoalEventNormalization(t *testing.T) {
	f := newMatchFixture(t)
	qf1 := f.matchByRoundNumber(t, models.RoundQuarterfinal, 1)
	teamA := f.teams[0]
	roster := f.rosters[teamA]
	scorer := roster[0]
	assist := roster[1]
	zero := 0

	input := MatchResultInput{
		ScoreA: 3,
		ScoreB: 1,
		GoalEvents: []GoalEventInput{
			{TeamID: teamA, ScorerPlayerID: scorer, AssistPlayerID: &assist, Minute: "12"},
			{TeamID: teamA, ScorerPlayerID: scorer, AssistPlayerID: &scorer, Minute: "45'"},
			{TeamID: teamA, ScorerPlayerID: scorer, AssistPlayerID: &zero, Minute: "abc"},
		},
	}

	updated, err := f.service.SetResult(context.Background(), qf1.ID, input)
	require.NoError(t, err)
	require.Len(t, updated.GoalEvents, 3)

	byMinute := make(map[int]models.GoalEvent, 3)
	for _, e := range updated.GoalEvents {
		byMinute[e.Minute] = e
	}

	withAssist := byMinute[12]
	require.NotNil(t, withAssist.AssistPlayerID)
	assert.Equal(t, assist, *withAssist.AssistPlayerID)

	// Self-assist is stored as no assist, minute text loses its suffix.
	selfAssist := byMinute[45]
	assert.Nil(t, selfAssist.AssistPlayerID)

	// Zero assist means none, unparsable minute defaults to 0.
	zeroAssist := byMinute[0]
	assert.Nil(t, zeroAssist.AssistPlayerID)
}

func TestSetResultFiltersMalformedEntries(t *testing.T) {
	f := newMatchFixture(t)
	qf1 := f.matchByRoundNumber(t, models.RoundQuarterfinal, 1)
	teamA := f.teams[0]
	outsideTeam := f.teams[4]
	scorer := f.rosters[teamA][0]
	loan := f.rosters[outsideTeam][0]

	input := MatchResultInput{
		ScoreA: 3,
		ScoreB: 1,
		GoalEvents: []GoalEventInput{
			{TeamID: teamA, ScorerPlayerID: scorer, Minute: "5"},
			// A scorer outside the team's roster still counts as long as the
			// team itself plays this match.
			{TeamID: teamA, ScorerPlayerID: loan, Minute: "10"},
			{TeamID: outsideTeam, ScorerPlayerID: loan, Minute: "20"},
			{TeamID: teamA, ScorerPlayerID: 0, Minute: "30"},
		},
		Participations: []ParticipationInput{
			{TeamID: teamA, PlayerID: scorer},
			{TeamID: teamA, PlayerID: loan},
			{TeamID: outsideTeam, PlayerID: loan},
			{TeamID: teamA, PlayerID: -1},
		},
	}

	updated, err := f.service.SetResult(context.Background(), qf1.ID, input)
	require.NoError(t, err)

	require.Len(t, updated.GoalEvents, 2)
	scorers := []int{updated.GoalEvents[0].ScorerPlayerID, updated.GoalEvents[1].ScorerPlayerID}
	assert.ElementsMatch(t, []int{scorer, loan}, scorers)

	participations, err := f.partRepo.ListByMatch(context.Background(), nil, qf1.ID)
	require.NoError(t, err)
	require.Len(t, participations, 2)
	assert.ElementsMatch(t, []int{scorer, loan},
		[]int{participations[0].PlayerID, participations[1].PlayerID})
}

func TestTournamentPlayersReport(t *testing.T) {
	f := newMatchFixture(t)
	qf1 := f.matchByRoundNumber(t, models.RoundQuarterfinal, 1)
	teamA, teamB := f.teams[0], f.teams[1]

	_, err := f.service.SetResult(context.Background(), qf1.ID, MatchResultInput{
		ScoreA: 1,
		ScoreB: 0,
		Participations: []ParticipationInput{
			{TeamID: teamA, PlayerID: f.rosters[teamA][0]},
			{TeamID: teamA, PlayerID: f.rosters[teamA][1]},
			{TeamID: teamB, PlayerID: f.rosters[teamB][0]},
		},
	})
	require.NoError(t, err)

	players, err := f.bracketService.ListPlayers(context.Background(), f.tournament.ID)
	require.NoError(t, err)
	assert.Len(t, players, 3)
}

func TestSetResultUnknownMatch(t *testing.T) {
	f := newMatchFixture(t)

	_, err := f.service.SetResult(context.Background(), 999, MatchResultInput{ScoreA: 1, ScoreB: 0})
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestParseMinute(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"45", 45},
		{"45'", 45},
		{"90+3", 90},
		{"min 12", 12},
		{"", 0},
		{"abc", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseMinute(tt.raw), "raw=%q", tt.raw)
	}
}
