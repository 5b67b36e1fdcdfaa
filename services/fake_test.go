package services

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/opencup/cup-system/models"
	"github.com/opencup/cup-system/repositories"
)

// In-memory fakes for the repository interfaces. They keep just enough
// behavior for service tests: IDs are assigned sequentially and reads
// return copies so tests cannot mutate stored state by accident.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	hasResults  map[int]bool
	nextID      int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{
		tournaments: make(map[int]*models.Tournament),
		hasResults:  make(map[int]bool),
	}
}

func (f *fakeTournamentRepo) add(t models.Tournament) *models.Tournament {
	f.nextID++
	t.ID = f.nextID
	f.tournaments[t.ID] = &t
	return &t
}

func (f *fakeTournamentRepo) Create(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	f.nextID++
	t.ID = f.nextID
	stored := *t
	f.tournaments[t.ID] = &stored
	return nil
}

func (f *fakeTournamentRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Tournament, error) {
	t, ok := f.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTournamentRepo) List(_ context.Context) ([]models.Tournament, error) {
	out := make([]models.Tournament, 0, len(f.tournaments))
	for _, t := range f.tournaments {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTournamentRepo) Update(_ context.Context, _ repositories.SQLExecutor, id int, upd repositories.TournamentUpdate) (*models.Tournament, error) {
	t, ok := f.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	if upd.Name != nil {
		t.Name = *upd.Name
	}
	if upd.StartDate != nil {
		t.StartDate = *upd.StartDate
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := f.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (f *fakeTournamentRepo) SetWinner(_ context.Context, _ repositories.SQLExecutor, id int, winnerTeamID int) error {
	t, ok := f.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = models.TournamentStatusCompleted
	t.WinnerTeamID = &winnerTeamID
	return nil
}

func (f *fakeTournamentRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if _, ok := f.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(f.tournaments, id)
	return nil
}

func (f *fakeTournamentRepo) HasResults(_ context.Context, _ repositories.SQLExecutor, id int) (bool, error) {
	return f.hasResults[id], nil
}

type fakeParticipantRepo struct {
	participants []models.Participant
	nextID       int
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{}
}

func (f *fakeParticipantRepo) Create(_ context.Context, _ repositories.SQLExecutor, p *models.Participant) error {
	f.nextID++
	p.ID = f.nextID
	f.participants = append(f.participants, *p)
	return nil
}

func (f *fakeParticipantRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]models.Participant, error) {
	out := make([]models.Participant, 0)
	for _, p := range f.participants {
		if p.TournamentID == tournamentID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := 999999, 999999
		if out[i].Seed != nil {
			si = *out[i].Seed
		}
		if out[j].Seed != nil {
			sj = *out[j].Seed
		}
		if si != sj {
			return si < sj
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out, nil
}

func (f *fakeParticipantRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	kept := f.participants[:0]
	for _, p := range f.participants {
		if p.TournamentID != tournamentID {
			kept = append(kept, p)
		}
	}
	f.participants = kept
	return nil
}

type fakeMatchRepo struct {
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match)}
}

func (f *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	f.nextID++
	m.ID = f.nextID
	stored := *m
	f.matches[m.ID] = &stored
	return nil
}

func (f *fakeMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	m, ok := f.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (f *fakeMatchRepo) byTournament(tournamentID int) []models.Match {
	out := make([]models.Match, 0)
	for _, m := range f.matches {
		if m.TournamentID == tournamentID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].MatchNumber < out[j].MatchNumber
	})
	return out
}

func (f *fakeMatchRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]models.Match, error) {
	return f.byTournament(tournamentID), nil
}

func (f *fakeMatchRepo) ListBracketByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]models.Match, error) {
	return f.byTournament(tournamentID), nil
}

func (f *fakeMatchRepo) ExistsByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) (bool, error) {
	return len(f.byTournament(tournamentID)) > 0, nil
}

func (f *fakeMatchRepo) CountByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) (int, error) {
	return len(f.byTournament(tournamentID)), nil
}

func (f *fakeMatchRepo) UpdateResult(_ context.Context, _ repositories.SQLExecutor, id int, scoreA, scoreB, winnerTeamID int) error {
	m, ok := f.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.ScoreA = &scoreA
	m.ScoreB = &scoreB
	m.WinnerTeamID = &winnerTeamID
	m.Status = models.MatchStatusPlayed
	return nil
}

func (f *fakeMatchRepo) SetSlotTeam(_ context.Context, _ repositories.SQLExecutor, id int, slot models.Slot, teamID int) error {
	m, ok := f.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if slot == models.SlotB {
		m.TeamBID = &teamID
	} else {
		m.TeamAID = &teamID
	}
	return nil
}

func (f *fakeMatchRepo) UpdateTeams(_ context.Context, _ repositories.SQLExecutor, id int, teamAID, teamBID *int) error {
	m, ok := f.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.TeamAID = teamAID
	m.TeamBID = teamBID
	return nil
}

func (f *fakeMatchRepo) RecomputeStatus(_ context.Context, _ repositories.SQLExecutor, id int) error {
	m, ok := f.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if m.Status == models.MatchStatusPlayed {
		return nil
	}
	if m.TeamAID != nil && m.TeamBID != nil {
		m.Status = models.MatchStatusScheduled
	} else {
		m.Status = models.MatchStatusWaiting
	}
	return nil
}

func (f *fakeMatchRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	for id, m := range f.matches {
		if m.TournamentID == tournamentID {
			delete(f.matches, id)
		}
	}
	return nil
}

type fakeGoalEventRepo struct {
	events     []models.GoalEvent
	matchRepo  *fakeMatchRepo
	nextID     int
	createErrs map[int]error
}

func newFakeGoalEventRepo(matchRepo *fakeMatchRepo) *fakeGoalEventRepo {
	return &fakeGoalEventRepo{matchRepo: matchRepo}
}

func (f *fakeGoalEventRepo) Create(_ context.Context, _ repositories.SQLExecutor, e *models.GoalEvent) error {
	if err := f.createErrs[e.ScorerPlayerID]; err != nil {
		return err
	}
	f.nextID++
	e.ID = f.nextID
	f.events = append(f.events, *e)
	return nil
}

func (f *fakeGoalEventRepo) DeleteByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) error {
	kept := f.events[:0]
	for _, e := range f.events {
		if e.MatchID != matchID {
			kept = append(kept, e)
		}
	}
	f.events = kept
	return nil
}

func (f *fakeGoalEventRepo) ListByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) ([]models.GoalEvent, error) {
	out := make([]models.GoalEvent, 0)
	for _, e := range f.events {
		if e.MatchID == matchID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Minute < out[j].Minute })
	return out, nil
}

func (f *fakeGoalEventRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]models.GoalEvent, error) {
	out := make([]models.GoalEvent, 0)
	for _, e := range f.events {
		if m, ok := f.matchRepo.matches[e.MatchID]; ok && m.TournamentID == tournamentID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeParticipationRepo struct {
	participations []models.Participation
	matchRepo      *fakeMatchRepo
	playerRepo     *fakePlayerRepo
	nextID         int
}

func newFakeParticipationRepo(matchRepo *fakeMatchRepo, playerRepo *fakePlayerRepo) *fakeParticipationRepo {
	return &fakeParticipationRepo{matchRepo: matchRepo, playerRepo: playerRepo}
}

func (f *fakeParticipationRepo) Create(_ context.Context, _ repositories.SQLExecutor, p *models.Participation) error {
	f.nextID++
	p.ID = f.nextID
	f.participations = append(f.participations, *p)
	return nil
}

func (f *fakeParticipationRepo) DeleteByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) error {
	kept := f.participations[:0]
	for _, p := range f.participations {
		if p.MatchID != matchID {
			kept = append(kept, p)
		}
	}
	f.participations = kept
	return nil
}

func (f *fakeParticipationRepo) ListByMatch(_ context.Context, _ repositories.SQLExecutor, matchID int) ([]models.Participation, error) {
	out := make([]models.Participation, 0)
	for _, p := range f.participations {
		if p.MatchID == matchID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeParticipationRepo) ListPlayersByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]models.Player, error) {
	seen := make(map[int]struct{})
	out := make([]models.Player, 0)
	for _, part := range f.participations {
		m, ok := f.matchRepo.matches[part.MatchID]
		if !ok || m.TournamentID != tournamentID {
			continue
		}
		if _, dup := seen[part.PlayerID]; dup {
			continue
		}
		seen[part.PlayerID] = struct{}{}
		if p, ok := f.playerRepo.players[part.PlayerID]; ok {
			copied := *p
			copied.TeamID = part.TeamID
			out = append(out, copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakePlayerRepo struct {
	players map[int]*models.Player
	stats   map[int]*models.PlayerStats
	nextID  int
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{
		players: make(map[int]*models.Player),
		stats:   make(map[int]*models.PlayerStats),
	}
}

// addRoster creates count players on the given team and returns their IDs.
func (f *fakePlayerRepo) addRoster(teamID, count int) []int {
	ids := make([]int, 0, count)
	for i := 0; i < count; i++ {
		f.nextID++
		f.players[f.nextID] = &models.Player{
			ID:        f.nextID,
			TeamID:    teamID,
			FirstName: "Player",
			LastName:  "Test",
		}
		ids = append(ids, f.nextID)
	}
	return ids
}

func (f *fakePlayerRepo) Create(_ context.Context, _ repositories.SQLExecutor, p *models.Player) error {
	f.nextID++
	p.ID = f.nextID
	stored := *p
	f.players[p.ID] = &stored
	return nil
}

func (f *fakePlayerRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Player, error) {
	p, ok := f.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakePlayerRepo) GetWithTeam(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Player, error) {
	return f.GetByID(ctx, exec, id)
}

func (f *fakePlayerRepo) List(_ context.Context) ([]models.Player, error) {
	out := make([]models.Player, 0, len(f.players))
	for _, p := range f.players {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePlayerRepo) ListByTeam(_ context.Context, _ repositories.SQLExecutor, teamID int) ([]models.Player, error) {
	out := make([]models.Player, 0)
	for _, p := range f.players {
		if p.TeamID == teamID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePlayerRepo) Update(_ context.Context, _ repositories.SQLExecutor, p *models.Player) error {
	if _, ok := f.players[p.ID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	stored := *p
	f.players[p.ID] = &stored
	return nil
}

func (f *fakePlayerRepo) UpdateAvatarURL(_ context.Context, _ repositories.SQLExecutor, id int, avatarURL string) error {
	p, ok := f.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.AvatarURL = &avatarURL
	return nil
}

func (f *fakePlayerRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if _, ok := f.players[id]; !ok {
		return repositories.ErrPlayerNotFound
	}
	delete(f.players, id)
	return nil
}

func (f *fakePlayerRepo) CountByTeam(_ context.Context, _ repositories.SQLExecutor, teamID int) (int, error) {
	count := 0
	for _, p := range f.players {
		if p.TeamID == teamID {
			count++
		}
	}
	return count, nil
}

func (f *fakePlayerRepo) GetStats(_ context.Context, _ repositories.SQLExecutor, id int) (*models.PlayerStats, error) {
	if s, ok := f.stats[id]; ok {
		copied := *s
		return &copied, nil
	}
	return &models.PlayerStats{}, nil
}
