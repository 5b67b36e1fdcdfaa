package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/opencup/cup-system/brackets"
	"github.com/opencup/cup-system/models"
	"github.com/opencup/cup-system/repositories"
)

// BracketView is the full tournament bracket as served to clients, matches
// ordered by round then match number with goal events attached.
type BracketView struct {
	Tournament *models.Tournament `json:"tournament"`
	Matches    []models.Match     `json:"matches"`
}

// PairingUpdate overwrites the team slots of one match before it is played.
// Nil clears a slot.
type PairingUpdate struct {
	MatchID int
	TeamAID *int
	TeamBID *int
}

type BracketService interface {
	Generate(ctx context.Context, tournamentID int) (*BracketView, error)
	Get(ctx context.Context, tournamentID int) (*BracketView, error)
	UpdatePairings(ctx context.Context, tournamentID int, updates []PairingUpdate) (*BracketView, error)
	ListGoalEvents(ctx context.Context, tournamentID int) ([]models.GoalEvent, error)
	ListPlayers(ctx context.Context, tournamentID int) ([]models.Player, error)
}

type bracketService struct {
	txRunner          repositories.TxRunner
	tournamentRepo    repositories.TournamentRepository
	participantRepo   repositories.ParticipantRepository
	matchRepo         repositories.MatchRepository
	goalEventRepo     repositories.GoalEventRepository
	participationRepo repositories.ParticipationRepository
	generator         brackets.Generator
	hub               *brackets.Hub
	logger            *slog.Logger
}

func NewBracketService(
	txRunner repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	goalEventRepo repositories.GoalEventRepository,
	participationRepo repositories.ParticipationRepository,
	generator brackets.Generator,
	hub *brackets.Hub,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		txRunner:          txRunner,
		tournamentRepo:    tournamentRepo,
		participantRepo:   participantRepo,
		matchRepo:         matchRepo,
		goalEventRepo:     goalEventRepo,
		participationRepo: participationRepo,
		generator:         generator,
		hub:               hub,
		logger:            logger,
	}
}

// Generate builds and persists the knockout bracket for a tournament. The
// whole operation is transactional: either all 7 matches exist and the
// tournament is ongoing afterwards, or nothing changed.
func (s *bracketService) Generate(ctx context.Context, tournamentID int) (*BracketView, error) {
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			return mapTournamentRepoError(err)
		}
		if tournament.Status == models.TournamentStatusCompleted {
			return ErrTournamentCompleted
		}

		hasMatches, err := s.matchRepo.ExistsByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if hasMatches {
			return ErrBracketAlreadyGenerated
		}

		participants, err := s.participantRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if len(participants) != brackets.TeamCount {
			return ErrParticipantCountInvalid
		}
		teamIDs := make([]int, len(participants))
		for i, p := range participants {
			teamIDs[i] = p.TeamID
		}

		plan, err := s.generator.Generate(teamIDs)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}

		// The plan is ordered so every match is created after the one its
		// winner advances into, letting next_match_id resolve immediately.
		created := make(map[[2]int]int, len(plan))
		for _, planned := range plan {
			match := &models.Match{
				TournamentID: tournamentID,
				Round:        planned.Round,
				MatchNumber:  planned.Number,
				Status:       planned.Status,
				TeamAID:      planned.TeamAID,
				TeamBID:      planned.TeamBID,
				NextSlot:     planned.NextSlot,
			}
			if planned.NextRound != 0 {
				nextID, ok := created[[2]int{planned.NextRound, planned.NextNumber}]
				if !ok {
					return fmt.Errorf("%w: missing target for round %d match %d",
						ErrBracketIncomplete, planned.Round, planned.Number)
				}
				match.NextMatchID = &nextID
			}
			if err := s.matchRepo.Create(ctx, exec, match); err != nil {
				return err
			}
			created[[2]int{planned.Round, planned.Number}] = match.ID
		}

		count, err := s.matchRepo.CountByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if count != 7 {
			return fmt.Errorf("%w: expected 7 matches, have %d", ErrBracketIncomplete, count)
		}

		return s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.TournamentStatusOngoing)
	})
	if err != nil {
		return nil, err
	}

	view, err := s.Get(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	s.broadcast(tournamentID, brackets.EventBracketGenerated, view)
	return view, nil
}

// Get assembles the bracket view. Matches and goal events load concurrently.
func (s *bracketService) Get(ctx context.Context, tournamentID int) (*BracketView, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}

	var (
		matches []models.Match
		events  []models.GoalEvent
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListBracketByTournament(gctx, nil, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = s.goalEventRepo.ListByTournament(gctx, nil, tournamentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	eventsByMatch := make(map[int][]models.GoalEvent, len(matches))
	for _, event := range events {
		eventsByMatch[event.MatchID] = append(eventsByMatch[event.MatchID], event)
	}
	for i := range matches {
		matches[i].GoalEvents = eventsByMatch[matches[i].ID]
	}

	return &BracketView{Tournament: tournament, Matches: matches}, nil
}

// UpdatePairings manually overwrites team slots, a fixup tool for before any
// results come in. Played matches are refused, statuses are recomputed from
// the new slot contents.
func (s *bracketService) UpdatePairings(ctx context.Context, tournamentID int, updates []PairingUpdate) (*BracketView, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: matches must be a non-empty array", ErrValidationFailed)
	}

	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID); err != nil {
			return mapTournamentRepoError(err)
		}

		matches, err := s.matchRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return ErrBracketNotGenerated
		}
		byID := make(map[int]models.Match, len(matches))
		for _, m := range matches {
			byID[m.ID] = m
		}

		for _, upd := range updates {
			if upd.MatchID <= 0 {
				continue
			}
			match, ok := byID[upd.MatchID]
			if !ok {
				return fmt.Errorf("%w: match %d", ErrMatchNotInTournament, upd.MatchID)
			}
			if match.Status == models.MatchStatusPlayed {
				return ErrMatchAlreadyPlayed
			}
			if err := s.matchRepo.UpdateTeams(ctx, exec, upd.MatchID, upd.TeamAID, upd.TeamBID); err != nil {
				return err
			}
			if err := s.matchRepo.RecomputeStatus(ctx, exec, upd.MatchID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view, err := s.Get(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	s.broadcast(tournamentID, brackets.EventMatchUpdated, view)
	return view, nil
}

// ListGoalEvents returns the tournament's full scoring history, ordered by
// match then minute.
func (s *bracketService) ListGoalEvents(ctx context.Context, tournamentID int) ([]models.GoalEvent, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, mapTournamentRepoError(err)
	}
	return s.goalEventRepo.ListByTournament(ctx, nil, tournamentID)
}

// ListPlayers returns every player with a recorded appearance in the
// tournament, once each.
func (s *bracketService) ListPlayers(ctx context.Context, tournamentID int) ([]models.Player, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, mapTournamentRepoError(err)
	}
	return s.participationRepo.ListPlayersByTournament(ctx, nil, tournamentID)
}

func (s *bracketService) broadcast(tournamentID int, eventType string, payload interface{}) {
	if s.hub == nil {
		return
	}
	room := strconv.Itoa(tournamentID)
	s.hub.BroadcastToRoom(room, brackets.WebSocketMessage{
		Type:    eventType,
		Payload: payload,
		RoomID:  room,
	})
}
