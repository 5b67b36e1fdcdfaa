package services

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/opencup/cup-system/brackets"
	"github.com/opencup/cup-system/models"
	"github.com/opencup/cup-system/repositories"
)

// GoalEventInput is a single goal as submitted by the client, before any
// normalization. Minute arrives as free text ("45", "45'", "90+3").
type GoalEventInput struct {
	TeamID         int
	ScorerPlayerID int
	AssistPlayerID *int
	Minute         string
}

type ParticipationInput struct {
	TeamID   int
	PlayerID int
}

type MatchResultInput struct {
	ScoreA         int
	ScoreB         int
	GoalEvents     []GoalEventInput
	Participations []ParticipationInput
}

type MatchService interface {
	GetByID(ctx context.Context, id int) (*models.Match, error)
	SetResult(ctx context.Context, matchID int, input MatchResultInput) (*models.Match, error)
	ListGoalEvents(ctx context.Context, matchID int) ([]models.GoalEvent, error)
}

type matchService struct {
	txRunner       repositories.TxRunner
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	goalEventRepo  repositories.GoalEventRepository
	partRepo       repositories.ParticipationRepository
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewMatchService(
	txRunner repositories.TxRunner,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	goalEventRepo repositories.GoalEventRepository,
	partRepo repositories.ParticipationRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		txRunner:       txRunner,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		goalEventRepo:  goalEventRepo,
		partRepo:       partRepo,
		hub:            hub,
		logger:         logger,
	}
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	events, err := s.goalEventRepo.ListByMatch(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	match.GoalEvents = events
	return match, nil
}

// ListGoalEvents returns the persisted events for a match, played or not.
func (s *matchService) ListGoalEvents(ctx context.Context, matchID int) ([]models.GoalEvent, error) {
	if _, err := s.matchRepo.GetByID(ctx, nil, matchID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return s.goalEventRepo.ListByMatch(ctx, nil, matchID)
}

// SetResult records a final score for a match, replaces its goal events and
// participations, and propagates the winner up the bracket. A played match is
// immutable; re-submitting fails rather than overwriting. The final closes
// out the tournament.
func (s *matchService) SetResult(ctx context.Context, matchID int, input MatchResultInput) (*models.Match, error) {
	if input.ScoreA < 0 || input.ScoreB < 0 {
		return nil, ErrNegativeScore
	}
	if input.ScoreA == input.ScoreB {
		return nil, ErrDrawNotAllowed
	}
	if len(input.GoalEvents) > input.ScoreA+input.ScoreB {
		return nil, ErrTooManyGoalEvents
	}

	var (
		updated      *models.Match
		tournamentID int
		completed    bool
	)
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByID(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		}
		tournamentID = match.TournamentID

		if match.Status == models.MatchStatusPlayed {
			return ErrMatchAlreadyPlayed
		}
		if match.TeamAID == nil || match.TeamBID == nil {
			return ErrMatchMissingTeam
		}

		winnerTeamID := *match.TeamBID
		if input.ScoreA > input.ScoreB {
			winnerTeamID = *match.TeamAID
		}

		if err := s.matchRepo.UpdateResult(ctx, exec, matchID, input.ScoreA, input.ScoreB, winnerTeamID); err != nil {
			return err
		}

		if len(input.GoalEvents) > 0 || len(input.Participations) > 0 {
			if err := s.replaceMatchDetails(ctx, exec, match, input); err != nil {
				return err
			}
		}

		if match.NextMatchID != nil {
			slot := models.SlotA
			if match.NextSlot != nil {
				slot = *match.NextSlot
			}
			if err := s.matchRepo.SetSlotTeam(ctx, exec, *match.NextMatchID, slot, winnerTeamID); err != nil {
				return err
			}
			if err := s.matchRepo.RecomputeStatus(ctx, exec, *match.NextMatchID); err != nil {
				return err
			}
		} else {
			// No next match means this was the final.
			if err := s.tournamentRepo.SetWinner(ctx, exec, match.TournamentID, winnerTeamID); err != nil {
				return err
			}
			completed = true
		}

		updated, err = s.matchRepo.GetByID(ctx, exec, matchID)
		return err
	})
	if err != nil {
		return nil, err
	}

	events, err := s.goalEventRepo.ListByMatch(ctx, nil, matchID)
	if err != nil {
		return nil, err
	}
	updated.GoalEvents = events

	s.broadcast(tournamentID, brackets.EventMatchUpdated, updated)
	if completed {
		s.broadcast(tournamentID, brackets.EventTournamentFinal, updated)
	}
	return updated, nil
}

// replaceMatchDetails wipes and rewrites the match's goal events and
// participations. Entries with non-positive ids or a team that is not in the
// match are dropped silently so one bad row does not sink the submission.
func (s *matchService) replaceMatchDetails(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, input MatchResultInput) error {
	teamA, teamB := *match.TeamAID, *match.TeamBID

	if err := s.goalEventRepo.DeleteByMatch(ctx, exec, match.ID); err != nil {
		return err
	}
	if err := s.partRepo.DeleteByMatch(ctx, exec, match.ID); err != nil {
		return err
	}

	for _, in := range input.GoalEvents {
		if in.ScorerPlayerID <= 0 || (in.TeamID != teamA && in.TeamID != teamB) {
			s.logger.Warn("dropping malformed goal event",
				slog.Int("match_id", match.ID),
				slog.Int("team_id", in.TeamID), slog.Int("player_id", in.ScorerPlayerID))
			continue
		}

		event := &models.GoalEvent{
			MatchID:        match.ID,
			TeamID:         in.TeamID,
			ScorerPlayerID: in.ScorerPlayerID,
			AssistPlayerID: normalizeAssist(in.AssistPlayerID, in.ScorerPlayerID),
			Minute:         parseMinute(in.Minute),
		}
		if err := s.goalEventRepo.Create(ctx, exec, event); err != nil {
			return err
		}
	}

	for _, in := range input.Participations {
		if in.PlayerID <= 0 || (in.TeamID != teamA && in.TeamID != teamB) {
			s.logger.Warn("dropping malformed participation",
				slog.Int("match_id", match.ID),
				slog.Int("team_id", in.TeamID), slog.Int("player_id", in.PlayerID))
			continue
		}
		participation := &models.Participation{
			MatchID:  match.ID,
			PlayerID: in.PlayerID,
			TeamID:   in.TeamID,
		}
		if err := s.partRepo.Create(ctx, exec, participation); err != nil {
			return err
		}
	}
	return nil
}

// normalizeAssist turns the empty encodings (nil, non-positive, self-assist)
// into no assist.
func normalizeAssist(assistID *int, scorerID int) *int {
	if assistID == nil || *assistID <= 0 || *assistID == scorerID {
		return nil
	}
	return assistID
}

var minuteDigits = regexp.MustCompile(`\d+`)

// parseMinute extracts the leading minute from free text. "45'" and "90+3"
// become 45 and 90; anything without digits becomes 0.
func parseMinute(raw string) int {
	digits := minuteDigits.FindString(raw)
	if digits == "" {
		return 0
	}
	minute, err := strconv.Atoi(digits)
	if err != nil || minute < 0 {
		return 0
	}
	return minute
}

func (s *matchService) broadcast(tournamentID int, eventType string, payload interface{}) {
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
