package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/opencup/cup-system/models"
	"github.com/opencup/cup-system/repositories"
)

type CreateTournamentInput struct {
	Name      string
	StartDate time.Time
}

type UpdateTournamentInput struct {
	Name      *string
	StartDate *time.Time
	Status    *models.TournamentStatus
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]models.Tournament, error)
	Update(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, id int) error
	ReplaceParticipants(ctx context.Context, tournamentID int, teamIDs []int) ([]models.Participant, error)
	ListParticipants(ctx context.Context, tournamentID int) ([]models.Participant, error)
}

type tournamentService struct {
	txRunner        repositories.TxRunner
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	playerRepo      repositories.PlayerRepository
}

func NewTournamentService(
	txRunner repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
) TournamentService {
	return &tournamentService{
		txRunner:        txRunner,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		playerRepo:      playerRepo,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if input.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: start date is required", ErrValidationFailed)
	}

	tournament := &models.Tournament{
		Name:      name,
		StartDate: input.StartDate,
		Status:    models.TournamentStatusDraft,
	}
	if err := s.tournamentRepo.Create(ctx, nil, tournament); err != nil {
		return nil, mapTournamentRepoError(err)
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapTournamentRepoError(err)
	}

	participants, err := s.participantRepo.ListByTournament(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	tournament.Participants = participants

	hasMatches, err := s.matchRepo.ExistsByTournament(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	tournament.HasMatches = hasMatches

	hasResults, err := s.tournamentRepo.HasResults(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	tournament.HasResults = hasResults

	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context) ([]models.Tournament, error) {
	return s.tournamentRepo.List(ctx)
}

// Update applies a dynamic patch of name, start date and status. The guard
// runs inside the same transaction as the update so a result recorded
// concurrently cannot slip between check and write.
func (s *tournamentService) Update(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	upd := repositories.TournamentUpdate{StartDate: input.StartDate}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTournamentNameRequired
		}
		upd.Name = &name
	}
	if input.Status != nil {
		switch *input.Status {
		case models.TournamentStatusDraft, models.TournamentStatusOngoing, models.TournamentStatusCompleted:
			upd.Status = input.Status
		default:
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidationFailed, *input.Status)
		}
	}

	var tournament *models.Tournament
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.assertEditableOrDeletable(ctx, exec, id); err != nil {
			return err
		}

		updated, err := s.tournamentRepo.Update(ctx, exec, id, upd)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNoFields) {
				return fmt.Errorf("%w: no fields to update", ErrValidationFailed)
			}
			return mapTournamentRepoError(err)
		}
		tournament = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tournament, nil
}

// Delete removes the tournament and everything hanging off it. The guard
// runs inside the same transaction as the cascade so a result recorded
// concurrently cannot slip through.
func (s *tournamentService) Delete(ctx context.Context, id int) error {
	return s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.assertEditableOrDeletable(ctx, exec, id); err != nil {
			return err
		}
		if err := s.matchRepo.DeleteByTournament(ctx, exec, id); err != nil {
			return err
		}
		if err := s.participantRepo.DeleteByTournament(ctx, exec, id); err != nil {
			return err
		}
		if err := s.tournamentRepo.Delete(ctx, exec, id); err != nil {
			return mapTournamentRepoError(err)
		}
		return nil
	})
}

// ReplaceParticipants swaps the full participant set in one transaction.
// Seeds are assigned 1..8 in payload order. Once matches exist the set is
// frozen, even if none have been played.
func (s *tournamentService) ReplaceParticipants(ctx context.Context, tournamentID int, teamIDs []int) ([]models.Participant, error) {
	if len(teamIDs) != 8 {
		return nil, ErrParticipantCountInvalid
	}
	seen := make(map[int]struct{}, 8)
	for _, teamID := range teamIDs {
		if _, dup := seen[teamID]; dup {
			return nil, ErrParticipantCountInvalid
		}
		seen[teamID] = struct{}{}
	}

	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.assertEditableOrDeletable(ctx, exec, tournamentID); err != nil {
			return err
		}

		hasMatches, err := s.matchRepo.ExistsByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if hasMatches {
			return ErrParticipantsLocked
		}

		for _, teamID := range teamIDs {
			count, err := s.playerRepo.CountByTeam(ctx, exec, teamID)
			if err != nil {
				return err
			}
			if count != 5 {
				return fmt.Errorf("%w: team %d", ErrTeamNotReady, teamID)
			}
		}

		if err := s.participantRepo.DeleteByTournament(ctx, exec, tournamentID); err != nil {
			return err
		}
		for i, teamID := range teamIDs {
			seed := i + 1
			participant := &models.Participant{
				TournamentID: tournamentID,
				TeamID:       teamID,
				Seed:         &seed,
			}
			if err := s.participantRepo.Create(ctx, exec, participant); err != nil {
				if errors.Is(err, repositories.ErrParticipantTeamMissing) {
					return fmt.Errorf("%w: team %d", ErrTeamNotFound, teamID)
				}
				if errors.Is(err, repositories.ErrParticipantDuplicate) {
					return ErrTeamAlreadyRegistered
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.participantRepo.ListByTournament(ctx, nil, tournamentID)
}

func (s *tournamentService) ListParticipants(ctx context.Context, tournamentID int) ([]models.Participant, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, mapTournamentRepoError(err)
	}
	return s.participantRepo.ListByTournament(ctx, nil, tournamentID)
}

// assertEditableOrDeletable enforces the lifecycle guard: a completed
// tournament is frozen, and one with any recorded result (a played match or
// a goal event) can no longer be edited or deleted.
func (s *tournamentService) assertEditableOrDeletable(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, exec, id)
	if err != nil {
		return mapTournamentRepoError(err)
	}
	if tournament.Status == models.TournamentStatusCompleted {
		return ErrTournamentCompleted
	}

	hasResults, err := s.tournamentRepo.HasResults(ctx, exec, id)
	if err != nil {
		return err
	}
	if hasResults {
		return ErrTournamentHasResults
	}
	return nil
}

func mapTournamentRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameConflict
	default:
		return err
	}
}
