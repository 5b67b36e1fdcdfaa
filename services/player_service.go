package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/opencup/cup-system/models"
	"github.com/opencup/cup-system/repositories"
	"github.com/opencup/cup-system/storage"
)

// RosterLimit is the fixed squad size. A team fields exactly this many
// players and registration requires a full roster.
const RosterLimit = 5

type PlayerInput struct {
	TeamID      int
	FirstName   string
	LastName    string
	Number      *int
	Nationality *string
	Role        *string
	HeightCM    *int
	WeightKG    *int
	BirthDate   *time.Time
}

type PlayerService interface {
	List(ctx context.Context) ([]models.Player, error)
	ListByTeam(ctx context.Context, teamID int) ([]models.Player, error)
	GetByID(ctx context.Context, id int) (*models.Player, error)
	Create(ctx context.Context, input PlayerInput) (*models.Player, error)
	Update(ctx context.Context, id int, input PlayerInput) (*models.Player, error)
	UploadAvatar(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Player, error)
	Delete(ctx context.Context, id int) error
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	teamRepo   repositories.TeamRepository
	uploader   storage.FileUploader
}

func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.TeamRepository,
	uploader storage.FileUploader,
) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
		teamRepo:   teamRepo,
		uploader:   uploader,
	}
}

func (s *playerService) List(ctx context.Context) ([]models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range players {
		players[i].FullName = fullName(players[i].FirstName, players[i].LastName)
	}
	return players, nil
}

func (s *playerService) ListByTeam(ctx context.Context, teamID int) ([]models.Player, error) {
	players, err := s.playerRepo.ListByTeam(ctx, nil, teamID)
	if err != nil {
		return nil, err
	}
	for i := range players {
		players[i].FullName = fullName(players[i].FirstName, players[i].LastName)
	}
	return players, nil
}

// GetByID returns the player with their team and career stats. Stats count
// played matches only.
func (s *playerService) GetByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetWithTeam(ctx, nil, id)
	if err != nil {
		return nil, mapPlayerRepoError(err)
	}
	player.FullName = fullName(player.FirstName, player.LastName)

	stats, err := s.playerRepo.GetStats(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	player.Stats = stats
	return player, nil
}

func (s *playerService) Create(ctx context.Context, input PlayerInput) (*models.Player, error) {
	if err := validatePlayerInput(input); err != nil {
		return nil, err
	}
	if _, err := s.teamRepo.GetByID(ctx, nil, input.TeamID); err != nil {
		return nil, mapTeamRepoError(err)
	}

	count, err := s.playerRepo.CountByTeam(ctx, nil, input.TeamID)
	if err != nil {
		return nil, err
	}
	if count >= RosterLimit {
		return nil, ErrTeamRosterFull
	}

	player := playerFromInput(input)
	if err := s.playerRepo.Create(ctx, nil, player); err != nil {
		return nil, mapPlayerRepoError(err)
	}
	player.FullName = fullName(player.FirstName, player.LastName)
	return player, nil
}

func (s *playerService) Update(ctx context.Context, id int, input PlayerInput) (*models.Player, error) {
	if err := validatePlayerInput(input); err != nil {
		return nil, err
	}
	current, err := s.playerRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapPlayerRepoError(err)
	}

	player := playerFromInput(input)
	player.ID = id
	player.TeamID = current.TeamID
	if err := s.playerRepo.Update(ctx, nil, player); err != nil {
		return nil, mapPlayerRepoError(err)
	}
	return s.GetByID(ctx, id)
}

func (s *playerService) UploadAvatar(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Player, error) {
	if _, err := s.playerRepo.GetByID(ctx, nil, id); err != nil {
		return nil, mapPlayerRepoError(err)
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("players/%d/avatar%s", id, ext)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, err
	}
	if err := s.playerRepo.UpdateAvatarURL(ctx, nil, id, result.Location); err != nil {
		return nil, mapPlayerRepoError(err)
	}
	return s.GetByID(ctx, id)
}

func (s *playerService) Delete(ctx context.Context, id int) error {
	if err := s.playerRepo.Delete(ctx, nil, id); err != nil {
		return mapPlayerRepoError(err)
	}
	return nil
}

func validatePlayerInput(input PlayerInput) error {
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return ErrPlayerNameRequired
	}
	return nil
}

func playerFromInput(input PlayerInput) *models.Player {
	return &models.Player{
		TeamID:      input.TeamID,
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		Number:      input.Number,
		Nationality: input.Nationality,
		Role:        input.Role,
		HeightCM:    input.HeightCM,
		WeightKG:    input.WeightKG,
		BirthDate:   input.BirthDate,
	}
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

func mapPlayerRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrPlayerTeamMissing):
		return ErrTeamNotFound
	default:
		return err
	}
}
