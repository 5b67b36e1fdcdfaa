package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/opencup/cup-system/models"
	"github.com/opencup/cup-system/repositories"
	"github.com/opencup/cup-system/storage"
)

type TeamService interface {
	List(ctx context.Context) ([]models.Team, error)
	ListReady(ctx context.Context) ([]models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListPlayers(ctx context.Context, id int) ([]models.Player, error)
	Create(ctx context.Context, name string) (*models.Team, error)
	Update(ctx context.Context, id int, name string) (*models.Team, error)
	UploadLogo(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Team, error)
	Delete(ctx context.Context, id int) error
}

type teamService struct {
	teamRepo   repositories.TeamRepository
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	uploader storage.FileUploader,
) TeamService {
	return &teamService{
		teamRepo:   teamRepo,
		playerRepo: playerRepo,
		uploader:   uploader,
	}
}

func (s *teamService) List(ctx context.Context) ([]models.Team, error) {
	return s.teamRepo.List(ctx)
}

func (s *teamService) ListReady(ctx context.Context) ([]models.Team, error) {
	return s.teamRepo.ListReady(ctx)
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapTeamRepoError(err)
	}
	players, err := s.playerRepo.ListByTeam(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	team.Players = players
	return team, nil
}

func (s *teamService) ListPlayers(ctx context.Context, id int) ([]models.Player, error) {
	if _, err := s.teamRepo.GetByID(ctx, nil, id); err != nil {
		return nil, mapTeamRepoError(err)
	}
	return s.playerRepo.ListByTeam(ctx, nil, id)
}

func (s *teamService) Create(ctx context.Context, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	team := &models.Team{Name: name}
	if err := s.teamRepo.Create(ctx, nil, team); err != nil {
		return nil, mapTeamRepoError(err)
	}
	return team, nil
}

func (s *teamService) Update(ctx context.Context, id int, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	team := &models.Team{ID: id, Name: name}
	if err := s.teamRepo.Update(ctx, nil, team); err != nil {
		return nil, mapTeamRepoError(err)
	}
	return s.GetByID(ctx, id)
}

func (s *teamService) UploadLogo(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Team, error) {
	if _, err := s.teamRepo.GetByID(ctx, nil, id); err != nil {
		return nil, mapTeamRepoError(err)
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("teams/%d/logo%s", id, ext)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, err
	}
	if err := s.teamRepo.UpdateLogoURL(ctx, nil, id, result.Location); err != nil {
		return nil, mapTeamRepoError(err)
	}
	return s.GetByID(ctx, id)
}

func (s *teamService) Delete(ctx context.Context, id int) error {
	if err := s.teamRepo.SoftDelete(ctx, nil, id); err != nil {
		return mapTeamRepoError(err)
	}
	return nil
}

func mapTeamRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrTeamNameConflict):
		return ErrTeamNameConflict
	default:
		return err
	}
}
