package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/opencup/cup-system/models"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameConflict = errors.New("team name conflict")
)

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, t *models.Team) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error)
	List(ctx context.Context) ([]models.Team, error)
	ListReady(ctx context.Context) ([]models.Team, error)
	Update(ctx context.Context, exec SQLExecutor, t *models.Team) error
	UpdateLogoURL(ctx context.Context, exec SQLExecutor, id int, logoURL string) error
	SoftDelete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Team) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO teams (name, logo_url, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		RETURNING id, created_at, updated_at`

	err := executor.QueryRowContext(ctx, query, t.Name, t.LogoURL).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)

	return r.handleTeamError(err)
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, name, logo_url, created_at, updated_at, deleted_at
		FROM teams
		WHERE id = $1 AND deleted_at IS NULL`

	t := &models.Team{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.LogoURL, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTeamRepository) List(ctx context.Context) ([]models.Team, error) {
	query := `
		SELECT id, name, logo_url, created_at, updated_at, deleted_at
		FROM teams
		WHERE deleted_at IS NULL
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	return scanTeams(rows)
}

// ListReady returns teams eligible for tournament registration: not deleted
// and carrying a full roster of exactly five players.
func (r *postgresTeamRepository) ListReady(ctx context.Context) ([]models.Team, error) {
	query := `
		SELECT t.id, t.name, t.logo_url, t.created_at, t.updated_at, t.deleted_at
		FROM teams t
		JOIN players p ON p.team_id = t.id
		WHERE t.deleted_at IS NULL
		GROUP BY t.id
		HAVING COUNT(p.id) = 5
		ORDER BY t.name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list ready teams: %w", err)
	}
	defer rows.Close()

	return scanTeams(rows)
}

func (r *postgresTeamRepository) Update(ctx context.Context, exec SQLExecutor, t *models.Team) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE teams
		SET name = $1, updated_at = now()
		WHERE id = $2 AND deleted_at IS NULL`

	result, err := executor.ExecContext(ctx, query, t.Name, t.ID)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateLogoURL(ctx context.Context, exec SQLExecutor, id int, logoURL string) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE teams
		SET logo_url = $1, updated_at = now()
		WHERE id = $2 AND deleted_at IS NULL`

	result, err := executor.ExecContext(ctx, query, logoURL, id)
	if err != nil {
		return fmt.Errorf("failed to update logo of team %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

// SoftDelete hides the team without breaking historical match references.
func (r *postgresTeamRepository) SoftDelete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE teams
		SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete team %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func scanTeams(rows *sql.Rows) ([]models.Team, error) {
	teams := make([]models.Team, 0)
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.LogoURL, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during team rows iteration: %w", err)
	}
	return teams, nil
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23505" && pqErr.Constraint == "teams_name_key" {
			return ErrTeamNameConflict
		}
	}
	return err
}
