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
	ErrPlayerNotFound    = errors.New("player not found")
	ErrPlayerTeamMissing = errors.New("player team does not exist")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, p *models.Player) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error)
	GetWithTeam(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error)
	List(ctx context.Context) ([]models.Player, error)
	ListByTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]models.Player, error)
	Update(ctx context.Context, exec SQLExecutor, p *models.Player) error
	UpdateAvatarURL(ctx context.Context, exec SQLExecutor, id int, avatarURL string) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	CountByTeam(ctx context.Context, exec SQLExecutor, teamID int) (int, error)
	GetStats(ctx context.Context, exec SQLExecutor, id int) (*models.PlayerStats, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Player) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO players
		  (team_id, first_name, last_name, number, nationality, role, height_cm, weight_kg, birth_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING id, created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		p.TeamID, p.FirstName, p.LastName, p.Number,
		p.Nationality, p.Role, p.HeightCM, p.WeightKG, p.BirthDate,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	return r.handlePlayerError(err)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, team_id, first_name, last_name, number, avatar_url,
		       nationality, role, height_cm, weight_kg, birth_date, created_at, updated_at
		FROM players
		WHERE id = $1`

	p := &models.Player{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.TeamID, &p.FirstName, &p.LastName, &p.Number, &p.AvatarURL,
		&p.Nationality, &p.Role, &p.HeightCM, &p.WeightKG, &p.BirthDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player %d: %w", id, err)
	}
	return p, nil
}

func (r *postgresPlayerRepository) GetWithTeam(ctx context.Context, exec SQLExecutor, id int) (*models.Player, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT p.id, p.team_id, p.first_name, p.last_name, p.number, p.avatar_url,
		       p.nationality, p.role, p.height_cm, p.weight_kg, p.birth_date, p.created_at, p.updated_at,
		       t.id, t.name, t.logo_url, t.created_at, t.updated_at, t.deleted_at
		FROM players p
		JOIN teams t ON t.id = p.team_id
		WHERE p.id = $1`

	p := &models.Player{}
	team := &models.Team{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.TeamID, &p.FirstName, &p.LastName, &p.Number, &p.AvatarURL,
		&p.Nationality, &p.Role, &p.HeightCM, &p.WeightKG, &p.BirthDate, &p.CreatedAt, &p.UpdatedAt,
		&team.ID, &team.Name, &team.LogoURL, &team.CreatedAt, &team.UpdatedAt, &team.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player %d with team: %w", id, err)
	}
	p.Team = team
	return p, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]models.Player, error) {
	query := `
		SELECT id, team_id, first_name, last_name, number, avatar_url,
		       nationality, role, height_cm, weight_kg, birth_date, created_at, updated_at
		FROM players
		ORDER BY last_name, first_name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	return scanPlayers(rows)
}

func (r *postgresPlayerRepository) ListByTeam(ctx context.Context, exec SQLExecutor, teamID int) ([]models.Player, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, team_id, first_name, last_name, number, avatar_url,
		       nationality, role, height_cm, weight_kg, birth_date, created_at, updated_at
		FROM players
		WHERE team_id = $1
		ORDER BY number NULLS LAST, last_name`

	rows, err := executor.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players for team %d: %w", teamID, err)
	}
	defer rows.Close()

	return scanPlayers(rows)
}

func (r *postgresPlayerRepository) Update(ctx context.Context, exec SQLExecutor, p *models.Player) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE players
		SET first_name = $1, last_name = $2, number = $3, nationality = $4,
		    role = $5, height_cm = $6, weight_kg = $7, birth_date = $8, updated_at = now()
		WHERE id = $9`

	result, err := executor.ExecContext(ctx, query,
		p.FirstName, p.LastName, p.Number, p.Nationality,
		p.Role, p.HeightCM, p.WeightKG, p.BirthDate, p.ID,
	)
	if err != nil {
		return r.handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdateAvatarURL(ctx context.Context, exec SQLExecutor, id int, avatarURL string) error {
	executor := r.getExecutor(exec)
	query := `UPDATE players SET avatar_url = $1, updated_at = now() WHERE id = $2`

	result, err := executor.ExecContext(ctx, query, avatarURL, id)
	if err != nil {
		return fmt.Errorf("failed to update avatar of player %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM players WHERE id = $1`

	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return r.handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) CountByTeam(ctx context.Context, exec SQLExecutor, teamID int) (int, error) {
	executor := r.getExecutor(exec)
	query := `SELECT COUNT(*) FROM players WHERE team_id = $1`

	var count int
	if err := executor.QueryRowContext(ctx, query, teamID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count players for team %d: %w", teamID, err)
	}
	return count, nil
}

// GetStats aggregates over played matches only. Participations in matches
// that were never finished do not count as appearances.
func (r *postgresPlayerRepository) GetStats(ctx context.Context, exec SQLExecutor, id int) (*models.PlayerStats, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT
		  (SELECT COUNT(*)
		   FROM match_player_participations pp
		   JOIN matches m ON m.id = pp.match_id
		   WHERE pp.player_id = $1 AND m.status = $2) AS matches,
		  (SELECT COUNT(*)
		   FROM match_goal_events e
		   JOIN matches m ON m.id = e.match_id
		   WHERE e.scorer_player_id = $1 AND m.status = $2) AS goals,
		  (SELECT COUNT(*)
		   FROM match_goal_events e
		   JOIN matches m ON m.id = e.match_id
		   WHERE e.assist_player_id = $1 AND m.status = $2) AS assists`

	stats := &models.PlayerStats{}
	err := executor.QueryRowContext(ctx, query, id, models.MatchStatusPlayed).
		Scan(&stats.Matches, &stats.Goals, &stats.Assists)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats for player %d: %w", id, err)
	}
	return stats, nil
}

func scanPlayers(rows *sql.Rows) ([]models.Player, error) {
	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(
			&p.ID, &p.TeamID, &p.FirstName, &p.LastName, &p.Number, &p.AvatarURL,
			&p.Nationality, &p.Role, &p.HeightCM, &p.WeightKG, &p.BirthDate, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" && pqErr.Constraint == "players_team_id_fkey" {
			return ErrPlayerTeamMissing
		}
	}
	return err
}
