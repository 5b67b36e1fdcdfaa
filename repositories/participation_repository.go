package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/opencup/cup-system/models"
)

var ErrParticipationPlayerMissing = errors.New("participation references a player that does not exist")

type ParticipationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, p *models.Participation) error
	DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) error
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.Participation, error)
	ListPlayersByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Player, error)
}

type postgresParticipationRepository struct {
	db *sql.DB
}

func NewPostgresParticipationRepository(db *sql.DB) ParticipationRepository {
	return &postgresParticipationRepository{db: db}
}

func (r *postgresParticipationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresParticipationRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Participation) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO match_player_participations (match_id, player_id, team_id, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query, p.MatchID, p.PlayerID, p.TeamID).
		Scan(&p.ID, &p.CreatedAt)

	return r.handleParticipationError(err)
}

func (r *postgresParticipationRepository) DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM match_player_participations WHERE match_id = $1`
	if _, err := executor.ExecContext(ctx, query, matchID); err != nil {
		return fmt.Errorf("failed to delete participations for match %d: %w", matchID, err)
	}
	return nil
}

func (r *postgresParticipationRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.Participation, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, match_id, player_id, team_id, created_at
		FROM match_player_participations
		WHERE match_id = $1
		ORDER BY team_id, player_id`

	rows, err := executor.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participations for match %d: %w", matchID, err)
	}
	defer rows.Close()

	participations := make([]models.Participation, 0)
	for rows.Next() {
		var p models.Participation
		if scanErr := rows.Scan(&p.ID, &p.MatchID, &p.PlayerID, &p.TeamID, &p.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan participation row: %w", scanErr)
		}
		participations = append(participations, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during participation rows iteration: %w", err)
	}
	return participations, nil
}

// ListPlayersByTournament returns every player with at least one recorded
// appearance in the tournament, once each, with the team they appeared for.
func (r *postgresParticipationRepository) ListPlayersByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Player, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT DISTINCT p.id, mpp.team_id, p.first_name, p.last_name, p.avatar_url, p.role,
		       t.name
		FROM match_player_participations mpp
		JOIN matches m ON m.id = mpp.match_id
		JOIN players p ON p.id = mpp.player_id
		LEFT JOIN teams t ON t.id = mpp.team_id
		WHERE m.tournament_id = $1
		ORDER BY t.name NULLS LAST, p.last_name, p.first_name`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var (
			p        models.Player
			teamName sql.NullString
		)
		if scanErr := rows.Scan(
			&p.ID, &p.TeamID, &p.FirstName, &p.LastName, &p.AvatarURL, &p.Role, &teamName,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament player row: %w", scanErr)
		}
		if teamName.Valid {
			p.Team = &models.Team{ID: p.TeamID, Name: teamName.String}
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament player rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresParticipationRepository) handleParticipationError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" && pqErr.Constraint == "match_player_participations_player_id_fkey" {
			return ErrParticipationPlayerMissing
		}
	}
	return err
}
