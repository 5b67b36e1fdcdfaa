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
	ErrParticipantTeamMissing = errors.New("participant team does not exist")
	ErrParticipantDuplicate   = errors.New("team already registered in tournament")
)

type ParticipantRepository interface {
	Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Participant, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresParticipantRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournament_participants (tournament_id, team_id, seed, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query, p.TournamentID, p.TeamID, p.Seed).
		Scan(&p.ID, &p.CreatedAt)

	return r.handleParticipantError(err)
}

// ListByTournament returns participants in seed order. Unseeded rows sort
// last, ties broken by team id so the order is deterministic.
func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Participant, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT p.id, p.tournament_id, p.team_id, p.seed, p.created_at,
		       t.id, t.name, t.logo_url, t.created_at, t.updated_at, t.deleted_at
		FROM tournament_participants p
		JOIN teams t ON t.id = p.team_id
		WHERE p.tournament_id = $1
		ORDER BY COALESCE(p.seed, 999999), p.team_id`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	participants := make([]models.Participant, 0, 8)
	for rows.Next() {
		var p models.Participant
		var team models.Team
		if scanErr := rows.Scan(
			&p.ID, &p.TournamentID, &p.TeamID, &p.Seed, &p.CreatedAt,
			&team.ID, &team.Name, &team.LogoURL, &team.CreatedAt, &team.UpdatedAt, &team.DeletedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", scanErr)
		}
		p.Team = &team
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during participant rows iteration: %w", err)
	}
	return participants, nil
}

func (r *postgresParticipantRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM tournament_participants WHERE tournament_id = $1`
	if _, err := executor.ExecContext(ctx, query, tournamentID); err != nil {
		return fmt.Errorf("failed to delete participants for tournament %d: %w", tournamentID, err)
	}
	return nil
}

func (r *postgresParticipantRepository) handleParticipantError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch {
		case pqErr.Code == "23503" && pqErr.Constraint == "tournament_participants_team_id_fkey":
			return ErrParticipantTeamMissing
		case pqErr.Code == "23505" && pqErr.Constraint == "tournament_participants_tournament_id_team_id_key":
			return ErrParticipantDuplicate
		}
	}
	return err
}
