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
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchTeamMissing = errors.New("match references a team that does not exist")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, m *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Match, error)
	ListBracketByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Match, error)
	ExistsByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (bool, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, id int, scoreA, scoreB, winnerTeamID int) error
	SetSlotTeam(ctx context.Context, exec SQLExecutor, id int, slot models.Slot, teamID int) error
	UpdateTeams(ctx context.Context, exec SQLExecutor, id int, teamAID, teamBID *int) error
	RecomputeStatus(ctx context.Context, exec SQLExecutor, id int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
		  (tournament_id, round, match_number, status, team_a_id, team_b_id, next_match_id, next_slot, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING id, created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		m.TournamentID, m.Round, m.MatchNumber, m.Status,
		m.TeamAID, m.TeamBID, m.NextMatchID, m.NextSlot,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, round, match_number, status,
		       team_a_id, team_b_id, score_a, score_b, winner_team_id,
		       next_match_id, next_slot, created_at, updated_at
		FROM matches
		WHERE id = $1`

	m := &models.Match{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.TournamentID, &m.Round, &m.MatchNumber, &m.Status,
		&m.TeamAID, &m.TeamBID, &m.ScoreA, &m.ScoreB, &m.WinnerTeamID,
		&m.NextMatchID, &m.NextSlot, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Match, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, round, match_number, status,
		       team_a_id, team_b_id, score_a, score_b, winner_team_id,
		       next_match_id, next_slot, created_at, updated_at
		FROM matches
		WHERE tournament_id = $1
		ORDER BY round, match_number`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// ListBracketByTournament is ListByTournament plus the team and winner names
// and logos the bracket payload renders with.
func (r *postgresMatchRepository) ListBracketByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Match, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT m.id, m.tournament_id, m.round, m.match_number, m.status,
		       m.team_a_id, m.team_b_id, m.score_a, m.score_b, m.winner_team_id,
		       m.next_match_id, m.next_slot, m.created_at, m.updated_at,
		       ta.name, ta.logo_url,
		       tb.name, tb.logo_url,
		       tw.name
		FROM matches m
		LEFT JOIN teams ta ON ta.id = m.team_a_id
		LEFT JOIN teams tb ON tb.id = m.team_b_id
		LEFT JOIN teams tw ON tw.id = m.winner_team_id
		WHERE m.tournament_id = $1
		ORDER BY m.round, m.match_number`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bracket for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0, 7)
	for rows.Next() {
		var m models.Match
		if scanErr := rows.Scan(
			&m.ID, &m.TournamentID, &m.Round, &m.MatchNumber, &m.Status,
			&m.TeamAID, &m.TeamBID, &m.ScoreA, &m.ScoreB, &m.WinnerTeamID,
			&m.NextMatchID, &m.NextSlot, &m.CreatedAt, &m.UpdatedAt,
			&m.TeamAName, &m.TeamALogoURL,
			&m.TeamBName, &m.TeamBLogoURL,
			&m.WinnerName,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan bracket match row: %w", scanErr)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during bracket rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) ExistsByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (bool, error) {
	executor := r.getExecutor(exec)
	query := `SELECT EXISTS (SELECT 1 FROM matches WHERE tournament_id = $1)`

	var exists bool
	if err := executor.QueryRowContext(ctx, query, tournamentID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check matches for tournament %d: %w", tournamentID, err)
	}
	return exists, nil
}

func (r *postgresMatchRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	query := `SELECT COUNT(*) FROM matches WHERE tournament_id = $1`

	var count int
	if err := executor.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int, scoreA, scoreB, winnerTeamID int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET score_a = $1, score_b = $2, winner_team_id = $3, status = $4, updated_at = now()
		WHERE id = $5`

	result, err := executor.ExecContext(ctx, query, scoreA, scoreB, winnerTeamID, models.MatchStatusPlayed, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetSlotTeam(ctx context.Context, exec SQLExecutor, id int, slot models.Slot, teamID int) error {
	executor := r.getExecutor(exec)

	column := "team_a_id"
	if slot == models.SlotB {
		column = "team_b_id"
	}
	query := fmt.Sprintf(`UPDATE matches SET %s = $1, updated_at = now() WHERE id = $2`, column)

	result, err := executor.ExecContext(ctx, query, teamID, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// UpdateTeams overwrites both pairing slots. Nil clears a slot.
func (r *postgresMatchRepository) UpdateTeams(ctx context.Context, exec SQLExecutor, id int, teamAID, teamBID *int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE matches SET team_a_id = $1, team_b_id = $2, updated_at = now() WHERE id = $3`

	result, err := executor.ExecContext(ctx, query, teamAID, teamBID, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// RecomputeStatus derives waiting/scheduled from team presence in one
// statement, so a half-filled pairing can never be read as scheduled. Played
// matches are left alone.
func (r *postgresMatchRepository) RecomputeStatus(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET status = CASE
		      WHEN team_a_id IS NOT NULL AND team_b_id IS NOT NULL THEN $1::match_status
		      ELSE $2::match_status
		    END,
		    updated_at = now()
		WHERE id = $3
		  AND status <> $4`

	if _, err := executor.ExecContext(ctx, query,
		models.MatchStatusScheduled, models.MatchStatusWaiting, id, models.MatchStatusPlayed,
	); err != nil {
		return fmt.Errorf("failed to recompute status of match %d: %w", id, err)
	}
	return nil
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM matches WHERE tournament_id = $1`
	if _, err := executor.ExecContext(ctx, query, tournamentID); err != nil {
		return fmt.Errorf("failed to delete matches for tournament %d: %w", tournamentID, err)
	}
	return nil
}

func scanMatches(rows *sql.Rows) ([]models.Match, error) {
	matches := make([]models.Match, 0, 7)
	for rows.Next() {
		var m models.Match
		if err := rows.Scan(
			&m.ID, &m.TournamentID, &m.Round, &m.MatchNumber, &m.Status,
			&m.TeamAID, &m.TeamBID, &m.ScoreA, &m.ScoreB, &m.WinnerTeamID,
			&m.NextMatchID, &m.NextSlot, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "matches_team_a_id_fkey", "matches_team_b_id_fkey", "matches_winner_team_id_fkey":
				return ErrMatchTeamMissing
			}
		}
	}
	return err
}
