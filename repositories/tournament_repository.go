package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/opencup/cup-system/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict")
	ErrTournamentNoFields     = errors.New("no tournament fields to update")
)

// TournamentUpdate carries the optional fields of a partial update. Nil
// pointers are left untouched.
type TournamentUpdate struct {
	Name      *string
	StartDate *time.Time
	Status    *models.TournamentStatus
}

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]models.Tournament, error)
	Update(ctx context.Context, exec SQLExecutor, id int, upd TournamentUpdate) (*models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	SetWinner(ctx context.Context, exec SQLExecutor, id int, winnerTeamID int) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	HasResults(ctx context.Context, exec SQLExecutor, id int) (bool, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournaments (name, start_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		RETURNING id, created_at, updated_at`

	err := executor.QueryRowContext(ctx, query, t.Name, t.StartDate, t.Status).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, name, start_date, status, winner_team_id, created_at, updated_at
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.StartDate, &t.Status, &t.WinnerTeamID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %d: %w", id, err)
	}
	return t, nil
}

// List returns every tournament with its winner's name/logo and the
// has_results/has_matches flags the bracket UI keys off.
func (r *postgresTournamentRepository) List(ctx context.Context) ([]models.Tournament, error) {
	query := `
		SELECT t.id, t.name, t.start_date, t.status, t.winner_team_id, t.created_at, t.updated_at,
		       w.name     AS winner_name,
		       w.logo_url AS winner_team_logo_url,
		       EXISTS (
		         SELECT 1
		         FROM match_goal_events ge
		         JOIN matches m ON m.id = ge.match_id
		         WHERE m.tournament_id = t.id
		       ) AS has_results,
		       EXISTS (
		         SELECT 1
		         FROM matches m2
		         WHERE m2.tournament_id = t.id
		       ) AS has_matches
		FROM tournaments t
		LEFT JOIN teams w ON w.id = t.winner_team_id
		ORDER BY t.start_date DESC, t.id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(
			&t.ID, &t.Name, &t.StartDate, &t.Status, &t.WinnerTeamID, &t.CreatedAt, &t.UpdatedAt,
			&t.WinnerName, &t.WinnerTeamLogoURL, &t.HasResults, &t.HasMatches,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, exec SQLExecutor, id int, upd TournamentUpdate) (*models.Tournament, error) {
	executor := r.getExecutor(exec)

	fields := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)
	argID := 1

	if upd.Name != nil {
		fields = append(fields, fmt.Sprintf("name = $%d", argID))
		args = append(args, *upd.Name)
		argID++
	}
	if upd.StartDate != nil {
		fields = append(fields, fmt.Sprintf("start_date = $%d", argID))
		args = append(args, *upd.StartDate)
		argID++
	}
	if upd.Status != nil {
		fields = append(fields, fmt.Sprintf("status = $%d", argID))
		args = append(args, *upd.Status)
		argID++
	}
	if len(fields) == 0 {
		return nil, ErrTournamentNoFields
	}

	query := fmt.Sprintf(`
		UPDATE tournaments
		SET %s, updated_at = now()
		WHERE id = $%d
		RETURNING id, name, start_date, status, winner_team_id, created_at, updated_at`,
		strings.Join(fields, ", "), argID)
	args = append(args, id)

	t := &models.Tournament{}
	err := executor.QueryRowContext(ctx, query, args...).Scan(
		&t.ID, &t.Name, &t.StartDate, &t.Status, &t.WinnerTeamID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, r.handleTournamentError(err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1, updated_at = now() WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// SetWinner closes out the tournament. Status and winner change in one
// statement so a completed tournament always carries its winner.
func (r *postgresTournamentRepository) SetWinner(ctx context.Context, exec SQLExecutor, id int, winnerTeamID int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments
		SET status = $1, winner_team_id = $2, updated_at = now()
		WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, models.TournamentStatusCompleted, winnerTeamID, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM tournaments WHERE id = $1`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// HasResults reports whether the tournament has at least one played match or
// one recorded goal event. The lifecycle guard treats either as "results".
func (r *postgresTournamentRepository) HasResults(ctx context.Context, exec SQLExecutor, id int) (bool, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT
		  EXISTS (
		    SELECT 1
		    FROM matches m
		    WHERE m.tournament_id = $1
		      AND m.status = $2
		  )
		  OR
		  EXISTS (
		    SELECT 1
		    FROM match_goal_events ge
		    JOIN matches m2 ON m2.id = ge.match_id
		    WHERE m2.tournament_id = $1
		  )`

	var hasResults bool
	err := executor.QueryRowContext(ctx, query, id, models.MatchStatusPlayed).Scan(&hasResults)
	if err != nil {
		return false, fmt.Errorf("failed to check tournament %d results: %w", id, err)
	}
	return hasResults, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23505" && pqErr.Constraint == "tournaments_name_key" {
			return ErrTournamentNameConflict
		}
	}
	return err
}
