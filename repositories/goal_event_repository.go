package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/opencup/cup-system/models"
)

var ErrGoalEventPlayerMissing = errors.New("goal event references a player that does not exist")

type GoalEventRepository interface {
	Create(ctx context.Context, exec SQLExecutor, e *models.GoalEvent) error
	DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) error
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.GoalEvent, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.GoalEvent, error)
}

type postgresGoalEventRepository struct {
	db *sql.DB
}

func NewPostgresGoalEventRepository(db *sql.DB) GoalEventRepository {
	return &postgresGoalEventRepository{db: db}
}

func (r *postgresGoalEventRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGoalEventRepository) Create(ctx context.Context, exec SQLExecutor, e *models.GoalEvent) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO match_goal_events (match_id, team_id, scorer_player_id, assist_player_id, minute, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		e.MatchID, e.TeamID, e.ScorerPlayerID, e.AssistPlayerID, e.Minute,
	).Scan(&e.ID, &e.CreatedAt)

	return r.handleGoalEventError(err)
}

func (r *postgresGoalEventRepository) DeleteByMatch(ctx context.Context, exec SQLExecutor, matchID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM match_goal_events WHERE match_id = $1`
	if _, err := executor.ExecContext(ctx, query, matchID); err != nil {
		return fmt.Errorf("failed to delete goal events for match %d: %w", matchID, err)
	}
	return nil
}

// ListByMatch orders events chronologically by minute, unknown minutes last.
func (r *postgresGoalEventRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.GoalEvent, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT e.id, e.match_id, e.team_id, e.scorer_player_id, e.assist_player_id, e.minute, e.created_at,
		       ps.first_name, ps.last_name, ps.avatar_url,
		       pa.first_name, pa.last_name, pa.avatar_url
		FROM match_goal_events e
		JOIN players ps ON ps.id = e.scorer_player_id
		LEFT JOIN players pa ON pa.id = e.assist_player_id
		WHERE e.match_id = $1
		ORDER BY COALESCE(e.minute, 9999), e.id`

	rows, err := executor.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goal events for match %d: %w", matchID, err)
	}
	defer rows.Close()

	return scanGoalEvents(rows)
}

func (r *postgresGoalEventRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.GoalEvent, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT e.id, e.match_id, e.team_id, e.scorer_player_id, e.assist_player_id, e.minute, e.created_at,
		       ps.first_name, ps.last_name, ps.avatar_url,
		       pa.first_name, pa.last_name, pa.avatar_url
		FROM match_goal_events e
		JOIN matches m ON m.id = e.match_id
		JOIN players ps ON ps.id = e.scorer_player_id
		LEFT JOIN players pa ON pa.id = e.assist_player_id
		WHERE m.tournament_id = $1
		ORDER BY e.match_id, COALESCE(e.minute, 9999), e.id`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goal events for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	return scanGoalEvents(rows)
}

func scanGoalEvents(rows *sql.Rows) ([]models.GoalEvent, error) {
	events := make([]models.GoalEvent, 0)
	for rows.Next() {
		var e models.GoalEvent
		if err := rows.Scan(
			&e.ID, &e.MatchID, &e.TeamID, &e.ScorerPlayerID, &e.AssistPlayerID, &e.Minute, &e.CreatedAt,
			&e.ScorerFirstName, &e.ScorerLastName, &e.ScorerAvatarURL,
			&e.AssistFirstName, &e.AssistLastName, &e.AssistAvatarURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan goal event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during goal event rows iteration: %w", err)
	}
	return events, nil
}

func (r *postgresGoalEventRepository) handleGoalEventError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "match_goal_events_scorer_player_id_fkey", "match_goal_events_assist_player_id_fkey":
				return ErrGoalEventPlayerMissing
			}
		}
	}
	return err
}
