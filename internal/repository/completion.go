package repository

import (
	"context"
	"errors"
	"fmt"

	"twinflame-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const completionColumns = `id, task_id, user_id, submission_text, submission_media_url,
	submission_type, completed_at`

// CompletionRepository handles database operations for task completions
type CompletionRepository struct {
	db *pgxpool.Pool
}

// NewCompletionRepository creates a new completion repository
func NewCompletionRepository(db *pgxpool.Pool) *CompletionRepository {
	return &CompletionRepository{db: db}
}

func scanCompletion(row pgx.Row) (*models.TaskCompletion, error) {
	var c models.TaskCompletion
	err := row.Scan(
		&c.ID, &c.TaskID, &c.UserID, &c.SubmissionText, &c.SubmissionMediaURL,
		&c.SubmissionType, &c.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrCompletionNotFound
		}
		return nil, fmt.Errorf("failed to scan completion: %w", err)
	}
	return &c, nil
}

// Upsert inserts or overwrites the completion keyed by (task, user)
func (r *CompletionRepository) Upsert(ctx context.Context, completion *models.TaskCompletion) (*models.TaskCompletion, error) {
	query := `
		INSERT INTO task_completions
			(id, task_id, user_id, submission_text, submission_media_url, submission_type, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (task_id, user_id) DO UPDATE
		SET submission_text = EXCLUDED.submission_text,
		    submission_media_url = EXCLUDED.submission_media_url,
		    submission_type = EXCLUDED.submission_type,
		    completed_at = EXCLUDED.completed_at
		RETURNING ` + completionColumns
	return scanCompletion(r.db.QueryRow(ctx, query,
		completion.ID, completion.TaskID, completion.UserID,
		completion.SubmissionText, completion.SubmissionMediaURL,
		completion.SubmissionType, completion.CompletedAt,
	))
}

// Get retrieves the completion for a (task, user) pair
func (r *CompletionRepository) Get(ctx context.Context, taskID, userID string) (*models.TaskCompletion, error) {
	query := `SELECT ` + completionColumns + ` FROM task_completions WHERE task_id = $1 AND user_id = $2`
	return scanCompletion(r.db.QueryRow(ctx, query, taskID, userID))
}

// List retrieves completions matching the filter with a total count
func (r *CompletionRepository) List(ctx context.Context, filter CompletionFilter) ([]*models.TaskCompletion, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		where += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.TaskID != "" {
		args = append(args, filter.TaskID)
		where += fmt.Sprintf(" AND task_id = $%d", len(args))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		where += fmt.Sprintf(" AND completed_at >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		where += fmt.Sprintf(" AND completed_at <= $%d", len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM task_completions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count completions: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM task_completions%s ORDER BY completed_at DESC LIMIT $%d OFFSET $%d`,
		completionColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list completions: %w", err)
	}
	defer rows.Close()

	var completions []*models.TaskCompletion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, 0, err
		}
		completions = append(completions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating completions: %w", err)
	}
	return completions, total, nil
}

// Delete removes a completion by ID
func (r *CompletionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM task_completions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete completion: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrCompletionNotFound
	}
	return nil
}
