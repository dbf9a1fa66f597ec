package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"twinflame-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, description, submission_type, category, date, created_at`

// TaskRepository handles database operations for daily tasks
type TaskRepository struct {
	db *pgxpool.Pool
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(row pgx.Row) (*models.DailyTask, error) {
	var task models.DailyTask
	err := row.Scan(
		&task.ID, &task.Description, &task.SubmissionType, &task.Category,
		&task.Date, &task.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	return &task, nil
}

// CreateIfAbsent inserts a task unless one already exists for its date.
// It reports whether the row was inserted.
func (r *TaskRepository) CreateIfAbsent(ctx context.Context, task *models.DailyTask) (bool, error) {
	query := `
		INSERT INTO daily_tasks (id, description, submission_type, category, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (date) DO NOTHING
	`
	result, err := r.db.Exec(ctx, query,
		task.ID, task.Description, task.SubmissionType, task.Category, task.Date, task.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create task: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.DailyTask, error) {
	query := `SELECT ` + taskColumns + ` FROM daily_tasks WHERE id = $1`
	return scanTask(r.db.QueryRow(ctx, query, id))
}

// GetByDate retrieves the task for an exact calendar day
func (r *TaskRepository) GetByDate(ctx context.Context, date time.Time) (*models.DailyTask, error) {
	query := `SELECT ` + taskColumns + ` FROM daily_tasks WHERE date = $1`
	return scanTask(r.db.QueryRow(ctx, query, date))
}

// Random returns one task chosen uniformly at random
func (r *TaskRepository) Random(ctx context.Context) (*models.DailyTask, error) {
	query := `SELECT ` + taskColumns + ` FROM daily_tasks ORDER BY random() LIMIT 1`
	return scanTask(r.db.QueryRow(ctx, query))
}

// List retrieves tasks matching the filter with a total count
func (r *TaskRepository) List(ctx context.Context, filter TaskFilter) ([]*models.DailyTask, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		where += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		where += fmt.Sprintf(" AND date <= $%d", len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM daily_tasks`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	sortBy := "date"
	if filter.SortBy == "created_at" {
		sortBy = "created_at"
	}
	order := "DESC"
	if filter.SortAsc {
		order = "ASC"
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM daily_tasks%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		taskColumns, where, sortBy, order, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.DailyTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, total, nil
}

// Update updates a task's mutable fields
func (r *TaskRepository) Update(ctx context.Context, task *models.DailyTask) error {
	query := `
		UPDATE daily_tasks
		SET description = $1, submission_type = $2, category = $3
		WHERE id = $4
	`
	result, err := r.db.Exec(ctx, query, task.Description, task.SubmissionType, task.Category, task.ID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrTaskNotFound
	}
	return nil
}

// Delete removes a task together with its completions
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM task_completions WHERE task_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete completions: %w", err)
	}
	result, err := tx.Exec(ctx, `DELETE FROM daily_tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrTaskNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}
