package repository

import (
	"context"
	"errors"
	"fmt"

	"twinflame-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const questionColumns = `id, text, type, category, created_at`

// QuestionRepository handles database operations for truth-or-dare questions
type QuestionRepository struct {
	db *pgxpool.Pool
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func scanQuestion(row pgx.Row) (*models.Question, error) {
	var q models.Question
	err := row.Scan(&q.ID, &q.Text, &q.Type, &q.Category, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to scan question: %w", err)
	}
	return &q, nil
}

// Random returns one question of the given type chosen uniformly at random
func (r *QuestionRepository) Random(ctx context.Context, questionType string) (*models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE type = $1 ORDER BY random() LIMIT 1`
	return scanQuestion(r.db.QueryRow(ctx, query, questionType))
}

// List retrieves questions matching the filter with a total count
func (r *QuestionRepository) List(ctx context.Context, filter QuestionFilter) ([]*models.Question, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(" AND text ILIKE $%d", len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM questions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	sortBy := "created_at"
	switch filter.SortBy {
	case "text", "type", "category":
		sortBy = filter.SortBy
	}
	order := "DESC"
	if filter.SortAsc {
		order = "ASC"
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM questions%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		questionColumns, where, sortBy, order, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []*models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, 0, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating questions: %w", err)
	}
	return questions, total, nil
}

// UpsertByText inserts a question or updates the row with the same text
func (r *QuestionRepository) UpsertByText(ctx context.Context, question *models.Question) error {
	query := `
		INSERT INTO questions (id, text, type, category, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (text) DO UPDATE
		SET type = EXCLUDED.type, category = EXCLUDED.category
	`
	_, err := r.db.Exec(ctx, query,
		question.ID, question.Text, question.Type, question.Category, question.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert question: %w", err)
	}
	return nil
}

// Update updates a question's text, type and category
func (r *QuestionRepository) Update(ctx context.Context, question *models.Question) error {
	query := `UPDATE questions SET text = $1, type = $2, category = $3 WHERE id = $4`
	result, err := r.db.Exec(ctx, query, question.Text, question.Type, question.Category, question.ID)
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrQuestionNotFound
	}
	return nil
}

// Delete removes a question by ID
func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrQuestionNotFound
	}
	return nil
}
