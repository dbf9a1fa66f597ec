package repository

import (
	"context"
	"errors"
	"fmt"

	"twinflame-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, uid, email, display_name, name, gender, age, photo_url,
	profile_complete, partner_id, partner_code, truth_dare_turn, push_token, created_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.UID, &user.Email, &user.DisplayName, &user.Name,
		&user.Gender, &user.Age, &user.PhotoURL, &user.ProfileComplete,
		&user.PartnerID, &user.PartnerCode, &user.TruthDareTurn,
		&user.PushToken, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, uid, email, display_name, truth_dare_turn, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.UID, user.Email, user.DisplayName, user.TruthDareTurn, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// GetByUID retrieves a user by the identity provider subject
func (r *UserRepository) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	return scanUser(r.db.QueryRow(ctx, query, uid))
}

// GetByCode retrieves a user by partner code
func (r *UserRepository) GetByCode(ctx context.Context, code string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE partner_code = $1`
	return scanUser(r.db.QueryRow(ctx, query, code))
}

// CodeExists checks if a partner code is already taken
func (r *UserRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE partner_code = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check code existence: %w", err)
	}
	return exists, nil
}

// UpdateProfile persists the profile fields and the derived completeness flag
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $1, gender = $2, age = $3, photo_url = $4, profile_complete = $5
		WHERE id = $6
	`
	result, err := r.db.Exec(ctx, query,
		user.Name, user.Gender, user.Age, user.PhotoURL, user.ProfileComplete, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// SetPartnerCode persists a newly issued partner code
func (r *UserRepository) SetPartnerCode(ctx context.Context, id, code string) error {
	query := `UPDATE users SET partner_code = $1 WHERE id = $2`
	result, err := r.db.Exec(ctx, query, code, id)
	if err != nil {
		return fmt.Errorf("failed to set partner code: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, id string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1 WHERE id = $2`
	result, err := r.db.Exec(ctx, query, pushToken, id)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// LinkPartners sets both partner references inside one transaction so the
// relationship can never be persisted half-linked.
func (r *UserRepository) LinkPartners(ctx context.Context, aID, bID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE users SET partner_id = $1 WHERE id = $2`, bID, aID); err != nil {
		return fmt.Errorf("failed to link user: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE users SET partner_id = $1 WHERE id = $2`, aID, bID); err != nil {
		return fmt.Errorf("failed to link partner: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit link: %w", err)
	}
	return nil
}

// PassTurn flips both turn flags inside one transaction.
func (r *UserRepository) PassTurn(ctx context.Context, userID string, partnerID *string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE users SET truth_dare_turn = FALSE WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear turn: %w", err)
	}
	if partnerID != nil {
		if _, err := tx.Exec(ctx, `UPDATE users SET truth_dare_turn = TRUE WHERE id = $1`, *partnerID); err != nil {
			return fmt.Errorf("failed to pass turn: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit turn: %w", err)
	}
	return nil
}
