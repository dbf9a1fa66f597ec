package repository

import (
	"context"
	"errors"
	"fmt"

	"twinflame-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const photoColumns = `id, user_id, partner_id, media_url, media_type, category, caption, created_at`

// feedCTE merges task-submission media and direct uploads for a set of
// owners into one relation, so sorting and pagination happen in storage
// instead of in application memory.
const feedCTE = `
	WITH feed AS (
		SELECT c.id,
		       c.submission_media_url AS url,
		       c.submission_type AS type,
		       c.submission_text AS text,
		       'task' AS category,
		       u.id AS owner_id,
		       u.name AS owner_name,
		       u.photo_url AS owner_photo_url,
		       t.description AS task_description,
		       t.category AS task_category,
		       'task' AS source,
		       c.completed_at AS created_at
		FROM task_completions c
		JOIN users u ON u.id = c.user_id
		JOIN daily_tasks t ON t.id = c.task_id
		WHERE c.submission_media_url <> '' AND c.user_id = ANY($1)
		UNION ALL
		SELECT p.id, p.media_url, p.media_type, p.caption, p.category,
		       u.id, u.name, u.photo_url, '', '', 'upload', p.created_at
		FROM photos p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = ANY($1)
	)`

// PhotoRepository handles database operations for photos and the media feed
type PhotoRepository struct {
	db *pgxpool.Pool
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db *pgxpool.Pool) *PhotoRepository {
	return &PhotoRepository{db: db}
}

func scanPhoto(row pgx.Row) (*models.Photo, error) {
	var photo models.Photo
	err := row.Scan(
		&photo.ID, &photo.UserID, &photo.PartnerID, &photo.MediaURL,
		&photo.MediaType, &photo.Category, &photo.Caption, &photo.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrPhotoNotFound
		}
		return nil, fmt.Errorf("failed to scan photo: %w", err)
	}
	return &photo, nil
}

// Create creates a new photo record
func (r *PhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	query := `
		INSERT INTO photos (id, user_id, partner_id, media_url, media_type, category, caption, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		photo.ID, photo.UserID, photo.PartnerID, photo.MediaURL,
		photo.MediaType, photo.Category, photo.Caption, photo.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create photo: %w", err)
	}
	return nil
}

// GetByID retrieves a photo by ID
func (r *PhotoRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = $1`
	return scanPhoto(r.db.QueryRow(ctx, query, id))
}

// List retrieves photos for the given owners with pagination
func (r *PhotoRepository) List(ctx context.Context, filter PhotoFilter) ([]*models.Photo, int, error) {
	where := ` WHERE user_id = ANY($1)`
	args := []interface{}{filter.OwnerIDs}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.MediaType != "" {
		args = append(args, filter.MediaType)
		where += fmt.Sprintf(" AND media_type = $%d", len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM photos`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count photos: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM photos%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		photoColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	var photos []*models.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, 0, err
		}
		photos = append(photos, photo)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating photos: %w", err)
	}
	return photos, total, nil
}

// Delete removes a photo row
func (r *PhotoRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrPhotoNotFound
	}
	return nil
}

// ListFeed retrieves the unified media feed for both parties, sorted by
// creation time descending and paginated in SQL.
func (r *PhotoRepository) ListFeed(ctx context.Context, filter FeedFilter) ([]*models.MediaItem, int, error) {
	owners := []string{filter.UserID}
	if filter.PartnerID != nil {
		owners = append(owners, *filter.PartnerID)
	}

	where := ` WHERE 1=1`
	args := []interface{}{owners}
	if filter.MediaType != "" {
		args = append(args, filter.MediaType)
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.Category != "" {
		// Task media carries no user-chosen category, so the filter only
		// narrows uploads.
		args = append(args, filter.Category)
		where += fmt.Sprintf(" AND (source = 'task' OR category = $%d)", len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, feedCTE+` SELECT COUNT(*) FROM feed`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count feed: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`%s SELECT id, url, type, text, category, owner_id, owner_name,
		owner_photo_url, task_description, task_category, source, created_at
		FROM feed%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		feedCTE, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query feed: %w", err)
	}
	defer rows.Close()

	var items []*models.MediaItem
	for rows.Next() {
		var item models.MediaItem
		err := rows.Scan(
			&item.ID, &item.URL, &item.Type, &item.Text, &item.Category,
			&item.OwnerID, &item.OwnerName, &item.OwnerPhotoURL,
			&item.TaskDescription, &item.TaskCategory, &item.Source, &item.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan feed item: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating feed: %w", err)
	}
	return items, total, nil
}
