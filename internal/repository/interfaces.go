package repository

import (
	"context"
	"time"

	"twinflame-backend/internal/models"
)

// UserStore is the persistence contract for users and the pairing
// relationship.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUID(ctx context.Context, uid string) (*models.User, error)
	GetByCode(ctx context.Context, code string) (*models.User, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	SetPartnerCode(ctx context.Context, id, code string) error
	UpdatePushToken(ctx context.Context, id string, pushToken *string) error
	// LinkPartners sets both users' partner references to each other in a
	// single transaction.
	LinkPartners(ctx context.Context, aID, bID string) error
	// PassTurn clears the acting user's turn flag and, when partnerID is
	// non-nil, sets the partner's flag, in a single transaction.
	PassTurn(ctx context.Context, userID string, partnerID *string) error
}

// TaskFilter narrows and pages daily-task listings.
type TaskFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	SortBy    string
	SortAsc   bool
	Limit     int
	Offset    int
}

// TaskStore is the persistence contract for daily tasks.
type TaskStore interface {
	// CreateIfAbsent inserts the task unless one already exists for its date
	// and reports whether the row was inserted.
	CreateIfAbsent(ctx context.Context, task *models.DailyTask) (bool, error)
	GetByID(ctx context.Context, id string) (*models.DailyTask, error)
	GetByDate(ctx context.Context, date time.Time) (*models.DailyTask, error)
	Random(ctx context.Context) (*models.DailyTask, error)
	List(ctx context.Context, filter TaskFilter) ([]*models.DailyTask, int, error)
	Update(ctx context.Context, task *models.DailyTask) error
	// Delete removes the task and all its completions.
	Delete(ctx context.Context, id string) error
}

// CompletionFilter narrows and pages completion listings.
type CompletionFilter struct {
	UserID    string
	TaskID    string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// CompletionStore is the persistence contract for task completions.
type CompletionStore interface {
	// Upsert inserts or fully overwrites the completion keyed by
	// (task, user) and returns the stored row.
	Upsert(ctx context.Context, completion *models.TaskCompletion) (*models.TaskCompletion, error)
	Get(ctx context.Context, taskID, userID string) (*models.TaskCompletion, error)
	List(ctx context.Context, filter CompletionFilter) ([]*models.TaskCompletion, int, error)
	Delete(ctx context.Context, id string) error
}

// QuestionFilter narrows and pages question listings.
type QuestionFilter struct {
	Type     string
	Category string
	Search   string
	SortBy   string
	SortAsc  bool
	Limit    int
	Offset   int
}

// QuestionStore is the persistence contract for truth-or-dare questions.
type QuestionStore interface {
	Random(ctx context.Context, questionType string) (*models.Question, error)
	List(ctx context.Context, filter QuestionFilter) ([]*models.Question, int, error)
	// UpsertByText inserts the question or updates the existing row with the
	// same text, so reseeding is idempotent.
	UpsertByText(ctx context.Context, question *models.Question) error
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id string) error
}

// PhotoFilter narrows and pages photo listings for a couple.
type PhotoFilter struct {
	OwnerIDs  []string
	Category  string
	MediaType string
	Limit     int
	Offset    int
}

// FeedFilter narrows and pages the unified media feed.
type FeedFilter struct {
	UserID    string
	PartnerID *string
	MediaType string
	Category  string
	Limit     int
	Offset    int
}

// PhotoStore is the persistence contract for uploaded photos and the
// unified media feed.
type PhotoStore interface {
	Create(ctx context.Context, photo *models.Photo) error
	GetByID(ctx context.Context, id string) (*models.Photo, error)
	List(ctx context.Context, filter PhotoFilter) ([]*models.Photo, int, error)
	Delete(ctx context.Context, id string) error
	// ListFeed returns task-submission media and uploads for both parties,
	// sorted by creation time descending, paginated in storage.
	ListFeed(ctx context.Context, filter FeedFilter) ([]*models.MediaItem, int, error)
}
