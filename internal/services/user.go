package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"twinflame-backend/internal/cache"
	"twinflame-backend/internal/models"
	"twinflame-backend/internal/repository"
	"twinflame-backend/internal/sanitize"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// UserService handles user directory and profile business logic.
type UserService struct {
	userStore repository.UserStore
	cache     *cache.UserCache
}

// NewUserService creates a new user service. cache may be nil.
func NewUserService(userStore repository.UserStore, userCache *cache.UserCache) *UserService {
	return &UserService{userStore: userStore, cache: userCache}
}

// GetOrCreate returns the application user for a verified identity, creating
// the record on first use.
func (s *UserService) GetOrCreate(ctx context.Context, identity *Identity) (*models.User, error) {
	user, err := s.GetByUID(ctx, identity.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, models.ErrUserNotFound) {
		return nil, err
	}

	user = &models.User{
		ID:            uuid.New().String(),
		UID:           identity.Subject,
		Email:         identity.Email,
		TruthDareTurn: true,
		CreatedAt:     time.Now(),
	}
	if err := s.userStore.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().Str("user_id", user.ID).Str("uid", user.UID).Msg("User created")
	return user, nil
}

// GetByUID loads a user by identity subject, through the cache when enabled.
func (s *UserService) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	if s.cache != nil {
		if user, err := s.cache.Get(ctx, uid); err == nil {
			return user, nil
		} else if !errors.Is(err, cache.ErrMiss) {
			log.Warn().Err(err).Str("uid", uid).Msg("User cache read failed")
		}
	}

	user, err := s.userStore.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, user); err != nil {
			log.Warn().Err(err).Str("uid", uid).Msg("User cache write failed")
		}
	}
	return user, nil
}

// GetByID loads a user by application id.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.userStore.GetByID(ctx, id)
}

// ProfileUpdate carries the mutable profile fields. Nil means "leave as is".
type ProfileUpdate struct {
	Name     *string `json:"name"`
	Gender   *string `json:"gender"`
	Age      *int    `json:"age"`
	PhotoURL *string `json:"photoURL"`
}

// UpdateProfile applies a profile update, creating the user if it does not
// exist yet. The completeness flag derives from name, gender and age being
// set.
func (s *UserService) UpdateProfile(ctx context.Context, identity *Identity, update ProfileUpdate) (*models.User, error) {
	user, err := s.GetOrCreate(ctx, identity)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		user.Name = sanitize.Text(*update.Name)
	}
	if update.Gender != nil {
		user.Gender = *update.Gender
	}
	if update.Age != nil {
		user.Age = update.Age
	}
	if update.PhotoURL != nil {
		user.PhotoURL = *update.PhotoURL
	}
	if user.Name != "" && user.Gender != "" && user.Age != nil {
		user.ProfileComplete = true
	}

	if err := s.userStore.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	s.invalidate(ctx, user.UID)
	return user, nil
}

// UpdatePushToken stores or clears the user's device push token.
func (s *UserService) UpdatePushToken(ctx context.Context, uid string, pushToken *string) error {
	user, err := s.GetByUID(ctx, uid)
	if err != nil {
		return err
	}
	if err := s.userStore.UpdatePushToken(ctx, user.ID, pushToken); err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	s.invalidate(ctx, uid)
	return nil
}

// InvalidateCache drops the cached record for a subject after an external
// write to the user row.
func (s *UserService) InvalidateCache(ctx context.Context, uid string) {
	s.invalidate(ctx, uid)
}

func (s *UserService) invalidate(ctx context.Context, uid string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, uid); err != nil {
		log.Warn().Err(err).Str("uid", uid).Msg("User cache invalidation failed")
	}
}
