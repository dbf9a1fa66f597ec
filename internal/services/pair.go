package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"twinflame-backend/internal/models"
	"twinflame-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	codeLength   = 5
	codeChars    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxCodeRolls = 10
)

// PairService issues partner codes and links two users into a couple.
type PairService struct {
	userStore repository.UserStore
	users     *UserService
}

// NewPairService creates a new pair service.
func NewPairService(userStore repository.UserStore, users *UserService) *PairService {
	return &PairService{userStore: userStore, users: users}
}

// GetOrCreateCode returns the user's partner code, generating and persisting
// a unique one on first call. Repeated calls return the same code.
func (s *PairService) GetOrCreateCode(ctx context.Context, uid string) (string, error) {
	user, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		return "", err
	}
	if user.PartnerCode != nil {
		return *user.PartnerCode, nil
	}

	for i := 0; i < maxCodeRolls; i++ {
		code, err := generateCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}
		exists, err := s.userStore.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check code existence: %w", err)
		}
		if exists {
			continue
		}
		if err := s.userStore.SetPartnerCode(ctx, user.ID, code); err != nil {
			return "", fmt.Errorf("failed to persist code: %w", err)
		}
		s.users.InvalidateCache(ctx, uid)
		return code, nil
	}
	return "", models.ErrCodeExhausted
}

// generateCode derives a 5-character uppercase alphanumeric code from random
// bytes.
func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	code := make([]byte, codeLength)
	for i, b := range buf {
		code[i] = codeChars[int(b)%len(codeChars)]
	}
	return string(code), nil
}

// LinkPartner links the current user with the owner of the given code. Both
// partner references are written in one transaction.
func (s *PairService) LinkPartner(ctx context.Context, uid, code string) (*models.User, error) {
	currentUser, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if currentUser.PartnerID != nil {
		return nil, models.ErrAlreadyPaired
	}

	partner, err := s.userStore.GetByCode(ctx, strings.ToUpper(code))
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrCodeNotFound
		}
		return nil, err
	}
	if partner.ID == currentUser.ID {
		return nil, models.ErrSelfPairing
	}
	if partner.PartnerID != nil {
		return nil, models.ErrTargetAlreadyPaired
	}

	if err := s.userStore.LinkPartners(ctx, currentUser.ID, partner.ID); err != nil {
		return nil, fmt.Errorf("failed to link partners: %w", err)
	}

	s.users.InvalidateCache(ctx, currentUser.UID)
	s.users.InvalidateCache(ctx, partner.UID)

	log.Info().
		Str("user_id", currentUser.ID).
		Str("partner_id", partner.ID).
		Msg("Partners linked")

	return partner, nil
}
