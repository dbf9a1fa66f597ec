package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"twinflame-backend/internal/models"
	"twinflame-backend/internal/repository"
	"twinflame-backend/internal/sanitize"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Fallback prompts served when the question table has no rows of the
// requested type. The endpoint never fails on an empty content table.
var fallbackPrompts = map[string]string{
	models.QuestionTruth: "What is your favorite memory of us?",
	models.QuestionDare:  "Give your partner a 1-minute massage.",
}

// TruthDareService serves random prompts and drives the alternating turn.
type TruthDareService struct {
	questionStore repository.QuestionStore
	userStore     repository.UserStore
	users         *UserService
}

// NewTruthDareService creates a new truth-or-dare service.
func NewTruthDareService(questionStore repository.QuestionStore, userStore repository.UserStore, users *UserService) *TruthDareService {
	return &TruthDareService{questionStore: questionStore, userStore: userStore, users: users}
}

// Random returns a random question of the given type, or the fixed fallback
// prompt with category "fun" when none exist.
func (s *TruthDareService) Random(ctx context.Context, questionType string) (*models.Question, error) {
	if !models.ValidQuestionType(questionType) {
		return nil, models.NewValidation("Invalid type. Must be 'truth' or 'dare'.")
	}

	question, err := s.questionStore.Random(ctx, questionType)
	if err != nil {
		if errors.Is(err, models.ErrQuestionNotFound) {
			return &models.Question{
				Text:     fallbackPrompts[questionType],
				Type:     questionType,
				Category: "fun",
			}, nil
		}
		return nil, err
	}
	return question, nil
}

// Status reports whether it is the user's turn.
func (s *TruthDareService) Status(ctx context.Context, user *models.User) bool {
	return user.TruthDareTurn
}

// CompleteTurn moves the acting user to waiting and the partner, when
// paired, to their turn. Both flags flip in one transaction. Returns the
// partner for notification purposes, nil when unpaired.
func (s *TruthDareService) CompleteTurn(ctx context.Context, user *models.User) (*models.User, error) {
	var partner *models.User
	if user.PartnerID != nil {
		p, err := s.userStore.GetByID(ctx, *user.PartnerID)
		if err != nil {
			return nil, err
		}
		partner = p
	}

	if err := s.userStore.PassTurn(ctx, user.ID, user.PartnerID); err != nil {
		return nil, fmt.Errorf("failed to pass turn: %w", err)
	}

	s.users.InvalidateCache(ctx, user.UID)
	if partner != nil {
		s.users.InvalidateCache(ctx, partner.UID)
	}

	log.Info().Str("user_id", user.ID).Msg("Turn passed")
	return partner, nil
}

// ListQuestions lists questions matching the filter.
func (s *TruthDareService) ListQuestions(ctx context.Context, filter repository.QuestionFilter) ([]*models.Question, int, error) {
	return s.questionStore.List(ctx, filter)
}

// UpdateQuestion changes a question's text, type and category.
func (s *TruthDareService) UpdateQuestion(ctx context.Context, id, text, questionType, category string) (*models.Question, error) {
	if text == "" || questionType == "" || category == "" {
		return nil, models.NewValidation("Text, type, and category are required")
	}
	if !models.ValidQuestionType(questionType) {
		return nil, models.NewValidation("Type must be 'truth' or 'dare'")
	}
	if !models.ValidQuestionCategory(category) {
		return nil, models.NewValidation("Invalid category")
	}

	question := &models.Question{
		ID:       id,
		Text:     sanitize.Text(text),
		Type:     questionType,
		Category: category,
	}
	if err := s.questionStore.Update(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

// DeleteQuestion removes a question by id.
func (s *TruthDareService) DeleteQuestion(ctx context.Context, id string) error {
	return s.questionStore.Delete(ctx, id)
}

type seedQuestion struct {
	text     string
	qtype    string
	category string
}

var seedQuestions = []seedQuestion{
	{"What is your biggest fear?", models.QuestionTruth, "deep"},
	{"What was your first impression of me?", models.QuestionTruth, "romantic"},
	{"Sing a song for me.", models.QuestionDare, "fun"},
	{"Do 10 pushups.", models.QuestionDare, "fun"},
	{"Tell me a secret you've never told anyone.", models.QuestionTruth, "deep"},
	{"Let me check your phone gallery for 1 minute.", models.QuestionDare, "spicy"},
	{"What is one thing you wish I understood better about you?", models.QuestionTruth, "deep"},
	{"When was the last time you truly missed me, and what triggered it?", models.QuestionTruth, "deep"},
	{"What is a small habit of mine that secretly makes you smile?", models.QuestionTruth, "romantic"},
	{"What is one insecurity you have about our relationship that you've never said out loud?", models.QuestionTruth, "deep"},
	{"What moment with me do you replay in your head the most?", models.QuestionTruth, "romantic"},
	{"If distance disappeared tomorrow, what's the first thing you'd want to do together?", models.QuestionTruth, "romantic"},
	{"What is a song that always reminds you of me, and why?", models.QuestionTruth, "romantic"},
	{"What is your favorite non-physical attribute of mine?", models.QuestionTruth, "romantic"},
	{"If we could travel anywhere right now, where would we go?", models.QuestionTruth, "fun"},
	{"What is one promise you want to make to me for our future?", models.QuestionTruth, "deep"},
	{"Describe your perfect date night with me.", models.QuestionTruth, "romantic"},
	{"Send me a voice note saying 'I love you' in a funny voice.", models.QuestionDare, "fun"},
	{"Do your best impression of me for 30 seconds.", models.QuestionDare, "fun"},
	{"Send me the 5th photo in your camera roll (no cheating!).", models.QuestionDare, "spicy"},
	{"Write my name on your arm and send a picture.", models.QuestionDare, "romantic"},
	{"Record yourself singing the chorus of our favorite song.", models.QuestionDare, "fun"},
}

// SeedQuestions upserts the starter question set keyed on text, so
// reseeding is idempotent.
func (s *TruthDareService) SeedQuestions(ctx context.Context) (int, error) {
	for i, q := range seedQuestions {
		question := &models.Question{
			ID:        uuid.New().String(),
			Text:      q.text,
			Type:      q.qtype,
			Category:  q.category,
			CreatedAt: time.Now(),
		}
		if err := s.questionStore.UpsertByText(ctx, question); err != nil {
			return i, fmt.Errorf("failed to seed question: %w", err)
		}
	}
	return len(seedQuestions), nil
}
