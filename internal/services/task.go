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

// fallbackTask is served when the task table is completely empty. It is never
// persisted, so a later seed still controls day one.
var fallbackTask = models.DailyTask{
	Description:    "Send each other a voice note saying what you love about them ❤️",
	SubmissionType: models.SubmissionVideo,
	Category:       "communication",
}

// TaskService handles the daily task and completion business logic.
type TaskService struct {
	taskStore       repository.TaskStore
	completionStore repository.CompletionStore
	now             func() time.Time
}

// NewTaskService creates a new task service.
func NewTaskService(taskStore repository.TaskStore, completionStore repository.CompletionStore) *TaskService {
	return &TaskService{
		taskStore:       taskStore,
		completionStore: completionStore,
		now:             time.Now,
	}
}

// Submission is the stored content of one party's completion.
type Submission struct {
	Text     string `json:"text"`
	MediaURL string `json:"mediaURL"`
	Type     string `json:"type"`
}

// TodayResult is today's task together with both parties' completion state.
type TodayResult struct {
	Task                  *models.DailyTask
	CurrentUserCompleted  bool
	PartnerCompleted      bool
	CurrentUserSubmission *Submission
	PartnerSubmission     *Submission
}

// Today returns the task for the current calendar day, creating it lazily
// from a random historical task when absent. With an entirely empty task
// table the fallback task is returned without being persisted.
func (s *TaskService) Today(ctx context.Context, user *models.User) (*TodayResult, error) {
	today := s.today()

	task, err := s.taskStore.GetByDate(ctx, today)
	if err != nil {
		if !errors.Is(err, models.ErrTaskNotFound) {
			return nil, err
		}
		task, err = s.createFromRandom(ctx, today)
		if err != nil {
			if errors.Is(err, models.ErrTaskNotFound) {
				fallback := fallbackTask
				fallback.Date = today
				return &TodayResult{Task: &fallback}, nil
			}
			return nil, err
		}
	}

	result := &TodayResult{Task: task}

	completion, err := s.completionStore.Get(ctx, task.ID, user.ID)
	if err == nil {
		result.CurrentUserCompleted = true
		result.CurrentUserSubmission = toSubmission(completion)
	} else if !errors.Is(err, models.ErrCompletionNotFound) {
		return nil, err
	}

	if user.PartnerID != nil {
		partnerCompletion, err := s.completionStore.Get(ctx, task.ID, *user.PartnerID)
		if err == nil {
			result.PartnerCompleted = true
			result.PartnerSubmission = toSubmission(partnerCompletion)
		} else if !errors.Is(err, models.ErrCompletionNotFound) {
			return nil, err
		}
	}

	return result, nil
}

// createFromRandom samples one historical task and persists a copy of its
// description, category and submission type for today. When a concurrent
// request creates today's row first, that row wins and is returned.
func (s *TaskService) createFromRandom(ctx context.Context, today time.Time) (*models.DailyTask, error) {
	sample, err := s.taskStore.Random(ctx)
	if err != nil {
		return nil, err
	}

	task := &models.DailyTask{
		ID:             uuid.New().String(),
		Description:    sample.Description,
		SubmissionType: sample.SubmissionType,
		Category:       sample.Category,
		Date:           today,
		CreatedAt:      s.now(),
	}
	created, err := s.taskStore.CreateIfAbsent(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create today's task: %w", err)
	}
	if !created {
		return s.taskStore.GetByDate(ctx, today)
	}

	log.Info().Str("task_id", task.ID).Time("date", today).Msg("Daily task created")
	return task, nil
}

// CompleteRequest is one user's submission for a task.
type CompleteRequest struct {
	TaskID             string `json:"taskId"`
	SubmissionText     string `json:"submissionText"`
	SubmissionMediaURL string `json:"submissionMediaURL"`
	SubmissionType     string `json:"submissionType"`
}

// CompleteResult reports the stored completion and whether the partner has
// also completed the same task.
type CompleteResult struct {
	Completion    *models.TaskCompletion
	BothCompleted bool
}

// Complete upserts the user's completion for a task, fully overwriting any
// earlier submission.
func (s *TaskService) Complete(ctx context.Context, user *models.User, req CompleteRequest) (*CompleteResult, error) {
	task, err := s.taskStore.GetByID(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}

	submissionType := req.SubmissionType
	if submissionType == "" {
		submissionType = models.SubmissionNone
	}

	completion, err := s.completionStore.Upsert(ctx, &models.TaskCompletion{
		ID:                 uuid.New().String(),
		TaskID:             task.ID,
		UserID:             user.ID,
		SubmissionText:     sanitize.Text(req.SubmissionText),
		SubmissionMediaURL: req.SubmissionMediaURL,
		SubmissionType:     submissionType,
		CompletedAt:        s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert completion: %w", err)
	}

	result := &CompleteResult{Completion: completion}
	if user.PartnerID != nil {
		_, err := s.completionStore.Get(ctx, task.ID, *user.PartnerID)
		if err == nil {
			result.BothCompleted = true
		} else if !errors.Is(err, models.ErrCompletionNotFound) {
			return nil, err
		}
	}

	log.Info().
		Str("task_id", task.ID).
		Str("user_id", user.ID).
		Bool("both_completed", result.BothCompleted).
		Msg("Task completed")

	return result, nil
}

// History lists tasks matching the filter.
func (s *TaskService) History(ctx context.Context, filter repository.TaskFilter) ([]*models.DailyTask, int, error) {
	return s.taskStore.List(ctx, filter)
}

// Update changes a task's description, submission type and category.
func (s *TaskService) Update(ctx context.Context, id, description, submissionType, category string) (*models.DailyTask, error) {
	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	task.Description = sanitize.Text(description)
	if submissionType != "" {
		if !models.ValidSubmissionType(submissionType) {
			return nil, models.NewValidation("Invalid submission type")
		}
		task.SubmissionType = submissionType
	}
	if category != "" {
		if !models.ValidTaskCategory(category) {
			return nil, models.NewValidation("Invalid category")
		}
		task.Category = category
	}

	if err := s.taskStore.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task and its completions.
func (s *TaskService) Delete(ctx context.Context, id string) (*models.DailyTask, error) {
	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.taskStore.Delete(ctx, id); err != nil {
		return nil, err
	}
	return task, nil
}

// ListCompletions lists completions matching the filter.
func (s *TaskService) ListCompletions(ctx context.Context, filter repository.CompletionFilter) ([]*models.TaskCompletion, int, error) {
	return s.completionStore.List(ctx, filter)
}

// DeleteCompletion removes a completion by id.
func (s *TaskService) DeleteCompletion(ctx context.Context, id string) error {
	return s.completionStore.Delete(ctx, id)
}

type seedTask struct {
	description    string
	category       string
	submissionType string
}

var seedTasks = []seedTask{
	{"Send each other a voice note saying what you love about them ❤️", "communication", models.SubmissionVideo},
	{"Share a childhood photo with your partner 📸", "fun", models.SubmissionPhoto},
	{"Write down 3 things you're grateful for about your relationship 💕", "thoughtful", models.SubmissionText},
	{"Cook the same meal and share a photo 🍽️", "fun", models.SubmissionPhoto},
	{"Send a surprise delivery to your partner 🎁", "romantic", models.SubmissionPhoto},
	{"Plan your next date together and share the plan 📅", "romantic", models.SubmissionText},
	{"Share your favorite song and why it reminds you of them 🎵", "romantic", models.SubmissionText},
	{"Tell each other about your dreams for the future 🌟", "communication", models.SubmissionText},
	{"Send a funny meme that made you think of them 😂", "fun", models.SubmissionPhoto},
	{"Write a short poem or love letter to each other ✍️", "creative", models.SubmissionText},
	{"Share your favorite memory together 💭", "thoughtful", models.SubmissionText},
	{"Compliment each other on something specific 💖", "thoughtful", models.SubmissionText},
	{"Watch the same movie and share your thoughts 🎬", "fun", models.SubmissionText},
	{"Send each other a good morning selfie ☀️", "romantic", models.SubmissionPhoto},
	{"Share what made you smile today 😊", "communication", models.SubmissionAny},
}

// Seed inserts the starter task set, dated backwards from today so history
// is non-empty and lazy creation has something to sample. Dates that already
// hold a task are left untouched, so reseeding is idempotent. The returned
// count is the number of rows actually inserted.
func (s *TaskService) Seed(ctx context.Context) (int, error) {
	today := s.today()
	inserted := 0
	for i, t := range seedTasks {
		date := today.AddDate(0, 0, i+1-len(seedTasks))
		task := &models.DailyTask{
			ID:             uuid.New().String(),
			Description:    t.description,
			SubmissionType: t.submissionType,
			Category:       t.category,
			Date:           date,
			CreatedAt:      s.now(),
		}
		created, err := s.taskStore.CreateIfAbsent(ctx, task)
		if err != nil {
			return inserted, fmt.Errorf("failed to seed task: %w", err)
		}
		if created {
			inserted++
		}
	}
	return inserted, nil
}

// today truncates the current time to day granularity in UTC.
func (s *TaskService) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func toSubmission(c *models.TaskCompletion) *Submission {
	return &Submission{
		Text:     c.SubmissionText,
		MediaURL: c.SubmissionMediaURL,
		Type:     c.SubmissionType,
	}
}
