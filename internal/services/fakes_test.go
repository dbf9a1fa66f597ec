package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"twinflame-backend/internal/models"
	"twinflame-backend/internal/repository"
)

// Stateful in-memory stores backing the service tests.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User)}
}

func (s *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.users[user.ID] = &u
	return nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *fakeUserStore) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.UID == uid {
			u := *user
			return &u, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (s *fakeUserStore) GetByCode(ctx context.Context, code string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.PartnerCode != nil && *user.PartnerCode == code {
			u := *user
			return &u, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (s *fakeUserStore) CodeExists(ctx context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.PartnerCode != nil && *user.PartnerCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeUserStore) UpdateProfile(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return models.ErrUserNotFound
	}
	u := *user
	s.users[user.ID] = &u
	return nil
}

func (s *fakeUserStore) SetPartnerCode(ctx context.Context, id, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	user.PartnerCode = &code
	return nil
}

func (s *fakeUserStore) UpdatePushToken(ctx context.Context, id string, pushToken *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	user.PushToken = pushToken
	return nil
}

func (s *fakeUserStore) LinkPartners(ctx context.Context, aID, bID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.users[aID]
	if !ok {
		return models.ErrUserNotFound
	}
	b, ok := s.users[bID]
	if !ok {
		return models.ErrUserNotFound
	}
	a.PartnerID = &bID
	b.PartnerID = &aID
	return nil
}

func (s *fakeUserStore) PassTurn(ctx context.Context, userID string, partnerID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	user.TruthDareTurn = false
	if partnerID != nil {
		partner, ok := s.users[*partnerID]
		if !ok {
			return models.ErrUserNotFound
		}
		partner.TruthDareTurn = true
	}
	return nil
}

type fakeTaskStore struct {
	mu    sync.Mutex
	tasks map[string]*models.DailyTask
	// randomFn overrides sampling so tests are deterministic.
	randomFn func() (*models.DailyTask, error)
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[string]*models.DailyTask)}
}

func (s *fakeTaskStore) CreateIfAbsent(ctx context.Context, task *models.DailyTask) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.tasks {
		if existing.Date.Equal(task.Date) {
			return false, nil
		}
	}
	t := *task
	s.tasks[task.ID] = &t
	return true, nil
}

func (s *fakeTaskStore) GetByID(ctx context.Context, id string) (*models.DailyTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, models.ErrTaskNotFound
	}
	t := *task
	return &t, nil
}

func (s *fakeTaskStore) GetByDate(ctx context.Context, date time.Time) (*models.DailyTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range s.tasks {
		if task.Date.Equal(date) {
			t := *task
			return &t, nil
		}
	}
	return nil, models.ErrTaskNotFound
}

func (s *fakeTaskStore) Random(ctx context.Context) (*models.DailyTask, error) {
	if s.randomFn != nil {
		return s.randomFn()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range s.tasks {
		t := *task
		return &t, nil
	}
	return nil, models.ErrTaskNotFound
}

func (s *fakeTaskStore) List(ctx context.Context, filter repository.TaskFilter) ([]*models.DailyTask, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*models.DailyTask
	for _, task := range s.tasks {
		t := *task
		all = append(all, &t)
	}
	sort.Slice(all, func(i, j int) bool {
		if filter.SortAsc {
			return all[i].Date.Before(all[j].Date)
		}
		return all[i].Date.After(all[j].Date)
	})
	return page(all, filter.Limit, filter.Offset)
}

func (s *fakeTaskStore) Update(ctx context.Context, task *models.DailyTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; !ok {
		return models.ErrTaskNotFound
	}
	t := *task
	s.tasks[task.ID] = &t
	return nil
}

func (s *fakeTaskStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return models.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

type fakeCompletionStore struct {
	mu          sync.Mutex
	completions map[string]*models.TaskCompletion
}

func newFakeCompletionStore() *fakeCompletionStore {
	return &fakeCompletionStore{completions: make(map[string]*models.TaskCompletion)}
}

func (s *fakeCompletionStore) Upsert(ctx context.Context, completion *models.TaskCompletion) (*models.TaskCompletion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.completions {
		if existing.TaskID == completion.TaskID && existing.UserID == completion.UserID {
			existing.SubmissionText = completion.SubmissionText
			existing.SubmissionMediaURL = completion.SubmissionMediaURL
			existing.SubmissionType = completion.SubmissionType
			existing.CompletedAt = completion.CompletedAt
			c := *existing
			return &c, nil
		}
	}
	c := *completion
	s.completions[completion.ID] = &c
	stored := c
	return &stored, nil
}

func (s *fakeCompletionStore) Get(ctx context.Context, taskID, userID string) (*models.TaskCompletion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, completion := range s.completions {
		if completion.TaskID == taskID && completion.UserID == userID {
			c := *completion
			return &c, nil
		}
	}
	return nil, models.ErrCompletionNotFound
}

func (s *fakeCompletionStore) List(ctx context.Context, filter repository.CompletionFilter) ([]*models.TaskCompletion, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*models.TaskCompletion
	for _, completion := range s.completions {
		if filter.UserID != "" && completion.UserID != filter.UserID {
			continue
		}
		if filter.TaskID != "" && completion.TaskID != filter.TaskID {
			continue
		}
		c := *completion
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CompletedAt.After(all[j].CompletedAt)
	})
	return page(all, filter.Limit, filter.Offset)
}

func (s *fakeCompletionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.completions[id]; !ok {
		return models.ErrCompletionNotFound
	}
	delete(s.completions, id)
	return nil
}

func (s *fakeCompletionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.completions)
}

type fakeQuestionStore struct {
	mu        sync.Mutex
	questions map[string]*models.Question
}

func newFakeQuestionStore() *fakeQuestionStore {
	return &fakeQuestionStore{questions: make(map[string]*models.Question)}
}

func (s *fakeQuestionStore) Random(ctx context.Context, questionType string) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, question := range s.questions {
		if question.Type == questionType {
			q := *question
			return &q, nil
		}
	}
	return nil, models.ErrQuestionNotFound
}

func (s *fakeQuestionStore) List(ctx context.Context, filter repository.QuestionFilter) ([]*models.Question, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*models.Question
	for _, question := range s.questions {
		if filter.Type != "" && question.Type != filter.Type {
			continue
		}
		if filter.Category != "" && question.Category != filter.Category {
			continue
		}
		q := *question
		all = append(all, &q)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Text < all[j].Text
	})
	return page(all, filter.Limit, filter.Offset)
}

func (s *fakeQuestionStore) UpsertByText(ctx context.Context, question *models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.questions {
		if existing.Text == question.Text {
			existing.Type = question.Type
			existing.Category = question.Category
			return nil
		}
	}
	q := *question
	s.questions[question.ID] = &q
	return nil
}

func (s *fakeQuestionStore) Update(ctx context.Context, question *models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[question.ID]; !ok {
		return models.ErrQuestionNotFound
	}
	q := *question
	s.questions[question.ID] = &q
	return nil
}

func (s *fakeQuestionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return models.ErrQuestionNotFound
	}
	delete(s.questions, id)
	return nil
}

func (s *fakeQuestionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.questions)
}

type fakePhotoStore struct {
	mu     sync.Mutex
	photos map[string]*models.Photo
	// feed holds pre-built feed items so tests control the merged view.
	feed []*models.MediaItem
}

func newFakePhotoStore() *fakePhotoStore {
	return &fakePhotoStore{photos: make(map[string]*models.Photo)}
}

func (s *fakePhotoStore) Create(ctx context.Context, photo *models.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *photo
	s.photos[photo.ID] = &p
	return nil
}

func (s *fakePhotoStore) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	photo, ok := s.photos[id]
	if !ok {
		return nil, models.ErrPhotoNotFound
	}
	p := *photo
	return &p, nil
}

func (s *fakePhotoStore) List(ctx context.Context, filter repository.PhotoFilter) ([]*models.Photo, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*models.Photo
	for _, photo := range s.photos {
		if len(filter.OwnerIDs) > 0 && !contains(filter.OwnerIDs, photo.UserID) {
			continue
		}
		if filter.Category != "" && photo.Category != filter.Category {
			continue
		}
		if filter.MediaType != "" && photo.MediaType != filter.MediaType {
			continue
		}
		p := *photo
		all = append(all, &p)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return page(all, filter.Limit, filter.Offset)
}

func (s *fakePhotoStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.photos[id]; !ok {
		return models.ErrPhotoNotFound
	}
	delete(s.photos, id)
	return nil
}

func (s *fakePhotoStore) ListFeed(ctx context.Context, filter repository.FeedFilter) ([]*models.MediaItem, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owners := []string{filter.UserID}
	if filter.PartnerID != nil {
		owners = append(owners, *filter.PartnerID)
	}
	var all []*models.MediaItem
	for _, item := range s.feed {
		if !contains(owners, item.OwnerID) {
			continue
		}
		if filter.MediaType != "" && item.Type != filter.MediaType {
			continue
		}
		if filter.Category != "" && item.Source != models.SourceTask && item.Category != filter.Category {
			continue
		}
		i := *item
		all = append(all, &i)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return page(all, filter.Limit, filter.Offset)
}

// page applies limit/offset the way the SQL repositories do, returning the
// total before slicing.
func page[T any](all []T, limit, offset int) ([]T, int, error) {
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func strPtr(s string) *string { return &s }
