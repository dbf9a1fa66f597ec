package models

import "time"

// Submission types accepted for daily tasks and completions.
const (
	SubmissionText  = "text"
	SubmissionPhoto = "photo"
	SubmissionVideo = "video"
	SubmissionAny   = "any"
	SubmissionNone  = "none"
)

// Question types for the truth-or-dare game.
const (
	QuestionTruth = "truth"
	QuestionDare  = "dare"
)

// Media types for uploaded photos.
const (
	MediaPhoto = "photo"
	MediaVideo = "video"
)

// Feed item sources.
const (
	SourceTask   = "task"
	SourceUpload = "upload"
)

var (
	taskCategories     = map[string]bool{"communication": true, "fun": true, "romantic": true, "creative": true, "thoughtful": true}
	questionCategories = map[string]bool{"fun": true, "romantic": true, "deep": true, "spicy": true}
	photoCategories    = map[string]bool{"food": true, "outfit": true, "selfie": true, "us": true, "random": true, "task": true}
	submissionTypes    = map[string]bool{SubmissionText: true, SubmissionPhoto: true, SubmissionVideo: true, SubmissionAny: true}
)

// ValidTaskCategory reports whether c is an allowed daily-task category.
func ValidTaskCategory(c string) bool { return taskCategories[c] }

// ValidQuestionCategory reports whether c is an allowed question category.
func ValidQuestionCategory(c string) bool { return questionCategories[c] }

// ValidPhotoCategory reports whether c is an allowed photo category.
func ValidPhotoCategory(c string) bool { return photoCategories[c] }

// ValidSubmissionType reports whether t is an allowed task submission type.
func ValidSubmissionType(t string) bool { return submissionTypes[t] }

// ValidQuestionType reports whether t is truth or dare.
func ValidQuestionType(t string) bool { return t == QuestionTruth || t == QuestionDare }

// User represents an application user keyed by the identity provider subject.
type User struct {
	ID              string    `json:"id"`
	UID             string    `json:"uid"`
	Email           string    `json:"email"`
	DisplayName     string    `json:"displayName"`
	Name            string    `json:"name"`
	Gender          string    `json:"gender"`
	Age             *int      `json:"age,omitempty"`
	PhotoURL        string    `json:"photoURL"`
	ProfileComplete bool      `json:"profileComplete"`
	PartnerID       *string   `json:"partnerId,omitempty"`
	PartnerCode     *string   `json:"partnerCode,omitempty"`
	TruthDareTurn   bool      `json:"truthDareTurn"`
	PushToken       *string   `json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
}

// DailyTask is the shared task for one calendar day.
type DailyTask struct {
	ID             string    `json:"id"`
	Description    string    `json:"description"`
	SubmissionType string    `json:"submissionType"`
	Category       string    `json:"category"`
	Date           time.Time `json:"date"`
	CreatedAt      time.Time `json:"createdAt"`
}

// TaskCompletion records one user's submission against a daily task.
// At most one completion exists per (task, user); resubmission overwrites.
type TaskCompletion struct {
	ID                 string    `json:"id"`
	TaskID             string    `json:"taskId"`
	UserID             string    `json:"userId"`
	SubmissionText     string    `json:"submissionText"`
	SubmissionMediaURL string    `json:"submissionMediaURL"`
	SubmissionType     string    `json:"submissionType"`
	CompletedAt        time.Time `json:"completedAt"`
}

// Question is a truth-or-dare prompt.
type Question struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Type      string    `json:"type"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}

// Photo is media uploaded independently of tasks. PartnerID is denormalized
// from the owner at creation time.
type Photo struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	PartnerID *string   `json:"partnerId,omitempty"`
	MediaURL  string    `json:"mediaURL"`
	MediaType string    `json:"mediaType"`
	Category  string    `json:"category"`
	Caption   string    `json:"caption"`
	CreatedAt time.Time `json:"createdAt"`
}

// MediaItem is one entry of the unified gallery feed, merged from task
// submissions and direct uploads.
type MediaItem struct {
	ID              string    `json:"id"`
	URL             string    `json:"url"`
	Type            string    `json:"type"`
	Text            string    `json:"text"`
	Category        string    `json:"category"`
	OwnerID         string    `json:"-"`
	OwnerName       string    `json:"ownerName"`
	OwnerPhotoURL   string    `json:"ownerPhotoURL"`
	TaskDescription string    `json:"taskDescription,omitempty"`
	TaskCategory    string    `json:"taskCategory,omitempty"`
	Source          string    `json:"source"`
	IsMine          bool      `json:"isMine"`
	CreatedAt       time.Time `json:"createdAt"`
}
