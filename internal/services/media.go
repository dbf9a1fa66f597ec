package services

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"twinflame-backend/internal/config"
	"twinflame-backend/internal/models"
	"twinflame-backend/internal/repository"
	"twinflame-backend/internal/sanitize"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const presignExpiry = 5 * time.Minute

// MediaService handles the unified media feed, photo records and S3 storage.
type MediaService struct {
	photoStore repository.PhotoStore
	s3Client   *s3.Client
	s3Bucket   string
	s3Region   string
	s3Endpoint string
}

// NewMediaService creates a new media service. With an empty bucket the
// service still serves the feed and photo records, but uploads and object
// deletion are disabled.
func NewMediaService(photoStore repository.PhotoStore, cfg config.AWSConfig) (*MediaService, error) {
	svc := &MediaService{
		photoStore: photoStore,
		s3Bucket:   cfg.S3Bucket,
		s3Region:   cfg.Region,
		s3Endpoint: cfg.Endpoint,
	}
	if cfg.S3Bucket == "" {
		return svc, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	svc.s3Client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return svc, nil
}

// Feed returns one page of the unified media feed for the user and their
// partner, newest first, tagging each item with isMine.
func (s *MediaService) Feed(ctx context.Context, user *models.User, mediaType, category string, page, limit int) ([]*models.MediaItem, int, error) {
	limit, offset := clampPage(page, limit, 20)

	items, total, err := s.photoStore.ListFeed(ctx, repository.FeedFilter{
		UserID:    user.ID,
		PartnerID: user.PartnerID,
		MediaType: mediaType,
		Category:  category,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, 0, err
	}

	for _, item := range items {
		item.IsMine = item.OwnerID == user.ID
	}
	return items, total, nil
}

// CreatePhotoRequest is the metadata for an uploaded photo or video.
type CreatePhotoRequest struct {
	MediaURL  string `json:"mediaURL"`
	MediaType string `json:"mediaType"`
	Category  string `json:"category"`
	Caption   string `json:"caption"`
}

// CreatePhoto stores a photo record owned by the user, denormalizing the
// partner reference at creation time.
func (s *MediaService) CreatePhoto(ctx context.Context, user *models.User, req CreatePhotoRequest) (*models.Photo, error) {
	if req.MediaURL == "" {
		return nil, models.NewValidation("Media URL is required")
	}

	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = models.MediaPhoto
	}
	if mediaType != models.MediaPhoto && mediaType != models.MediaVideo {
		return nil, models.NewValidation("Invalid media type")
	}

	category := req.Category
	if category == "" {
		category = "random"
	}
	if !models.ValidPhotoCategory(category) {
		return nil, models.NewValidation("Invalid category")
	}

	photo := &models.Photo{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		PartnerID: user.PartnerID,
		MediaURL:  req.MediaURL,
		MediaType: mediaType,
		Category:  category,
		Caption:   sanitize.Text(req.Caption),
		CreatedAt: time.Now(),
	}
	if err := s.photoStore.Create(ctx, photo); err != nil {
		return nil, fmt.Errorf("failed to create photo: %w", err)
	}
	return photo, nil
}

// ListPhotos returns one page of the couple's uploaded photos.
func (s *MediaService) ListPhotos(ctx context.Context, user *models.User, category, mediaType string, page, limit int) ([]*models.Photo, int, error) {
	limit, offset := clampPage(page, limit, 20)

	owners := []string{user.ID}
	if user.PartnerID != nil {
		owners = append(owners, *user.PartnerID)
	}

	return s.photoStore.List(ctx, repository.PhotoFilter{
		OwnerIDs:  owners,
		Category:  category,
		MediaType: mediaType,
		Limit:     limit,
		Offset:    offset,
	})
}

// DeletePhoto removes a photo owned by the user. The stored object is
// deleted best-effort; a storage failure never blocks removal of the record.
func (s *MediaService) DeletePhoto(ctx context.Context, user *models.User, id string) error {
	photo, err := s.photoStore.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if photo.UserID != user.ID {
		return models.NewForbidden("Not authorized to delete this photo")
	}

	if s.s3Client != nil {
		if key := s.objectKey(photo.MediaURL); key != "" {
			_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(s.s3Bucket),
				Key:    aws.String(key),
			})
			if err != nil {
				log.Warn().Err(err).Str("photo_id", id).Msg("Failed to delete stored object")
			}
		}
	}

	return s.photoStore.Delete(ctx, id)
}

// UploadRequest asks for a pre-signed upload URL.
type UploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// UploadResponse carries the pre-signed PUT URL and the public media URL the
// client should register afterwards.
type UploadResponse struct {
	UploadURL string `json:"uploadURL"`
	MediaURL  string `json:"mediaURL"`
	ExpiresIn int    `json:"expiresIn"`
}

// UploadURL generates a pre-signed S3 PUT URL for a new media object.
func (s *MediaService) UploadURL(ctx context.Context, user *models.User, filename, contentType string) (*UploadResponse, error) {
	if s.s3Client == nil {
		return nil, models.NewInternal("Media storage is not configured")
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	key := fmt.Sprintf("%s/%s%s", user.ID, uuid.New().String(), path.Ext(filename))

	presignClient := s3.NewPresignClient(s.s3Client)
	request, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = presignExpiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	return &UploadResponse{
		UploadURL: request.URL,
		MediaURL:  s.publicURL(key),
		ExpiresIn: int(presignExpiry.Seconds()),
	}, nil
}

func (s *MediaService) publicURL(key string) string {
	if s.s3Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.s3Endpoint, "/"), s.s3Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.s3Bucket, s.s3Region, key)
}

// objectKey extracts the bucket key from a stored media URL. Returns ""
// when the URL does not point at this service's bucket.
func (s *MediaService) objectKey(mediaURL string) string {
	u, err := url.Parse(mediaURL)
	if err != nil {
		return ""
	}
	p := strings.TrimPrefix(u.Path, "/")
	if s.s3Endpoint != "" {
		p = strings.TrimPrefix(p, s.s3Bucket+"/")
	}
	return p
}

// clampPage bounds page/limit and converts them to limit/offset.
func clampPage(page, limit, defaultLimit int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}
