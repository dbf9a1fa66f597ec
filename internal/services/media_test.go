package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"twinflame-backend/internal/config"
	"twinflame-backend/internal/models"
)

func newMediaFixture(t *testing.T) (*MediaService, *fakePhotoStore) {
	t.Helper()
	photoStore := newFakePhotoStore()
	svc, err := NewMediaService(photoStore, config.AWSConfig{})
	if err != nil {
		t.Fatalf("NewMediaService returned error: %v", err)
	}
	return svc, photoStore
}

func TestFeedPaginationAndOwnership(t *testing.T) {
	svc, photoStore := newMediaFixture(t)
	partnerID := "u2"
	user := newTestUser("u1", "uid-1")
	user.PartnerID = &partnerID

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		owner := "u1"
		if i%2 == 0 {
			owner = "u2"
		}
		photoStore.feed = append(photoStore.feed, &models.MediaItem{
			ID:        fmt.Sprintf("m%02d", i),
			OwnerID:   owner,
			Type:      models.MediaPhoto,
			Source:    models.SourceUpload,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}

	items, total, err := svc.Feed(context.Background(), user, "", "", 1, 20)
	if err != nil {
		t.Fatalf("Feed returned error: %v", err)
	}
	if total != 25 {
		t.Errorf("expected total 25, got %d", total)
	}
	if len(items) != 20 {
		t.Errorf("expected 20 items on page 1, got %d", len(items))
	}
	// Newest first.
	if items[0].ID != "m24" {
		t.Errorf("expected newest item first, got %s", items[0].ID)
	}
	for _, item := range items {
		if item.IsMine != (item.OwnerID == "u1") {
			t.Errorf("item %s has wrong isMine flag", item.ID)
		}
	}

	page2, _, err := svc.Feed(context.Background(), user, "", "", 2, 20)
	if err != nil {
		t.Fatalf("Feed page 2 returned error: %v", err)
	}
	if len(page2) != 5 {
		t.Errorf("expected 5 items on page 2, got %d", len(page2))
	}
}

func TestFeedCategoryFilterKeepsTaskMedia(t *testing.T) {
	svc, photoStore := newMediaFixture(t)
	user := newTestUser("u1", "uid-1")

	photoStore.feed = []*models.MediaItem{
		{ID: "food-upload", OwnerID: "u1", Category: "food", Source: models.SourceUpload},
		{ID: "trip-upload", OwnerID: "u1", Category: "travel", Source: models.SourceUpload},
		{ID: "submission", OwnerID: "u1", Category: "task", Source: models.SourceTask},
	}

	items, total, err := svc.Feed(context.Background(), user, "", "food", 1, 20)
	if err != nil {
		t.Fatalf("Feed returned error: %v", err)
	}
	if total != 2 {
		t.Errorf("expected total 2, got %d", total)
	}
	ids := map[string]bool{}
	for _, item := range items {
		ids[item.ID] = true
	}
	if !ids["food-upload"] || !ids["submission"] || ids["trip-upload"] {
		t.Errorf("category filter should narrow uploads only, got %v", ids)
	}
}

func TestFeedExcludesStrangers(t *testing.T) {
	svc, photoStore := newMediaFixture(t)
	user := newTestUser("u1", "uid-1")

	photoStore.feed = []*models.MediaItem{
		{ID: "mine", OwnerID: "u1"},
		{ID: "theirs", OwnerID: "u9"},
	}

	items, total, err := svc.Feed(context.Background(), user, "", "", 1, 20)
	if err != nil {
		t.Fatalf("Feed returned error: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != "mine" {
		t.Errorf("expected only own media, got %d items (total %d)", len(items), total)
	}
}

func TestCreatePhotoDefaultsAndValidation(t *testing.T) {
	svc, _ := newMediaFixture(t)
	partnerID := "u2"
	user := newTestUser("u1", "uid-1")
	user.PartnerID = &partnerID

	if _, err := svc.CreatePhoto(context.Background(), user, CreatePhotoRequest{}); err == nil {
		t.Error("expected error for missing media URL")
	}
	if _, err := svc.CreatePhoto(context.Background(), user, CreatePhotoRequest{MediaURL: "x", MediaType: "gif"}); err == nil {
		t.Error("expected error for invalid media type")
	}
	if _, err := svc.CreatePhoto(context.Background(), user, CreatePhotoRequest{MediaURL: "x", Category: "sports"}); err == nil {
		t.Error("expected error for invalid category")
	}

	photo, err := svc.CreatePhoto(context.Background(), user, CreatePhotoRequest{MediaURL: "https://cdn.example.com/a.jpg"})
	if err != nil {
		t.Fatalf("CreatePhoto returned error: %v", err)
	}
	if photo.MediaType != models.MediaPhoto {
		t.Errorf("expected default media type photo, got %q", photo.MediaType)
	}
	if photo.Category != "random" {
		t.Errorf("expected default category random, got %q", photo.Category)
	}
	if photo.PartnerID == nil || *photo.PartnerID != "u2" {
		t.Errorf("partner not denormalized onto photo: %+v", photo.PartnerID)
	}
}

func TestDeletePhotoOwnership(t *testing.T) {
	svc, photoStore := newMediaFixture(t)
	owner := newTestUser("u1", "uid-1")
	stranger := newTestUser("u9", "uid-9")

	photo, err := svc.CreatePhoto(context.Background(), owner, CreatePhotoRequest{MediaURL: "https://cdn.example.com/a.jpg"})
	if err != nil {
		t.Fatalf("CreatePhoto returned error: %v", err)
	}

	err = svc.DeletePhoto(context.Background(), stranger, photo.ID)
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Status != 403 {
		t.Fatalf("expected 403 for non-owner, got %v", err)
	}

	if err := svc.DeletePhoto(context.Background(), owner, photo.ID); err != nil {
		t.Fatalf("owner delete returned error: %v", err)
	}
	if _, err := photoStore.GetByID(context.Background(), photo.ID); !errors.Is(err, models.ErrPhotoNotFound) {
		t.Errorf("photo record not removed: %v", err)
	}
}

func TestUploadURLUnconfigured(t *testing.T) {
	svc, _ := newMediaFixture(t)
	user := newTestUser("u1", "uid-1")

	_, err := svc.UploadURL(context.Background(), user, "a.jpg", "image/jpeg")
	if err == nil {
		t.Fatal("expected error without a configured bucket, got nil")
	}
}

func TestClampPage(t *testing.T) {
	cases := []struct {
		page, limit           int
		wantLimit, wantOffset int
	}{
		{1, 20, 20, 0},
		{2, 20, 20, 20},
		{0, 0, 20, 0},
		{-3, 500, 100, 0},
		{3, 10, 10, 20},
	}
	for _, tc := range cases {
		limit, offset := clampPage(tc.page, tc.limit, 20)
		if limit != tc.wantLimit || offset != tc.wantOffset {
			t.Errorf("clampPage(%d, %d): got (%d, %d), want (%d, %d)",
				tc.page, tc.limit, limit, offset, tc.wantLimit, tc.wantOffset)
		}
	}
}

func TestObjectKey(t *testing.T) {
	svc := &MediaService{s3Bucket: "media", s3Region: "us-east-1"}
	key := svc.objectKey("https://media.s3.us-east-1.amazonaws.com/u1/abc.jpg")
	if key != "u1/abc.jpg" {
		t.Errorf("expected key u1/abc.jpg, got %q", key)
	}

	pathStyle := &MediaService{s3Bucket: "media", s3Endpoint: "http://localhost:9000"}
	key = pathStyle.objectKey("http://localhost:9000/media/u1/abc.jpg")
	if key != "u1/abc.jpg" {
		t.Errorf("expected path-style key u1/abc.jpg, got %q", key)
	}
}
