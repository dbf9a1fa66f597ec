package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"twinflame-backend/internal/models"
)

func newTestUser(id, uid string) *models.User {
	return &models.User{ID: id, UID: uid, Email: uid + "@example.com", TruthDareTurn: true}
}

func newPairFixture(t *testing.T) (*PairService, *fakeUserStore) {
	t.Helper()
	store := newFakeUserStore()
	users := NewUserService(store, nil)
	return NewPairService(store, users), store
}

func TestGetOrCreateCode(t *testing.T) {
	svc, store := newPairFixture(t)
	store.Create(context.Background(), newTestUser("u1", "uid-1"))

	code, err := svc.GetOrCreateCode(context.Background(), "uid-1")
	if err != nil {
		t.Fatalf("GetOrCreateCode returned error: %v", err)
	}
	if len(code) != 5 {
		t.Errorf("expected 5-character code, got %q", code)
	}
	for _, c := range code {
		if !strings.ContainsRune(codeChars, c) {
			t.Errorf("code %q contains invalid character %q", code, c)
		}
	}

	// Repeated calls return the same code.
	again, err := svc.GetOrCreateCode(context.Background(), "uid-1")
	if err != nil {
		t.Fatalf("second GetOrCreateCode returned error: %v", err)
	}
	if again != code {
		t.Errorf("expected stable code %q, got %q", code, again)
	}
}

func TestGetOrCreateCodeUserNotFound(t *testing.T) {
	svc, _ := newPairFixture(t)

	_, err := svc.GetOrCreateCode(context.Background(), "ghost")
	if !errors.Is(err, models.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestLinkPartner(t *testing.T) {
	svc, store := newPairFixture(t)
	ctx := context.Background()
	store.Create(ctx, newTestUser("u1", "uid-1"))
	store.Create(ctx, newTestUser("u2", "uid-2"))

	code, err := svc.GetOrCreateCode(ctx, "uid-2")
	if err != nil {
		t.Fatalf("GetOrCreateCode returned error: %v", err)
	}

	// Codes are case-insensitive on entry.
	partner, err := svc.LinkPartner(ctx, "uid-1", strings.ToLower(code))
	if err != nil {
		t.Fatalf("LinkPartner returned error: %v", err)
	}
	if partner.ID != "u2" {
		t.Errorf("expected partner u2, got %s", partner.ID)
	}

	// Both sides now reference each other.
	u1, _ := store.GetByID(ctx, "u1")
	u2, _ := store.GetByID(ctx, "u2")
	if u1.PartnerID == nil || *u1.PartnerID != "u2" {
		t.Errorf("u1 partner reference not set: %+v", u1.PartnerID)
	}
	if u2.PartnerID == nil || *u2.PartnerID != "u1" {
		t.Errorf("u2 partner reference not set: %+v", u2.PartnerID)
	}
}

func TestLinkPartnerConflicts(t *testing.T) {
	svc, store := newPairFixture(t)
	ctx := context.Background()
	store.Create(ctx, newTestUser("u1", "uid-1"))
	store.Create(ctx, newTestUser("u2", "uid-2"))
	store.Create(ctx, newTestUser("u3", "uid-3"))

	ownCode, _ := svc.GetOrCreateCode(ctx, "uid-1")
	code2, _ := svc.GetOrCreateCode(ctx, "uid-2")

	if _, err := svc.LinkPartner(ctx, "uid-1", "ZZZZZ"); !errors.Is(err, models.ErrCodeNotFound) {
		t.Errorf("unknown code: expected ErrCodeNotFound, got %v", err)
	}
	if _, err := svc.LinkPartner(ctx, "uid-1", ownCode); !errors.Is(err, models.ErrSelfPairing) {
		t.Errorf("own code: expected ErrSelfPairing, got %v", err)
	}

	if _, err := svc.LinkPartner(ctx, "uid-1", code2); err != nil {
		t.Fatalf("LinkPartner returned error: %v", err)
	}

	if _, err := svc.LinkPartner(ctx, "uid-1", code2); !errors.Is(err, models.ErrAlreadyPaired) {
		t.Errorf("already paired: expected ErrAlreadyPaired, got %v", err)
	}
	if _, err := svc.LinkPartner(ctx, "uid-3", code2); !errors.Is(err, models.ErrTargetAlreadyPaired) {
		t.Errorf("taken code: expected ErrTargetAlreadyPaired, got %v", err)
	}
}

func TestGenerateCodeCharset(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateCode()
		if err != nil {
			t.Fatalf("generateCode returned error: %v", err)
		}
		if len(code) != codeLength {
			t.Fatalf("expected length %d, got %q", codeLength, code)
		}
		for _, c := range code {
			if !strings.ContainsRune(codeChars, c) {
				t.Fatalf("code %q contains invalid character %q", code, c)
			}
		}
	}
}
