package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"eskwela/internal/localstore"
	"eskwela/internal/model"
)

func newProfile(id, accountID, status string) *model.Profile {
	now := time.Now()
	return &model.Profile{
		ID:          id,
		AccountID:   accountID,
		Name:        "Juan",
		Role:        model.RoleChild,
		AvatarToken: "bear",
		Settings:    model.Settings{"theme": "blue"},
		CreatedAt:   now,
		UpdatedAt:   now,
		SyncStatus:  status,
	}
}

func TestProfileRepository_SaveGet(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository(localstore.NewMemoryStore())

	profile := newProfile("p1", "a1", model.SyncStatusPending)
	profile.OriginalOwnerPendingID = "a1"
	if err := repo.Save(ctx, profile); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := repo.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.AccountID != "a1" || got.OriginalOwnerPendingID != "a1" {
		t.Errorf("Get() = %+v", got)
	}
	if got.Settings["theme"] != "blue" {
		t.Errorf("settings 没有完整往返: %+v", got.Settings)
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("Get(missing) err = %v, want ErrProfileNotFound", err)
	}
}

func TestProfileRepository_Scans(t *testing.T) {
	ctx := context.Background()
	store := localstore.NewMemoryStore()
	repo := NewProfileRepository(store)

	for _, profile := range []*model.Profile{
		newProfile("p1", "a1", model.SyncStatusPending),
		newProfile("p2", "a1", model.SyncStatusSynced),
		newProfile("p3", "a2", model.SyncStatusPending),
	} {
		if err := repo.Save(ctx, profile); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
	}
	// 其他类型的键不影响档案扫描
	if err := store.Set(ctx, "account:a1", []byte(`{"id":"a1"}`)); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("List() len = %d, want 3", len(all))
	}

	byAccount, err := repo.ListByAccount(ctx, "a1")
	if err != nil {
		t.Fatalf("ListByAccount() failed: %v", err)
	}
	if len(byAccount) != 2 {
		t.Errorf("ListByAccount(a1) len = %d, want 2", len(byAccount))
	}

	pending, err := repo.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending() failed: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("ListPending() len = %d, want 2", len(pending))
	}
}
