package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
)

func openTestStore(t *testing.T) *LocalStore {
	t.Helper()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "pcforge_test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return NewLocalStore(db)
}

func TestTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	token, err := store.Token(ctx)
	if err != nil {
		t.Fatalf("read empty token: %v", err)
	}
	if token != "" {
		t.Fatalf("expected no token, got %q", token)
	}

	if err := store.SetToken(ctx, "first"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if err := store.SetToken(ctx, "second"); err != nil {
		t.Fatalf("overwrite token: %v", err)
	}
	if token, _ = store.Token(ctx); token != "second" {
		t.Fatalf("expected overwritten token, got %q", token)
	}

	if err := store.ClearToken(ctx); err != nil {
		t.Fatalf("clear token: %v", err)
	}
	if token, _ = store.Token(ctx); token != "" {
		t.Fatalf("expected cleared token, got %q", token)
	}
}

func TestDraftRoundTripsAndReplacesSlot(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	if err := store.PutDraftPart(ctx, domain.CategoryCPU, 11); err != nil {
		t.Fatalf("put cpu: %v", err)
	}
	if err := store.PutDraftPart(ctx, domain.CategoryGPU, 21); err != nil {
		t.Fatalf("put gpu: %v", err)
	}
	if err := store.PutDraftPart(ctx, domain.CategoryCPU, 12); err != nil {
		t.Fatalf("replace cpu: %v", err)
	}
	if err := store.SetDraftTitle(ctx, "Quiet ITX"); err != nil {
		t.Fatalf("set title: %v", err)
	}

	parts, err := store.DraftParts(ctx)
	if err != nil {
		t.Fatalf("draft parts: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("expected 2 slots, got %+v", parts)
	}
	if parts[0] != (domain.DraftPart{Category: domain.CategoryCPU, PartID: 12}) {
		t.Fatalf("cpu slot not replaced in place: %+v", parts[0])
	}

	if err := store.RemoveDraftPart(ctx, domain.CategoryGPU); err != nil {
		t.Fatalf("remove gpu: %v", err)
	}
	if parts, _ = store.DraftParts(ctx); len(parts) != 1 {
		t.Fatalf("expected 1 slot after remove, got %+v", parts)
	}

	if err := store.SetToken(ctx, "keep-me"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if err := store.ClearDraft(ctx); err != nil {
		t.Fatalf("clear draft: %v", err)
	}
	if parts, _ = store.DraftParts(ctx); len(parts) != 0 {
		t.Fatalf("expected empty draft, got %+v", parts)
	}
	if title, _ := store.DraftTitle(ctx); title != "" {
		t.Fatalf("expected title cleared, got %q", title)
	}
	if token, _ := store.Token(ctx); token != "keep-me" {
		t.Fatalf("clearing the draft must keep the token, got %q", token)
	}
}
