package sqlite

import (
	"context"
	"testing"

	"github.com/kouichiii/paper-manager/internal/store"
)

func TestFindOrCreateTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tag, created, err := s.FindOrCreateTag(ctx, "ai")
	if err != nil {
		t.Fatalf("FindOrCreateTag: %v", err)
	}
	if !created {
		t.Error("expected created=true for first call")
	}
	if tag.Name != "ai" {
		t.Errorf("Name: got %q", tag.Name)
	}

	again, created, err := s.FindOrCreateTag(ctx, "ai")
	if err != nil {
		t.Fatalf("FindOrCreateTag second call: %v", err)
	}
	if created {
		t.Error("expected created=false for second call")
	}
	if again.ID != tag.ID {
		t.Errorf("expected same tag row, got ids %d and %d", tag.ID, again.ID)
	}
}

func TestGetTagByName_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetTagByName(context.Background(), "ghost")
	if err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateTag_DuplicateName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.createTag(ctx, "dup"); err != nil {
		t.Fatalf("createTag: %v", err)
	}
	if _, err := s.createTag(ctx, "dup"); err != store.ErrAlreadyExists {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestAddPaperTag_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := mustCreate(t, s, makeTestPaper("tagged"))

	got, err := s.AddPaperTag(ctx, p.ID, "ai")
	if err != nil {
		t.Fatalf("AddPaperTag: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "ai" {
		t.Fatalf("Tags: got %v", got.Tags)
	}

	// Adding the same tag again is a no-op.
	got, err = s.AddPaperTag(ctx, p.ID, "ai")
	if err != nil {
		t.Fatalf("AddPaperTag repeat: %v", err)
	}
	if len(got.Tags) != 1 {
		t.Fatalf("expected 1 tag after repeat add, got %v", got.Tags)
	}
}

func TestAddPaperTag_SharedAcrossPapers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p1 := mustCreate(t, s, makeTestPaper("one"))
	p2 := mustCreate(t, s, makeTestPaper("two"))

	if _, err := s.AddPaperTag(ctx, p1.ID, "shared"); err != nil {
		t.Fatalf("AddPaperTag p1: %v", err)
	}
	if _, err := s.AddPaperTag(ctx, p2.ID, "shared"); err != nil {
		t.Fatalf("AddPaperTag p2: %v", err)
	}

	// Exactly one tag row exists.
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tags WHERE name = 'shared'`).Scan(&n); err != nil {
		t.Fatalf("count tags: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 tag row, got %d", n)
	}
}

func TestAddPaperTag_PaperNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddPaperTag(context.Background(), 77, "ai")
	if err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPaperTagsSortedByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := mustCreate(t, s, makeTestPaper("sorted"))
	for _, name := range []string{"zebra", "alpha", "mid"} {
		if _, err := s.AddPaperTag(ctx, p.ID, name); err != nil {
			t.Fatalf("AddPaperTag(%q): %v", name, err)
		}
	}

	got, err := s.GetPaper(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPaper: %v", err)
	}
	want := []string{"alpha", "mid", "zebra"}
	for i, name := range want {
		if got.Tags[i] != name {
			t.Fatalf("Tags: got %v, want %v", got.Tags, want)
		}
	}
}

func TestRemovePaperTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := mustCreate(t, s, makeTestPaper("untag"))
	if _, err := s.AddPaperTag(ctx, p.ID, "ai"); err != nil {
		t.Fatalf("AddPaperTag: %v", err)
	}

	got, err := s.RemovePaperTag(ctx, p.ID, "ai")
	if err != nil {
		t.Fatalf("RemovePaperTag: %v", err)
	}
	if len(got.Tags) != 0 {
		t.Errorf("Tags after remove: got %v", got.Tags)
	}

	// The tag row itself is not garbage collected.
	if _, err := s.GetTagByName(ctx, "ai"); err != nil {
		t.Errorf("tag row should remain: %v", err)
	}

	// Removing a tag the paper never had is not an error.
	if _, err := s.RemovePaperTag(ctx, p.ID, "never-attached"); err != nil {
		t.Errorf("remove of unattached tag: %v", err)
	}

	// Missing paper is.
	if _, err := s.RemovePaperTag(ctx, 404, "ai"); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
