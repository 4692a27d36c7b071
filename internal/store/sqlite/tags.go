package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/kouichiii/paper-manager/internal/domain"
	"github.com/kouichiii/paper-manager/internal/store"
)

// createTag inserts a new tag row.
// Returns store.ErrAlreadyExists on duplicate name.
func (s *Store) createTag(ctx context.Context, name string) (*domain.Tag, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tags (name) VALUES (?)`, name)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, store.ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert tag: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("tag id: %w", err)
	}
	return &domain.Tag{ID: id, Name: name}, nil
}

// GetTagByName retrieves a tag by its normalized name.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	var t domain.Tag
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM tags WHERE name = ?`, name).Scan(&t.ID, &t.Name)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindOrCreateTag finds an existing tag by name or creates a new one.
// Returns (tag, created, error) where created is true if a new tag was made.
// Uniqueness under concurrent callers rests on the UNIQUE constraint: an
// insert losing the race falls back to the winner's row.
func (s *Store) FindOrCreateTag(ctx context.Context, name string) (*domain.Tag, bool, error) {
	existing, err := s.GetTagByName(ctx, name)
	if err == nil {
		return existing, false, nil
	}
	if err != store.ErrNotFound {
		return nil, false, err
	}

	t, err := s.createTag(ctx, name)
	if err == store.ErrAlreadyExists {
		existing, err := s.GetTagByName(ctx, name)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

// AddPaperTag attaches the named tag to the paper, creating the tag on first
// use. Attaching an already-present tag is a no-op.
// Returns store.ErrNotFound if the paper does not exist.
func (s *Store) AddPaperTag(ctx context.Context, paperID int64, name string) (*domain.Paper, error) {
	if err := s.paperExists(ctx, paperID); err != nil {
		return nil, err
	}

	t, _, err := s.FindOrCreateTag(ctx, name)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO paper_tags (paper_id, tag_id)
		VALUES (?, ?)`, paperID, t.ID)
	if err != nil {
		return nil, fmt.Errorf("insert paper_tag: %w", err)
	}

	return s.GetPaper(ctx, paperID)
}

// RemovePaperTag detaches the named tag from the paper. Detaching a tag the
// paper never had, or a tag that does not exist at all, is not an error.
// Returns store.ErrNotFound if the paper does not exist.
func (s *Store) RemovePaperTag(ctx context.Context, paperID int64, name string) (*domain.Paper, error) {
	if err := s.paperExists(ctx, paperID); err != nil {
		return nil, err
	}

	t, err := s.GetTagByName(ctx, name)
	if err == store.ErrNotFound {
		return s.GetPaper(ctx, paperID)
	}
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`DELETE FROM paper_tags WHERE paper_id = ? AND tag_id = ?`, paperID, t.ID)
	if err != nil {
		return nil, fmt.Errorf("delete paper_tag: %w", err)
	}

	return s.GetPaper(ctx, paperID)
}

// paperExists returns store.ErrNotFound when the paper id is unknown.
func (s *Store) paperExists(ctx context.Context, id int64) error {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM papers WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return store.ErrNotFound
	}
	return err
}
