// Package store defines the storage port for papers and tags.
//
// Two implementations exist: sqlite (production) and memory (tests). Both
// honor the same contract: uniqueness of tag names is enforced by the
// implementation, never by callers.
package store

import (
	"context"
	"errors"

	"github.com/kouichiii/paper-manager/internal/domain"
)

// Sentinel errors returned by store implementations.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// PaperUpdate carries a partial update; nil fields are left unchanged.
// Status, tags, created_at and id are never touched by an update.
type PaperUpdate struct {
	Title   *string
	Authors *string
	PubYear *int
	URL     *string
}

// PaperFilter is the search predicate for listing and counting papers.
// Zero-valued members impose no filter; the members combine with AND.
type PaperFilter struct {
	// Query matches case-insensitively as a substring of title OR authors.
	Query string
	// Status matches exactly when non-empty.
	Status domain.Status
	// Tags matches papers carrying at least one of the given (normalized)
	// tag names. OR across tags, not AND.
	Tags []string
}

// PageParams is offset pagination: offset = Page * Size.
type PageParams struct {
	Page int // 0-based
	Size int // items per page
}

// Offset returns the row offset for the page.
func (p PageParams) Offset() int {
	return p.Page * p.Size
}

// Store is the storage port covering papers, tags and their association.
type Store interface {
	// CreatePaper inserts a new paper and fills in its assigned ID.
	// Status and CreatedAt must be set by the caller; tags start empty.
	CreatePaper(ctx context.Context, p *domain.Paper) error

	// GetPaper returns the paper with its sorted tag names, or ErrNotFound.
	GetPaper(ctx context.Context, id int64) (*domain.Paper, error)

	// UpdatePaper applies the non-nil fields of upd and returns the updated
	// paper, or ErrNotFound.
	UpdatePaper(ctx context.Context, id int64, upd PaperUpdate) (*domain.Paper, error)

	// SetPaperStatus replaces the paper's status, or ErrNotFound.
	SetPaperStatus(ctx context.Context, id int64, status domain.Status) (*domain.Paper, error)

	// DeletePaper removes the paper and its tag associations (not the tags).
	// Returns ErrNotFound when no such paper exists.
	DeletePaper(ctx context.Context, id int64) error

	// SearchPapers returns one page of papers matching filter, newest first
	// (id descending). A page past the end yields an empty slice.
	SearchPapers(ctx context.Context, filter PaperFilter, page PageParams) ([]*domain.Paper, error)

	// CountPapers counts papers matching filter, ignoring pagination.
	CountPapers(ctx context.Context, filter PaperFilter) (int64, error)

	// AddPaperTag attaches the named tag to the paper, creating the tag on
	// first use. Adding an already-attached tag is a no-op. The name must
	// already be normalized. Returns ErrNotFound for a missing paper.
	AddPaperTag(ctx context.Context, paperID int64, name string) (*domain.Paper, error)

	// RemovePaperTag detaches the named tag if attached; detaching a tag the
	// paper never had is not an error. Returns ErrNotFound for a missing paper.
	RemovePaperTag(ctx context.Context, paperID int64, name string) (*domain.Paper, error)

	// FindOrCreateTag returns the tag with the given normalized name,
	// creating it when absent. The bool reports whether a new tag was made.
	FindOrCreateTag(ctx context.Context, name string) (*domain.Tag, bool, error)

	// GetTagByName returns the tag with the normalized name, or ErrNotFound.
	GetTagByName(ctx context.Context, name string) (*domain.Tag, error)
}
