// Package service orchestrates stores and translates between storage rows and transport rows.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/kouichiii/paper-manager/internal/domain"
	"github.com/kouichiii/paper-manager/internal/errors"
	"github.com/kouichiii/paper-manager/internal/store"
	"github.com/kouichiii/paper-manager/internal/validation"
)

// PaperService orchestrates paper and tag operations.
type PaperService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewPaperService creates a new paper service.
func NewPaperService(store store.Store, validator *validation.Validator, logger *slog.Logger) *PaperService {
	return &PaperService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// PaperRow is the transport representation of a paper.
// CreatedAt is rendered as epoch milliseconds, tags as a sorted name list.
type PaperRow struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Authors   string   `json:"authors,omitempty"`
	Year      *int     `json:"year,omitempty"`
	URL       string   `json:"url,omitempty"`
	CreatedAt int64    `json:"createdAt"`
	Status    string   `json:"status"`
	Tags      []string `json:"tags"`
}

// PageResult is the envelope for paginated listings.
type PageResult struct {
	Content []*PaperRow `json:"content"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Size    int         `json:"size"`
	HasNext bool        `json:"hasNext"`
}

// CreatePaperInput holds the fields accepted when creating a paper.
type CreatePaperInput struct {
	Title   string `json:"title" validate:"required,notblank,max=400"`
	Authors string `json:"authors" validate:"omitempty,max=800"`
	Year    *int   `json:"year" validate:"omitempty,gte=1900,lte=2100"`
	URL     string `json:"url" validate:"omitempty,max=500"`
}

// UpdatePaperInput holds a partial update. Nil fields are left unchanged.
type UpdatePaperInput struct {
	Title   *string `json:"title" validate:"omitempty,notblank,max=400"`
	Authors *string `json:"authors" validate:"omitempty,max=800"`
	Year    *int    `json:"year" validate:"omitempty,gte=1900,lte=2100"`
	URL     *string `json:"url" validate:"omitempty,max=500"`
}

// ListPapersInput holds search and pagination parameters.
type ListPapersInput struct {
	Page   int
	Size   int
	Query  string
	Status string
	Tags   []string
}

// Create validates the input and inserts a new paper with status UNREAD and no tags.
func (s *PaperService) Create(ctx context.Context, in CreatePaperInput) (*PaperRow, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	paper := &domain.Paper{
		Title:     in.Title,
		Authors:   in.Authors,
		PubYear:   in.Year,
		URL:       in.URL,
		Status:    domain.StatusUnread,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreatePaper(ctx, paper); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to create paper")
	}

	s.logger.Info("paper created", "paper_id", paper.ID, "title", paper.Title)
	return toRow(paper), nil
}

// Get fetches a single paper by id.
func (s *PaperService) Get(ctx context.Context, id int64) (*PaperRow, error) {
	paper, err := s.store.GetPaper(ctx, id)
	if err != nil {
		return nil, s.mapStoreError(err, id)
	}
	return toRow(paper), nil
}

// List searches papers with optional filters and offset pagination.
// The row query and the total count are separate round trips, so they may
// be momentarily inconsistent under concurrent writes.
func (s *PaperService) List(ctx context.Context, in ListPapersInput) (*PageResult, error) {
	filter := store.PaperFilter{Query: in.Query}

	status, err := normalizeStatusFilter(in.Status)
	if err != nil {
		return nil, err
	}
	filter.Status = status
	filter.Tags = normalizeTagFilter(in.Tags)

	papers, err := s.store.SearchPapers(ctx, filter, store.PageParams{Page: in.Page, Size: in.Size})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to search papers")
	}

	total, err := s.store.CountPapers(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to count papers")
	}

	rows := make([]*PaperRow, 0, len(papers))
	for _, p := range papers {
		rows = append(rows, toRow(p))
	}

	return &PageResult{
		Content: rows,
		Total:   total,
		Page:    in.Page,
		Size:    in.Size,
		HasNext: int64(in.Page+1)*int64(in.Size) < total,
	}, nil
}

// Update applies a partial field update. Status, tags, and createdAt are untouched.
func (s *PaperService) Update(ctx context.Context, id int64, in UpdatePaperInput) (*PaperRow, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	paper, err := s.store.UpdatePaper(ctx, id, store.PaperUpdate{
		Title:   in.Title,
		Authors: in.Authors,
		PubYear: in.Year,
		URL:     in.URL,
	})
	if err != nil {
		return nil, s.mapStoreError(err, id)
	}

	return toRow(paper), nil
}

// SetStatus changes the reading status. Input is case-insensitive.
func (s *PaperService) SetStatus(ctx context.Context, id int64, raw string) (*PaperRow, error) {
	status, err := domain.ParseStatus(raw)
	if err != nil {
		return nil, errors.ValidationWithDetails("Validation failed", []errors.FieldError{
			{Field: "status", Error: err.Error()},
		})
	}

	paper, err := s.store.SetPaperStatus(ctx, id, status)
	if err != nil {
		return nil, s.mapStoreError(err, id)
	}

	s.logger.Info("paper status changed", "paper_id", id, "status", status)
	return toRow(paper), nil
}

// AddTag attaches a tag to a paper, creating the tag on first use.
// Adding an already-present tag is a no-op.
func (s *PaperService) AddTag(ctx context.Context, id int64, rawTag string) (*PaperRow, error) {
	name := domain.NormalizeTagName(rawTag)
	if name == "" {
		return nil, errors.ValidationWithDetails("Validation failed", []errors.FieldError{
			{Field: "tag", Error: "must not be blank"},
		})
	}
	if len(name) > domain.MaxTagNameLen {
		return nil, errors.ValidationWithDetails("Validation failed", []errors.FieldError{
			{Field: "tag", Error: "must not exceed 64 characters"},
		})
	}

	paper, err := s.store.AddPaperTag(ctx, id, name)
	if err != nil {
		return nil, s.mapStoreError(err, id)
	}

	s.logger.Info("tag added to paper", "paper_id", id, "tag", name)
	return toRow(paper), nil
}

// RemoveTag detaches a tag from a paper. Removing a tag the paper never
// had succeeds silently.
func (s *PaperService) RemoveTag(ctx context.Context, id int64, rawTag string) error {
	name := domain.NormalizeTagName(rawTag)

	if _, err := s.store.RemovePaperTag(ctx, id, name); err != nil {
		return s.mapStoreError(err, id)
	}

	return nil
}

// Delete removes a paper and its tag associations. Tags themselves survive.
func (s *PaperService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeletePaper(ctx, id); err != nil {
		return s.mapStoreError(err, id)
	}

	s.logger.Info("paper deleted", "paper_id", id)
	return nil
}

// mapStoreError translates storage errors into domain errors.
func (s *PaperService) mapStoreError(err error, id int64) error {
	if errors.Is(err, store.ErrNotFound) {
		return errors.NotFoundf("Paper not found: %d", id)
	}
	return errors.Wrap(err, errors.CodeInternal, "storage operation failed")
}

// normalizeStatusFilter trims and uppercases a status filter value.
// An empty value means no filter.
func normalizeStatusFilter(raw string) (domain.Status, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	status, err := domain.ParseStatus(raw)
	if err != nil {
		return "", errors.ValidationWithDetails("Validation failed", []errors.FieldError{
			{Field: "status", Error: err.Error()},
		})
	}
	return status, nil
}

// normalizeTagFilter trims, lowercases, deduplicates, and drops blanks.
// An empty result means no tag filter.
func normalizeTagFilter(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		name := domain.NormalizeTagName(t)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// toRow converts a stored paper into its transport representation.
func toRow(p *domain.Paper) *PaperRow {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return &PaperRow{
		ID:        p.ID,
		Title:     p.Title,
		Authors:   p.Authors,
		Year:      p.PubYear,
		URL:       p.URL,
		CreatedAt: p.CreatedAt.UnixMilli(),
		Status:    string(p.Status),
		Tags:      tags,
	}
}
