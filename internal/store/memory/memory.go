// Package memory provides an in-memory implementation of the store port.
//
// It keeps papers in a map keyed by id with a sequence counter for id
// assignment, mirroring the sqlite implementation's semantics (including
// never reusing ids). Intended for tests; a single mutex stands in for the
// database's transactional guarantees.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/kouichiii/paper-manager/internal/domain"
	"github.com/kouichiii/paper-manager/internal/store"
)

type paperRec struct {
	paper domain.Paper
	tags  map[string]struct{}
}

// Store is an in-memory store.Store implementation.
type Store struct {
	mu       sync.Mutex
	papers   map[int64]*paperRec
	tags     map[string]*domain.Tag
	paperSeq int64
	tagSeq   int64
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		papers: make(map[int64]*paperRec),
		tags:   make(map[string]*domain.Tag),
	}
}

var _ store.Store = (*Store)(nil)

// snapshot returns a copy of the record's paper with sorted tag names.
func (r *paperRec) snapshot() *domain.Paper {
	p := r.paper
	p.Tags = make([]string, 0, len(r.tags))
	for name := range r.tags {
		p.Tags = append(p.Tags, name)
	}
	sort.Strings(p.Tags)
	return &p
}

// CreatePaper inserts a new paper and assigns the next id in sequence.
func (s *Store) CreatePaper(_ context.Context, p *domain.Paper) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.paperSeq++
	p.ID = s.paperSeq
	s.papers[p.ID] = &paperRec{paper: *p, tags: make(map[string]struct{})}

	if p.Tags == nil {
		p.Tags = []string{}
	}
	return nil
}

// GetPaper returns the paper or store.ErrNotFound.
func (s *Store) GetPaper(_ context.Context, id int64) (*domain.Paper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.papers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return rec.snapshot(), nil
}

// UpdatePaper applies the non-nil fields of upd.
func (s *Store) UpdatePaper(_ context.Context, id int64, upd store.PaperUpdate) (*domain.Paper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.papers[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	if upd.Title != nil {
		rec.paper.Title = *upd.Title
	}
	if upd.Authors != nil {
		rec.paper.Authors = *upd.Authors
	}
	if upd.PubYear != nil {
		rec.paper.PubYear = upd.PubYear
	}
	if upd.URL != nil {
		rec.paper.URL = *upd.URL
	}
	return rec.snapshot(), nil
}

// SetPaperStatus replaces the paper's status.
func (s *Store) SetPaperStatus(_ context.Context, id int64, status domain.Status) (*domain.Paper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.papers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	rec.paper.Status = status
	return rec.snapshot(), nil
}

// DeletePaper removes the paper and its associations; tags stay.
func (s *Store) DeletePaper(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.papers[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.papers, id)
	return nil
}

// matches reports whether the record satisfies the filter.
func (r *paperRec) matches(filter store.PaperFilter) bool {
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		title := strings.ToLower(r.paper.Title)
		authors := strings.ToLower(r.paper.Authors)
		if !strings.Contains(title, q) && !strings.Contains(authors, q) {
			return false
		}
	}

	if filter.Status != "" && r.paper.Status != filter.Status {
		return false
	}

	if len(filter.Tags) > 0 {
		found := false
		for _, name := range filter.Tags {
			if _, ok := r.tags[name]; ok {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// matching returns the matching records sorted by id descending.
func (s *Store) matching(filter store.PaperFilter) []*paperRec {
	recs := make([]*paperRec, 0, len(s.papers))
	for _, rec := range s.papers {
		if rec.matches(filter) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].paper.ID > recs[j].paper.ID })
	return recs
}

// SearchPapers returns one page of matching papers, newest first.
func (s *Store) SearchPapers(_ context.Context, filter store.PaperFilter, page store.PageParams) ([]*domain.Paper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := s.matching(filter)

	start := page.Offset()
	if start >= len(recs) {
		return []*domain.Paper{}, nil
	}
	end := start + page.Size
	if end > len(recs) {
		end = len(recs)
	}

	papers := make([]*domain.Paper, 0, end-start)
	for _, rec := range recs[start:end] {
		papers = append(papers, rec.snapshot())
	}
	return papers, nil
}

// CountPapers counts papers matching the filter.
func (s *Store) CountPapers(_ context.Context, filter store.PaperFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.matching(filter))), nil
}

// AddPaperTag attaches the named tag, creating it on first use.
func (s *Store) AddPaperTag(_ context.Context, paperID int64, name string) (*domain.Paper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.papers[paperID]
	if !ok {
		return nil, store.ErrNotFound
	}

	s.findOrCreateTagLocked(name)
	rec.tags[name] = struct{}{}
	return rec.snapshot(), nil
}

// RemovePaperTag detaches the named tag if attached.
func (s *Store) RemovePaperTag(_ context.Context, paperID int64, name string) (*domain.Paper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.papers[paperID]
	if !ok {
		return nil, store.ErrNotFound
	}
	delete(rec.tags, name)
	return rec.snapshot(), nil
}

// FindOrCreateTag returns the tag with the given name, creating it when absent.
func (s *Store) FindOrCreateTag(_ context.Context, name string) (*domain.Tag, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tags[name]; ok {
		return t, false, nil
	}
	return s.findOrCreateTagLocked(name), true, nil
}

// GetTagByName returns the tag or store.ErrNotFound.
func (s *Store) GetTagByName(_ context.Context, name string) (*domain.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tags[name]
	if !ok {
		return nil, store.ErrNotFound
	}
	return t, nil
}

// findOrCreateTagLocked is the caller-holds-lock form of FindOrCreateTag.
func (s *Store) findOrCreateTagLocked(name string) *domain.Tag {
	if t, ok := s.tags[name]; ok {
		return t
	}
	s.tagSeq++
	t := &domain.Tag{ID: s.tagSeq, Name: name}
	s.tags[name] = t
	return t
}
