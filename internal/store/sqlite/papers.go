package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/kouichiii/paper-manager/internal/domain"
	"github.com/kouichiii/paper-manager/internal/store"
)

// paperColumns is the ordered list of columns selected in paper queries.
// Must match the scan order in scanPaper.
const paperColumns = `id, title, authors, pub_year, url, created_at, status`

// scanPaper scans a sql.Row (or sql.Rows via its Scan method) into a domain.Paper.
// Tags are left nil; the caller loads them separately.
func scanPaper(scanner interface{ Scan(dest ...any) error }) (*domain.Paper, error) {
	var p domain.Paper

	var (
		authors   sql.NullString
		pubYear   sql.NullInt64
		url       sql.NullString
		createdAt string
		status    string
	)

	err := scanner.Scan(
		&p.ID,
		&p.Title,
		&authors,
		&pubYear,
		&url,
		&createdAt,
		&status,
	)
	if err != nil {
		return nil, err
	}

	p.Authors = authors.String
	if pubYear.Valid {
		year := int(pubYear.Int64)
		p.PubYear = &year
	}
	p.URL = url.String
	p.Status = domain.Status(status)

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// CreatePaper inserts a new paper and fills in the assigned id.
func (s *Store) CreatePaper(ctx context.Context, p *domain.Paper) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO papers (title, authors, pub_year, url, created_at, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.Title,
		nullString(p.Authors),
		nullInt(p.PubYear),
		nullString(p.URL),
		formatTime(p.CreatedAt),
		string(p.Status),
	)
	if err != nil {
		return fmt.Errorf("insert paper: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("paper id: %w", err)
	}
	p.ID = id

	if p.Tags == nil {
		p.Tags = []string{}
	}
	return nil
}

// GetPaper retrieves a paper with its sorted tag names.
// Returns store.ErrNotFound if the paper does not exist.
func (s *Store) GetPaper(ctx context.Context, id int64) (*domain.Paper, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+paperColumns+` FROM papers WHERE id = ?`, id)

	p, err := scanPaper(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	p.Tags, err = s.paperTagNames(ctx, id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// paperTagNames returns the paper's tag names ordered ascending.
func (s *Store) paperTagNames(ctx context.Context, paperID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.name FROM tags t
		JOIN paper_tags pt ON pt.tag_id = t.id
		WHERE pt.paper_id = ?
		ORDER BY t.name ASC`, paperID)
	if err != nil {
		return nil, fmt.Errorf("query paper tags: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan tag name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return names, nil
}

// UpdatePaper applies the non-nil fields of upd and returns the updated paper.
// Status, tags, created_at and id are untouched.
// Returns store.ErrNotFound if the paper does not exist.
func (s *Store) UpdatePaper(ctx context.Context, id int64, upd store.PaperUpdate) (*domain.Paper, error) {
	existing, err := s.GetPaper(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		existing.Title = *upd.Title
	}
	if upd.Authors != nil {
		existing.Authors = *upd.Authors
	}
	if upd.PubYear != nil {
		existing.PubYear = upd.PubYear
	}
	if upd.URL != nil {
		existing.URL = *upd.URL
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE papers SET title = ?, authors = ?, pub_year = ?, url = ?
		WHERE id = ?`,
		existing.Title,
		nullString(existing.Authors),
		nullInt(existing.PubYear),
		nullString(existing.URL),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("update paper: %w", err)
	}
	return existing, nil
}

// SetPaperStatus replaces the paper's status.
// Returns store.ErrNotFound if the paper does not exist.
func (s *Store) SetPaperStatus(ctx context.Context, id int64, status domain.Status) (*domain.Paper, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE papers SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetPaper(ctx, id)
}

// DeletePaper removes the paper; its paper_tags rows go with it via FK
// cascade. The tags themselves stay.
// Returns store.ErrNotFound when no row was deleted.
func (s *Store) DeletePaper(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM papers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete paper: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// searchWhere builds the shared WHERE clause (and join) for SearchPapers and
// CountPapers. The predicate mirrors the search contract: optional
// case-insensitive substring on title OR authors, optional exact status,
// optional tag membership (OR across tags), everything combined with AND.
func searchWhere(filter store.PaperFilter) (join, where string, args []any) {
	var conds []string

	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		conds = append(conds, `(lower(p.title) LIKE ? OR lower(p.authors) LIKE ?)`)
		pattern := "%" + q + "%"
		args = append(args, pattern, pattern)
	}

	if filter.Status != "" {
		conds = append(conds, `p.status = ?`)
		args = append(args, string(filter.Status))
	}

	if len(filter.Tags) > 0 {
		join = `
		LEFT JOIN paper_tags pt ON pt.paper_id = p.id
		LEFT JOIN tags t ON t.id = pt.tag_id`
		placeholders := strings.Repeat("?,", len(filter.Tags))
		conds = append(conds, `t.name IN (`+placeholders[:len(placeholders)-1]+`)`)
		for _, name := range filter.Tags {
			args = append(args, name)
		}
	}

	if len(conds) > 0 {
		where = ` WHERE ` + strings.Join(conds, " AND ")
	}
	return join, where, args
}

// SearchPapers returns one page of matching papers ordered by id descending.
func (s *Store) SearchPapers(ctx context.Context, filter store.PaperFilter, page store.PageParams) ([]*domain.Paper, error) {
	join, where, args := searchWhere(filter)

	query := `SELECT DISTINCT p.` + strings.ReplaceAll(paperColumns, ", ", ", p.") +
		` FROM papers p` + join + where +
		` ORDER BY p.id DESC LIMIT ? OFFSET ?`
	args = append(args, page.Size, page.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search papers: %w", err)
	}
	defer rows.Close()

	papers := []*domain.Paper{}
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	for _, p := range papers {
		p.Tags, err = s.paperTagNames(ctx, p.ID)
		if err != nil {
			return nil, err
		}
	}
	return papers, nil
}

// CountPapers counts papers matching the same predicate as SearchPapers.
func (s *Store) CountPapers(ctx context.Context, filter store.PaperFilter) (int64, error) {
	join, where, args := searchWhere(filter)

	var total int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT p.id) FROM papers p`+join+where, args...,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count papers: %w", err)
	}
	return total, nil
}
