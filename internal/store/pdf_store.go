package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/pdf-prints/internal/model"
	"github.com/nhle/pdf-prints/internal/query"
)

const pdfColumns = "id, name, created_at, due_date, status"

// Save inserts a new PDF (generating a UUID) or updates an existing one.
func (s *SQLStore) Save(ctx context.Context, p *model.PDF) error {
	if p.ID == "" {
		return s.insert(ctx, p)
	}
	return s.update(ctx, p)
}

func (s *SQLStore) insert(ctx context.Context, p *model.PDF) error {
	rec := *p
	rec.ID = uuid.New().String()
	rec.SetName(rec.Name)
	rec.ApplyDefaults(time.Now())

	_, err := s.q.ExecContext(ctx, s.q.Rebind(`
		INSERT INTO pdfs (id, name, created_at, due_date, status)
		VALUES (?, ?, ?, ?, ?)`),
		rec.ID, rec.Name, rec.CreatedAt.UTC(), dateArg(rec.DueDate), string(rec.Status),
	)
	if err != nil {
		return fmt.Errorf("creating pdf: %w", err)
	}

	*p = rec
	return nil
}

// update writes the mutable fields; created_at is never rewritten.
func (s *SQLStore) update(ctx context.Context, p *model.PDF) error {
	p.SetName(p.Name)
	p.SetStatus(p.Status)

	result, err := s.q.ExecContext(ctx, s.q.Rebind(`
		UPDATE pdfs SET name = ?, due_date = ?, status = ?
		WHERE id = ?`),
		p.Name, dateArg(p.DueDate), string(p.Status), p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating pdf %s: %w", p.ID, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("updating pdf %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

// FindByID retrieves a single PDF by ID.
func (s *SQLStore) FindByID(ctx context.Context, id string) (*model.PDF, error) {
	var p model.PDF
	err := sqlx.GetContext(ctx, s.q, &p,
		s.q.Rebind("SELECT "+pdfColumns+" FROM pdfs WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting pdf %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting pdf %s: %w", id, err)
	}
	return &p, nil
}

// FindPage retrieves the window of PDFs matching spec.
func (s *SQLStore) FindPage(ctx context.Context, spec query.Spec, page PageRequest) (Page, error) {
	items, err := s.selectPDFs(ctx, spec, page)
	if err != nil {
		return Page{}, err
	}
	return Page{Items: items, Offset: page.Offset, Limit: page.Limit}, nil
}

// FindAllBy retrieves a window of PDFs without filtering.
func (s *SQLStore) FindAllBy(ctx context.Context, page PageRequest) ([]model.PDF, error) {
	return s.selectPDFs(ctx, nil, page)
}

// Count returns the number of PDFs matching spec.
func (s *SQLStore) Count(ctx context.Context, spec query.Spec) (int, error) {
	q, args := buildPDFQuery(s.dialect, "SELECT COUNT(*)", spec, nil)

	var count int
	if err := sqlx.GetContext(ctx, s.q, &count, s.q.Rebind(q), args...); err != nil {
		return 0, fmt.Errorf("counting pdfs: %w", err)
	}
	return count, nil
}

func (s *SQLStore) selectPDFs(ctx context.Context, spec query.Spec, page PageRequest) ([]model.PDF, error) {
	q, args := buildPDFQuery(s.dialect, "SELECT "+pdfColumns, spec, &page)

	pdfs := []model.PDF{}
	if err := sqlx.SelectContext(ctx, s.q, &pdfs, s.q.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("querying pdfs: %w", err)
	}
	return pdfs, nil
}

// buildPDFQuery constructs the SQL query and args for spec. Ordering and
// paging are appended only when page is non-nil.
func buildPDFQuery(d dialect, selectClause string, spec query.Spec, page *PageRequest) (string, []any) {
	q := selectClause + " FROM pdfs"

	where, args := spec.WhereLower(d.lower)
	if where != "" {
		q += " WHERE " + where
	}

	if page == nil {
		return q, args
	}

	var terms []string
	for _, o := range sortOrders(*page) {
		direction := "ASC"
		if o.Desc {
			direction = "DESC"
		}
		terms = append(terms, o.Field+" "+direction)
	}
	// id keeps ordering stable across pages when sort keys tie.
	terms = append(terms, "id ASC")
	q += " ORDER BY " + strings.Join(terms, ", ")

	switch {
	case page.Limit > 0:
		q += fmt.Sprintf(" LIMIT %d", page.Limit)
	case page.Offset > 0:
		q += " LIMIT " + d.unboundedLimit
	}
	if page.Offset > 0 {
		q += fmt.Sprintf(" OFFSET %d", page.Offset)
	}

	return q, args
}

// dateArg converts an optional date into a driver argument.
func dateArg(d *model.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}
