package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/pdf-prints/internal/model"
	"github.com/nhle/pdf-prints/internal/query"
)

// MemoryStore is a Store kept entirely in process memory. It evaluates
// query.Spec predicates directly instead of rendering SQL.
type MemoryStore struct {
	mu   sync.Mutex
	pdfs map[string]model.PDF
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pdfs: make(map[string]model.PDF)}
}

// Save inserts or updates p.
func (m *MemoryStore) Save(ctx context.Context, p *model.PDF) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save(p)
}

func (m *MemoryStore) save(p *model.PDF) error {
	if p.ID == "" {
		rec := *p
		rec.ID = uuid.New().String()
		rec.SetName(rec.Name)
		rec.ApplyDefaults(time.Now())
		rec.CreatedAt = rec.CreatedAt.UTC()
		m.pdfs[rec.ID] = clonePDF(rec)
		*p = rec
		return nil
	}

	existing, ok := m.pdfs[p.ID]
	if !ok {
		return fmt.Errorf("updating pdf %s: %w", p.ID, ErrNotFound)
	}
	p.SetName(p.Name)
	p.SetStatus(p.Status)
	existing.Name = p.Name
	existing.DueDate = p.DueDate
	existing.Status = p.Status
	m.pdfs[p.ID] = clonePDF(existing)
	p.CreatedAt = existing.CreatedAt
	return nil
}

// FindByID retrieves a single PDF by ID.
func (m *MemoryStore) FindByID(ctx context.Context, id string) (*model.PDF, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findByID(id)
}

func (m *MemoryStore) findByID(id string) (*model.PDF, error) {
	p, ok := m.pdfs[id]
	if !ok {
		return nil, fmt.Errorf("getting pdf %s: %w", id, ErrNotFound)
	}
	out := clonePDF(p)
	return &out, nil
}

// FindPage retrieves the window of PDFs matching spec.
func (m *MemoryStore) FindPage(ctx context.Context, spec query.Spec, page PageRequest) (Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Page{Items: m.selectPDFs(spec, page), Offset: page.Offset, Limit: page.Limit}, nil
}

// FindAllBy retrieves a window of PDFs without filtering.
func (m *MemoryStore) FindAllBy(ctx context.Context, page PageRequest) ([]model.PDF, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selectPDFs(nil, page), nil
}

// Count returns the number of PDFs matching spec.
func (m *MemoryStore) Count(ctx context.Context, spec query.Spec) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count(spec), nil
}

func (m *MemoryStore) count(spec query.Spec) int {
	n := 0
	for _, p := range m.pdfs {
		if spec.Matches(p) {
			n++
		}
	}
	return n
}

// InTx runs fn while holding the store lock. A failing fn leaves the
// store as it was before the call.
func (m *MemoryStore) InTx(ctx context.Context, fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make(map[string]model.PDF, len(m.pdfs))
	for id, p := range m.pdfs {
		snapshot[id] = p
	}

	if err := fn(memTx{m}); err != nil {
		m.pdfs = snapshot
		return err
	}
	return nil
}

func (m *MemoryStore) selectPDFs(spec query.Spec, page PageRequest) []model.PDF {
	matched := []model.PDF{}
	for _, p := range m.pdfs {
		if spec.Matches(p) {
			matched = append(matched, clonePDF(p))
		}
	}

	orders := sortOrders(page)
	slices.SortFunc(matched, func(a, b model.PDF) int {
		for _, o := range orders {
			c := comparePDF(a, b, o.Field)
			if o.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if page.Offset >= len(matched) {
		return []model.PDF{}
	}
	matched = matched[page.Offset:]
	if page.Limit > 0 && page.Limit < len(matched) {
		matched = matched[:page.Limit]
	}
	return matched
}

// comparePDF orders a and b by field. Missing due dates sort first,
// as they do in SQLite.
func comparePDF(a, b model.PDF, field string) int {
	switch field {
	case SortName:
		return cmp.Compare(a.Name, b.Name)
	case SortStatus:
		return cmp.Compare(a.Status, b.Status)
	case SortCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortDueDate:
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return 0
		case a.DueDate == nil:
			return -1
		case b.DueDate == nil:
			return 1
		case a.DueDate.Before(*b.DueDate):
			return -1
		case a.DueDate.After(*b.DueDate):
			return 1
		}
	}
	return 0
}

func clonePDF(p model.PDF) model.PDF {
	if p.DueDate != nil {
		d := *p.DueDate
		p.DueDate = &d
	}
	return p
}

// memTx is the Store view handed to InTx callbacks; the lock is already held.
type memTx struct {
	m *MemoryStore
}

func (t memTx) Save(ctx context.Context, p *model.PDF) error {
	return t.m.save(p)
}

func (t memTx) FindByID(ctx context.Context, id string) (*model.PDF, error) {
	return t.m.findByID(id)
}

func (t memTx) FindPage(ctx context.Context, spec query.Spec, page PageRequest) (Page, error) {
	return Page{Items: t.m.selectPDFs(spec, page), Offset: page.Offset, Limit: page.Limit}, nil
}

func (t memTx) FindAllBy(ctx context.Context, page PageRequest) ([]model.PDF, error) {
	return t.m.selectPDFs(nil, page), nil
}

func (t memTx) Count(ctx context.Context, spec query.Spec) (int, error) {
	return t.m.count(spec), nil
}

func (t memTx) InTx(ctx context.Context, fn func(Store) error) error {
	return fn(t)
}
