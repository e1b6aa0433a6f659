// Package service orchestrates PDF print job records: it applies defaults,
// wraps store calls in transactions and announces changes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nhle/pdf-prints/internal/model"
	"github.com/nhle/pdf-prints/internal/notify"
	"github.com/nhle/pdf-prints/internal/query"
	"github.com/nhle/pdf-prints/internal/store"
)

// ErrNotFound is returned by UpdateStatus when the id does not resolve.
var ErrNotFound = errors.New("pdf not found")

// Service exposes the operations of the PDF grid.
type Service struct {
	store    store.Store
	notifier notify.Notifier
	nowFunc  func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now as the source of creation timestamps and of
// "today" for due-date filters.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.nowFunc = now }
}

// WithNotifier publishes change events through n.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// New creates a Service backed by st.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:    st,
		notifier: notify.Nop{},
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current calendar date in the local time zone.
func (s *Service) Today() model.Date {
	return model.DateOf(s.nowFunc())
}

// CreatePDF persists a new record named name. A nil status means PENDING.
func (s *Service) CreatePDF(ctx context.Context, name string, dueDate *model.Date, status *model.Status) (*model.PDF, error) {
	pdf := model.NewPDF(name, s.nowFunc(), dueDate)
	pdf.SetStatus(model.StatusOrDefault(status))

	err := s.store.InTx(ctx, func(tx store.Store) error {
		return tx.Save(ctx, &pdf)
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("pdf created", "id", pdf.ID, "status", pdf.Status)
	s.publish(ctx, notify.EventCreated, pdf)
	return &pdf, nil
}

// UpdateStatus sets the status of the record with the given id and returns
// the updated record. A nil status means PENDING.
func (s *Service) UpdateStatus(ctx context.Context, id string, status *model.Status) (*model.PDF, error) {
	var updated *model.PDF
	err := s.store.InTx(ctx, func(tx store.Store) error {
		pdf, err := tx.FindByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err != nil {
			return err
		}

		pdf.SetStatus(model.StatusOrDefault(status))
		if err := tx.Save(ctx, pdf); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			return err
		}
		updated = pdf
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("pdf status updated", "id", updated.ID, "status", updated.Status)
	s.publish(ctx, notify.EventStatusUpdated, *updated)
	return updated, nil
}

// Get returns the record with the given id.
func (s *Service) Get(ctx context.Context, id string) (*model.PDF, error) {
	pdf, err := s.store.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return pdf, err
}

// List returns one page of records matching c.
func (s *Service) List(ctx context.Context, c query.Criteria, page store.PageRequest) (store.Page, error) {
	var out store.Page
	err := s.store.InTx(ctx, func(tx store.Store) error {
		var err error
		out, err = tx.FindPage(ctx, query.Build(c, s.Today()), page)
		return err
	})
	return out, err
}

// Count returns the number of records matching c, ignoring pagination.
func (s *Service) Count(ctx context.Context, c query.Criteria) (int, error) {
	var n int
	err := s.store.InTx(ctx, func(tx store.Store) error {
		var err error
		n, err = tx.Count(ctx, query.Build(c, s.Today()))
		return err
	})
	return n, err
}

// publish announces a change; failures are logged and never returned.
func (s *Service) publish(ctx context.Context, typ notify.EventType, pdf model.PDF) {
	e := notify.Event{Type: typ, ID: pdf.ID, Status: pdf.Status, At: s.nowFunc().UTC()}
	if err := s.notifier.Publish(ctx, e); err != nil {
		slog.Warn("publishing pdf event failed", "type", typ, "id", pdf.ID, "error", err)
	}
}
