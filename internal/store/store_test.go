package store_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/pdf-prints/internal/model"
	"github.com/nhle/pdf-prints/internal/query"
	"github.com/nhle/pdf-prints/internal/store"
	"github.com/nhle/pdf-prints/tests/testutil"
)

var (
	base  = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	today = model.DateOf(base)
)

// backends returns a constructor per Store implementation under test.
func backends(t *testing.T) map[string]func(t *testing.T) store.Store {
	t.Helper()

	out := map[string]func(t *testing.T) store.Store{
		"sqlite": func(t *testing.T) store.Store { return testutil.NewTestStore(t) },
		"memory": func(t *testing.T) store.Store { return store.NewMemoryStore() },
	}

	if url := os.Getenv("PDFPRINTS_TEST_POSTGRES_URL"); url != "" {
		out["postgres"] = func(t *testing.T) store.Store {
			ctx := context.Background()
			s, err := store.NewPostgresStore(ctx, url)
			require.NoError(t, err)

			db, err := sqlx.ConnectContext(ctx, "pgx", url)
			require.NoError(t, err)
			_, err = db.ExecContext(ctx, "TRUNCATE pdfs")
			require.NoError(t, err)

			t.Cleanup(func() {
				_, _ = db.ExecContext(ctx, "TRUNCATE pdfs")
				db.Close()
				s.Close()
			})
			return s
		}
	}
	return out
}

func forEachBackend(t *testing.T, fn func(t *testing.T, s store.Store)) {
	for name, newStore := range backends(t) {
		t.Run(name, func(t *testing.T) {
			fn(t, newStore(t))
		})
	}
}

func seed(t *testing.T, s store.Store, name string, minutes int, due *model.Date, status model.Status) model.PDF {
	t.Helper()

	p := model.NewPDF(name, base.Add(time.Duration(minutes)*time.Minute), due)
	p.Status = status
	require.NoError(t, s.Save(context.Background(), &p))
	return p
}

func names(pdfs []model.PDF) []string {
	out := make([]string, len(pdfs))
	for i, p := range pdfs {
		out[i] = p.Name
	}
	return out
}

func TestSaveAndFindByID(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		due := today.AddDays(3)

		p := model.NewPDF(strings.Repeat("n", 120), base, &due)
		require.NoError(t, s.Save(ctx, &p))
		require.NotEmpty(t, p.ID)

		got, err := s.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
		assert.Len(t, got.Name, model.MaxNameLength)
		assert.Equal(t, model.StatusPending, got.Status)
		require.NotNil(t, got.DueDate)
		assert.Equal(t, due, *got.DueDate)
		assert.WithinDuration(t, base, got.CreatedAt, time.Millisecond)
	})
}

func TestSaveWithoutDueDate(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		p := seed(t, s, "no due", 0, nil, model.StatusSent)

		got, err := s.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Nil(t, got.DueDate)
		assert.Equal(t, model.StatusSent, got.Status)
	})
}

func TestSaveUpdatesMutableFields(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		p := seed(t, s, "draft", 0, nil, model.StatusPending)

		due := today
		p.Status = model.StatusPrinted
		p.DueDate = &due
		p.CreatedAt = base.Add(24 * time.Hour)
		require.NoError(t, s.Save(ctx, &p))

		got, err := s.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusPrinted, got.Status)
		require.NotNil(t, got.DueDate)
		assert.Equal(t, today, *got.DueDate)
		assert.WithinDuration(t, base, got.CreatedAt, time.Millisecond, "created_at is immutable")
	})
}

func TestUnknownIDIsNotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()

		_, err := s.FindByID(ctx, "does-not-exist")
		assert.True(t, errors.Is(err, store.ErrNotFound))

		p := model.PDF{ID: "does-not-exist", Name: "ghost", Status: model.StatusSent}
		err = s.Save(ctx, &p)
		assert.True(t, errors.Is(err, store.ErrNotFound))

		n, err := s.Count(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestFindPageDefaultOrderAndPaging(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		for i := 0; i < 7; i++ {
			seed(t, s, fmt.Sprintf("pdf-%d", i), i, nil, model.StatusPending)
		}

		var all []string
		for offset := 0; offset < 10; offset += 3 {
			page, err := s.FindPage(ctx, nil, store.PageRequest{Offset: offset, Limit: 3})
			require.NoError(t, err)
			assert.Equal(t, offset, page.Offset)
			assert.Equal(t, 3, page.Limit)
			all = append(all, names(page.Items)...)
		}

		assert.Equal(t, []string{"pdf-6", "pdf-5", "pdf-4", "pdf-3", "pdf-2", "pdf-1", "pdf-0"}, all)
	})
}

func TestFindPageOffsetWithoutLimit(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		for i := 0; i < 4; i++ {
			seed(t, s, fmt.Sprintf("pdf-%d", i), i, nil, model.StatusPending)
		}

		page, err := s.FindPage(ctx, nil, store.PageRequest{Offset: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"pdf-1", "pdf-0"}, names(page.Items))

		page, err = s.FindPage(ctx, nil, store.PageRequest{Offset: 10, Limit: 5})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
	})
}

func TestFindPageSort(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		d1, d2, d3 := today.AddDays(1), today.AddDays(2), today.AddDays(3)
		seed(t, s, "bravo", 0, &d3, model.StatusPending)
		seed(t, s, "alpha", 1, &d1, model.StatusPending)
		seed(t, s, "charlie", 2, &d2, model.StatusPending)

		page, err := s.FindPage(ctx, nil, store.PageRequest{
			Sort: []store.SortOrder{{Field: store.SortName}},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "bravo", "charlie"}, names(page.Items))

		page, err = s.FindPage(ctx, nil, store.PageRequest{
			Sort: []store.SortOrder{{Field: store.SortDueDate, Desc: true}},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"bravo", "charlie", "alpha"}, names(page.Items))

		// Unknown sort fields fall back to created_at descending.
		page, err = s.FindPage(ctx, nil, store.PageRequest{
			Sort: []store.SortOrder{{Field: "name; DROP TABLE pdfs"}},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"charlie", "alpha", "bravo"}, names(page.Items))
	})
}

func TestFindPageFiltersAndCount(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		yesterday, tomorrow := today.AddDays(-1), today.AddDays(1)
		day := today

		seed(t, s, "Invoice2024", 0, &yesterday, model.StatusPending)
		seed(t, s, "Voice memo", 1, &day, model.StatusPrinted)
		seed(t, s, "Report A", 2, &tomorrow, model.StatusPrinted)
		seed(t, s, "Report B", 3, nil, model.StatusSent)
		seed(t, s, "50% off flyer", 4, nil, model.StatusCanceled)
		seed(t, s, "RELATÓRIO ÉCOLE", 5, nil, model.StatusSent)

		printed := model.StatusPrinted
		tests := []struct {
			name     string
			criteria query.Criteria
			want     []string
		}{
			{name: "all", criteria: query.Criteria{}, want: []string{"RELATÓRIO ÉCOLE", "50% off flyer", "Report B", "Report A", "Voice memo", "Invoice2024"}},
			{name: "name", criteria: query.Criteria{Name: "voice"}, want: []string{"Voice memo", "Invoice2024"}},
			{name: "non-ascii name", criteria: query.Criteria{Name: "relatório é"}, want: []string{"RELATÓRIO ÉCOLE"}},
			{name: "literal percent", criteria: query.Criteria{Name: "0%"}, want: []string{"50% off flyer"}},
			{name: "status", criteria: query.Criteria{Status: &printed}, want: []string{"Report A", "Voice memo"}},
			{name: "overdue", criteria: query.Criteria{Due: model.DueOverdue}, want: []string{"Invoice2024"}},
			{name: "today", criteria: query.Criteria{Due: model.DueToday}, want: []string{"Voice memo"}},
			{name: "upcoming", criteria: query.Criteria{Due: model.DueUpcoming}, want: []string{"Report A"}},
			{name: "no due date", criteria: query.Criteria{Due: model.DueNone}, want: []string{"RELATÓRIO ÉCOLE", "50% off flyer", "Report B"}},
			{name: "combined", criteria: query.Criteria{Name: "report", Status: &printed, Due: model.DueUpcoming}, want: []string{"Report A"}},
			{name: "none match", criteria: query.Criteria{Name: "zzz"}, want: []string{}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				spec := query.Build(tt.criteria, today)

				page, err := s.FindPage(ctx, spec, store.PageRequest{})
				require.NoError(t, err)
				assert.Equal(t, tt.want, names(page.Items))

				n, err := s.Count(ctx, spec)
				require.NoError(t, err)
				assert.Equal(t, len(tt.want), n)
			})
		}
	})
}

func TestFindAllByIgnoresFilters(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		for i := 0; i < 5; i++ {
			seed(t, s, fmt.Sprintf("pdf-%d", i), i, nil, model.StatusPending)
		}

		got, err := s.FindAllBy(ctx, store.PageRequest{Offset: 1, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"pdf-3", "pdf-2"}, names(got))
	})
}

func TestInTx(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s store.Store) {
		ctx := context.Background()
		boom := errors.New("boom")

		err := s.InTx(ctx, func(tx store.Store) error {
			p := model.NewPDF("rolled back", base, nil)
			if err := tx.Save(ctx, &p); err != nil {
				return err
			}
			n, err := tx.Count(ctx, nil)
			require.NoError(t, err)
			assert.Equal(t, 1, n)
			return boom
		})
		assert.ErrorIs(t, err, boom)

		n, err := s.Count(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, n)

		var id string
		err = s.InTx(ctx, func(tx store.Store) error {
			p := model.NewPDF("committed", base, nil)
			if err := tx.Save(ctx, &p); err != nil {
				return err
			}
			id = p.ID
			// Nested transactions join the outer one.
			return tx.InTx(ctx, func(inner store.Store) error {
				_, err := inner.FindByID(ctx, id)
				return err
			})
		})
		require.NoError(t, err)

		got, err := s.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "committed", got.Name)
	})
}

func TestSchemaVersion(t *testing.T) {
	s := testutil.NewTestStore(t)

	v, err := s.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, "sqlite", s.Dialect())
}
