package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/pdf-prints/internal/model"
)

var today = model.Date{Year: 2024, Month: time.March, Day: 10}

func pdfDue(name string, due *model.Date, status model.Status) model.PDF {
	return model.PDF{ID: name, Name: name, DueDate: due, Status: status}
}

func TestBuildEmptyMatchesEverything(t *testing.T) {
	spec := Build(Criteria{Name: "   ", Due: model.DueAll}, today)

	assert.Empty(t, spec)
	where, args := spec.Where()
	assert.Empty(t, where)
	assert.Nil(t, args)
	assert.True(t, spec.Matches(pdfDue("anything", nil, model.StatusSent)))
}

func TestBuildNameIsCaseInsensitiveSubstring(t *testing.T) {
	spec := Build(Criteria{Name: "  VOICE "}, today)

	assert.True(t, spec.Matches(pdfDue("Invoice2024", nil, model.StatusPending)))
	assert.False(t, spec.Matches(pdfDue("Receipt", nil, model.StatusPending)))

	where, args := spec.Where()
	assert.Equal(t, `LOWER(name) LIKE ? ESCAPE '\'`, where)
	assert.Equal(t, []any{"%voice%"}, args)

	where, _ = spec.WhereLower("unicode_lower")
	assert.Equal(t, `unicode_lower(name) LIKE ? ESCAPE '\'`, where)
}

func TestBuildNameFoldsNonASCII(t *testing.T) {
	spec := Build(Criteria{Name: "RELATÓRIO"}, today)

	assert.True(t, spec.Matches(pdfDue("Relatório École", nil, model.StatusPending)))

	_, args := spec.WhereLower("unicode_lower")
	assert.Equal(t, []any{"%relatório%"}, args)
}

func TestBuildNameEscapesWildcards(t *testing.T) {
	spec := Build(Criteria{Name: `50%_off\`}, today)

	_, args := spec.Where()
	assert.Equal(t, []any{`%50\%\_off\\%`}, args)

	assert.True(t, spec.Matches(pdfDue(`Promo 50%_off\ flyer`, nil, model.StatusPending)))
	assert.False(t, spec.Matches(pdfDue("Promo 50 off", nil, model.StatusPending)))
}

func TestBuildStatus(t *testing.T) {
	printed := model.StatusPrinted
	spec := Build(Criteria{Status: &printed}, today)

	assert.True(t, spec.Matches(pdfDue("a", nil, model.StatusPrinted)))
	assert.False(t, spec.Matches(pdfDue("a", nil, model.StatusPending)))

	where, args := spec.Where()
	assert.Equal(t, "status = ?", where)
	assert.Equal(t, []any{"PRINTED"}, args)
}

func TestBuildDueBuckets(t *testing.T) {
	yesterday := today.AddDays(-1)
	tomorrow := today.AddDays(1)
	day := today

	pdfs := map[string]model.PDF{
		"none":     pdfDue("none", nil, model.StatusPending),
		"overdue":  pdfDue("overdue", &yesterday, model.StatusPending),
		"today":    pdfDue("today", &day, model.StatusPending),
		"upcoming": pdfDue("upcoming", &tomorrow, model.StatusPending),
	}

	tests := []struct {
		filter model.DueFilter
		clause string
		want   []string
	}{
		{filter: model.DueNone, clause: "due_date IS NULL", want: []string{"none"}},
		{filter: model.DueOverdue, clause: "due_date < ?", want: []string{"overdue"}},
		{filter: model.DueToday, clause: "due_date = ?", want: []string{"today"}},
		{filter: model.DueUpcoming, clause: "due_date > ?", want: []string{"upcoming"}},
		{filter: model.DueAll, want: []string{"none", "overdue", "today", "upcoming"}},
		{filter: "", want: []string{"none", "overdue", "today", "upcoming"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			spec := Build(Criteria{Due: tt.filter}, today)

			where, args := spec.Where()
			assert.Equal(t, tt.clause, where)
			if tt.clause != "" && tt.filter != model.DueNone {
				assert.Equal(t, []any{"2024-03-10"}, args)
			}

			var got []string
			for _, name := range []string{"none", "overdue", "today", "upcoming"} {
				if spec.Matches(pdfs[name]) {
					got = append(got, name)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildCombinesWithAnd(t *testing.T) {
	sent := model.StatusSent
	yesterday := today.AddDays(-1)
	spec := Build(Criteria{Name: "report", Due: model.DueOverdue, Status: &sent}, today)

	where, args := spec.Where()
	assert.Equal(t, `LOWER(name) LIKE ? ESCAPE '\' AND status = ? AND due_date < ?`, where)
	assert.Equal(t, []any{"%report%", "SENT", "2024-03-10"}, args)

	assert.True(t, spec.Matches(pdfDue("Weekly Report", &yesterday, model.StatusSent)))
	assert.False(t, spec.Matches(pdfDue("Weekly Report", &yesterday, model.StatusPending)))
	assert.False(t, spec.Matches(pdfDue("Weekly Report", nil, model.StatusSent)))
	assert.False(t, spec.Matches(pdfDue("Invoice", &yesterday, model.StatusSent)))
}
