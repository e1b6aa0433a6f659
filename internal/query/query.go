// Package query composes the optional filters of the PDF grid into a single
// conjunction usable both as SQL and as an in-process predicate.
package query

import (
	"strings"

	"github.com/nhle/pdf-prints/internal/model"
)

// Criteria holds the raw filter state of a listing request.
type Criteria struct {
	// Name is matched as a case-insensitive substring; blank disables it.
	Name string

	// Due selects a due-date bucket; empty behaves like model.DueAll.
	Due model.DueFilter

	// Status restricts results to one status when non-nil.
	Status *model.Status
}

// Predicate is one condition of a Spec. Clause uses ? placeholders and
// references the columns of the pdfs table. A clause that lowercases a
// column writes lowerFunc in place of the SQL function name.
type Predicate struct {
	Clause string
	Args   []any
	Match  func(model.PDF) bool
}

// Spec is a conjunction of predicates. The empty Spec matches every record.
type Spec []Predicate

// Build composes the predicates selected by c. today is the date the due
// buckets are evaluated against.
func Build(c Criteria, today model.Date) Spec {
	var spec Spec

	if q := strings.TrimSpace(c.Name); q != "" {
		spec = append(spec, nameContains(strings.ToLower(q)))
	}

	if c.Status != nil {
		spec = append(spec, statusEquals(*c.Status))
	}

	if p, ok := dueIn(c.Due, today); ok {
		spec = append(spec, p)
	}

	return spec
}

// Matches reports whether p satisfies every predicate in s.
func (s Spec) Matches(p model.PDF) bool {
	for _, pred := range s {
		if !pred.Match(p) {
			return false
		}
	}
	return true
}

// lowerFunc marks where the lowercasing function goes in a clause.
const lowerFunc = "{lower}"

// Where renders s as a SQL condition joined with AND, along with its
// arguments, lowercasing with the standard LOWER function. It returns an
// empty string when s has no predicates.
func (s Spec) Where() (string, []any) {
	return s.WhereLower("LOWER")
}

// WhereLower is Where with lower as the SQL function used for
// case-insensitive comparisons.
func (s Spec) WhereLower(lower string) (string, []any) {
	if len(s) == 0 {
		return "", nil
	}
	clauses := make([]string, len(s))
	var args []any
	for i, pred := range s {
		clauses[i] = strings.ReplaceAll(pred.Clause, lowerFunc, lower)
		args = append(args, pred.Args...)
	}
	return strings.Join(clauses, " AND "), args
}

func nameContains(lowered string) Predicate {
	return Predicate{
		Clause: lowerFunc + `(name) LIKE ? ESCAPE '\'`,
		Args:   []any{"%" + escapeLike(lowered) + "%"},
		Match: func(p model.PDF) bool {
			return strings.Contains(strings.ToLower(p.Name), lowered)
		},
	}
}

func statusEquals(status model.Status) Predicate {
	return Predicate{
		Clause: "status = ?",
		Args:   []any{string(status)},
		Match: func(p model.PDF) bool {
			return p.Status == status
		},
	}
}

func dueIn(filter model.DueFilter, today model.Date) (Predicate, bool) {
	day := today.String()
	switch filter {
	case model.DueNone:
		return Predicate{
			Clause: "due_date IS NULL",
			Match:  func(p model.PDF) bool { return p.DueDate == nil },
		}, true
	case model.DueOverdue:
		return Predicate{
			Clause: "due_date < ?",
			Args:   []any{day},
			Match:  func(p model.PDF) bool { return p.DueDate != nil && p.DueDate.Before(today) },
		}, true
	case model.DueToday:
		return Predicate{
			Clause: "due_date = ?",
			Args:   []any{day},
			Match:  func(p model.PDF) bool { return p.DueDate != nil && *p.DueDate == today },
		}, true
	case model.DueUpcoming:
		return Predicate{
			Clause: "due_date > ?",
			Args:   []any{day},
			Match:  func(p model.PDF) bool { return p.DueDate != nil && p.DueDate.After(today) },
		}, true
	default:
		return Predicate{}, false
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in user input match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
