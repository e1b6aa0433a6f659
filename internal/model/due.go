package model

// DueFilter selects records by where their due date falls relative to today.
type DueFilter string

const (
	DueAll      DueFilter = "ALL"
	DueNone     DueFilter = "NO_DUE_DATE"
	DueOverdue  DueFilter = "OVERDUE"
	DueToday    DueFilter = "DUE_TODAY"
	DueUpcoming DueFilter = "UPCOMING"
)

// DueFilters lists every filter in display order.
var DueFilters = []DueFilter{DueAll, DueNone, DueOverdue, DueToday, DueUpcoming}

// Valid reports whether f is a known filter. The empty value is accepted
// and behaves like DueAll.
func (f DueFilter) Valid() bool {
	switch f {
	case "", DueAll, DueNone, DueOverdue, DueToday, DueUpcoming:
		return true
	}
	return false
}

// Label returns the human-readable label for f.
func (f DueFilter) Label() string {
	switch f {
	case "", DueAll:
		return "All"
	case DueNone:
		return "No due date"
	case DueOverdue:
		return "Overdue"
	case DueToday:
		return "Due today"
	case DueUpcoming:
		return "Upcoming"
	default:
		return string(f)
	}
}

// Next returns the filter after f in display order, wrapping around.
func (f DueFilter) Next() DueFilter {
	if f == "" {
		f = DueAll
	}
	for i, df := range DueFilters {
		if df == f {
			return DueFilters[(i+1)%len(DueFilters)]
		}
	}
	return DueAll
}

// BucketOf returns the due bucket a due date falls into relative to today.
// The result is never DueAll.
func BucketOf(due *Date, today Date) DueFilter {
	switch {
	case due == nil:
		return DueNone
	case due.Before(today):
		return DueOverdue
	case *due == today:
		return DueToday
	default:
		return DueUpcoming
	}
}
