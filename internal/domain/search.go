package domain

import (
	"fmt"
	"strings"
	"time"
)

const localDateTimeLayout = "2006-01-02T15:04:05"

// ParseSearchTime parses a search date literal. A literal with a trailing
// zone marker (Z or a numeric offset) is parsed as RFC3339 and normalized
// to local wall-clock time; anything else is parsed as a bare local
// date-time.
func ParseSearchTime(s string) (time.Time, error) {
	if hasZoneMarker(s) {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: unparseable date %q", ErrInvalidInput, s)
		}
		return t.In(time.Local), nil
	}
	t, err := time.ParseInLocation(localDateTimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: unparseable date %q", ErrInvalidInput, s)
	}
	return t, nil
}

func hasZoneMarker(s string) bool {
	if strings.HasSuffix(s, "Z") {
		return true
	}
	// An offset like +09:00 or -05:00 follows the time part, which always
	// contains a 'T'.
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		rest := s[i+1:]
		return strings.ContainsAny(rest, "+-")
	}
	return false
}

// ReviewSearchFilter holds the independently-optional predicates for the
// admin review search. Active predicates are combined with AND.
type ReviewSearchFilter struct {
	Keyword   string
	StartDate string
	EndDate   string
	MinRating *int
	MaxRating *int
	Page      int
	Size      int
}

// DateRange resolves the date predicate. Both endpoints must be present for
// the filter to apply; a single bound is never applied alone. The returned
// range is inclusive of both bounds.
func (f ReviewSearchFilter) DateRange() (*time.Time, *time.Time, error) {
	return resolveDateRange(f.StartDate, f.EndDate)
}

// Validate rejects malformed filter input before any query is built.
func (f ReviewSearchFilter) Validate() error {
	if f.MinRating != nil && (*f.MinRating < 1 || *f.MinRating > 5) {
		return fmt.Errorf("%w: minRating out of range", ErrInvalidInput)
	}
	if f.MaxRating != nil && (*f.MaxRating < 1 || *f.MaxRating > 5) {
		return fmt.Errorf("%w: maxRating out of range", ErrInvalidInput)
	}
	if _, _, err := f.DateRange(); err != nil {
		return err
	}
	return nil
}

// ReportSearchFilter holds the independently-optional predicates for the
// admin report search.
type ReportSearchFilter struct {
	Type    *ReportType
	From    string
	To      string
	Keyword string
	Page    int
	Size    int
}

// DateRange resolves the date predicate with the same both-or-nothing rule
// as the review filter.
func (f ReportSearchFilter) DateRange() (*time.Time, *time.Time, error) {
	return resolveDateRange(f.From, f.To)
}

// Validate rejects malformed filter input before any query is built.
func (f ReportSearchFilter) Validate() error {
	if f.Type != nil && !f.Type.IsValid() {
		return fmt.Errorf("%w: unknown report type %q", ErrInvalidInput, *f.Type)
	}
	if _, _, err := f.DateRange(); err != nil {
		return err
	}
	return nil
}

func resolveDateRange(from, to string) (*time.Time, *time.Time, error) {
	if from == "" || to == "" {
		return nil, nil, nil
	}
	start, err := ParseSearchTime(from)
	if err != nil {
		return nil, nil, err
	}
	end, err := ParseSearchTime(to)
	if err != nil {
		return nil, nil, err
	}
	return &start, &end, nil
}

// NormalizePage clamps a zero-based page index and a page size to sane
// bounds shared by both search surfaces.
func NormalizePage(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = 10
	} else if size > 100 {
		size = 100
	}
	return page, size
}
