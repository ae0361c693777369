package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/srbenoit/mathops-db-sub010/pkg/fields"
)

// TermName is the two-letter semester code stored in the legacy schema.
type TermName string

const (
	TermSpring TermName = "SP"
	TermSummer TermName = "SM"
	TermFall   TermName = "FA"
)

// TermKey identifies a term by name and four-digit year.
type TermKey struct {
	Name TermName `json:"name"`
	Year int      `json:"year"`
}

// String renders the key in its short form, e.g. "FA24".
func (k TermKey) String() string {
	return fmt.Sprintf("%s%02d", k.Name, k.Year%100)
}

// ShortYear returns the two-digit year as stored in term_yr columns.
func (k TermKey) ShortYear() int {
	return k.Year % 100
}

// ParseTermKey parses keys like "FA24" or "FA2024".
func ParseTermKey(raw string) (TermKey, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if len(raw) != 4 && len(raw) != 6 {
		return TermKey{}, fmt.Errorf("invalid term key %q", raw)
	}
	name := TermName(raw[:2])
	switch name {
	case TermSpring, TermSummer, TermFall:
	default:
		return TermKey{}, fmt.Errorf("invalid term name in %q", raw)
	}
	n, err := strconv.Atoi(raw[2:])
	if err != nil {
		return TermKey{}, fmt.Errorf("invalid term year in %q", raw)
	}
	year := n
	if len(raw) == 4 {
		if year, err = fields.ExpandYear(n); err != nil {
			return TermKey{}, err
		}
	} else if _, err = fields.CollapseYear(year); err != nil {
		// term_yr holds two digits; keep the key inside the pivot window.
		return TermKey{}, fmt.Errorf("invalid term year in %q: %w", raw, err)
	}
	return TermKey{Name: name, Year: year}, nil
}

// Term is a row of the term table. ActiveIndex is 0 for the active term,
// negative for past terms and positive for future ones.
type Term struct {
	Name               fields.String `db:"term" json:"term"`
	Year               fields.Year   `db:"term_yr" json:"term_yr"`
	StartDate          fields.Date   `db:"start_dt" json:"start_dt"`
	EndDate            fields.Date   `db:"end_dt" json:"end_dt"`
	AcademicYear       fields.String `db:"academic_yr" json:"academic_yr"`
	ActiveIndex        fields.Int    `db:"active_index" json:"active_index"`
	DropDeadline       fields.Date   `db:"drop_deadline_dt" json:"drop_deadline_dt"`
	WithdrawDeadline   fields.Date   `db:"withdraw_deadline_dt" json:"withdraw_deadline_dt"`
	IncompleteDeadline fields.Date   `db:"inc_deadline_dt" json:"inc_deadline_dt"`
}

// Key returns the term identifier.
func (t Term) Key() TermKey {
	return TermKey{Name: TermName(t.Name.Str), Year: t.Year.Year}
}

// Active reports whether the term is the current one.
func (t Term) Active() bool {
	return t.ActiveIndex.Valid && t.ActiveIndex.Int64 == 0
}

// Contains reports whether the day d falls within the term's start and end dates.
func (t Term) Contains(d time.Time) bool {
	if !t.StartDate.Valid || !t.EndDate.Valid {
		return false
	}
	day := fields.DateOf(d)
	return !day.Before(t.StartDate.Time) && !day.After(t.EndDate.Time)
}

// Compare orders terms chronologically by year then start date.
func (t Term) Compare(o Term) int {
	return fields.Chain(t.Year.Compare(o.Year), t.StartDate.Compare(o.StartDate), t.Name.Compare(o.Name))
}
