package fields

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

var jsonNull = []byte("null")

// String is a trimmed text column where NULL and blank are both absent.
type String struct {
	Str   string
	Valid bool
}

// NewString builds a String from text, applying the blank-is-absent rule.
func NewString(s string) String {
	v, ok := TrimmedString(s)
	return String{Str: v, Valid: ok}
}

// Scan implements sql.Scanner.
func (s *String) Scan(src any) error {
	s.Str, s.Valid = TrimmedString(src)
	return nil
}

// Value implements driver.Valuer.
func (s String) Value() (driver.Value, error) {
	if !s.Valid {
		return nil, nil
	}
	return s.Str, nil
}

// OrElse returns the value or def when absent.
func (s String) OrElse(def string) string {
	if !s.Valid {
		return def
	}
	return s.Str
}

// Ptr returns nil when absent.
func (s String) Ptr() *string {
	if !s.Valid {
		return nil
	}
	v := s.Str
	return &v
}

// Is reports whether the value is present and equal to want.
func (s String) Is(want string) bool {
	return s.Valid && s.Str == want
}

func (s String) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return jsonNull, nil
	}
	return json.Marshal(s.Str)
}

func (s *String) UnmarshalJSON(b []byte) error {
	var p *string
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if p == nil {
		*s = String{}
		return nil
	}
	*s = NewString(*p)
	return nil
}

// Int is a nullable integer column.
type Int struct {
	Int64 int64
	Valid bool
}

// NewInt builds a present Int.
func NewInt(n int) Int {
	return Int{Int64: int64(n), Valid: true}
}

// Scan implements sql.Scanner.
func (n *Int) Scan(src any) error {
	v, ok, err := ParseInt(src)
	if err != nil {
		return err
	}
	n.Int64, n.Valid = v, ok
	return nil
}

// Value implements driver.Valuer.
func (n Int) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Int64, nil
}

// OrElse returns the value or def when absent.
func (n Int) OrElse(def int) int {
	if !n.Valid {
		return def
	}
	return int(n.Int64)
}

// Ptr returns nil when absent.
func (n Int) Ptr() *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func (n Int) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return jsonNull, nil
	}
	return json.Marshal(n.Int64)
}

func (n *Int) UnmarshalJSON(b []byte) error {
	var p *int64
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if p == nil {
		*n = Int{}
		return nil
	}
	*n = Int{Int64: *p, Valid: true}
	return nil
}

// Date is a nullable calendar date (no time of day, UTC).
type Date struct {
	Time  time.Time
	Valid bool
}

// NewDate builds a present Date from t.
func NewDate(t time.Time) Date {
	return Date{Time: DateOf(t), Valid: true}
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
	t, ok, err := ParseDate(src)
	if err != nil {
		return err
	}
	d.Time, d.Valid = t, ok
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if !d.Valid {
		return nil, nil
	}
	return d.Time, nil
}

// Ptr returns nil when absent.
func (d Date) Ptr() *time.Time {
	if !d.Valid {
		return nil
	}
	v := d.Time
	return &v
}

func (d Date) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return jsonNull, nil
	}
	return json.Marshal(d.Time.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var p *string
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if p == nil {
		*d = Date{}
		return nil
	}
	return d.Scan(*p)
}

// Year is a two-digit year column exposed as a four-digit year.
type Year struct {
	Year  int
	Valid bool
}

// NewYear builds a present Year from a four-digit year.
func NewYear(year int) Year {
	return Year{Year: year, Valid: true}
}

// Scan implements sql.Scanner, expanding the stored two-digit value.
func (y *Year) Scan(src any) error {
	v, ok, err := ParseInt(src)
	if err != nil {
		return err
	}
	if !ok {
		*y = Year{}
		return nil
	}
	full, err := ExpandYear(int(v))
	if err != nil {
		return err
	}
	*y = Year{Year: full, Valid: true}
	return nil
}

// Value implements driver.Valuer, storing the two-digit form.
func (y Year) Value() (driver.Value, error) {
	if !y.Valid {
		return nil, nil
	}
	short, err := CollapseYear(y.Year)
	if err != nil {
		return nil, err
	}
	return int64(short), nil
}

// Short returns the two-digit form, e.g. 24 for 2024.
func (y Year) Short() int {
	return y.Year % 100
}

func (y Year) String() string {
	if !y.Valid {
		return ""
	}
	return fmt.Sprintf("%02d", y.Short())
}

func (y Year) MarshalJSON() ([]byte, error) {
	if !y.Valid {
		return jsonNull, nil
	}
	return json.Marshal(y.Year)
}

func (y *Year) UnmarshalJSON(b []byte) error {
	var p *int
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if p == nil {
		*y = Year{}
		return nil
	}
	*y = Year{Year: *p, Valid: true}
	return nil
}
