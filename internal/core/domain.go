package core

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the ISO calendar date layout used on the wire and as bucket key.
const DateLayout = "2006-01-02"

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// ExpenseRecord is an immutable expense fact owned by the record source.
	ExpenseRecord struct {
		ID          string
		UserID      string
		Title       string
		Description string
		Amount      Money
		Date        Date
		CategoryID  string // Reference to a Category, required
	}

	// Category is referenced, never owned, by expense records.
	Category struct {
		ID          string
		UserID      string
		Name        string
		Color       string
		Icon        string
		Description string
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrFutureDate         = errors.New("date cannot be in the future")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrAmountTooLarge     = errors.New("amount exceeds maximum")
	ErrEmptyTitle         = errors.New("empty title")
	ErrTitleTooLong       = errors.New("title too long (max 100 characters)")
	ErrDescriptionTooLong = errors.New("description too long")
	ErrEmptyCategoryRef   = errors.New("empty category reference")
	ErrEmptyCategoryName  = errors.New("empty category name")
	ErrCategoryNameLong   = errors.New("category name too long (max 30 characters)")
	ErrInvalidColor       = errors.New("invalid color (expected #RRGGBB)")
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// String returns the ISO representation, which is also the daily bucket key.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}

// After reports whether d is strictly later than o.
func (d Date) After(o Date) bool {
	return d.Time.After(o.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	// Accept full RFC3339 timestamps and keep only the calendar part.
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	if m.Cents > MaxAmountCents {
		return ErrAmountTooLarge
	}
	return nil
}

// Validate checks the record against the rules the expense form enforces.
// today bounds the date: records cannot be dated in the future.
func (e ExpenseRecord) Validate(today Date) error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.Date.After(today) {
		return ErrFutureDate
	}
	title := strings.TrimSpace(e.Title)
	if title == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > 100 {
		return ErrTitleTooLong
	}
	if utf8.RuneCountInString(e.Description) > 500 {
		return fmt.Errorf("%w (max 500 characters)", ErrDescriptionTooLong)
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.CategoryID) == "" {
		return ErrEmptyCategoryRef
	}
	return nil
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return ErrEmptyCategoryName
	}
	if utf8.RuneCountInString(name) > 30 {
		return ErrCategoryNameLong
	}
	if !colorPattern.MatchString(c.Color) {
		return ErrInvalidColor
	}
	if utf8.RuneCountInString(c.Description) > 100 {
		return fmt.Errorf("%w (max 100 characters)", ErrDescriptionTooLong)
	}
	return nil
}
