package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"spendlens/internal/analytics"
	"spendlens/internal/core"
)

const (
	maxBodyBytes = 1 << 20

	// HeaderUserID is set by the authenticating proxy in front of the API.
	HeaderUserID = "X-User-ID"
)

var errBadBody = errors.New("invalid request body")

// optionalInt reads an integer query parameter. Absent or blank yields nil;
// anything that is not a base-10 integer is rejected.
func optionalInt(query url.Values, name string) (*int, error) {
	raw := strings.TrimSpace(query.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", analytics.ErrInvalidParameter, name)
	}
	return &v, nil
}

// ParseAnalyticsQuery reads the report type and its window parameters.
func ParseAnalyticsQuery(query url.Values) (analytics.ReportType, analytics.Params, error) {
	t, err := analytics.ParseReportType(strings.TrimSpace(query.Get("type")))
	if err != nil {
		return "", analytics.Params{}, err
	}
	var p analytics.Params
	for name, dst := range map[string]**int{
		"year":   &p.Year,
		"month":  &p.Month,
		"days":   &p.Days,
		"months": &p.Months,
	} {
		v, err := optionalInt(query, name)
		if err != nil {
			return "", analytics.Params{}, err
		}
		*dst = v
	}
	if err := p.Validate(); err != nil {
		return "", analytics.Params{}, err
	}
	return t, p, nil
}

// ListParams selects a page of recent expenses.
type ListParams struct {
	Year  *int
	Month *int
	Limit int
}

func ParseListQuery(query url.Values) (ListParams, error) {
	var (
		lp  ListParams
		err error
	)
	if lp.Year, err = optionalInt(query, "year"); err != nil {
		return ListParams{}, err
	}
	if lp.Month, err = optionalInt(query, "month"); err != nil {
		return ListParams{}, err
	}
	limit, err := optionalInt(query, "limit")
	if err != nil {
		return ListParams{}, err
	}
	if limit != nil {
		if *limit <= 0 {
			return ListParams{}, fmt.Errorf("%w: limit must be positive", analytics.ErrInvalidParameter)
		}
		lp.Limit = *limit
	}
	return lp, nil
}

// userID returns the caller's id from the proxy header, or fallback.
func userID(r *http.Request, fallback string) string {
	if id := strings.TrimSpace(r.Header.Get(HeaderUserID)); id != "" {
		return id
	}
	return fallback
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields
// and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", errBadBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", errBadBody)
	}
	return nil
}

// expenseRequest is the POST /api/expenses body.
type expenseRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Date        string      `json:"date"`
	CategoryID  string      `json:"categoryId"`
}

func (req expenseRequest) record(userID string) (core.ExpenseRecord, error) {
	amount, err := core.ParseAmount(req.Amount.String())
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	return core.ExpenseRecord{
		UserID:      userID,
		Title:       sanitizeInput(req.Title),
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		Date:        date,
		CategoryID:  strings.TrimSpace(req.CategoryID),
	}, nil
}

// categoryRequest is the POST /api/categories body.
type categoryRequest struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

func (req categoryRequest) category(userID string) core.Category {
	return core.Category{
		UserID:      userID,
		Name:        sanitizeInput(req.Name),
		Color:       strings.TrimSpace(req.Color),
		Icon:        sanitizeInput(req.Icon),
		Description: sanitizeInput(req.Description),
	}
}

// sanitizeInput trims and drops control characters other than tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
