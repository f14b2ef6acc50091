package google

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"spendlens/internal/calendar"
	"spendlens/internal/core"
	"spendlens/internal/source"
)

// fakeSheets serves the subset of the Sheets values API the client uses.
type fakeSheets struct {
	mu       sync.Mutex
	sheets   map[string][][]any
	appended []string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	i := strings.Index(path, "/values/")
	if i < 0 {
		http.NotFound(w, r)
		return
	}
	rng := strings.TrimSuffix(path[i+len("/values/"):], ":append")
	sheet := rng[:strings.Index(rng, "!")]

	switch r.Method {
	case http.MethodGet:
		json.NewEncoder(w).Encode(map[string]any{"range": rng, "values": f.sheets[sheet]})
	case http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		var vr struct {
			Values [][]any `json:"values"`
		}
		if err := json.Unmarshal(body, &vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.sheets[sheet] = append(f.sheets[sheet], vr.Values...)
		f.appended = append(f.appended, sheet)
		json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "test"})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("create sheets service: %v", err)
	}
	return NewWithService(svc, Config{SpreadsheetID: "test"})
}

func TestClient_ListExpenses(t *testing.T) {
	fake := &fakeSheets{sheets: map[string][][]any{
		"Expenses": {
			{"e1", "u1", "2024-03-01", "Lunch", "", 12.5, "c1"},
			{"e2", "u1", "2024-02-28", "Bus", "ticket", "2,00", "c2"},
			{"e3", "u2", "2024-03-02", "Other", "", 1, "c1"},
			{"e4", "u1", "not-a-date", "Broken", "", 1, "c1"},
			{"short"},
		},
	}}
	c := newTestClient(t, fake)
	ctx := context.Background()

	all, err := c.ListExpenses(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("ListExpenses() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 valid u1 records, got %+v", all)
	}
	if all[0].Amount.Cents != 1250 || all[1].Amount.Cents != 200 {
		t.Errorf("unexpected amounts: %d, %d", all[0].Amount.Cents, all[1].Amount.Cents)
	}

	w, _ := calendar.Month(2024, 3)
	march, err := c.ListExpenses(ctx, "u1", &w)
	if err != nil || len(march) != 1 || march[0].ID != "e1" {
		t.Fatalf("ListExpenses(march) = %+v, %v", march, err)
	}

	recent, err := c.RecentExpenses(ctx, "u1", nil, 1)
	if err != nil || len(recent) != 1 || recent[0].ID != "e1" {
		t.Fatalf("RecentExpenses() = %+v, %v", recent, err)
	}

	if _, err := c.GetExpense(ctx, "u1", "e3"); !errors.Is(err, source.ErrNotFound) {
		t.Errorf("expected ErrNotFound for other user's record, got %v", err)
	}
}

func TestClient_CreateAndListCategories(t *testing.T) {
	fake := &fakeSheets{sheets: map[string][][]any{}}
	c := newTestClient(t, fake)
	ctx := context.Background()

	for _, cat := range []core.Category{
		{ID: "c2", UserID: "u1", Name: "Transport", Color: "#00FF00", Icon: "car"},
		{ID: "c1", UserID: "u1", Name: "Food", Color: "#FF0000"},
	} {
		if err := c.CreateCategory(ctx, cat); err != nil {
			t.Fatalf("CreateCategory() error = %v", err)
		}
	}

	cats, err := c.ListCategories(ctx, "u1")
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(cats) != 2 || cats[0].Name != "Food" || cats[1].Icon != "car" {
		t.Fatalf("unexpected categories: %+v", cats)
	}
}

func TestClient_CreateExpenseRoundTrip(t *testing.T) {
	fake := &fakeSheets{sheets: map[string][][]any{}}
	c := newTestClient(t, fake)
	ctx := context.Background()

	e := core.ExpenseRecord{
		ID: "e1", UserID: "u1", Title: "Dinner", Description: "with friends",
		Amount: core.Money{Cents: 3005}, Date: core.NewDate(2024, 1, 31), CategoryID: "c1",
	}
	if err := c.CreateExpense(ctx, e); err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	if len(fake.appended) != 1 || fake.appended[0] != "Expenses" {
		t.Fatalf("expected one append to Expenses, got %v", fake.appended)
	}

	got, err := c.GetExpense(ctx, "u1", "e1")
	if err != nil {
		t.Fatalf("GetExpense() error = %v", err)
	}
	if got.Amount.Cents != 3005 || got.Date.String() != "2024-01-31" || got.Description != "with friends" {
		t.Errorf("unexpected round trip: %+v", got)
	}
}

func TestClient_NilService(t *testing.T) {
	c := &Client{expensesSheet: "Expenses"}
	if _, err := c.ListExpenses(context.Background(), "u1", nil); err == nil {
		t.Fatal("expected error with nil service")
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "abc"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}

	_, err = New(context.Background(), Config{})
	if err == nil || err.Error() != "missing spreadsheet id" {
		t.Fatalf("expected missing spreadsheet id error, got %v", err)
	}
}

func TestParseRows(t *testing.T) {
	tests := []struct {
		name    string
		row     []any
		wantErr bool
		cents   int64
	}{
		{"numeric amount", []any{"id", "u", "2024-01-01", "t", "", 10.1, "c"}, false, 1010},
		{"comma amount", []any{"id", "u", "2024-01-01", "t", "", "10,10", "c"}, false, 1010},
		{"zero amount", []any{"id", "u", "2024-01-01", "t", "", 0, "c"}, true, 0},
		{"bad date", []any{"id", "u", "01/01/2024", "t", "", 1, "c"}, true, 0},
		{"missing category", []any{"id", "u", "2024-01-01", "t", "", 1, ""}, true, 0},
		{"short", []any{"id", "u"}, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := parseExpenseRow(tt.row)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseExpenseRow() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && e.Amount.Cents != tt.cents {
				t.Errorf("cents = %d, want %d", e.Amount.Cents, tt.cents)
			}
		})
	}

	if _, err := parseCategoryRow([]any{"c1", "u1"}); !errors.Is(err, errShortRow) {
		t.Errorf("expected errShortRow, got %v", err)
	}
	c, err := parseCategoryRow([]any{"c1", "u1", "Food", "#FF0000"})
	if err != nil || c.Color != "#FF0000" || c.Icon != "" {
		t.Errorf("parseCategoryRow() = %+v, %v", c, err)
	}
}
