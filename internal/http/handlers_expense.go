package http

import (
	"errors"
	"net/http"

	"spendlens/internal/analytics"
	"spendlens/internal/core"
	"spendlens/internal/log"
	"spendlens/internal/services"
)

type expenseCategory struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

type expenseResponse struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Amount      core.Money       `json:"amount"`
	Date        core.Date        `json:"date"`
	CategoryID  string           `json:"categoryId"`
	Category    *expenseCategory `json:"category,omitempty"`
}

func toExpenseResponse(e core.ExpenseRecord) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Amount:      e.Amount,
		Date:        e.Date,
		CategoryID:  e.CategoryID,
	}
}

// handleListExpenses serves GET /api/expenses?year&month&limit, newest first.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	lp, err := ParseListQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user := s.user(r)
	records, err := s.expenses.RecentExpenses(r.Context(), user, lp.Year, lp.Month, lp.Limit)
	if err != nil {
		s.writeServiceError(w, r, err, "list expenses")
		return
	}

	out := make([]expenseResponse, 0, len(records))
	for _, v := range records {
		resp := toExpenseResponse(v.ExpenseRecord)
		if c := v.Category; c != nil {
			resp.Category = &expenseCategory{ID: c.ID, Name: c.Name, Color: c.Color, Icon: c.Icon}
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCreateExpense serves POST /api/expenses.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user := s.user(r)
	record, err := req.record(user)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.expenses.CreateExpense(r.Context(), record)
	if err != nil {
		s.writeServiceError(w, r, err, "create expense")
		return
	}

	log.FromContext(r.Context()).Info("Expense recorded",
		log.NewFields().WithUser(user).WithExpense(created.ID, created.CategoryID, created.Amount.Cents).ToSlice()...)
	NewJSONResponse().
		Status(http.StatusCreated).
		Data(toExpenseResponse(created)).
		Write(w)
}

// writeServiceError maps service failures to a status. Client mistakes
// keep their message; dependency failures are logged and hidden.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, services.ErrDuplicateCategory):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, analytics.ErrUnresolvedReference):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case services.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.FromContext(r.Context()).Error("Request failed", log.FieldOperation, op, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
