package http

import (
	"bytes"
	"html/template"
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
	applog "expensetracker/internal/log"
)

var templateFuncs = template.FuncMap{
	"amount": core.FormatAmount,
	"isIncome": func(t core.TransactionType) bool {
		return t == core.Income
	},
	"today": func() string {
		return core.Today().String()
	},
}

type dashboardPage struct {
	ledger.Dashboard
	Types []core.TransactionType
}

// handleDashboard renders the index page into a buffer first so a template
// failure still yields a clean 500.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	d, err := s.ledger.Dashboard(ctx)
	if err != nil {
		applog.FromContext(ctx).WithComponent(applog.ComponentHTTP).ErrorContext(ctx, "Failed to load dashboard",
			applog.NewFields().WithOperation(applog.OpRender).WithError(err).ToSlice()...)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	page := dashboardPage{Dashboard: d, Types: []core.TransactionType{core.Expense, core.Income}}
	if err := s.templates.ExecuteTemplate(&buf, "dashboard.html", page); err != nil {
		applog.FromContext(ctx).WithComponent(applog.ComponentTemplate).ErrorContext(ctx, "Failed to render dashboard",
			applog.NewFields().WithOperation(applog.OpRender).WithError(err).ToSlice()...)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
