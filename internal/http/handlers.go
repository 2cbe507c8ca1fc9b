package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
	applog "expensetracker/internal/log"
)

const readyTimeout = 2 * time.Second

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	typ, limit := ParseListFilter(r.URL.Query())

	txs, err := s.ledger.ListTransactions(r.Context(), ledger.ListFilter{Type: typ, Limit: limit})
	if err != nil {
		s.internalError(w, r, "Failed to list transactions", applog.OpList, err)
		return
	}
	NewJSONResponse().Body(txs).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentLedger)

	nt, err := ParseNewTransaction(r)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			logger.WarnContext(ctx, "Invalid transaction request",
				applog.NewFields().WithOperation(applog.OpValidate).WithError(err).ToSlice()...)
			BadRequestError(verr.Message).Write(w)
			return
		}
		s.internalError(w, r, "Failed to parse transaction", applog.OpCreate, err)
		return
	}

	id, err := s.ledger.AddTransaction(ctx, nt)
	if err != nil {
		if errors.Is(err, ledger.ErrUnknownCategory) {
			logger.WarnContext(ctx, "Rejected unknown category",
				applog.FieldCategory, nt.Category, applog.FieldType, nt.Type.String())
			BadRequestError("Unknown category for " + nt.Type.String() + ": " + nt.Category).Write(w)
			return
		}
		s.internalError(w, r, "Failed to add transaction", applog.OpCreate, err)
		return
	}

	logger.InfoContext(ctx, "Transaction added",
		applog.NewFields().
			WithOperation(applog.OpCreate).
			WithTransaction(id, nt.Type.String(), nt.Category, nt.Amount, nt.WithDefaults().Date.String()).
			ToSlice()...)
	CreatedResponse(id).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseTransactionID(r)
	if !ok {
		NotFoundError("Transaction not found").Write(w)
		return
	}

	deleted, err := s.ledger.DeleteTransaction(r.Context(), id)
	if err != nil {
		s.internalError(w, r, "Failed to delete transaction", applog.OpDelete, err)
		return
	}
	if !deleted {
		NotFoundError("Transaction not found").Write(w)
		return
	}

	applog.FromContext(r.Context()).WithComponent(applog.ComponentLedger).
		InfoContext(r.Context(), "Transaction deleted", applog.FieldTransactionID, id)
	SuccessResponse().Write(w)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	b, err := s.ledger.GetBalance(r.Context())
	if err != nil {
		s.internalError(w, r, "Failed to compute balance", applog.OpBalance, err)
		return
	}
	NewJSONResponse().Body(b).Write(w)
}

// handleCategories returns a flat list for ?type=, otherwise both lists.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if typ := r.URL.Query().Get("type"); typ != "" {
		names, err := s.ledger.GetCategories(r.Context(), core.TransactionType(typ))
		if err != nil {
			s.internalError(w, r, "Failed to list categories", applog.OpList, err)
			return
		}
		NewJSONResponse().Body(names).Write(w)
		return
	}

	all, err := s.ledger.GetAllCategories(r.Context())
	if err != nil {
		s.internalError(w, r, "Failed to list categories", applog.OpList, err)
		return
	}
	NewJSONResponse().Body(all).Write(w)
}

func (s *Server) handleExpenseBreakdown(w http.ResponseWriter, r *http.Request) {
	breakdown, err := s.ledger.GetExpenseBreakdown(r.Context())
	if err != nil {
		s.internalError(w, r, "Failed to compute expense breakdown", applog.OpList, err)
		return
	}
	NewJSONResponse().Body(breakdown).Write(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(statusBody{Status: "ok"}).Write(w)
}

type readyBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	body := readyBody{Status: "ok", Checks: map[string]string{"store": "ok"}}
	if s.ready == nil {
		NewJSONResponse().Body(body).Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.ready.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", applog.FieldError, err.Error())
		body.Status = "unavailable"
		body.Checks["store"] = "unreachable"
		NewJSONResponse().Status(http.StatusServiceUnavailable).Body(body).Write(w)
		return
	}
	NewJSONResponse().Body(body).Write(w)
}

// internalError logs the cause and replies with a generic 500.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg, op string, err error) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentHTTP).ErrorContext(r.Context(), msg,
		applog.NewFields().WithOperation(op).WithError(err).ToSlice()...)
	InternalServerError().Write(w)
}
