package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"paper-trading-go/internal/trading"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log       *zap.Logger
	svc       *trading.Service
	reports   *trading.Reports
	accountID string
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, svc *trading.Service, reports *trading.Reports, accountID string) *APIHandler {
	return &APIHandler{log: log, svc: svc, reports: reports, accountID: accountID}
}

type placeOrderRequest struct {
	Symbol   string `json:"symbol"`
	Quantity int64  `json:"quantity"`
	Date     string `json:"date"`
}

// BuyHandler places a buy order.
func (h *APIHandler) BuyHandler(w http.ResponseWriter, r *http.Request) {
	h.placeOrder(w, r, h.svc.PlaceBuy)
}

// SellHandler places a sell order.
func (h *APIHandler) SellHandler(w http.ResponseWriter, r *http.Request) {
	h.placeOrder(w, r, h.svc.PlaceSell)
}

func (h *APIHandler) placeOrder(w http.ResponseWriter, r *http.Request,
	place func(ctx context.Context, accountID, symbol string, quantity int64, tradeDate time.Time) (trading.PlaceOrderResult, error)) {

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	tradeDate, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	result, err := place(r.Context(), h.accountID, req.Symbol, req.Quantity, tradeDate)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusAccepted, result)
}

// HoldingsHandler returns the current positions.
func (h *APIHandler) HoldingsHandler(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.svc.GetHoldings(r.Context(), h.accountID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, holdings)
}

// BalanceHandler returns the cash balance.
func (h *APIHandler) BalanceHandler(w http.ResponseWriter, r *http.Request) {
	balance, err := h.svc.GetBalance(r.Context(), h.accountID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"balance": balance.String()})
}

// OrderHandler returns a single order by id.
func (h *APIHandler) OrderHandler(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, order)
}

// OrdersHandler returns the order journal, newest first.
func (h *APIHandler) OrdersHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	orders, err := h.svc.ListOrders(r.Context(), h.accountID, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, orders)
}

// SectorAllocationHandler returns cost-basis value grouped by sector.
func (h *APIHandler) SectorAllocationHandler(w http.ResponseWriter, r *http.Request) {
	slices, err := h.reports.SectorAllocation(r.Context(), h.accountID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, slices)
}

// PortfolioValueHandler returns the portfolio marked to its latest closes.
func (h *APIHandler) PortfolioValueHandler(w http.ResponseWriter, r *http.Request) {
	valuation, err := h.reports.PortfolioValue(r.Context(), h.accountID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, valuation)
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, trading.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, trading.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, trading.ErrFailedPrecondition):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		h.log.Error("Request failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
