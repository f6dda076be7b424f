package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"casino-bot/internal/casino"
	"casino-bot/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// AdminStore is the read side of the ledger exposed over HTTP.
type AdminStore interface {
	Ping(ctx context.Context) error
	GetAccount(ctx context.Context, userID string) (store.Account, error)
	ListTransactions(ctx context.Context, f store.TransactionFilter, limit, offset int) ([]store.Transaction, error)
	GetDraw(ctx context.Context, drawDate time.Time) (*store.Draw, error)
	TopBalances(ctx context.Context, limit int) ([]store.Account, error)
}

type Granter interface {
	Account(ctx context.Context, userID string) (store.Account, error)
	Grant(ctx context.Context, userID string, amount int64) (int64, error)
}

type Drawer interface {
	DrawLottery(ctx context.Context, date time.Time) (casino.DrawResult, error)
}

type AdminHandlers struct {
	store  AdminStore
	ledger Granter
	drawer Drawer
}

func NewAdminHandlers(st AdminStore, led Granter, drawer Drawer) *AdminHandlers {
	return &AdminHandlers{store: st, ledger: led, drawer: drawer}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.store.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up"})
	}
}

func (h *AdminHandlers) Account() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acc, err := h.store.GetAccount(r.Context(), chi.URLParam(r, "user_id"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(acc)
	}
}

func (h *AdminHandlers) Transactions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		q := r.URL.Query()
		f := store.TransactionFilter{UserID: q.Get("user_id"), Reason: q.Get("reason")}
		var err error
		if f.From, err = parseTimeParam(q.Get("from")); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_time")
			return
		}
		if f.To, err = parseTimeParam(q.Get("to")); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_time")
			return
		}
		items, err := h.store.ListTransactions(r.Context(), f, limit, offset)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items, "limit": limit, "offset": offset})
	}
}

func (h *AdminHandlers) Leaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := ParsePagination(r)
		items, err := h.store.TopBalances(r.Context(), limit)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
	}
}

func (h *AdminHandlers) Draw() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := time.Parse("2006-01-02", chi.URLParam(r, "date"))
		if err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_date")
			return
		}
		d, err := h.store.GetDraw(r.Context(), date)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(d)
	}
}

func (h *AdminHandlers) Grant() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserID string `json:"user_id"`
			Amount int64  `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		body.UserID = strings.TrimSpace(body.UserID)
		if body.UserID == "" || body.Amount == 0 {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if _, err := h.ledger.Account(r.Context(), body.UserID); err != nil {
			writeStoreError(w, err)
			return
		}
		bal, err := h.ledger.Grant(r.Context(), body.UserID, body.Amount)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		metricAdminGrantTotal.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "balance": bal})
	}
}

func (h *AdminHandlers) RunDraw() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Date string `json:"date"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		date, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_date")
			return
		}
		res, err := h.drawer.DrawLottery(r.Context(), date)
		if err != nil {
			var verr *casino.ValidationError
			if errors.As(err, &verr) {
				WriteHTTPError(w, http.StatusConflict, verr.Code)
				return
			}
			writeStoreError(w, err)
			return
		}
		metricAdminDrawTotal.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":        true,
			"draw_date": res.DrawDate.Format("2006-01-02"),
			"numbers":   res.Numbers,
			"tickets":   res.Tickets,
			"winners":   len(res.Winners),
			"paid":      res.Paid,
		})
	}
}

// parseTimeParam reads an optional RFC3339 query value.
func parseTimeParam(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		WriteHTTPError(w, http.StatusNotFound, "not_found")
		return
	}
	log.Error().Err(err).Msg("admin request failed")
	WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
}
