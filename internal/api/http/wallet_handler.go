package http

import (
	"net/http"

	"ugc-marketplace-backend/internal/domain"
)

func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Wallet.GetWallet(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) ListWalletTransactions(w http.ResponseWriter, r *http.Request) {
	p := queryInt32(r, "page", 1)
	txs, total, err := h.svc.Wallet.ListTransactions(r.Context(), userID(r), p, queryInt32(r, "page_size", 20))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(txs, total, p))
}

func (h *Handler) ListCommissions(w http.ResponseWriter, r *http.Request) {
	commissions, err := h.svc.Wallet.ListCommissions(r.Context(), userID(r), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if commissions == nil {
		commissions = []domain.Commission{}
	}
	writeJSON(w, http.StatusOK, commissions)
}

type withdrawalRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

func (h *Handler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req withdrawalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := h.svc.Wallet.RequestWithdrawal(r.Context(), userID(r), req.AmountCents)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (h *Handler) MarkCommissionPaid(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.svc.Wallet.MarkCommissionPaid(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
