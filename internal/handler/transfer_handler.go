package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"bank-wallet/internal/domain"
	"bank-wallet/internal/errors"
	"bank-wallet/internal/middleware"
	"bank-wallet/internal/service"
)

type TransferHandler struct {
	transferService *service.TransferService
	logger          *slog.Logger
}

func NewTransferHandler(transferService *service.TransferService, logger *slog.Logger) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
		logger:          logger,
	}
}

// TransferRequest takes money as a JSON number or a decimal string.
type TransferRequest struct {
	Money json.RawMessage `json:"money"`
}

func (h *TransferHandler) SendToWallet(w http.ResponseWriter, r *http.Request) {
	h.transfer(w, r, domain.BankToWallet)
}

func (h *TransferHandler) SendToBank(w http.ResponseWriter, r *http.Request) {
	h.transfer(w, r, domain.WalletToBank)
}

func (h *TransferHandler) transfer(w http.ResponseWriter, r *http.Request, direction domain.TransferDirection) {
	accountID, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, errors.ErrUnauthorized)
		return
	}

	var req TransferRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	amount, err := parseMoney(req.Money)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if direction == domain.WalletToBank {
		_, err = h.transferService.SendToBank(r.Context(), accountID, amount)
	} else {
		_, err = h.transferService.SendToWallet(r.Context(), accountID, amount)
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeMessage(w, http.StatusOK, "Successfully sent")
}

// parseMoney treats a missing or null amount as zero so it fails amount
// validation like any other non-positive value.
func parseMoney(raw json.RawMessage) (decimal.Decimal, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, nil
	}

	var amount decimal.Decimal
	if err := amount.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, errors.NewAppError(errors.InvalidAmount, "invalid amount format").WithCause(err)
	}
	return amount, nil
}
