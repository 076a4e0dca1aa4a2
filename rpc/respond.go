package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/holiman/uint256"

	ledgererrors "celebmint/core/errors"
	"celebmint/rpc/middleware"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "invalid_params", message)
}

// errorStatus maps ledger sentinels onto HTTP statuses and stable codes.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ledgererrors.ErrDisbursementFailed):
		return http.StatusConflict, "disbursement_failed"
	case errors.Is(err, ledgererrors.ErrNotOwner):
		return http.StatusForbidden, "not_owner"
	case errors.Is(err, ledgererrors.ErrNotAuthorized):
		return http.StatusForbidden, "not_authorized"
	case errors.Is(err, ledgererrors.ErrNotAssetOwner):
		return http.StatusForbidden, "not_asset_owner"
	case errors.Is(err, ledgererrors.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ledgererrors.ErrAlreadyMinted):
		return http.StatusConflict, "already_minted"
	case errors.Is(err, ledgererrors.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid_amount"
	case errors.Is(err, ledgererrors.ErrInvalidMetadata):
		return http.StatusBadRequest, "invalid_metadata"
	case errors.Is(err, ledgererrors.ErrInvalidRecipient):
		return http.StatusBadRequest, "invalid_recipient"
	case errors.Is(err, ledgererrors.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, "insufficient_funds"
	case errors.Is(err, ledgererrors.ErrAccountFrozen):
		return http.StatusUnprocessableEntity, "account_frozen"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) writeLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("ledger operation failed", "route", r.URL.Path, "error", err)
		message = "internal error"
	}
	writeError(w, status, code, message)
}

func decodeBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func parseAddress(raw string) (common.Address, error) {
	trimmed := strings.TrimSpace(raw)
	if !common.IsHexAddress(trimmed) {
		return common.Address{}, fmt.Errorf("invalid address %q", raw)
	}
	return common.HexToAddress(trimmed), nil
}

// parseAmount decodes a base-10 amount bounded to 256 bits.
func parseAmount(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errors.New("amount required")
	}
	value, err := uint256.FromDecimal(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", raw)
	}
	return value.ToBig(), nil
}

func pathID(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func pathAddress(r *http.Request) (common.Address, error) {
	return parseAddress(chi.URLParam(r, "address"))
}

func queryUint(r *http.Request, key string, fallback uint64) (uint64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return value, nil
}

func caller(r *http.Request) common.Address {
	addr, _ := middleware.CallerFromContext(r.Context())
	return addr
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
