package rpc

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"celebmint/native/minting"
	"celebmint/services/indexer"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

func (s *Server) handleCapability(w http.ResponseWriter, r *http.Request) {
	code, err := minting.ParseCapability(chi.URLParam(r, "code"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, capabilityResponse{Code: code.String(), Supported: s.ledger.SupportsCapability(code)})
}

func (s *Server) handleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	var body ownershipRequest
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	next, err := parseAddress(body.NewOwner)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.ledger.TransferOwnership(caller(r), next); err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"owner": next.Hex()})
}

func (s *Server) handleSetAuthorization(w http.ResponseWriter, r *http.Request) {
	var body authorizationRequest
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	addr, err := parseAddress(body.Address)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.ledger.SetAuthorization(caller(r), addr, body.Authorized); err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authorizationResponse{Address: addr.Hex(), Authorized: body.Authorized})
}

func (s *Server) handleGetAuthorization(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	ok, err := s.ledger.IsAuthorized(addr)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authorizationResponse{Address: addr.Hex(), Authorized: ok})
}

func (s *Server) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	var body submitRequest
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	price, err := parseAmount(body.Price)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	id, err := s.ledger.Submit(caller(r), body.MetadataRef, price)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	req, err := s.ledger.GetRequest(id)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPendingRequest(req))
}

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	offset, err := queryUint(r, "offset", 0)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	limit, err := queryUint(r, "limit", defaultPageSize)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if limit == 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	reqs, total, err := s.ledger.ListRequests(offset, limit)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	out := requestListResponse{Requests: make([]pendingRequestResponse, 0, len(reqs)), Total: total, Offset: offset}
	for _, req := range reqs {
		out.Requests = append(out.Requests, toPendingRequest(req))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	req, err := s.ledger.GetRequest(id)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPendingRequest(req))
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var body mintRequest
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	value, err := parseAmount(body.Value)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	assetID, err := s.ledger.Mint(caller(r), id, value)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	asset, err := s.ledger.Asset(assetID)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mintResponse{AssetID: assetID, Owner: asset.Owner.Hex(), Splitter: asset.Splitter.Hex()})
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	asset, err := s.ledger.Asset(id)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	ref, err := s.ledger.MetadataRef(id)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAsset(asset, ref))
}

func (s *Server) handleRoyaltyQuote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	salePrice, err := parseAmount(r.URL.Query().Get("salePrice"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	receiver, amount, err := s.ledger.RoyaltyQuote(id, salePrice)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, royaltyResponse{Receiver: receiver.Hex(), Amount: amountString(amount)})
}

func (s *Server) handleTransferAsset(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var body transferAssetRequest
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	to, err := parseAddress(body.To)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.ledger.TransferAsset(caller(r), to, id); err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"assetId": id, "owner": to.Hex()})
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var body paymentRequest
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	to, err := parseAddress(body.To)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	amount, err := parseAmount(body.Amount)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	settlement, err := s.ledger.Send(caller(r), to, amount)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	status := "transferred"
	if settlement != nil {
		status = "settled"
	}
	writeJSON(w, http.StatusOK, paymentResponse{Status: status, Settlement: toSettlement(settlement)})
}

func (s *Server) handleGetSplitter(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	sp, window, err := s.ledger.Splitter(addr)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	balance, err := s.ledger.Balance(addr)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, splitterResponse{
		AssetID:   sp.AssetID,
		Address:   sp.Address.Hex(),
		Creator:   sp.Creator.Hex(),
		Platform:  sp.Platform.Hex(),
		CreatedAt: sp.CreatedAt,
		Window:    window.String(),
		Balance:   amountString(balance),
	})
}

func (s *Server) handleResettle(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	settlement, err := s.ledger.Resettle(addr)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	status := "settled"
	if settlement == nil || settlement.Amount.Sign() == 0 {
		status = "empty"
	}
	writeJSON(w, http.StatusOK, paymentResponse{Status: status, Settlement: toSettlement(settlement)})
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	out := accountResponse{Address: addr.Hex()}
	balance, err := s.ledger.Balance(addr)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	out.Balance = amountString(balance)
	if out.Frozen, err = s.ledger.Frozen(addr); err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	if out.Assets, err = s.ledger.BalanceOf(addr); err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	if out.Authorized, err = s.ledger.IsAuthorized(addr); err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCredit(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var body creditRequest
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	amount, err := parseAmount(body.Amount)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.ledger.Credit(caller(r), addr, amount); err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	balance, err := s.ledger.Balance(addr)
	if err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"address": addr.Hex(), "balance": amountString(balance)})
}

func (s *Server) handleFreeze(w http.ResponseWriter, r *http.Request) {
	addr, err := pathAddress(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var body freezeRequest
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.ledger.SetFrozen(caller(r), addr, body.Frozen); err != nil {
		s.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"address": addr.Hex(), "frozen": body.Frozen})
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		writeError(w, http.StatusServiceUnavailable, "indexer_disabled", "event indexer not configured")
		return
	}
	after, err := queryUint(r, "after", 0)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	limit, err := queryUint(r, "limit", 0)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	filter := indexer.Filter{
		Type:  strings.TrimSpace(r.URL.Query().Get("type")),
		After: after,
		Limit: int(limit),
	}
	evts, err := s.events.Query(r.Context(), filter)
	if err != nil {
		s.logger.Error("event query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": evts})
}
