package rpc

import (
	"celebmint/native/minting"
	"celebmint/native/queue"
	"celebmint/native/splitter"
)

type capabilityResponse struct {
	Code      string `json:"code"`
	Supported bool   `json:"supported"`
}

type authorizationRequest struct {
	Address    string `json:"address"`
	Authorized bool   `json:"authorized"`
}

type authorizationResponse struct {
	Address    string `json:"address"`
	Authorized bool   `json:"authorized"`
}

type ownershipRequest struct {
	NewOwner string `json:"newOwner"`
}

type submitRequest struct {
	MetadataRef string `json:"metadataRef"`
	Price       string `json:"price"`
}

type pendingRequestResponse struct {
	ID          uint64 `json:"id"`
	Creator     string `json:"creator"`
	MetadataRef string `json:"metadataRef"`
	Price       string `json:"price"`
	Minted      bool   `json:"minted"`
}

type requestListResponse struct {
	Requests []pendingRequestResponse `json:"requests"`
	Total    uint64                   `json:"total"`
	Offset   uint64                   `json:"offset"`
}

type mintRequest struct {
	Value string `json:"value"`
}

type mintResponse struct {
	AssetID  uint64 `json:"assetId"`
	Owner    string `json:"owner"`
	Splitter string `json:"splitter"`
}

type assetResponse struct {
	ID            uint64 `json:"id"`
	Owner         string `json:"owner"`
	MintTimestamp int64  `json:"mintTimestamp"`
	Splitter      string `json:"splitter"`
	MetadataRef   string `json:"metadataRef"`
}

type royaltyResponse struct {
	Receiver string `json:"receiver"`
	Amount   string `json:"amount"`
}

type transferAssetRequest struct {
	To string `json:"to"`
}

type paymentRequest struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type settlementResponse struct {
	Splitter string `json:"splitter"`
	AssetID  uint64 `json:"assetId"`
	Window   string `json:"window"`
	Amount   string `json:"amount"`
	Creator  string `json:"creator"`
	Platform string `json:"platform"`
}

type paymentResponse struct {
	Status     string              `json:"status"`
	Settlement *settlementResponse `json:"settlement,omitempty"`
}

type splitterResponse struct {
	AssetID   uint64 `json:"assetId"`
	Address   string `json:"address"`
	Creator   string `json:"creator"`
	Platform  string `json:"platform"`
	CreatedAt int64  `json:"createdAt"`
	Window    string `json:"window"`
	Balance   string `json:"balance"`
}

type accountResponse struct {
	Address    string `json:"address"`
	Balance    string `json:"balance"`
	Frozen     bool   `json:"frozen"`
	Assets     uint64 `json:"assets"`
	Authorized bool   `json:"authorized"`
}

type creditRequest struct {
	Amount string `json:"amount"`
}

type freezeRequest struct {
	Frozen bool `json:"frozen"`
}

func toPendingRequest(req *queue.PendingRequest) pendingRequestResponse {
	return pendingRequestResponse{
		ID:          req.ID,
		Creator:     req.Creator.Hex(),
		MetadataRef: req.MetadataRef,
		Price:       amountString(req.Price),
		Minted:      req.Minted,
	}
}

func toAsset(asset *minting.MintedAsset, metadataRef string) assetResponse {
	return assetResponse{
		ID:            asset.ID,
		Owner:         asset.Owner.Hex(),
		MintTimestamp: asset.MintTimestamp,
		Splitter:      asset.Splitter.Hex(),
		MetadataRef:   metadataRef,
	}
}

func toSettlement(s *splitter.Settlement) *settlementResponse {
	if s == nil {
		return nil
	}
	return &settlementResponse{
		Splitter: s.Splitter.Hex(),
		AssetID:  s.AssetID,
		Window:   s.Window.String(),
		Amount:   amountString(s.Amount),
		Creator:  amountString(s.Creator),
		Platform: amountString(s.Platform),
	}
}
