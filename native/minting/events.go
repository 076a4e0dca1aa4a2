package minting

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"celebmint/core/events"
	"celebmint/core/types"
)

const (
	// EventTypeAssetTransfer is emitted whenever asset ownership changes,
	// including the mint itself (from the zero address).
	EventTypeAssetTransfer = "asset.transfer"
	// EventTypePrimarySettled is emitted once the primary sale is disbursed.
	EventTypePrimarySettled = "minting.primary.settled"
)

// AssetTransfer is the observable ownership change.
type AssetTransfer struct {
	AssetID uint64
	From    common.Address
	To      common.Address
}

func (AssetTransfer) EventType() string { return EventTypeAssetTransfer }

func (e AssetTransfer) Event() *types.Event {
	return &types.Event{
		Type: EventTypeAssetTransfer,
		Attributes: map[string]string{
			"assetId": strconv.FormatUint(e.AssetID, 10),
			"from":    events.HexAddress(e.From),
			"to":      events.HexAddress(e.To),
		},
	}
}

// PrimarySettled captures the creator/platform split of a mint payment.
type PrimarySettled struct {
	AssetID  uint64
	Payer    common.Address
	Amount   string
	Creator  string
	Platform string
}

func (PrimarySettled) EventType() string { return EventTypePrimarySettled }

func (e PrimarySettled) Event() *types.Event {
	return &types.Event{
		Type: EventTypePrimarySettled,
		Attributes: map[string]string{
			"assetId":  strconv.FormatUint(e.AssetID, 10),
			"payer":    events.HexAddress(e.Payer),
			"amount":   e.Amount,
			"creator":  e.Creator,
			"platform": e.Platform,
		},
	}
}
