package splitter

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"celebmint/core/events"
	"celebmint/core/types"
)

const (
	// EventTypeSplitterCreated is emitted when a splitter is bound to an asset.
	EventTypeSplitterCreated = "splitter.created"
	// EventTypePaymentSplit is emitted once an inbound payment is disbursed.
	EventTypePaymentSplit = "splitter.payment.split"
)

// Created announces a new splitter.
type Created struct {
	Splitter Splitter
}

func (Created) EventType() string { return EventTypeSplitterCreated }

func (e Created) Event() *types.Event {
	return &types.Event{
		Type: EventTypeSplitterCreated,
		Attributes: map[string]string{
			"assetId":   strconv.FormatUint(e.Splitter.AssetID, 10),
			"splitter":  events.HexAddress(e.Splitter.Address),
			"creator":   events.HexAddress(e.Splitter.Creator),
			"platform":  events.HexAddress(e.Splitter.Platform),
			"createdAt": strconv.FormatInt(e.Splitter.CreatedAt, 10),
		},
	}
}

// PaymentSplit records the outcome of a FundsReceived event.
type PaymentSplit struct {
	Sender     common.Address
	Settlement Settlement
}

func (PaymentSplit) EventType() string { return EventTypePaymentSplit }

func (e PaymentSplit) Event() *types.Event {
	s := e.Settlement
	return &types.Event{
		Type: EventTypePaymentSplit,
		Attributes: map[string]string{
			"assetId":  strconv.FormatUint(s.AssetID, 10),
			"splitter": events.HexAddress(s.Splitter),
			"sender":   events.HexAddress(e.Sender),
			"window":   s.Window.String(),
			"amount":   s.Amount.String(),
			"creator":  s.Creator.String(),
			"platform": s.Platform.String(),
		},
	}
}
