package queue

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"celebmint/core/events"
	"celebmint/core/types"
)

// EventTypeRequestSubmitted is emitted when a creator queues a mint request.
const EventTypeRequestSubmitted = "queue.request.submitted"

// RequestSubmitted announces a new pending request.
type RequestSubmitted struct {
	ID          uint64
	Creator     common.Address
	MetadataRef string
	Price       string
}

func (RequestSubmitted) EventType() string { return EventTypeRequestSubmitted }

func (e RequestSubmitted) Event() *types.Event {
	return &types.Event{
		Type: EventTypeRequestSubmitted,
		Attributes: map[string]string{
			"id":          strconv.FormatUint(e.ID, 10),
			"creator":     events.HexAddress(e.Creator),
			"metadataRef": e.MetadataRef,
			"price":       e.Price,
		},
	}
}
