package access

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"celebmint/core/events"
	"celebmint/core/types"
)

const (
	// EventTypeAuthorizationChanged is emitted when the owner toggles a creator.
	EventTypeAuthorizationChanged = "access.authorization.changed"
	// EventTypeOwnershipTransferred is emitted when the registry changes hands.
	EventTypeOwnershipTransferred = "access.ownership.transferred"
)

// AuthorizationChanged records a creator authorization toggle.
type AuthorizationChanged struct {
	Creator    common.Address
	Authorized bool
}

func (AuthorizationChanged) EventType() string { return EventTypeAuthorizationChanged }

func (e AuthorizationChanged) Event() *types.Event {
	return &types.Event{
		Type: EventTypeAuthorizationChanged,
		Attributes: map[string]string{
			"creator":    events.HexAddress(e.Creator),
			"authorized": strconv.FormatBool(e.Authorized),
		},
	}
}

// OwnershipTransferred records a registry owner change.
type OwnershipTransferred struct {
	Previous common.Address
	Next     common.Address
}

func (OwnershipTransferred) EventType() string { return EventTypeOwnershipTransferred }

func (e OwnershipTransferred) Event() *types.Event {
	return &types.Event{
		Type: EventTypeOwnershipTransferred,
		Attributes: map[string]string{
			"previousOwner": events.HexAddress(e.Previous),
			"newOwner":      events.HexAddress(e.Next),
		},
	}
}
