package events

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"celebmint/core/types"
)

const (
	// TypeTransfer is emitted for every balance movement between accounts.
	TypeTransfer = "transfer.native"
)

// Transfer captures a value movement recorded by the bank.
type Transfer struct {
	From   common.Address
	To     common.Address
	Amount *big.Int
	Memo   string
}

func (Transfer) EventType() string { return TypeTransfer }

func (e Transfer) Event() *types.Event {
	attrs := map[string]string{
		"from":   HexAddress(e.From),
		"to":     HexAddress(e.To),
		"amount": formatAmount(e.Amount),
	}
	if memo := strings.TrimSpace(e.Memo); memo != "" {
		attrs["memo"] = memo
	}
	return &types.Event{Type: TypeTransfer, Attributes: attrs}
}
