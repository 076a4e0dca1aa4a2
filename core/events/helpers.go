package events

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// HexAddress renders an address in lower-case 0x form for event attributes.
func HexAddress(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}
