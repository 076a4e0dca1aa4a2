package minting

import "github.com/ethereum/go-ethereum/common"

const (
	// CreatorPrimaryBps is the creator share of the primary sale. The platform
	// receives the remainder.
	CreatorPrimaryBps = 3_000
	// RoyaltyBps is the advisory royalty quoted to resellers.
	RoyaltyBps = 500
)

// MintedAsset is the owned record created when a pending request is paid.
type MintedAsset struct {
	ID            uint64         `json:"id"`
	Owner         common.Address `json:"owner"`
	MintTimestamp int64          `json:"mintTimestamp"`
	Splitter      common.Address `json:"splitter"`
}

// Clone returns a copy of the asset.
func (a *MintedAsset) Clone() *MintedAsset {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}
