package queue

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PendingRequest is a sale offer registered by an authorized creator. Once
// Minted is set the record is frozen.
type PendingRequest struct {
	ID          uint64         `json:"id"`
	Creator     common.Address `json:"creator"`
	MetadataRef string         `json:"metadataRef"`
	Price       *big.Int       `json:"price"`
	Minted      bool           `json:"minted"`
}

// Clone returns a deep copy of the request.
func (r *PendingRequest) Clone() *PendingRequest {
	if r == nil {
		return nil
	}
	clone := *r
	if r.Price != nil {
		clone.Price = new(big.Int).Set(r.Price)
	} else {
		clone.Price = big.NewInt(0)
	}
	return &clone
}
