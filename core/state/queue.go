package state

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"celebmint/native/queue"
)

type storedPendingRequest struct {
	Creator     common.Address
	MetadataRef string
	Price       *big.Int
	Minted      bool
}

// PendingCount returns the number of submitted requests.
func (m *Manager) PendingCount() (uint64, error) {
	var n uint64
	if _, err := m.KVGet(pendingCountKeyBytes, &n); err != nil {
		return 0, err
	}
	return n, nil
}

// SetPendingCount records the number of submitted requests.
func (m *Manager) SetPendingCount(n uint64) error {
	return m.KVPut(pendingCountKeyBytes, n)
}

// PendingGet loads a pending request by id.
func (m *Manager) PendingGet(id uint64) (*queue.PendingRequest, bool, error) {
	var stored storedPendingRequest
	ok, err := m.KVGet(PendingRequestKey(id), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	req := &queue.PendingRequest{
		ID:          id,
		Creator:     stored.Creator,
		MetadataRef: stored.MetadataRef,
		Price:       big.NewInt(0),
		Minted:      stored.Minted,
	}
	if stored.Price != nil {
		req.Price = new(big.Int).Set(stored.Price)
	}
	return req, true, nil
}

// PendingPut persists a pending request.
func (m *Manager) PendingPut(req *queue.PendingRequest) error {
	if req == nil {
		return fmt.Errorf("nil pending request")
	}
	price := req.Price
	if price == nil {
		price = big.NewInt(0)
	}
	return m.KVPut(PendingRequestKey(req.ID), &storedPendingRequest{
		Creator:     req.Creator,
		MetadataRef: req.MetadataRef,
		Price:       new(big.Int).Set(price),
		Minted:      req.Minted,
	})
}
