package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"celebmint/native/minting"
)

type storedAsset struct {
	Owner         common.Address
	MintTimestamp uint64
	Splitter      common.Address
}

// AssetGet loads a minted asset.
func (m *Manager) AssetGet(id uint64) (*minting.MintedAsset, bool, error) {
	var stored storedAsset
	ok, err := m.KVGet(AssetKey(id), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &minting.MintedAsset{
		ID:            id,
		Owner:         stored.Owner,
		MintTimestamp: int64(stored.MintTimestamp),
		Splitter:      stored.Splitter,
	}, true, nil
}

// AssetPut persists a minted asset.
func (m *Manager) AssetPut(asset *minting.MintedAsset) error {
	if asset == nil {
		return fmt.Errorf("nil asset")
	}
	if asset.MintTimestamp < 0 {
		return fmt.Errorf("asset %d: negative mint timestamp", asset.ID)
	}
	return m.KVPut(AssetKey(asset.ID), &storedAsset{
		Owner:         asset.Owner,
		MintTimestamp: uint64(asset.MintTimestamp),
		Splitter:      asset.Splitter,
	})
}

// OwnedCount returns the number of assets held by owner.
func (m *Manager) OwnedCount(owner common.Address) (uint64, error) {
	var n uint64
	if _, err := m.KVGet(AssetOwnedCountKey(owner), &n); err != nil {
		return 0, err
	}
	return n, nil
}

// SetOwnedCount records the number of assets held by owner.
func (m *Manager) SetOwnedCount(owner common.Address, n uint64) error {
	if n == 0 {
		return m.KVDelete(AssetOwnedCountKey(owner))
	}
	return m.KVPut(AssetOwnedCountKey(owner), n)
}
