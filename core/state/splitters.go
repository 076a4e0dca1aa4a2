package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"celebmint/native/splitter"
)

type storedSplitter struct {
	Address   common.Address
	Creator   common.Address
	Platform  common.Address
	CreatedAt uint64
}

// SplitterGet loads the splitter bound to assetID.
func (m *Manager) SplitterGet(assetID uint64) (*splitter.Splitter, bool, error) {
	var stored storedSplitter
	ok, err := m.KVGet(SplitterKey(assetID), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &splitter.Splitter{
		AssetID:   assetID,
		Address:   stored.Address,
		Creator:   stored.Creator,
		Platform:  stored.Platform,
		CreatedAt: int64(stored.CreatedAt),
	}, true, nil
}

// SplitterPut persists a splitter and its address index entry.
func (m *Manager) SplitterPut(s *splitter.Splitter) error {
	if s == nil {
		return fmt.Errorf("nil splitter")
	}
	if s.CreatedAt < 0 {
		return fmt.Errorf("splitter %d: negative creation time", s.AssetID)
	}
	if err := m.KVPut(SplitterKey(s.AssetID), &storedSplitter{
		Address:   s.Address,
		Creator:   s.Creator,
		Platform:  s.Platform,
		CreatedAt: uint64(s.CreatedAt),
	}); err != nil {
		return err
	}
	return m.KVPut(SplitterAddressKey(s.Address), s.AssetID)
}

// SplitterAsset resolves a splitter address to its asset id.
func (m *Manager) SplitterAsset(addr common.Address) (uint64, bool, error) {
	var id uint64
	ok, err := m.KVGet(SplitterAddressKey(addr), &id)
	if err != nil {
		return 0, false, err
	}
	return id, ok, nil
}
