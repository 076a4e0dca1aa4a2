package state

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
)

var (
	accountPrefix         = []byte("account/")
	accessOwnerKeyBytes   = []byte("access/owner")
	accessCreatorPrefix   = []byte("access/creator/")
	pendingCountKeyBytes  = []byte("queue/count")
	pendingRequestPrefix  = []byte("queue/request/")
	assetPrefix           = []byte("asset/record/")
	assetOwnedCountPrefix = []byte("asset/owned/")
	splitterPrefix        = []byte("splitter/asset/")
	splitterAddrPrefix    = []byte("splitter/address/")
)

func addrKey(prefix []byte, addr common.Address) []byte {
	buf := make([]byte, len(prefix)+common.AddressLength)
	copy(buf, prefix)
	copy(buf[len(prefix):], addr[:])
	return buf
}

func idKey(prefix []byte, id uint64) []byte {
	buf := make([]byte, len(prefix)+8)
	copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[len(prefix):], id)
	return buf
}

// AccountKey is the storage key of an account balance.
func AccountKey(addr common.Address) []byte { return addrKey(accountPrefix, addr) }

// AccessCreatorKey is the storage key of a creator authorization flag.
func AccessCreatorKey(addr common.Address) []byte { return addrKey(accessCreatorPrefix, addr) }

// PendingRequestKey is the storage key of a pending request.
func PendingRequestKey(id uint64) []byte { return idKey(pendingRequestPrefix, id) }

// AssetKey is the storage key of a minted asset.
func AssetKey(id uint64) []byte { return idKey(assetPrefix, id) }

// AssetOwnedCountKey is the storage key of an owner's asset count.
func AssetOwnedCountKey(addr common.Address) []byte { return addrKey(assetOwnedCountPrefix, addr) }

// SplitterKey is the storage key of the splitter bound to an asset.
func SplitterKey(assetID uint64) []byte { return idKey(splitterPrefix, assetID) }

// SplitterAddressKey is the storage key of the splitter address index.
func SplitterAddressKey(addr common.Address) []byte { return addrKey(splitterAddrPrefix, addr) }
