package minting

import (
	"encoding/hex"
	"fmt"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Capability is a 4-byte interface identifier queried by external callers.
type Capability [4]byte

// String renders the capability as 0x-prefixed hex.
func (c Capability) String() string { return "0x" + hex.EncodeToString(c[:]) }

// ParseCapability decodes a 0x-prefixed or bare 8 hex digit code.
func ParseCapability(raw string) (Capability, error) {
	var out Capability
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(raw), "0x"), "0X")
	if len(trimmed) != 8 {
		return out, fmt.Errorf("capability code must be 4 bytes, got %q", raw)
	}
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return out, fmt.Errorf("decode capability code: %w", err)
	}
	copy(out[:], decoded)
	return out, nil
}

func selector(signature string) Capability {
	var out Capability
	copy(out[:], ethcrypto.Keccak256([]byte(signature))[:4])
	return out
}

func xorSelectors(signatures ...string) Capability {
	var out Capability
	for _, sig := range signatures {
		s := selector(sig)
		for i := range out {
			out[i] ^= s[i]
		}
	}
	return out
}

var (
	// CapabilityPresenceCheck is the ERC-165 interface id.
	CapabilityPresenceCheck = selector("supportsInterface(bytes4)")
	// CapabilityOwnedAsset is the ERC-721 interface id.
	CapabilityOwnedAsset = xorSelectors(
		"balanceOf(address)",
		"ownerOf(uint256)",
		"approve(address,uint256)",
		"getApproved(uint256)",
		"setApprovalForAll(address,bool)",
		"isApprovedForAll(address,address)",
		"transferFrom(address,address,uint256)",
		"safeTransferFrom(address,address,uint256)",
		"safeTransferFrom(address,address,uint256,bytes)",
	)
	// CapabilityRoyaltyQuote is the ERC-2981 interface id.
	CapabilityRoyaltyQuote = selector("royaltyInfo(uint256,uint256)")

	invalidCapability = Capability{0xff, 0xff, 0xff, 0xff}
)

// Capabilities lists the codes the ledger answers true for.
func Capabilities() []Capability {
	return []Capability{CapabilityPresenceCheck, CapabilityOwnedAsset, CapabilityRoyaltyQuote}
}

// SupportsCapability reports whether code names a supported capability set.
func SupportsCapability(code Capability) bool {
	if code == invalidCapability {
		return false
	}
	for _, c := range Capabilities() {
		if c == code {
			return true
		}
	}
	return false
}
