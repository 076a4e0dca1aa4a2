package splitter

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// WindowDuration is how long after mint the creator shares in resale payments.
	WindowDuration = 365 * 24 * time.Hour
	// CreatorShareBps is the creator share of a payment inside the window.
	CreatorShareBps = 5_000
)

// WindowState is derived from elapsed time on every call and never stored.
type WindowState uint8

const (
	WindowActive WindowState = iota
	WindowExpired
)

func (s WindowState) String() string {
	switch s {
	case WindowActive:
		return "active"
	case WindowExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Splitter is the immutable configuration of the payment receiver bound to a
// minted asset.
type Splitter struct {
	AssetID   uint64         `json:"assetId"`
	Address   common.Address `json:"address"`
	Creator   common.Address `json:"creator"`
	Platform  common.Address `json:"platform"`
	CreatedAt int64          `json:"createdAt"`
}

// Clone returns a copy of the splitter.
func (s *Splitter) Clone() *Splitter {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

// FundsReceived is delivered to the splitter whenever value lands on its
// address.
type FundsReceived struct {
	Splitter common.Address
	Sender   common.Address
	Amount   *big.Int
}

// Settlement describes how a single payment was disbursed.
type Settlement struct {
	Splitter common.Address `json:"splitter"`
	AssetID  uint64         `json:"assetId"`
	Window   WindowState    `json:"window"`
	Amount   *big.Int       `json:"amount"`
	Creator  *big.Int       `json:"creator"`
	Platform *big.Int       `json:"platform"`
}
