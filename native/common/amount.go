package common

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	ledgererrors "celebmint/core/errors"
)

// BpsDenominator is the basis point scale used by every split in the ledger.
const BpsDenominator = 10_000

// ToUint256 converts a non-negative amount into its 256-bit representation.
// Amounts that are negative or do not fit in 256 bits are rejected.
func ToUint256(v *big.Int) (*uint256.Int, error) {
	if v == nil {
		return new(uint256.Int), nil
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative amount %s", ledgererrors.ErrInvalidAmount, v)
	}
	out, overflow := uint256.FromBig(v)
	if overflow {
		return nil, fmt.Errorf("%w: amount exceeds 256 bits", ledgererrors.ErrInvalidAmount)
	}
	return out, nil
}

// ValidatePositive ensures the amount is strictly positive and representable.
func ValidatePositive(v *big.Int) error {
	if v == nil || v.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be positive", ledgererrors.ErrInvalidAmount)
	}
	_, err := ToUint256(v)
	return err
}

// MulBps returns floor(v * bps / 10_000).
func MulBps(v *big.Int, bps uint64) (*big.Int, error) {
	x, err := ToUint256(v)
	if err != nil {
		return nil, err
	}
	if bps > BpsDenominator {
		return nil, fmt.Errorf("%w: bps out of range: %d", ledgererrors.ErrInvalidAmount, bps)
	}
	out, overflow := new(uint256.Int).MulDivOverflow(x, uint256.NewInt(bps), uint256.NewInt(BpsDenominator))
	if overflow {
		return nil, fmt.Errorf("%w: bps product overflow", ledgererrors.ErrInvalidAmount)
	}
	return out.ToBig(), nil
}

// SplitBps divides v into a share of bps basis points and the remainder. The
// remainder absorbs any rounding dust.
func SplitBps(v *big.Int, bps uint64) (share, rest *big.Int, err error) {
	share, err = MulBps(v, bps)
	if err != nil {
		return nil, nil, err
	}
	return share, new(big.Int).Sub(v, share), nil
}

// Clone returns a copy of v, mapping nil to zero.
func Clone(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
