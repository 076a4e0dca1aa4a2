package types

import "math/big"

// Account holds the spendable balance of an address. Balances are denominated
// in the smallest indivisible unit of the platform currency.
type Account struct {
	Balance *big.Int `json:"balance"`
	Frozen  bool     `json:"frozen"`
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	clone := *a
	if a.Balance != nil {
		clone.Balance = new(big.Int).Set(a.Balance)
	} else {
		clone.Balance = big.NewInt(0)
	}
	return &clone
}
