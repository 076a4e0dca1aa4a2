package state

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"celebmint/core/types"
)

type storedAccount struct {
	Balance *big.Int
	Frozen  bool
}

// GetAccount loads the account for addr. Unknown addresses yield a zero
// balance account.
func (m *Manager) GetAccount(addr common.Address) (*types.Account, error) {
	var stored storedAccount
	ok, err := m.KVGet(AccountKey(addr), &stored)
	if err != nil {
		return nil, err
	}
	account := &types.Account{Balance: big.NewInt(0)}
	if !ok {
		return account, nil
	}
	if stored.Balance != nil {
		account.Balance = new(big.Int).Set(stored.Balance)
	}
	account.Frozen = stored.Frozen
	return account, nil
}

// PutAccount persists the provided account state under the supplied address.
func (m *Manager) PutAccount(addr common.Address, account *types.Account) error {
	if account == nil {
		return fmt.Errorf("nil account")
	}
	balance := account.Balance
	if balance == nil {
		balance = big.NewInt(0)
	}
	if balance.Sign() < 0 {
		return fmt.Errorf("negative balance for %s", addr.Hex())
	}
	if _, overflow := uint256.FromBig(balance); overflow {
		return fmt.Errorf("balance overflow")
	}
	return m.KVPut(AccountKey(addr), &storedAccount{Balance: new(big.Int).Set(balance), Frozen: account.Frozen})
}
