package bank

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	ledgererrors "celebmint/core/errors"
	"celebmint/core/events"
	"celebmint/core/types"
	amounts "celebmint/native/common"
)

var errNilState = errors.New("bank engine: state not configured")

type engineState interface {
	GetAccount(addr common.Address) (*types.Account, error)
	PutAccount(addr common.Address, account *types.Account) error
}

// Engine moves value between accounts. Every debit is matched by a credit in
// the same call, so supply only changes through Credit.
type Engine struct {
	state   engineState
	emitter events.Emitter
}

// NewEngine constructs a bank engine with a no-op emitter.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(evt)
}

func ensureAccount(acc *types.Account) *types.Account {
	if acc == nil {
		return &types.Account{Balance: big.NewInt(0)}
	}
	if acc.Balance == nil {
		acc.Balance = big.NewInt(0)
	}
	return acc
}

func (e *Engine) account(addr common.Address) (*types.Account, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	acc, err := e.state.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	return ensureAccount(acc), nil
}

// Balance returns the spendable balance of addr.
func (e *Engine) Balance(addr common.Address) (*big.Int, error) {
	acc, err := e.account(addr)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(acc.Balance), nil
}

// Frozen reports whether addr refuses incoming value.
func (e *Engine) Frozen(addr common.Address) (bool, error) {
	acc, err := e.account(addr)
	if err != nil {
		return false, err
	}
	return acc.Frozen, nil
}

// SetFrozen toggles whether addr accepts incoming value.
func (e *Engine) SetFrozen(addr common.Address, frozen bool) error {
	acc, err := e.account(addr)
	if err != nil {
		return err
	}
	acc.Frozen = frozen
	return e.state.PutAccount(addr, acc)
}

func (e *Engine) credit(to common.Address, amount *big.Int) error {
	if to == (common.Address{}) {
		return fmt.Errorf("bank: %w: zero address", ledgererrors.ErrInvalidRecipient)
	}
	acc, err := e.account(to)
	if err != nil {
		return err
	}
	if acc.Frozen {
		return fmt.Errorf("bank: credit %s: %w", to.Hex(), ledgererrors.ErrAccountFrozen)
	}
	next := new(big.Int).Add(acc.Balance, amount)
	if _, err := amounts.ToUint256(next); err != nil {
		return fmt.Errorf("bank: credit %s: %w", to.Hex(), err)
	}
	acc.Balance = next
	return e.state.PutAccount(to, acc)
}

// Credit issues new value to an account. It backs the operator faucet.
func (e *Engine) Credit(to common.Address, amount *big.Int, memo string) error {
	if err := amounts.ValidatePositive(amount); err != nil {
		return err
	}
	if err := e.credit(to, amount); err != nil {
		return err
	}
	e.emit(events.Transfer{To: to, Amount: amounts.Clone(amount), Memo: strings.TrimSpace(memo)})
	return nil
}

// Transfer debits from and credits to. Zero amounts are a no-op.
func (e *Engine) Transfer(from, to common.Address, amount *big.Int, memo string) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("bank: %w: negative transfer", ledgererrors.ErrInvalidAmount)
	}
	fromAcc, err := e.account(from)
	if err != nil {
		return err
	}
	if fromAcc.Balance.Cmp(amount) < 0 {
		return fmt.Errorf("bank: debit %s: %w", from.Hex(), ledgererrors.ErrInsufficientFunds)
	}
	fromAcc.Balance = new(big.Int).Sub(fromAcc.Balance, amount)
	if err := e.state.PutAccount(from, fromAcc); err != nil {
		return err
	}
	if err := e.credit(to, amount); err != nil {
		return err
	}
	e.emit(events.Transfer{From: from, To: to, Amount: amounts.Clone(amount), Memo: strings.TrimSpace(memo)})
	return nil
}
