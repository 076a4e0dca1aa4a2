package splitter

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	ledgererrors "celebmint/core/errors"
	"celebmint/core/events"
	amounts "celebmint/native/common"
)

var (
	errNilState      = errors.New("splitter engine: state not configured")
	errNilBank       = errors.New("splitter engine: bank not configured")
	errSplitterExist = errors.New("splitter engine: splitter already bound to asset")
)

// Bank moves value out of a splitter account.
type Bank interface {
	Transfer(from, to common.Address, amount *big.Int, memo string) error
	Balance(addr common.Address) (*big.Int, error)
}

type engineState interface {
	SplitterGet(assetID uint64) (*Splitter, bool, error)
	SplitterPut(s *Splitter) error
	SplitterAsset(addr common.Address) (uint64, bool, error)
	// Snapshot and RevertToSnapshot scope a disbursement so that its two
	// transfers land together or not at all.
	Snapshot() int
	RevertToSnapshot(id int)
}

// Engine is the arena of per-asset splitters and their payment handler.
type Engine struct {
	state    engineState
	bank     Bank
	emitter  events.Emitter
	nowFn    func() int64
	deployer common.Address
}

// NewEngine constructs an engine deriving splitter addresses from deployer.
func NewEngine(bank Bank, deployer common.Address) *Engine {
	return &Engine{
		bank:     bank,
		deployer: deployer,
		emitter:  events.NoopEmitter{},
		nowFn:    func() int64 { return time.Now().Unix() },
	}
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

// SetNowFunc overrides the time source used for window evaluation.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.bank == nil {
		return errNilBank
	}
	return nil
}

// AddressFor returns the deterministic splitter address of an asset.
func (e *Engine) AddressFor(assetID uint64) common.Address {
	return ethcrypto.CreateAddress(e.deployer, assetID)
}

// WindowAt evaluates the royalty window for a splitter created at createdAt.
func WindowAt(createdAt, now int64) WindowState {
	if now-createdAt < int64(WindowDuration/time.Second) {
		return WindowActive
	}
	return WindowExpired
}

// Split divides amount according to the window. The platform receives any odd
// unit while the window is active.
func Split(window WindowState, amount *big.Int) (creator, platform *big.Int, err error) {
	if window == WindowExpired {
		return big.NewInt(0), amounts.Clone(amount), nil
	}
	return amounts.SplitBps(amount, CreatorShareBps)
}

// Create binds a new splitter to assetID.
func (e *Engine) Create(assetID uint64, creator, platform common.Address, createdAt int64) (*Splitter, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if _, ok, err := e.state.SplitterGet(assetID); err != nil {
		return nil, err
	} else if ok {
		return nil, fmt.Errorf("%w: asset %d", errSplitterExist, assetID)
	}
	if platform == (common.Address{}) {
		return nil, fmt.Errorf("splitter engine: %w: platform payee", ledgererrors.ErrInvalidRecipient)
	}
	s := &Splitter{
		AssetID:   assetID,
		Address:   e.AddressFor(assetID),
		Creator:   creator,
		Platform:  platform,
		CreatedAt: createdAt,
	}
	if err := e.state.SplitterPut(s); err != nil {
		return nil, err
	}
	e.emitter.Emit(Created{Splitter: *s})
	return s.Clone(), nil
}

// ByAsset returns the splitter bound to assetID.
func (e *Engine) ByAsset(assetID uint64) (*Splitter, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	s, ok, err := e.state.SplitterGet(assetID)
	if err != nil {
		return nil, err
	}
	if !ok || s == nil {
		return nil, fmt.Errorf("splitter engine: asset %d: %w", assetID, ledgererrors.ErrNotFound)
	}
	return s.Clone(), nil
}

// Get returns the splitter living at addr.
func (e *Engine) Get(addr common.Address) (*Splitter, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	assetID, ok, err := e.state.SplitterAsset(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("splitter engine: %s: %w", addr.Hex(), ledgererrors.ErrNotFound)
	}
	return e.ByAsset(assetID)
}

// IsSplitter reports whether addr belongs to a splitter.
func (e *Engine) IsSplitter(addr common.Address) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}
	_, ok, err := e.state.SplitterAsset(addr)
	return ok, err
}

// Window returns the current window of the splitter at addr.
func (e *Engine) Window(addr common.Address) (WindowState, error) {
	s, err := e.Get(addr)
	if err != nil {
		return WindowExpired, err
	}
	return WindowAt(s.CreatedAt, e.now()), nil
}

// HandleFundsReceived disburses a payment that has already been credited to
// the splitter account. On failure neither payee is paid and the funds stay on
// the splitter.
func (e *Engine) HandleFundsReceived(msg FundsReceived) (*Settlement, error) {
	s, err := e.Get(msg.Splitter)
	if err != nil {
		return nil, err
	}
	amount := amounts.Clone(msg.Amount)
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("splitter engine: %w: negative payment", ledgererrors.ErrInvalidAmount)
	}
	window := WindowAt(s.CreatedAt, e.now())
	creatorShare, platformShare, err := Split(window, amount)
	if err != nil {
		return nil, err
	}
	settlement := &Settlement{
		Splitter: s.Address,
		AssetID:  s.AssetID,
		Window:   window,
		Amount:   amount,
		Creator:  creatorShare,
		Platform: platformShare,
	}
	if amount.Sign() == 0 {
		return settlement, nil
	}
	snap := e.state.Snapshot()
	if err := e.bank.Transfer(s.Address, s.Creator, creatorShare, "royalty.creator"); err != nil {
		e.state.RevertToSnapshot(snap)
		return nil, fmt.Errorf("splitter %s: creator payout: %w: %w", s.Address.Hex(), ledgererrors.ErrDisbursementFailed, err)
	}
	if err := e.bank.Transfer(s.Address, s.Platform, platformShare, "royalty.platform"); err != nil {
		e.state.RevertToSnapshot(snap)
		return nil, fmt.Errorf("splitter %s: platform payout: %w: %w", s.Address.Hex(), ledgererrors.ErrDisbursementFailed, err)
	}
	e.emitter.Emit(PaymentSplit{Sender: msg.Sender, Settlement: *settlement})
	return settlement, nil
}

// Resettle disburses whatever balance was left on the splitter by an earlier
// failed disbursement. It is treated as a fresh payment from the splitter.
func (e *Engine) Resettle(addr common.Address) (*Settlement, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if _, err := e.Get(addr); err != nil {
		return nil, err
	}
	balance, err := e.bank.Balance(addr)
	if err != nil {
		return nil, err
	}
	return e.HandleFundsReceived(FundsReceived{Splitter: addr, Sender: addr, Amount: balance})
}
