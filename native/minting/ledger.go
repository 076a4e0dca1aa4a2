package minting

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	ledgererrors "celebmint/core/errors"
	"celebmint/core/events"
	amounts "celebmint/native/common"
	"celebmint/native/queue"
	"celebmint/native/splitter"
)

var (
	errNilState    = errors.New("minting ledger: state not configured")
	errNilPlatform = errors.New("minting ledger: platform address not configured")
	errNotWired    = errors.New("minting ledger: dependencies not configured")
)

// RequestSource is the pending queue as seen by the ledger.
type RequestSource interface {
	Get(id uint64) (*queue.PendingRequest, error)
	Consume(id uint64) (*queue.PendingRequest, error)
}

// SplitterFactory binds royalty splitters to minted assets.
type SplitterFactory interface {
	Create(assetID uint64, creator, platform common.Address, createdAt int64) (*splitter.Splitter, error)
}

// Bank moves the mint payment to its payees.
type Bank interface {
	Balance(addr common.Address) (*big.Int, error)
	Transfer(from, to common.Address, amount *big.Int, memo string) error
}

type engineState interface {
	AssetGet(id uint64) (*MintedAsset, bool, error)
	AssetPut(asset *MintedAsset) error
	OwnedCount(owner common.Address) (uint64, error)
	SetOwnedCount(owner common.Address, n uint64) error
}

// Ledger is the sole authority that turns a paid pending request into an
// owned asset.
type Ledger struct {
	state     engineState
	requests  RequestSource
	splitters SplitterFactory
	bank      Bank
	emitter   events.Emitter
	nowFn     func() int64
	platform  common.Address
}

// NewLedger wires the ledger to its collaborators.
func NewLedger(requests RequestSource, splitters SplitterFactory, bank Bank, platform common.Address) *Ledger {
	return &Ledger{
		requests:  requests,
		splitters: splitters,
		bank:      bank,
		platform:  platform,
		emitter:   events.NoopEmitter{},
		nowFn:     func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the ledger.
func (l *Ledger) SetState(state engineState) { l.state = state }

// SetEmitter configures the event emitter used by the ledger.
func (l *Ledger) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		l.emitter = events.NoopEmitter{}
		return
	}
	l.emitter = emitter
}

// SetNowFunc overrides the time source used for mint timestamps.
func (l *Ledger) SetNowFunc(now func() int64) {
	if now == nil {
		l.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	l.nowFn = now
}

// Platform returns the platform payee.
func (l *Ledger) Platform() common.Address { return l.platform }

func (l *Ledger) now() int64 {
	if l == nil || l.nowFn == nil {
		return time.Now().Unix()
	}
	return l.nowFn()
}

func (l *Ledger) ready() error {
	if l == nil || l.state == nil {
		return errNilState
	}
	if l.requests == nil || l.splitters == nil || l.bank == nil {
		return errNotWired
	}
	if l.platform == (common.Address{}) {
		return errNilPlatform
	}
	return nil
}

// Mint pays for request id with value and assigns the resulting asset to
// caller. The caller does not have to be the creator.
func (l *Ledger) Mint(caller common.Address, id uint64, value *big.Int) (uint64, error) {
	if err := l.ready(); err != nil {
		return 0, err
	}
	req, err := l.requests.Get(id)
	if err != nil {
		return 0, err
	}
	if req.Minted {
		return 0, fmt.Errorf("minting ledger: request %d: %w", id, ledgererrors.ErrAlreadyMinted)
	}
	paid := amounts.Clone(value)
	if paid.Cmp(req.Price) != 0 {
		return 0, fmt.Errorf("minting ledger: paid %s, price %s: %w", paid, req.Price, ledgererrors.ErrInvalidAmount)
	}
	balance, err := l.bank.Balance(caller)
	if err != nil {
		return 0, err
	}
	if balance.Cmp(paid) < 0 {
		return 0, fmt.Errorf("minting ledger: %s: %w", caller.Hex(), ledgererrors.ErrInsufficientFunds)
	}
	creatorShare, platformShare, err := amounts.SplitBps(paid, CreatorPrimaryBps)
	if err != nil {
		return 0, err
	}

	if _, err := l.requests.Consume(id); err != nil {
		return 0, err
	}
	now := l.now()
	s, err := l.splitters.Create(id, req.Creator, l.platform, now)
	if err != nil {
		return 0, err
	}
	asset := &MintedAsset{
		ID:            id,
		Owner:         caller,
		MintTimestamp: now,
		Splitter:      s.Address,
	}
	if err := l.state.AssetPut(asset); err != nil {
		return 0, err
	}
	if err := l.adjustOwned(caller, 1); err != nil {
		return 0, err
	}
	if err := l.bank.Transfer(caller, req.Creator, creatorShare, "mint.creator"); err != nil {
		return 0, fmt.Errorf("minting ledger: creator payout: %w: %w", ledgererrors.ErrDisbursementFailed, err)
	}
	if err := l.bank.Transfer(caller, l.platform, platformShare, "mint.platform"); err != nil {
		return 0, fmt.Errorf("minting ledger: platform payout: %w: %w", ledgererrors.ErrDisbursementFailed, err)
	}
	l.emitter.Emit(AssetTransfer{AssetID: id, To: caller})
	l.emitter.Emit(PrimarySettled{
		AssetID:  id,
		Payer:    caller,
		Amount:   paid.String(),
		Creator:  creatorShare.String(),
		Platform: platformShare.String(),
	})
	return id, nil
}

func (l *Ledger) adjustOwned(owner common.Address, delta int) error {
	n, err := l.state.OwnedCount(owner)
	if err != nil {
		return err
	}
	switch {
	case delta > 0:
		n += uint64(delta)
	case uint64(-delta) > n:
		return fmt.Errorf("minting ledger: owned count underflow for %s", owner.Hex())
	default:
		n -= uint64(-delta)
	}
	return l.state.SetOwnedCount(owner, n)
}

// Asset returns the minted asset record.
func (l *Ledger) Asset(assetID uint64) (*MintedAsset, error) {
	if l == nil || l.state == nil {
		return nil, errNilState
	}
	asset, ok, err := l.state.AssetGet(assetID)
	if err != nil {
		return nil, err
	}
	if !ok || asset == nil {
		return nil, fmt.Errorf("minting ledger: asset %d: %w", assetID, ledgererrors.ErrNotFound)
	}
	return asset.Clone(), nil
}

// OwnerOf returns the current owner of assetID.
func (l *Ledger) OwnerOf(assetID uint64) (common.Address, error) {
	asset, err := l.Asset(assetID)
	if err != nil {
		return common.Address{}, err
	}
	return asset.Owner, nil
}

// BalanceOf counts the assets held by owner.
func (l *Ledger) BalanceOf(owner common.Address) (uint64, error) {
	if l == nil || l.state == nil {
		return 0, errNilState
	}
	if owner == (common.Address{}) {
		return 0, fmt.Errorf("minting ledger: %w: zero address", ledgererrors.ErrInvalidRecipient)
	}
	return l.state.OwnedCount(owner)
}

// MetadataRef returns the content reference the asset was minted from.
func (l *Ledger) MetadataRef(assetID uint64) (string, error) {
	if _, err := l.Asset(assetID); err != nil {
		return "", err
	}
	if l.requests == nil {
		return "", errNotWired
	}
	req, err := l.requests.Get(assetID)
	if err != nil {
		return "", err
	}
	return req.MetadataRef, nil
}

// RoyaltyQuote returns the splitter bound to assetID and the advisory
// royalty owed on salePrice. It does not move funds.
func (l *Ledger) RoyaltyQuote(assetID uint64, salePrice *big.Int) (common.Address, *big.Int, error) {
	asset, err := l.Asset(assetID)
	if err != nil {
		return common.Address{}, nil, err
	}
	amount, err := amounts.MulBps(amounts.Clone(salePrice), RoyaltyBps)
	if err != nil {
		return common.Address{}, nil, err
	}
	return asset.Splitter, amount, nil
}

// Transfer moves assetID from its owner to to.
func (l *Ledger) Transfer(caller, to common.Address, assetID uint64) error {
	asset, err := l.Asset(assetID)
	if err != nil {
		return err
	}
	if asset.Owner != caller {
		return fmt.Errorf("minting ledger: asset %d: %w", assetID, ledgererrors.ErrNotAssetOwner)
	}
	if to == (common.Address{}) {
		return fmt.Errorf("minting ledger: %w: zero address", ledgererrors.ErrInvalidRecipient)
	}
	if to == caller {
		return nil
	}
	asset.Owner = to
	if err := l.state.AssetPut(asset); err != nil {
		return err
	}
	if err := l.adjustOwned(caller, -1); err != nil {
		return err
	}
	if err := l.adjustOwned(to, 1); err != nil {
		return err
	}
	l.emitter.Emit(AssetTransfer{AssetID: assetID, From: caller, To: to})
	return nil
}

// SupportsCapability reports whether the ledger implements code.
func (l *Ledger) SupportsCapability(code Capability) bool {
	return SupportsCapability(code)
}
