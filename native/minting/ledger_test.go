package minting_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	ledgererrors "celebmint/core/errors"
	"celebmint/core/events"
	"celebmint/core/state"
	"celebmint/native/access"
	"celebmint/native/bank"
	"celebmint/native/minting"
	"celebmint/native/queue"
	"celebmint/native/splitter"
	"celebmint/storage"
)

var (
	owner    = common.HexToAddress("0x0a00000000000000000000000000000000000001")
	celeb    = common.HexToAddress("0x0c00000000000000000000000000000000000001")
	platform = common.HexToAddress("0x0f00000000000000000000000000000000000001")
	buyer    = common.HexToAddress("0x0b00000000000000000000000000000000000001")
	reseller = common.HexToAddress("0x0e00000000000000000000000000000000000001")
)

type fixture struct {
	ledger *minting.Ledger
	queue  *queue.Queue
	bank   *bank.Engine
	rec    *events.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mgr := state.NewManager(storage.NewMemDB())
	if err := mgr.SetAccessOwner(owner); err != nil {
		t.Fatalf("set owner: %v", err)
	}
	registry := access.NewRegistry()
	registry.SetState(mgr)
	if err := registry.SetAuthorization(owner, celeb, true); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	pending := queue.New(registry)
	pending.SetState(mgr)
	bankEngine := bank.NewEngine()
	bankEngine.SetState(mgr)
	splitters := splitter.NewEngine(bankEngine, common.HexToAddress("0xd0"))
	splitters.SetState(mgr)

	rec := &events.Recorder{}
	l := minting.NewLedger(pending, splitters, bankEngine, platform)
	l.SetState(mgr)
	l.SetEmitter(rec)
	l.SetNowFunc(func() int64 { return 1_700_000_000 })
	return &fixture{ledger: l, queue: pending, bank: bankEngine, rec: rec}
}

func (f *fixture) submit(t *testing.T, price int64) uint64 {
	t.Helper()
	id, err := f.queue.Submit(celeb, "ipfs://moment", big.NewInt(price))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return id
}

func (f *fixture) fund(t *testing.T, addr common.Address, amount int64) {
	t.Helper()
	if err := f.bank.Credit(addr, big.NewInt(amount), ""); err != nil {
		t.Fatalf("fund: %v", err)
	}
}

func (f *fixture) balance(t *testing.T, addr common.Address) int64 {
	t.Helper()
	bal, err := f.bank.Balance(addr)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	return bal.Int64()
}

func TestMintSplitsPrimarySale(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t, 1_001)
	f.fund(t, buyer, 2_000)

	assetID, err := f.ledger.Mint(buyer, id, big.NewInt(1_001))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if assetID != id {
		t.Fatalf("asset id %d != request id %d", assetID, id)
	}
	// floor(1001 * 3000 / 10000) = 300; the platform absorbs the dust.
	if f.balance(t, celeb) != 300 || f.balance(t, platform) != 701 || f.balance(t, buyer) != 999 {
		t.Fatalf("unexpected balances: celeb=%d platform=%d buyer=%d",
			f.balance(t, celeb), f.balance(t, platform), f.balance(t, buyer))
	}
	asset, err := f.ledger.Asset(assetID)
	if err != nil {
		t.Fatalf("asset: %v", err)
	}
	if asset.Owner != buyer || asset.MintTimestamp != 1_700_000_000 {
		t.Fatalf("unexpected asset: %+v", asset)
	}
	if n, _ := f.ledger.BalanceOf(buyer); n != 1 {
		t.Fatalf("balanceOf = %d", n)
	}
	got := f.rec.Types()
	if len(got) != 2 || got[0] != minting.EventTypeAssetTransfer || got[1] != minting.EventTypePrimarySettled {
		t.Fatalf("unexpected events: %v", got)
	}
}

func TestMintChecksInOrder(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t, 50)
	f.fund(t, buyer, 100)

	if _, err := f.ledger.Mint(buyer, 5, big.NewInt(50)); !errors.Is(err, ledgererrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.ledger.Mint(buyer, id, big.NewInt(49)); !errors.Is(err, ledgererrors.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := f.ledger.Mint(buyer, id, nil); !errors.Is(err, ledgererrors.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for missing value, got %v", err)
	}
	if _, err := f.ledger.Mint(reseller, id, big.NewInt(50)); !errors.Is(err, ledgererrors.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if _, err := f.ledger.Mint(buyer, id, big.NewInt(50)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	// An already minted request is reported before the price is compared.
	if _, err := f.ledger.Mint(buyer, id, big.NewInt(1)); !errors.Is(err, ledgererrors.ErrAlreadyMinted) {
		t.Fatalf("expected ErrAlreadyMinted, got %v", err)
	}
}

func TestRoyaltyQuote(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t, 10)
	f.fund(t, buyer, 10)
	if _, err := f.ledger.Mint(buyer, id, big.NewInt(10)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	asset, _ := f.ledger.Asset(id)

	tests := []struct {
		sale int64
		want int64
	}{
		{10_000, 500},
		{1_000_000, 50_000},
		{19, 0},
		{0, 0},
	}
	for _, tc := range tests {
		receiver, amount, err := f.ledger.RoyaltyQuote(id, big.NewInt(tc.sale))
		if err != nil {
			t.Fatalf("quote %d: %v", tc.sale, err)
		}
		if receiver != asset.Splitter || amount.Int64() != tc.want {
			t.Fatalf("quote %d: got %s %s", tc.sale, receiver.Hex(), amount)
		}
	}
	if _, _, err := f.ledger.RoyaltyQuote(99, big.NewInt(1)); !errors.Is(err, ledgererrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTransferAndOwnerOf(t *testing.T) {
	f := newFixture(t)
	id := f.submit(t, 10)
	f.fund(t, buyer, 10)
	if _, err := f.ledger.Mint(buyer, id, big.NewInt(10)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := f.ledger.OwnerOf(id + 1); !errors.Is(err, ledgererrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := f.ledger.Transfer(reseller, reseller, id); !errors.Is(err, ledgererrors.ErrNotAssetOwner) {
		t.Fatalf("expected ErrNotAssetOwner, got %v", err)
	}
	if err := f.ledger.Transfer(buyer, reseller, id); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got, _ := f.ledger.OwnerOf(id); got != reseller {
		t.Fatalf("owner = %s", got.Hex())
	}
	if n, _ := f.ledger.BalanceOf(buyer); n != 0 {
		t.Fatalf("buyer still counted: %d", n)
	}
	if ref, _ := f.ledger.MetadataRef(id); ref != "ipfs://moment" {
		t.Fatalf("metadata ref = %q", ref)
	}
}
