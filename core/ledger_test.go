package core

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	ledgererrors "celebmint/core/errors"
	"celebmint/core/events"
	"celebmint/native/minting"
	"celebmint/native/splitter"
	"celebmint/storage"
)

var (
	testOwner    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	testPlatform = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	testDeployer = common.HexToAddress("0x00000000000000000000000000000000000000c3")
	testCreator  = common.HexToAddress("0x00000000000000000000000000000000000000d4")
	testMinter   = common.HexToAddress("0x00000000000000000000000000000000000000e5")
	testOutsider = common.HexToAddress("0x00000000000000000000000000000000000000f6")
)

type testClock struct{ now int64 }

func (c *testClock) Now() int64               { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now += int64(d / time.Second) }

type ledgerFixture struct {
	ledger   *Ledger
	db       *storage.MemDB
	clock    *testClock
	recorder *events.Recorder
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	db := storage.NewMemDB()
	clock := &testClock{now: 1_700_000_000}
	recorder := &events.Recorder{}
	l, err := New(db, Config{
		Owner:    testOwner,
		Platform: testPlatform,
		Deployer: testDeployer,
		Now:      clock.Now,
		Emitter:  recorder,
	})
	require.NoError(t, err)
	return &ledgerFixture{ledger: l, db: db, clock: clock, recorder: recorder}
}

func units(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok, "parse %q", s)
	return v
}

func (f *ledgerFixture) requireBalance(t *testing.T, addr common.Address, want string) {
	t.Helper()
	got, err := f.ledger.Balance(addr)
	require.NoError(t, err)
	require.Equal(t, want, got.String(), "balance of %s", addr.Hex())
}

// mintOne authorizes the creator, funds the minter and mints a single request
// priced at price. It returns the asset id and its splitter address.
func (f *ledgerFixture) mintOne(t *testing.T, price, funding *big.Int) (uint64, common.Address) {
	t.Helper()
	require.NoError(t, f.ledger.SetAuthorization(testOwner, testCreator, true))
	require.NoError(t, f.ledger.Credit(testOwner, testMinter, funding))
	id, err := f.ledger.Submit(testCreator, "ipfs://celeb-moment", price)
	require.NoError(t, err)
	assetID, err := f.ledger.Mint(testMinter, id, price)
	require.NoError(t, err)
	asset, err := f.ledger.Asset(assetID)
	require.NoError(t, err)
	return assetID, asset.Splitter
}

func TestLedgerRequiresOwnerOnFreshStore(t *testing.T) {
	_, err := New(storage.NewMemDB(), Config{Platform: testPlatform})
	require.ErrorIs(t, err, errOwnerRequired)

	_, err = New(storage.NewMemDB(), Config{Owner: testOwner})
	require.ErrorIs(t, err, errPlatformRequired)
}

func TestLedgerKeepsRecordedOwner(t *testing.T) {
	db := storage.NewMemDB()
	_, err := New(db, Config{Owner: testOwner, Platform: testPlatform})
	require.NoError(t, err)

	reopened, err := New(db, Config{Owner: testOutsider, Platform: testPlatform})
	require.NoError(t, err)
	owner, err := reopened.Owner()
	require.NoError(t, err)
	require.Equal(t, testOwner, owner)
}

func TestLedgerPrimarySaleAndRoyaltyWindow(t *testing.T) {
	f := newLedgerFixture(t)
	price := units(t, "1000000000000000000")
	assetID, splitterAddr := f.mintOne(t, price, units(t, "2000000000000000000"))

	require.Equal(t, uint64(0), assetID)
	owner, err := f.ledger.OwnerOf(assetID)
	require.NoError(t, err)
	require.Equal(t, testMinter, owner)

	f.requireBalance(t, testCreator, "300000000000000000")
	f.requireBalance(t, testPlatform, "700000000000000000")
	f.requireBalance(t, testMinter, "1000000000000000000")

	receiver, royalty, err := f.ledger.RoyaltyQuote(assetID, price)
	require.NoError(t, err)
	require.Equal(t, splitterAddr, receiver)
	require.Equal(t, "50000000000000000", royalty.String())

	payment := units(t, "50000000000000000")
	settlement, err := f.ledger.Send(testMinter, splitterAddr, payment)
	require.NoError(t, err)
	require.Equal(t, splitter.WindowActive, settlement.Window)
	f.requireBalance(t, testCreator, "325000000000000000")
	f.requireBalance(t, testPlatform, "725000000000000000")
	f.requireBalance(t, splitterAddr, "0")

	f.clock.Advance(splitter.WindowDuration - time.Second)
	_, window, err := f.ledger.Splitter(splitterAddr)
	require.NoError(t, err)
	require.Equal(t, splitter.WindowActive, window)

	f.clock.Advance(time.Second)
	_, window, err = f.ledger.Splitter(splitterAddr)
	require.NoError(t, err)
	require.Equal(t, splitter.WindowExpired, window)

	settlement, err = f.ledger.Send(testMinter, splitterAddr, payment)
	require.NoError(t, err)
	require.Equal(t, splitter.WindowExpired, settlement.Window)
	require.Equal(t, "0", settlement.Creator.String())
	f.requireBalance(t, testCreator, "325000000000000000")
	f.requireBalance(t, testPlatform, "775000000000000000")
}

func TestLedgerSplitterOddUnitGoesToPlatform(t *testing.T) {
	f := newLedgerFixture(t)
	_, splitterAddr := f.mintOne(t, big.NewInt(10), big.NewInt(100))

	settlement, err := f.ledger.Send(testMinter, splitterAddr, big.NewInt(7))
	require.NoError(t, err)
	require.Equal(t, "3", settlement.Creator.String())
	require.Equal(t, "4", settlement.Platform.String())
	f.requireBalance(t, testCreator, "6")
	f.requireBalance(t, testPlatform, "11")
}

func TestLedgerRejectedOperationsLeaveStoreUntouched(t *testing.T) {
	f := newLedgerFixture(t)
	require.NoError(t, f.ledger.SetAuthorization(testOwner, testCreator, true))
	require.NoError(t, f.ledger.Credit(testOwner, testMinter, big.NewInt(1_000)))
	id, err := f.ledger.Submit(testCreator, "ipfs://celeb-moment", big.NewInt(500))
	require.NoError(t, err)

	before := f.db.Snapshot()
	emitted := len(f.recorder.Events())

	cases := []struct {
		name string
		run  func() error
		want error
	}{
		{"unauthorized submit", func() error {
			_, err := f.ledger.Submit(testOutsider, "ipfs://x", big.NewInt(1))
			return err
		}, ledgererrors.ErrNotAuthorized},
		{"non-owner authorization", func() error {
			return f.ledger.SetAuthorization(testCreator, testOutsider, true)
		}, ledgererrors.ErrNotOwner},
		{"underpaid mint", func() error {
			_, err := f.ledger.Mint(testMinter, id, big.NewInt(499))
			return err
		}, ledgererrors.ErrInvalidAmount},
		{"overpaid mint", func() error {
			_, err := f.ledger.Mint(testMinter, id, big.NewInt(501))
			return err
		}, ledgererrors.ErrInvalidAmount},
		{"unknown request", func() error {
			_, err := f.ledger.Mint(testMinter, 42, big.NewInt(500))
			return err
		}, ledgererrors.ErrNotFound},
		{"unfunded minter", func() error {
			_, err := f.ledger.Mint(testOutsider, id, big.NewInt(500))
			return err
		}, ledgererrors.ErrInsufficientFunds},
		{"empty metadata", func() error {
			_, err := f.ledger.Submit(testCreator, "   ", big.NewInt(1))
			return err
		}, ledgererrors.ErrInvalidMetadata},
		{"non-owner credit", func() error {
			return f.ledger.Credit(testMinter, testMinter, big.NewInt(1))
		}, ledgererrors.ErrNotOwner},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.run(), tc.want)
			require.Equal(t, before, f.db.Snapshot())
			require.Len(t, f.recorder.Events(), emitted)
		})
	}
}

func TestLedgerMintTwiceFails(t *testing.T) {
	f := newLedgerFixture(t)
	assetID, _ := f.mintOne(t, big.NewInt(100), big.NewInt(1_000))

	_, err := f.ledger.Mint(testMinter, assetID, big.NewInt(100))
	require.ErrorIs(t, err, ledgererrors.ErrAlreadyMinted)

	req, err := f.ledger.GetRequest(assetID)
	require.NoError(t, err)
	require.True(t, req.Minted)
	f.requireBalance(t, testMinter, "900")
}

func TestLedgerMintEventsInOrder(t *testing.T) {
	f := newLedgerFixture(t)
	f.mintOne(t, big.NewInt(100), big.NewInt(1_000))

	types := f.recorder.Types()
	require.Equal(t, []string{
		"access.authorization.changed",
		"transfer.native",
		"queue.request.submitted",
		"splitter.created",
		"transfer.native",
		"transfer.native",
		"asset.transfer",
		"minting.primary.settled",
	}, types)

	mintTransfer, ok := f.recorder.Events()[6].(minting.AssetTransfer)
	require.True(t, ok)
	require.Equal(t, common.Address{}, mintTransfer.From)
	require.Equal(t, testMinter, mintTransfer.To)
}

func TestLedgerCapabilityCodes(t *testing.T) {
	f := newLedgerFixture(t)
	for _, tc := range []struct {
		code string
		want bool
	}{
		{"0x01ffc9a7", true},
		{"0x80ac58cd", true},
		{"0x2a55205a", true},
		{"0xffffffff", false},
		{"0x5b5e139f", false},
	} {
		code, err := minting.ParseCapability(tc.code)
		require.NoError(t, err)
		require.Equal(t, tc.want, f.ledger.SupportsCapability(code), tc.code)
	}
}

func TestLedgerDisbursementFailureKeepsFundsOnSplitter(t *testing.T) {
	f := newLedgerFixture(t)
	_, splitterAddr := f.mintOne(t, big.NewInt(100), big.NewInt(1_000))
	f.requireBalance(t, testCreator, "30")
	f.requireBalance(t, testPlatform, "70")

	require.NoError(t, f.ledger.SetFrozen(testOwner, testCreator, true))
	emitted := len(f.recorder.Events())

	settlement, err := f.ledger.Send(testMinter, splitterAddr, big.NewInt(10))
	require.ErrorIs(t, err, ledgererrors.ErrDisbursementFailed)
	require.ErrorIs(t, err, ledgererrors.ErrAccountFrozen)
	require.Nil(t, settlement)

	f.requireBalance(t, splitterAddr, "10")
	f.requireBalance(t, testMinter, "890")
	f.requireBalance(t, testCreator, "30")
	f.requireBalance(t, testPlatform, "70")
	// Only the deposit onto the splitter is published.
	require.Equal(t, []string{"transfer.native"}, f.recorder.Types()[emitted:])

	_, err = f.ledger.Resettle(splitterAddr)
	require.ErrorIs(t, err, ledgererrors.ErrDisbursementFailed)
	f.requireBalance(t, splitterAddr, "10")

	require.NoError(t, f.ledger.SetFrozen(testOwner, testCreator, false))
	settlement, err = f.ledger.Resettle(splitterAddr)
	require.NoError(t, err)
	require.Equal(t, "5", settlement.Creator.String())
	require.Equal(t, "5", settlement.Platform.String())
	f.requireBalance(t, splitterAddr, "0")
	f.requireBalance(t, testCreator, "35")
	f.requireBalance(t, testPlatform, "75")
}

func TestLedgerFrozenCreatorBlocksMint(t *testing.T) {
	f := newLedgerFixture(t)
	require.NoError(t, f.ledger.SetAuthorization(testOwner, testCreator, true))
	require.NoError(t, f.ledger.Credit(testOwner, testMinter, big.NewInt(1_000)))
	id, err := f.ledger.Submit(testCreator, "ipfs://celeb-moment", big.NewInt(100))
	require.NoError(t, err)
	require.NoError(t, f.ledger.SetFrozen(testOwner, testCreator, true))

	before := f.db.Snapshot()
	_, err = f.ledger.Mint(testMinter, id, big.NewInt(100))
	require.ErrorIs(t, err, ledgererrors.ErrDisbursementFailed)
	require.Equal(t, before, f.db.Snapshot())

	req, err := f.ledger.GetRequest(id)
	require.NoError(t, err)
	require.False(t, req.Minted)
}

func TestLedgerSendToPlainAccount(t *testing.T) {
	f := newLedgerFixture(t)
	require.NoError(t, f.ledger.Credit(testOwner, testMinter, big.NewInt(50)))

	settlement, err := f.ledger.Send(testMinter, testOutsider, big.NewInt(20))
	require.NoError(t, err)
	require.Nil(t, settlement)
	f.requireBalance(t, testOutsider, "20")

	_, err = f.ledger.Send(testMinter, testOutsider, big.NewInt(0))
	require.ErrorIs(t, err, ledgererrors.ErrInvalidAmount)
	_, err = f.ledger.Send(testMinter, testOutsider, big.NewInt(31))
	require.ErrorIs(t, err, ledgererrors.ErrInsufficientFunds)
}

func TestLedgerAssetTransfer(t *testing.T) {
	f := newLedgerFixture(t)
	assetID, _ := f.mintOne(t, big.NewInt(100), big.NewInt(1_000))

	err := f.ledger.TransferAsset(testOutsider, testCreator, assetID)
	require.ErrorIs(t, err, ledgererrors.ErrNotAssetOwner)
	err = f.ledger.TransferAsset(testMinter, common.Address{}, assetID)
	require.ErrorIs(t, err, ledgererrors.ErrInvalidRecipient)

	require.NoError(t, f.ledger.TransferAsset(testMinter, testOutsider, assetID))
	owner, err := f.ledger.OwnerOf(assetID)
	require.NoError(t, err)
	require.Equal(t, testOutsider, owner)

	n, err := f.ledger.BalanceOf(testMinter)
	require.NoError(t, err)
	require.Zero(t, n)
	n, err = f.ledger.BalanceOf(testOutsider)
	require.NoError(t, err)
	require.Equal(t, uint64(1), n)

	ref, err := f.ledger.MetadataRef(assetID)
	require.NoError(t, err)
	require.Equal(t, "ipfs://celeb-moment", ref)
}

func TestLedgerListRequests(t *testing.T) {
	f := newLedgerFixture(t)
	require.NoError(t, f.ledger.SetAuthorization(testOwner, testCreator, true))
	for i := 0; i < 5; i++ {
		id, err := f.ledger.Submit(testCreator, "ipfs://batch", big.NewInt(int64(i+1)))
		require.NoError(t, err)
		require.Equal(t, uint64(i), id)
	}

	page, total, err := f.ledger.ListRequests(3, 10)
	require.NoError(t, err)
	require.Equal(t, uint64(5), total)
	require.Len(t, page, 2)
	require.Equal(t, uint64(3), page[0].ID)

	page, _, err = f.ledger.ListRequests(0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
}

func TestLedgerPersistsAcrossReopen(t *testing.T) {
	db, err := storage.NewLevelDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := &testClock{now: 1_700_000_000}
	l, err := New(db, Config{Owner: testOwner, Platform: testPlatform, Deployer: testDeployer, Now: clock.Now})
	require.NoError(t, err)
	require.NoError(t, l.SetAuthorization(testOwner, testCreator, true))
	require.NoError(t, l.Credit(testOwner, testMinter, big.NewInt(100)))
	id, err := l.Submit(testCreator, "ipfs://persisted", big.NewInt(100))
	require.NoError(t, err)
	_, err = l.Mint(testMinter, id, big.NewInt(100))
	require.NoError(t, err)

	reopened, err := New(db, Config{Owner: testOwner, Platform: testPlatform, Deployer: testDeployer, Now: clock.Now})
	require.NoError(t, err)
	owner, err := reopened.OwnerOf(id)
	require.NoError(t, err)
	require.Equal(t, testMinter, owner)
	ok, err := reopened.IsAuthorized(testCreator)
	require.NoError(t, err)
	require.True(t, ok)
	count, err := reopened.RequestCount()
	require.NoError(t, err)
	require.Equal(t, uint64(1), count)
}
