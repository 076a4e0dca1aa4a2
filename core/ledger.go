package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	ledgererrors "celebmint/core/errors"
	"celebmint/core/events"
	"celebmint/core/state"
	"celebmint/native/access"
	"celebmint/native/bank"
	"celebmint/native/minting"
	"celebmint/native/queue"
	"celebmint/native/splitter"
	"celebmint/observability/metrics"
	telemetry "celebmint/observability/otel"
	"celebmint/storage"
)

var (
	errOwnerRequired    = errors.New("ledger: owner address required")
	errPlatformRequired = errors.New("ledger: platform address required")
	errNilStore         = errors.New("ledger: store required")
)

// Config captures the dependencies required to construct a Ledger.
type Config struct {
	// Owner bootstraps the access registry when the store is empty. An
	// existing store keeps its recorded owner.
	Owner common.Address
	// Platform receives the platform share of every sale and royalty.
	Platform common.Address
	// Deployer seeds the derivation of splitter addresses.
	Deployer common.Address
	Now      func() int64
	Emitter  events.Emitter
	Logger   *slog.Logger
	Metrics  *metrics.LedgerMetrics
	// Tracer records one span per operation. Defaults to the global provider.
	Tracer trace.Tracer
}

// Ledger executes every public operation serially against the store. Each
// operation either commits all of its writes and events or none of them.
type Ledger struct {
	mu      sync.Mutex
	store   storage.Database
	tx      *txn
	emitter events.Emitter
	logger  *slog.Logger
	metrics *metrics.LedgerMetrics
	tracer  trace.Tracer
	nowFn   func() int64

	registry  *access.Registry
	bank      *bank.Engine
	queue     *queue.Queue
	splitters *splitter.Engine
	minting   *minting.Ledger
}

// committed marks an error raised after partial work that must still be
// persisted, such as a payment that reached a splitter whose disbursement
// was rolled back.
type committed struct{ err error }

func (c committed) Error() string { return c.err.Error() }
func (c committed) Unwrap() error { return c.err }

// New wires the engines to a fresh transaction overlay over store.
func New(store storage.Database, cfg Config) (*Ledger, error) {
	if store == nil {
		return nil, errNilStore
	}
	if cfg.Platform == (common.Address{}) {
		return nil, errPlatformRequired
	}
	if cfg.Now == nil {
		cfg.Now = func() int64 { return time.Now().Unix() }
	}
	if cfg.Emitter == nil {
		cfg.Emitter = events.NoopEmitter{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = telemetry.LedgerTracer()
	}
	buffer := &events.Buffer{}
	tx := newTxn(state.NewManager(store), buffer)

	registry := access.NewRegistry()
	bankEngine := bank.NewEngine()
	pending := queue.New(registry)
	splitters := splitter.NewEngine(bankEngine, cfg.Deployer)
	mintLedger := minting.NewLedger(pending, splitters, bankEngine, cfg.Platform)

	registry.SetState(tx)
	registry.SetEmitter(buffer)
	bankEngine.SetState(tx)
	bankEngine.SetEmitter(buffer)
	pending.SetState(tx)
	pending.SetEmitter(buffer)
	splitters.SetState(tx)
	splitters.SetEmitter(buffer)
	splitters.SetNowFunc(cfg.Now)
	mintLedger.SetState(tx)
	mintLedger.SetEmitter(buffer)
	mintLedger.SetNowFunc(cfg.Now)

	l := &Ledger{
		store:     store,
		tx:        tx,
		emitter:   cfg.Emitter,
		logger:    cfg.Logger.With(slog.String("component", "ledger")),
		metrics:   cfg.Metrics,
		tracer:    cfg.Tracer,
		nowFn:     cfg.Now,
		registry:  registry,
		bank:      bankEngine,
		queue:     pending,
		splitters: splitters,
		minting:   mintLedger,
	}
	if err := l.bootstrap(cfg.Owner); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Ledger) bootstrap(owner common.Address) error {
	return l.execute("bootstrap", func() error {
		current, err := l.registry.Owner()
		if err != nil {
			return err
		}
		if current != (common.Address{}) {
			if owner != (common.Address{}) && owner != current {
				l.logger.Warn("configured owner differs from recorded owner; keeping recorded owner",
					slog.String("recorded", current.Hex()), slog.String("configured", owner.Hex()))
			}
			return nil
		}
		if owner == (common.Address{}) {
			return errOwnerRequired
		}
		return l.tx.SetAccessOwner(owner)
	})
}

func (l *Ledger) execute(op string, fn func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, span := l.tracer.Start(context.Background(), "ledger."+op,
		trace.WithAttributes(attribute.String("celebmint.operation", op)))
	defer span.End()
	start := time.Now()
	err := fn()
	var keep committed
	if err != nil && !errors.As(err, &keep) {
		l.tx.rollback()
		l.metrics.ObserveOperation(op, err, time.Since(start))
		endSpan(span, false, 0, err)
		l.logger.Debug("operation rejected", slog.String("operation", op), slog.Any("error", err))
		return err
	}
	emitted, commitErr := l.tx.commit(l.emitter)
	if commitErr != nil {
		l.metrics.ObserveOperation(op, commitErr, time.Since(start))
		endSpan(span, false, 0, commitErr)
		l.logger.Error("commit failed", slog.String("operation", op), slog.Any("error", commitErr))
		return commitErr
	}
	if keep.err != nil {
		err = keep.err
	}
	l.metrics.ObserveOperation(op, err, time.Since(start))
	endSpan(span, true, len(emitted), err)
	l.logger.Debug("operation committed", slog.String("operation", op), slog.Int("events", len(emitted)))
	return err
}

func endSpan(span trace.Span, persisted bool, emitted int, err error) {
	span.SetAttributes(
		attribute.Bool("celebmint.committed", persisted),
		attribute.Int("celebmint.events", emitted),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func (l *Ledger) view(fn func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	defer l.tx.rollback()
	return fn()
}

// Platform returns the platform payee.
func (l *Ledger) Platform() common.Address { return l.minting.Platform() }

// SupportsCapability answers capability discovery queries.
func (l *Ledger) SupportsCapability(code minting.Capability) bool {
	return l.minting.SupportsCapability(code)
}

// Owner returns the access registry owner.
func (l *Ledger) Owner() (common.Address, error) {
	var owner common.Address
	err := l.view(func() error {
		var err error
		owner, err = l.registry.Owner()
		return err
	})
	return owner, err
}

// SetAuthorization grants or revokes creator rights. Owner only.
func (l *Ledger) SetAuthorization(caller, creator common.Address, authorized bool) error {
	err := l.execute("set_authorization", func() error {
		return l.registry.SetAuthorization(caller, creator, authorized)
	})
	if err == nil {
		l.logger.Info("creator authorization changed",
			slog.String("creator", creator.Hex()), slog.Bool("authorized", authorized))
	}
	return err
}

// TransferOwnership hands the access registry to next. Owner only.
func (l *Ledger) TransferOwnership(caller, next common.Address) error {
	err := l.execute("transfer_ownership", func() error {
		return l.registry.TransferOwnership(caller, next)
	})
	if err == nil {
		l.logger.Info("registry ownership transferred", slog.String("newOwner", next.Hex()))
	}
	return err
}

// IsAuthorized reports whether addr may submit mint requests.
func (l *Ledger) IsAuthorized(addr common.Address) (bool, error) {
	var ok bool
	err := l.view(func() error {
		var err error
		ok, err = l.registry.IsAuthorized(addr)
		return err
	})
	return ok, err
}

// Submit queues a mint request on behalf of an authorized creator.
func (l *Ledger) Submit(caller common.Address, metadataRef string, price *big.Int) (uint64, error) {
	var id uint64
	err := l.execute("submit", func() error {
		var err error
		id, err = l.queue.Submit(caller, metadataRef, price)
		return err
	})
	if err != nil {
		return 0, err
	}
	l.logger.Info("mint request queued", slog.Uint64("id", id), slog.String("creator", caller.Hex()))
	return id, nil
}

// GetRequest returns the pending request with the given id.
func (l *Ledger) GetRequest(id uint64) (*queue.PendingRequest, error) {
	var req *queue.PendingRequest
	err := l.view(func() error {
		var err error
		req, err = l.queue.Get(id)
		return err
	})
	return req, err
}

// RequestCount returns the number of submitted requests.
func (l *Ledger) RequestCount() (uint64, error) {
	var n uint64
	err := l.view(func() error {
		var err error
		n, err = l.queue.Count()
		return err
	})
	return n, err
}

// ListRequests returns up to limit requests starting at offset.
func (l *Ledger) ListRequests(offset, limit uint64) ([]*queue.PendingRequest, uint64, error) {
	var (
		out   []*queue.PendingRequest
		total uint64
	)
	err := l.view(func() error {
		var err error
		total, err = l.queue.Count()
		if err != nil {
			return err
		}
		for id := offset; id < total && uint64(len(out)) < limit; id++ {
			req, err := l.queue.Get(id)
			if err != nil {
				return err
			}
			out = append(out, req)
		}
		return nil
	})
	return out, total, err
}

// Mint pays value for request id and assigns the new asset to caller.
func (l *Ledger) Mint(caller common.Address, id uint64, value *big.Int) (uint64, error) {
	var assetID uint64
	err := l.execute("mint", func() error {
		var err error
		assetID, err = l.minting.Mint(caller, id, value)
		return err
	})
	if err != nil {
		if errors.Is(err, ledgererrors.ErrDisbursementFailed) {
			l.metrics.IncDisbursementFailure("mint")
		}
		return 0, err
	}
	// Volume is a float counter; rounding above 2^53 units is accepted.
	volume, _ := new(big.Float).SetInt(value).Float64()
	l.metrics.ObserveMint(volume)
	l.logger.Info("asset minted", slog.Uint64("assetId", assetID), slog.String("owner", caller.Hex()))
	return assetID, nil
}

// Asset returns the minted asset record.
func (l *Ledger) Asset(assetID uint64) (*minting.MintedAsset, error) {
	var asset *minting.MintedAsset
	err := l.view(func() error {
		var err error
		asset, err = l.minting.Asset(assetID)
		return err
	})
	return asset, err
}

// OwnerOf returns the owner of assetID.
func (l *Ledger) OwnerOf(assetID uint64) (common.Address, error) {
	var owner common.Address
	err := l.view(func() error {
		var err error
		owner, err = l.minting.OwnerOf(assetID)
		return err
	})
	return owner, err
}

// BalanceOf counts the assets held by owner.
func (l *Ledger) BalanceOf(owner common.Address) (uint64, error) {
	var n uint64
	err := l.view(func() error {
		var err error
		n, err = l.minting.BalanceOf(owner)
		return err
	})
	return n, err
}

// MetadataRef returns the content reference of assetID.
func (l *Ledger) MetadataRef(assetID uint64) (string, error) {
	var ref string
	err := l.view(func() error {
		var err error
		ref, err = l.minting.MetadataRef(assetID)
		return err
	})
	return ref, err
}

// TransferAsset moves assetID from caller to to.
func (l *Ledger) TransferAsset(caller, to common.Address, assetID uint64) error {
	return l.execute("transfer_asset", func() error {
		return l.minting.Transfer(caller, to, assetID)
	})
}

// RoyaltyQuote returns the splitter address and the royalty owed on salePrice.
func (l *Ledger) RoyaltyQuote(assetID uint64, salePrice *big.Int) (common.Address, *big.Int, error) {
	var (
		receiver common.Address
		amount   *big.Int
	)
	err := l.view(func() error {
		var err error
		receiver, amount, err = l.minting.RoyaltyQuote(assetID, salePrice)
		return err
	})
	return receiver, amount, err
}

// Send transfers amount from sender to to. When to is a splitter the payment
// is disbursed immediately and the settlement is returned. If the
// disbursement fails the payment stays on the splitter and the returned error
// wraps ErrDisbursementFailed.
func (l *Ledger) Send(sender, to common.Address, amount *big.Int) (*splitter.Settlement, error) {
	var settlement *splitter.Settlement
	err := l.execute("send", func() error {
		if amount == nil || amount.Sign() <= 0 {
			return fmt.Errorf("ledger: %w: payment must be positive", ledgererrors.ErrInvalidAmount)
		}
		if err := l.bank.Transfer(sender, to, amount, "payment"); err != nil {
			return err
		}
		isSplitter, err := l.splitters.IsSplitter(to)
		if err != nil || !isSplitter {
			return err
		}
		settlement, err = l.splitters.HandleFundsReceived(splitter.FundsReceived{Splitter: to, Sender: sender, Amount: amount})
		if errors.Is(err, ledgererrors.ErrDisbursementFailed) {
			return committed{err: err}
		}
		return err
	})
	return l.observeSettlement("send", settlement, err)
}

// Resettle retries the disbursement of funds left on a splitter.
func (l *Ledger) Resettle(addr common.Address) (*splitter.Settlement, error) {
	var settlement *splitter.Settlement
	err := l.execute("resettle", func() error {
		var err error
		settlement, err = l.splitters.Resettle(addr)
		return err
	})
	return l.observeSettlement("resettle", settlement, err)
}

func (l *Ledger) observeSettlement(source string, settlement *splitter.Settlement, err error) (*splitter.Settlement, error) {
	if err != nil {
		if errors.Is(err, ledgererrors.ErrDisbursementFailed) {
			l.metrics.IncDisbursementFailure(source)
			l.logger.Warn("splitter disbursement failed; funds held on splitter", slog.Any("error", err))
		}
		return nil, err
	}
	if settlement != nil {
		l.metrics.ObserveSplit(settlement.Window.String())
		l.logger.Info("splitter payment settled",
			slog.String("splitter", settlement.Splitter.Hex()),
			slog.String("window", settlement.Window.String()),
			slog.String("amount", settlement.Amount.String()))
	}
	return settlement, nil
}

// Splitter returns the splitter at addr and its current window.
func (l *Ledger) Splitter(addr common.Address) (*splitter.Splitter, splitter.WindowState, error) {
	var (
		s      *splitter.Splitter
		window splitter.WindowState
	)
	err := l.view(func() error {
		var err error
		s, err = l.splitters.Get(addr)
		if err != nil {
			return err
		}
		window, err = l.splitters.Window(addr)
		return err
	})
	return s, window, err
}

// Balance returns the spendable balance of addr.
func (l *Ledger) Balance(addr common.Address) (*big.Int, error) {
	var balance *big.Int
	err := l.view(func() error {
		var err error
		balance, err = l.bank.Balance(addr)
		return err
	})
	return balance, err
}

// Frozen reports whether addr refuses incoming value.
func (l *Ledger) Frozen(addr common.Address) (bool, error) {
	var frozen bool
	err := l.view(func() error {
		var err error
		frozen, err = l.bank.Frozen(addr)
		return err
	})
	return frozen, err
}

// Credit issues amount to addr. Owner only.
func (l *Ledger) Credit(caller, addr common.Address, amount *big.Int) error {
	return l.execute("credit", func() error {
		if err := l.registry.RequireOwner(caller); err != nil {
			return err
		}
		return l.bank.Credit(addr, amount, "faucet")
	})
}

// SetFrozen toggles whether addr accepts incoming value. Owner only.
func (l *Ledger) SetFrozen(caller, addr common.Address, frozen bool) error {
	return l.execute("set_frozen", func() error {
		if err := l.registry.RequireOwner(caller); err != nil {
			return err
		}
		return l.bank.SetFrozen(addr, frozen)
	})
}
