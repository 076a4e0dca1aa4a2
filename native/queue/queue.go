package queue

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	ledgererrors "celebmint/core/errors"
	"celebmint/core/events"
	amounts "celebmint/native/common"
)

var errNilState = errors.New("pending queue: state not configured")

// Authorizer answers whether an address may submit requests.
type Authorizer interface {
	IsAuthorized(addr common.Address) (bool, error)
}

type engineState interface {
	PendingCount() (uint64, error)
	PendingGet(id uint64) (*PendingRequest, bool, error)
	PendingPut(req *PendingRequest) error
	SetPendingCount(n uint64) error
}

// Queue is the append-only list of mint requests.
type Queue struct {
	state   engineState
	auth    Authorizer
	emitter events.Emitter
}

// New constructs a queue gated by auth.
func New(auth Authorizer) *Queue {
	return &Queue{auth: auth, emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the queue.
func (q *Queue) SetState(state engineState) { q.state = state }

// SetEmitter configures the event emitter used by the queue.
func (q *Queue) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		q.emitter = events.NoopEmitter{}
		return
	}
	q.emitter = emitter
}

func (q *Queue) ready() error {
	if q == nil || q.state == nil {
		return errNilState
	}
	return nil
}

// Submit appends a request on behalf of caller and returns its id.
func (q *Queue) Submit(caller common.Address, metadataRef string, price *big.Int) (uint64, error) {
	if err := q.ready(); err != nil {
		return 0, err
	}
	if q.auth == nil {
		return 0, fmt.Errorf("pending queue: %w", ledgererrors.ErrNotAuthorized)
	}
	ok, err := q.auth.IsAuthorized(caller)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("pending queue: %s: %w", caller.Hex(), ledgererrors.ErrNotAuthorized)
	}
	if strings.TrimSpace(metadataRef) == "" {
		return 0, fmt.Errorf("pending queue: %w", ledgererrors.ErrInvalidMetadata)
	}
	if err := amounts.ValidatePositive(price); err != nil {
		return 0, fmt.Errorf("pending queue: %w", err)
	}
	id, err := q.state.PendingCount()
	if err != nil {
		return 0, err
	}
	req := &PendingRequest{
		ID:          id,
		Creator:     caller,
		MetadataRef: metadataRef,
		Price:       new(big.Int).Set(price),
	}
	if err := q.state.PendingPut(req); err != nil {
		return 0, err
	}
	if err := q.state.SetPendingCount(id + 1); err != nil {
		return 0, err
	}
	q.emitter.Emit(RequestSubmitted{ID: id, Creator: caller, MetadataRef: metadataRef, Price: price.String()})
	return id, nil
}

// Get returns a copy of the request with the given id.
func (q *Queue) Get(id uint64) (*PendingRequest, error) {
	if err := q.ready(); err != nil {
		return nil, err
	}
	req, ok, err := q.state.PendingGet(id)
	if err != nil {
		return nil, err
	}
	if !ok || req == nil {
		return nil, fmt.Errorf("pending queue: request %d: %w", id, ledgererrors.ErrNotFound)
	}
	return req.Clone(), nil
}

// Count returns the number of submitted requests, minted or not.
func (q *Queue) Count() (uint64, error) {
	if err := q.ready(); err != nil {
		return 0, err
	}
	return q.state.PendingCount()
}

// Consume marks the request minted and returns it as it was before the
// transition. It is only called by the minting ledger.
func (q *Queue) Consume(id uint64) (*PendingRequest, error) {
	req, err := q.Get(id)
	if err != nil {
		return nil, err
	}
	if req.Minted {
		return nil, fmt.Errorf("pending queue: request %d: %w", id, ledgererrors.ErrAlreadyMinted)
	}
	consumed := req.Clone()
	consumed.Minted = true
	if err := q.state.PendingPut(consumed); err != nil {
		return nil, err
	}
	return req, nil
}
