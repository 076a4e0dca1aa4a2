package access

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	ledgererrors "celebmint/core/errors"
	"celebmint/core/events"
)

var errNilState = errors.New("access registry: state not configured")

type engineState interface {
	AccessOwner() (common.Address, error)
	SetAccessOwner(owner common.Address) error
	IsCreatorAuthorized(addr common.Address) (bool, error)
	SetCreatorAuthorized(addr common.Address, authorized bool) error
}

// Registry is the owner-controlled set of creators allowed to submit mint
// requests. All mutation funnels through the owner check in requireOwner.
type Registry struct {
	state   engineState
	emitter events.Emitter
}

// NewRegistry constructs a registry with a no-op emitter.
func NewRegistry() *Registry {
	return &Registry{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the registry.
func (r *Registry) SetState(state engineState) { r.state = state }

// SetEmitter configures the event emitter used by the registry.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

func (r *Registry) emit(evt events.Event) {
	if r == nil || r.emitter == nil {
		return
	}
	r.emitter.Emit(evt)
}

// Owner returns the current registry owner.
func (r *Registry) Owner() (common.Address, error) {
	if r == nil || r.state == nil {
		return common.Address{}, errNilState
	}
	return r.state.AccessOwner()
}

// RequireOwner rejects callers other than the registry owner.
func (r *Registry) RequireOwner(caller common.Address) error {
	owner, err := r.Owner()
	if err != nil {
		return err
	}
	if owner == (common.Address{}) || caller != owner {
		return fmt.Errorf("access registry: %s: %w", caller.Hex(), ledgererrors.ErrNotOwner)
	}
	return nil
}

// SetAuthorization grants or revokes submission rights for addr.
func (r *Registry) SetAuthorization(caller, addr common.Address, authorized bool) error {
	if err := r.RequireOwner(caller); err != nil {
		return err
	}
	if err := r.state.SetCreatorAuthorized(addr, authorized); err != nil {
		return err
	}
	r.emit(AuthorizationChanged{Creator: addr, Authorized: authorized})
	return nil
}

// IsAuthorized reports whether addr may submit mint requests.
func (r *Registry) IsAuthorized(addr common.Address) (bool, error) {
	if r == nil || r.state == nil {
		return false, errNilState
	}
	return r.state.IsCreatorAuthorized(addr)
}

// TransferOwnership hands the registry to next.
func (r *Registry) TransferOwnership(caller, next common.Address) error {
	if err := r.RequireOwner(caller); err != nil {
		return err
	}
	if next == (common.Address{}) {
		return fmt.Errorf("access registry: %w: zero owner", ledgererrors.ErrInvalidRecipient)
	}
	if err := r.state.SetAccessOwner(next); err != nil {
		return err
	}
	r.emit(OwnershipTransferred{Previous: caller, Next: next})
	return nil
}
