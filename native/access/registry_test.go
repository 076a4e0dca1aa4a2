package access

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	ledgererrors "celebmint/core/errors"
	"celebmint/core/events"
)

type mockState struct {
	owner    common.Address
	creators map[common.Address]bool
}

func newMockState(owner common.Address) *mockState {
	return &mockState{owner: owner, creators: make(map[common.Address]bool)}
}

func (m *mockState) AccessOwner() (common.Address, error) { return m.owner, nil }

func (m *mockState) SetAccessOwner(owner common.Address) error {
	m.owner = owner
	return nil
}

func (m *mockState) IsCreatorAuthorized(addr common.Address) (bool, error) {
	return m.creators[addr], nil
}

func (m *mockState) SetCreatorAuthorized(addr common.Address, authorized bool) error {
	if !authorized {
		delete(m.creators, addr)
		return nil
	}
	m.creators[addr] = true
	return nil
}

var (
	owner   = common.HexToAddress("0x1000000000000000000000000000000000000001")
	creator = common.HexToAddress("0x2000000000000000000000000000000000000002")
	other   = common.HexToAddress("0x3000000000000000000000000000000000000003")
)

func newTestRegistry() (*Registry, *mockState, *events.Recorder) {
	st := newMockState(owner)
	rec := &events.Recorder{}
	r := NewRegistry()
	r.SetState(st)
	r.SetEmitter(rec)
	return r, st, rec
}

func TestSetAuthorizationOwnerOnly(t *testing.T) {
	r, _, rec := newTestRegistry()

	if err := r.SetAuthorization(other, creator, true); !errors.Is(err, ledgererrors.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if ok, _ := r.IsAuthorized(creator); ok {
		t.Fatalf("creator authorized by non-owner")
	}
	if len(rec.Events()) != 0 {
		t.Fatalf("rejected call emitted events: %v", rec.Types())
	}

	if err := r.SetAuthorization(owner, creator, true); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if ok, _ := r.IsAuthorized(creator); !ok {
		t.Fatalf("creator should be authorized")
	}
	if err := r.SetAuthorization(owner, creator, false); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ok, _ := r.IsAuthorized(creator); ok {
		t.Fatalf("creator should be revoked")
	}

	evts := rec.Events()
	if len(evts) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evts))
	}
	last := evts[1].(AuthorizationChanged).Event()
	if last.Attributes["authorized"] != "false" || last.Attributes["creator"] != events.HexAddress(creator) {
		t.Fatalf("unexpected attributes: %v", last.Attributes)
	}
}

func TestTransferOwnership(t *testing.T) {
	r, st, _ := newTestRegistry()

	if err := r.TransferOwnership(owner, common.Address{}); !errors.Is(err, ledgererrors.ErrInvalidRecipient) {
		t.Fatalf("expected ErrInvalidRecipient, got %v", err)
	}
	if err := r.TransferOwnership(other, other); !errors.Is(err, ledgererrors.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := r.TransferOwnership(owner, other); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if st.owner != other {
		t.Fatalf("owner not updated")
	}
	if err := r.SetAuthorization(owner, creator, true); !errors.Is(err, ledgererrors.ErrNotOwner) {
		t.Fatalf("previous owner kept rights: %v", err)
	}
}

func TestRegistryWithoutState(t *testing.T) {
	r := NewRegistry()
	if _, err := r.IsAuthorized(creator); !errors.Is(err, errNilState) {
		t.Fatalf("expected errNilState, got %v", err)
	}
	if err := r.RequireOwner(owner); !errors.Is(err, errNilState) {
		t.Fatalf("expected errNilState, got %v", err)
	}
}

func TestUnsetOwnerRejectsZeroCaller(t *testing.T) {
	r := NewRegistry()
	r.SetState(newMockState(common.Address{}))
	if err := r.RequireOwner(common.Address{}); !errors.Is(err, ledgererrors.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}
