package queue

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	ledgererrors "celebmint/core/errors"
	"celebmint/core/events"
)

type mockState struct {
	count    uint64
	requests map[uint64]*PendingRequest
}

func newMockState() *mockState {
	return &mockState{requests: make(map[uint64]*PendingRequest)}
}

func (m *mockState) PendingCount() (uint64, error) { return m.count, nil }

func (m *mockState) SetPendingCount(n uint64) error {
	m.count = n
	return nil
}

func (m *mockState) PendingGet(id uint64) (*PendingRequest, bool, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, false, nil
	}
	return req.Clone(), true, nil
}

func (m *mockState) PendingPut(req *PendingRequest) error {
	m.requests[req.ID] = req.Clone()
	return nil
}

type allowList map[common.Address]bool

func (a allowList) IsAuthorized(addr common.Address) (bool, error) { return a[addr], nil }

var (
	celeb    = common.HexToAddress("0x4000000000000000000000000000000000000004")
	stranger = common.HexToAddress("0x5000000000000000000000000000000000000005")
)

func newTestQueue() (*Queue, *mockState, *events.Recorder) {
	st := newMockState()
	rec := &events.Recorder{}
	q := New(allowList{celeb: true})
	q.SetState(st)
	q.SetEmitter(rec)
	return q, st, rec
}

func TestSubmitAssignsDenseIDs(t *testing.T) {
	q, _, rec := newTestQueue()
	for want := uint64(0); want < 3; want++ {
		id, err := q.Submit(celeb, "ipfs://moment", big.NewInt(100))
		if err != nil {
			t.Fatalf("submit %d: %v", want, err)
		}
		if id != want {
			t.Fatalf("expected id %d, got %d", want, id)
		}
	}
	count, err := q.Count()
	if err != nil || count != 3 {
		t.Fatalf("count = %d, %v", count, err)
	}
	req, err := q.Get(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if req.Creator != celeb || req.MetadataRef != "ipfs://moment" || req.Price.Int64() != 100 || req.Minted {
		t.Fatalf("unexpected request: %+v", req)
	}
	if len(rec.Events()) != 3 {
		t.Fatalf("expected 3 events, got %d", len(rec.Events()))
	}
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name   string
		caller common.Address
		ref    string
		price  *big.Int
		want   error
	}{
		{"unauthorized", stranger, "ipfs://x", big.NewInt(1), ledgererrors.ErrNotAuthorized},
		{"blank metadata", celeb, "  ", big.NewInt(1), ledgererrors.ErrInvalidMetadata},
		{"zero price", celeb, "ipfs://x", big.NewInt(0), ledgererrors.ErrInvalidAmount},
		{"negative price", celeb, "ipfs://x", big.NewInt(-5), ledgererrors.ErrInvalidAmount},
		{"nil price", celeb, "ipfs://x", nil, ledgererrors.ErrInvalidAmount},
		{"oversized price", celeb, "ipfs://x", new(big.Int).Lsh(big.NewInt(1), 256), ledgererrors.ErrInvalidAmount},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, st, rec := newTestQueue()
			if _, err := q.Submit(tc.caller, tc.ref, tc.price); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if st.count != 0 || len(st.requests) != 0 {
				t.Fatalf("rejected submit wrote state")
			}
			if len(rec.Events()) != 0 {
				t.Fatalf("rejected submit emitted events")
			}
		})
	}
}

func TestSubmitKeepsMetadataVerbatim(t *testing.T) {
	q, _, rec := newTestQueue()
	const ref = "  ipfs://x\n"
	id, err := q.Submit(celeb, ref, big.NewInt(10))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	req, err := q.Get(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if req.MetadataRef != ref {
		t.Fatalf("metadata changed: got %q want %q", req.MetadataRef, ref)
	}
	evts := rec.Events()
	if len(evts) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evts))
	}
	if got := evts[0].(RequestSubmitted).MetadataRef; got != ref {
		t.Fatalf("event metadata changed: got %q", got)
	}
}

func TestConsumeIsOneWay(t *testing.T) {
	q, _, _ := newTestQueue()
	id, err := q.Submit(celeb, "ipfs://x", big.NewInt(9))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	before, err := q.Consume(id)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if before.Minted {
		t.Fatalf("consume should return the pre-transition record")
	}
	after, err := q.Get(id)
	if err != nil || !after.Minted {
		t.Fatalf("request not marked minted: %+v, %v", after, err)
	}
	if _, err := q.Consume(id); !errors.Is(err, ledgererrors.ErrAlreadyMinted) {
		t.Fatalf("expected ErrAlreadyMinted, got %v", err)
	}
	if _, err := q.Consume(99); !errors.Is(err, ledgererrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	q, _, _ := newTestQueue()
	id, _ := q.Submit(celeb, "ipfs://x", big.NewInt(9))
	req, _ := q.Get(id)
	req.Price.SetInt64(1)
	req.Minted = true
	again, _ := q.Get(id)
	if again.Price.Int64() != 9 || again.Minted {
		t.Fatalf("stored request mutated through returned copy")
	}
}
