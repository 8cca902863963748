package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/blentz/artifactsmmo-sub007/internal/gameapi"
)

type scriptedCall struct {
	outcome *gameapi.ActionOutcome
	err     error
}

// FakeClient is a scripted gameapi.Client. Each method pops the next
// queued response for its name; an empty queue yields a bare success so
// tests only script the calls they care about.
type FakeClient struct {
	mu     sync.Mutex
	queues map[string][]scriptedCall
	// Calls records every invocation in order, formatted as
	// "method(arg,...)", for assertions on call sequencing.
	Calls []string
}

// NewFakeClient creates an empty FakeClient.
func NewFakeClient() *FakeClient {
	return &FakeClient{queues: make(map[string][]scriptedCall)}
}

// Queue appends a scripted response for the named method.
func (f *FakeClient) Queue(method string, outcome *gameapi.ActionOutcome, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queues[method] = append(f.queues[method], scriptedCall{outcome: outcome, err: err})
}

// QueueError appends a scripted failure for the named method.
func (f *FakeClient) QueueError(method string, err error) {
	f.Queue(method, nil, err)
}

func (f *FakeClient) next(call string, method string) (*gameapi.ActionOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, call)
	q := f.queues[method]
	if len(q) == 0 {
		return &gameapi.ActionOutcome{}, nil
	}
	c := q[0]
	f.queues[method] = q[1:]
	return c.outcome, c.err
}

func (f *FakeClient) Move(_ context.Context, character string, x, y int) (*gameapi.ActionOutcome, error) {
	return f.next(fmt.Sprintf("Move(%s,%d,%d)", character, x, y), "Move")
}

func (f *FakeClient) Fight(_ context.Context, character string) (*gameapi.ActionOutcome, error) {
	return f.next(fmt.Sprintf("Fight(%s)", character), "Fight")
}

func (f *FakeClient) Gather(_ context.Context, character string) (*gameapi.ActionOutcome, error) {
	return f.next(fmt.Sprintf("Gather(%s)", character), "Gather")
}

func (f *FakeClient) Craft(_ context.Context, character, itemCode string, quantity int) (*gameapi.ActionOutcome, error) {
	return f.next(fmt.Sprintf("Craft(%s,%s,%d)", character, itemCode, quantity), "Craft")
}

func (f *FakeClient) Rest(_ context.Context, character string) (*gameapi.ActionOutcome, error) {
	return f.next(fmt.Sprintf("Rest(%s)", character), "Rest")
}

func (f *FakeClient) Equip(_ context.Context, character, itemCode, slot string) (*gameapi.ActionOutcome, error) {
	return f.next(fmt.Sprintf("Equip(%s,%s,%s)", character, itemCode, slot), "Equip")
}

func (f *FakeClient) Unequip(_ context.Context, character, slot string) (*gameapi.ActionOutcome, error) {
	return f.next(fmt.Sprintf("Unequip(%s,%s)", character, slot), "Unequip")
}

func (f *FakeClient) DepositItem(_ context.Context, character, itemCode string, quantity int) (*gameapi.ActionOutcome, error) {
	return f.next(fmt.Sprintf("DepositItem(%s,%s,%d)", character, itemCode, quantity), "DepositItem")
}

func (f *FakeClient) WithdrawItem(_ context.Context, character, itemCode string, quantity int) (*gameapi.ActionOutcome, error) {
	return f.next(fmt.Sprintf("WithdrawItem(%s,%s,%d)", character, itemCode, quantity), "WithdrawItem")
}

// FakeFetcher serves a fixed sequence of character snapshots; the last
// one repeats once the sequence is exhausted.
type FakeFetcher struct {
	mu    sync.Mutex
	snaps []*gameapi.CharacterSnapshot
	idx   int
	// Fetches counts FetchCharacter calls.
	Fetches int
}

// NewFakeFetcher creates a FakeFetcher.
//
// Precondition: at least one snapshot must be provided.
func NewFakeFetcher(snaps ...*gameapi.CharacterSnapshot) *FakeFetcher {
	if len(snaps) == 0 {
		panic("testutil.NewFakeFetcher: no snapshots")
	}
	return &FakeFetcher{snaps: snaps}
}

// Push appends another snapshot to the sequence.
func (f *FakeFetcher) Push(snap *gameapi.CharacterSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snaps = append(f.snaps, snap)
}

func (f *FakeFetcher) FetchCharacter(_ context.Context, name string) (*gameapi.CharacterSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Fetches++
	snap := f.snaps[f.idx]
	if f.idx < len(f.snaps)-1 {
		f.idx++
	}
	cp := *snap
	cp.Name = name
	return &cp, nil
}
