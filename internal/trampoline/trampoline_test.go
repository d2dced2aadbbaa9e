package trampoline

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/winmon/internal/monitor"
)

type recorder struct {
	mu     sync.Mutex
	events []monitor.RawEvent
}

func (r *recorder) sink(ev monitor.RawEvent) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestTable_DispatchRoutesByHandle(t *testing.T) {
	t.Parallel()

	table := NewTable()
	first, second := &recorder{}, &recorder{}

	a := table.Bind(first.sink)
	b := table.Bind(second.sink)
	require.NotEqual(t, a, b)

	require.True(t, table.Attach(0x10, a))
	require.True(t, table.Attach(0x11, a))
	require.True(t, table.Attach(0x20, b))

	ev := monitor.RawEvent{Kind: monitor.RawMoveSizeEnd, Scope: monitor.ScopeWindow}
	assert.True(t, table.Dispatch(0x10, ev))
	assert.True(t, table.Dispatch(0x11, ev))
	assert.True(t, table.Dispatch(0x20, ev))

	assert.Equal(t, 2, first.count())
	assert.Equal(t, 1, second.count())
	assert.Equal(t, 3, table.Handles())
}

func TestTable_UnknownHandleIsNoOp(t *testing.T) {
	t.Parallel()

	table := NewTable()
	assert.False(t, table.Dispatch(0xdead, monitor.RawEvent{}))
	assert.Equal(t, uint64(1), table.Misses())
}

func TestTable_ReleaseStopsDelivery(t *testing.T) {
	t.Parallel()

	table := NewTable()
	rec := &recorder{}

	id := table.Bind(rec.sink)
	require.True(t, table.Attach(0x10, id))
	require.True(t, table.Attach(0x11, id))

	table.Detach(0x10)
	leftover := table.Release(id)

	assert.Equal(t, []uintptr{0x11}, leftover)
	assert.False(t, table.Dispatch(0x10, monitor.RawEvent{}))
	assert.False(t, table.Dispatch(0x11, monitor.RawEvent{}))
	assert.Equal(t, 0, rec.count())
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, 0, table.Handles())
	assert.Nil(t, table.Release(id), "double release is a no-op")
}

func TestTable_AttachRejectsForeignHandle(t *testing.T) {
	t.Parallel()

	table := NewTable()
	a := table.Bind(func(monitor.RawEvent) {})
	b := table.Bind(func(monitor.RawEvent) {})

	require.True(t, table.Attach(0x10, a))
	assert.True(t, table.Attach(0x10, a), "re-attaching to the same slot is allowed")
	assert.False(t, table.Attach(0x10, b))
	assert.False(t, table.Attach(0, a), "null handle")
	assert.False(t, table.Attach(0x30, SlotID(999)), "unknown slot")
}

func TestTable_SlotIDsAreNotReused(t *testing.T) {
	t.Parallel()

	table := NewTable()
	a := table.Bind(func(monitor.RawEvent) {})
	table.Release(a)
	b := table.Bind(func(monitor.RawEvent) {})

	assert.NotEqual(t, a, b)
}

func TestTable_ConcurrentDispatchAndRelease(t *testing.T) {
	t.Parallel()

	table := NewTable()
	rec := &recorder{}
	id := table.Bind(rec.sink)
	require.True(t, table.Attach(0x10, id))

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 500 {
				table.Dispatch(0x10, monitor.RawEvent{Kind: monitor.RawObjectShow})
			}
		}()
	}

	table.Detach(0x10)
	table.Release(id)
	wg.Wait()

	before := rec.count()
	assert.False(t, table.Dispatch(0x10, monitor.RawEvent{}))
	assert.Equal(t, before, rec.count())
}

func TestTable_MuteKeepsSlotUntilRelease(t *testing.T) {
	t.Parallel()

	table := NewTable()
	rec := &recorder{}

	id := table.Bind(rec.sink)
	require.True(t, table.Attach(0x30, id))

	table.Mute(id)

	assert.False(t, table.Dispatch(0x30, monitor.RawEvent{}))
	assert.Equal(t, 0, rec.count())
	assert.Equal(t, uint64(1), table.Misses())
	assert.Equal(t, 1, table.Len(), "muted slot stays bound until released")
	assert.Equal(t, 1, table.Handles())

	table.Detach(0x30)
	assert.Empty(t, table.Release(id))
	assert.Equal(t, 0, table.Len())
}
