package events

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestBus(values map[string]string) *Bus[string] {
	return NewBus[string](func(key string) string { return values[key] }, Options{ConcurrencySafe: true})
}

func TestBus_InvokesInRegistrationOrder(t *testing.T) {
	b := newTestBus(map[string]string{"a": "aa"})
	var order []int
	b.On("a", NewListener(func(ChangeEvent[string]) { order = append(order, 1) }))
	b.On("a", NewListener(func(ChangeEvent[string]) { order = append(order, 2) }))
	b.On("a", NewListener(func(ChangeEvent[string]) { order = append(order, 3) }))

	b.Trigger("a", Added, "")
	require.Equal(t, []int{1, 2, 3}, order)
}

func TestBus_EventCarriesCurrentValue(t *testing.T) {
	values := map[string]string{"a": "new"}
	b := newTestBus(values)
	var got ChangeEvent[string]
	b.On("a", NewListener(func(e ChangeEvent[string]) { got = e }))

	b.Trigger("a", Updated, "old")
	require.Equal(t, ChangeEvent[string]{Type: Updated, Key: "a", NewVal: "new", OldVal: "old"}, got)
}

func TestBus_OffRemovesFirstOccurrenceOnly(t *testing.T) {
	b := newTestBus(nil)
	calls := 0
	l := NewListener(func(ChangeEvent[string]) { calls++ })
	b.On("k", l)
	b.On("k", l)
	require.Equal(t, 2, b.Count("k"))

	b.Off("k", l)
	require.Equal(t, 1, b.Count("k"))

	b.Trigger("k", Added, "")
	require.Equal(t, 1, calls)
}

func TestBus_OffNilClearsKey(t *testing.T) {
	b := newTestBus(nil)
	val := 1
	b.On("b", NewListener(func(ChangeEvent[string]) { val = 3 }))
	b.On("b", NewListener(func(ChangeEvent[string]) { val = 4 }))
	b.On("c", NewListener(func(ChangeEvent[string]) {}))

	b.Off("b", nil)
	b.Trigger("b", Added, "")
	require.Equal(t, 1, val)
	require.Equal(t, 0, b.Count("b"))
	require.Equal(t, 1, b.Count("c"))
}

func TestBus_OffUnknownIsNoop(t *testing.T) {
	b := newTestBus(nil)
	l := NewListener(func(ChangeEvent[string]) {})
	require.NotPanics(t, func() {
		b.Off("missing", l)
		b.Off("missing", nil)
	})

	b.On("k", NewListener(func(ChangeEvent[string]) {}))
	b.Off("k", l)
	require.Equal(t, 1, b.Count("k"))
}

func TestBus_TriggerWithoutListeners(t *testing.T) {
	b := newTestBus(nil)
	require.NotPanics(t, func() { b.Trigger("nobody", Deleted, "") })
}

func TestBus_PanicAbortsRemainingListeners(t *testing.T) {
	b := newTestBus(nil)
	reached := false
	b.On("k", NewListener(func(ChangeEvent[string]) { panic("boom") }))
	b.On("k", NewListener(func(ChangeEvent[string]) { reached = true }))

	require.PanicsWithValue(t, "boom", func() { b.Trigger("k", Added, "") })
	require.False(t, reached)
}

func TestBus_ListenerMayUnsubscribeDuringTrigger(t *testing.T) {
	b := newTestBus(nil)
	var order []string
	var first *Listener[string]
	first = NewListener(func(ChangeEvent[string]) {
		order = append(order, "first")
		b.Off("k", first)
	})
	b.On("k", first)
	b.On("k", NewListener(func(ChangeEvent[string]) { order = append(order, "second") }))

	b.Trigger("k", Added, "")
	b.Trigger("k", Updated, "")
	require.Equal(t, []string{"first", "second", "second"}, order)
}
