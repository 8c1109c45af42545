package reftable

import (
	"errors"
	"sync"
)

var ErrClosed = errors.New("reference table closed")

// Table maps handles to values. It is safe for concurrent use.
type Table struct {
	entries   []entry
	freeList  []uint32
	observers []Observer
	counts    [Global + 1]int
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

type entry struct {
	value any
	gen   uint32
	kind  Kind
	valid bool
}

// New creates an empty table.
func New() *Table {
	return &Table{
		entries:  make([]entry, 0, 64),
		freeList: make([]uint32, 0, 16),
	}
}

// Insert stores value under a new handle of the given kind. It returns 0
// once the table is closed.
func (t *Table) Insert(kind Kind, value any) Handle {
	h, err := t.insert(kind, value)
	if err != nil {
		return 0
	}
	t.notify(Event{Type: EventCreated, Handle: h, Kind: kind, Value: value})
	return h
}

func (t *Table) insert(kind Kind, value any) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, ErrClosed
	}

	if n := len(t.freeList); n > 0 {
		idx := t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		e := &t.entries[idx]
		e.gen++
		e.value = value
		e.kind = kind
		e.valid = true
		t.counts[kind]++
		return makeHandle(idx, e.gen), nil
	}

	t.entries = append(t.entries, entry{value: value, kind: kind, valid: true})
	t.counts[kind]++
	return makeHandle(uint32(len(t.entries)-1), 0), nil
}

// lookup returns the live entry for h. Callers hold t.mu.
func (t *Table) lookup(h Handle) *entry {
	if h == 0 {
		return nil
	}
	idx := h.index()
	if int(idx) >= len(t.entries) {
		return nil
	}
	e := &t.entries[idx]
	if !e.valid || e.gen != h.gen() {
		return nil
	}
	return e
}

// Get retrieves a value by handle.
func (t *Table) Get(h Handle) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e := t.lookup(h)
	if e == nil {
		return nil, false
	}
	return e.value, true
}

// GetKind retrieves a value only if the handle has the expected kind.
func (t *Table) GetKind(h Handle, kind Kind) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e := t.lookup(h)
	if e == nil || e.kind != kind {
		return nil, false
	}
	return e.value, true
}

// KindOf returns the kind of a live handle.
func (t *Table) KindOf(h Handle) (Kind, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e := t.lookup(h)
	if e == nil {
		return 0, false
	}
	return e.kind, true
}

// Delete removes a handle and returns (value, true) if it was live.
func (t *Table) Delete(h Handle) (any, bool) {
	value, kind, ok := t.remove(h)
	if !ok {
		return nil, false
	}
	t.notify(Event{Type: EventDeleted, Handle: h, Kind: kind, Value: value})
	return value, true
}

func (t *Table) remove(h Handle) (any, Kind, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.lookup(h)
	if e == nil {
		return nil, 0, false
	}
	value, kind := e.value, e.kind
	e.valid = false
	e.value = nil
	t.counts[kind]--
	t.freeList = append(t.freeList, h.index())
	return value, kind, true
}

// Len returns the number of live handles.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.counts[Local] + t.counts[Global]
}

// Count returns the number of live handles of one kind.
func (t *Table) Count(kind Kind) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if kind > Global {
		return 0
	}
	return t.counts[kind]
}

// Each iterates over live handles until fn returns false.
func (t *Table) Each(fn func(Handle, Kind, any) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i, e := range t.entries {
		if e.valid {
			if !fn(makeHandle(uint32(i), e.gen), e.kind, e.value) {
				break
			}
		}
	}
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Close drops every handle and stops accepting inserts. No events are sent
// for handles dropped by Close.
func (t *Table) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	t.entries = nil
	t.freeList = nil
	t.counts = [Global + 1]int{}
	return nil
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnReferenceEvent(e)
	}
}
