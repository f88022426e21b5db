package identity

// Allocator hands out identifiers. Fresh never fails.
type Allocator interface {
	// Fresh returns an identifier not currently in use.
	Fresh() ID

	// Release returns id for future reuse. Callers must guarantee no live
	// record still references it.
	Release(id ID)

	// Clone returns an independent allocator that continues numbering
	// from the same state.
	Clone() Allocator
}

// FreeList reuses released identifiers (oldest first) before growing a
// monotonic counter.
type FreeList struct {
	next ID
	free []ID
}

// NewFreeList creates an allocator whose first identifier is %1.
func NewFreeList() *FreeList {
	return &FreeList{}
}

// Fresh pops the oldest released identifier, or increments the counter.
func (f *FreeList) Fresh() ID {
	if len(f.free) > 0 {
		id := f.free[0]
		f.free = f.free[1:]
		return id
	}
	f.next++
	return f.next
}

// Release queues id for reuse. Invalid IDs are ignored.
func (f *FreeList) Release(id ID) {
	if !id.Valid() {
		return
	}
	f.free = append(f.free, id)
}

// Clone copies the counter and the pending free list.
func (f *FreeList) Clone() Allocator {
	return &FreeList{
		next: f.next,
		free: append([]ID(nil), f.free...),
	}
}

// Counter is a monotonic allocator. Release is a no-op.
type Counter struct {
	next ID
}

// NewCounter creates a monotonic allocator whose first identifier is %1.
func NewCounter() *Counter {
	return &Counter{}
}

// Fresh returns the next identifier.
func (c *Counter) Fresh() ID {
	c.next++
	return c.next
}

// Release does nothing.
func (c *Counter) Release(ID) {}

// Clone copies the counter.
func (c *Counter) Clone() Allocator {
	return &Counter{next: c.next}
}
