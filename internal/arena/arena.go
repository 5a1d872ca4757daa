// Package arena implements a segmented bump allocator with destructor
// registration, grounded on the dfk_arena_t design in
// original_source/src/internal/arena.c: allocation is O(1) amortized,
// there is no per-object free, and every registered finalizer runs — in
// registration order — when the arena is reset.
//
// Go already garbage-collects individual allocations, so the value this
// package adds is not memory reclamation but deterministic, ordered
// teardown of per-fiber or per-connection resources.
package arena

import "github.com/strandrt/strand/internal/list"

// DefaultSegmentSize is used when New is called with a non-positive size.
const DefaultSegmentSize = 4096

type segment struct {
	hook list.Hook[*segment]
	buf  []byte
	used int
}

func (s *segment) Hook() *list.Hook[*segment] { return &s.hook }

func (s *segment) available() int { return len(s.buf) - s.used }

type finalizer struct {
	hook list.Hook[*finalizer]
	fn   func()
}

func (f *finalizer) Hook() *list.Hook[*finalizer] { return &f.hook }

// Arena is a bump allocator whose lifetime bounds every allocation made
// from it. It is not safe for concurrent use without external
// synchronization — callers in this module only ever touch an Arena from
// the fiber that owns it.
type Arena struct {
	segmentSize int
	segments    *list.List[*segment]
	finalizers  *list.List[*finalizer]
}

// New creates an Arena whose segments are sized to at least segmentSize
// bytes (DefaultSegmentSize if segmentSize <= 0).
func New(segmentSize int) *Arena {
	if segmentSize <= 0 {
		segmentSize = DefaultSegmentSize
	}
	return &Arena{
		segmentSize: segmentSize,
		segments:    list.New[*segment](),
		finalizers:  list.New[*finalizer](),
	}
}

func (a *Arena) current() *segment { return a.segments.Back() }

// Alloc returns n fresh, zeroed bytes from the current segment, growing the
// arena with a new segment if necessary.
func (a *Arena) Alloc(n int) []byte {
	if n <= 0 {
		return nil
	}
	cur := a.current()
	if cur == nil || cur.available() < n {
		size := a.segmentSize
		if n > size {
			size = n
		}
		cur = &segment{buf: make([]byte, size)}
		a.segments.PushBack(cur)
	}
	b := cur.buf[cur.used : cur.used+n]
	cur.used += n
	return b
}

// AllocCopy is Alloc followed by a copy of src into the returned slice.
func (a *Arena) AllocCopy(src []byte) []byte {
	dst := a.Alloc(len(src))
	copy(dst, src)
	return dst
}

// AllocWithFinalizer reserves n bytes and registers fn to run (with every
// other registered finalizer, in registration order) the next time Reset
// is called.
func (a *Arena) AllocWithFinalizer(n int, fn func()) []byte {
	b := a.Alloc(n)
	f := &finalizer{fn: fn}
	a.finalizers.PushBack(f)
	return b
}

// Reset runs every registered finalizer in registration order, then
// releases every segment. The Arena is left ready for reuse.
func (a *Arena) Reset() {
	a.finalizers.ForEach(func(f *finalizer) { f.fn() })
	a.finalizers.Init()
	a.segments.Init()
}

// Segments reports how many backing segments are currently allocated, for
// diagnostics and tests.
func (a *Arena) Segments() int { return a.segments.Len() }
