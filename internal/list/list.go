// Package list implements an intrusive doubly-linked list.
//
// The link node (the "hook") lives as a field embedded in the caller's
// struct instead of being allocated separately, so pushing or popping an
// element never allocates. Go has no raw field-embedding pointer tricks, so
// the hook is reached through the Hooked interface instead of pointer
// arithmetic on an offsetof-style computation.
package list

// Hook is the link node embedded in a user type. A Hook belongs to at most
// one List at a time.
type Hook[T any] struct {
	next, prev T
	linked     bool
}

// Hooked is implemented by types that embed a Hook and want to participate
// in a List. Hook returns a pointer to the embedded hook so List can link
// T values directly without a side allocation.
type Hooked[T any] interface {
	comparable
	Hook() *Hook[T]
}

// List is a doubly-linked list of T, ordered front to back.
//
// The zero value is an empty list ready to use; Init resets a list to that
// state.
type List[T Hooked[T]] struct {
	head, tail T
	size       int
	zero       T
}

// New returns an initialized empty list.
func New[T Hooked[T]]() *List[T] {
	l := &List[T]{}
	l.Init()
	return l
}

// Init resets l to the empty state. Safe to call on a zero-valued List.
func (l *List[T]) Init() {
	l.head = l.zero
	l.tail = l.zero
	l.size = 0
}

// Len returns the number of elements, in O(1).
func (l *List[T]) Len() int { return l.size }

// Empty reports whether the list has no elements.
func (l *List[T]) Empty() bool { return l.size == 0 }

// Front returns the first element, or the zero value if the list is empty.
func (l *List[T]) Front() T { return l.head }

// Back returns the last element, or the zero value if the list is empty.
func (l *List[T]) Back() T { return l.tail }

func (l *List[T]) assertUnlinked(v T) {
	if v.Hook().linked {
		panic("list: value is already a member of a list")
	}
}

// PushFront inserts v at the head of the list.
func (l *List[T]) PushFront(v T) {
	l.assertUnlinked(v)
	h := v.Hook()
	h.next = l.head
	h.prev = l.zero
	h.linked = true
	if l.head != l.zero {
		l.head.Hook().prev = v
	} else {
		l.tail = v
	}
	l.head = v
	l.size++
}

// PushBack inserts v at the tail of the list.
func (l *List[T]) PushBack(v T) {
	l.assertUnlinked(v)
	h := v.Hook()
	h.prev = l.tail
	h.next = l.zero
	h.linked = true
	if l.tail != l.zero {
		l.tail.Hook().next = v
	} else {
		l.head = v
	}
	l.tail = v
	l.size++
}

// InsertBefore inserts v immediately before it. it must currently be a
// member of l.
func (l *List[T]) InsertBefore(it, v T) {
	l.assertUnlinked(v)
	if it == l.zero {
		l.PushBack(v)
		return
	}
	h := v.Hook()
	ith := it.Hook()
	h.prev = ith.prev
	h.next = it
	h.linked = true
	if ith.prev != l.zero {
		ith.prev.Hook().next = v
	} else {
		l.head = v
	}
	ith.prev = v
	l.size++
}

// Remove unlinks v from the list. v must currently be a member of l.
func (l *List[T]) Remove(v T) {
	h := v.Hook()
	if !h.linked {
		panic("list: value is not a member of a list")
	}
	if h.prev != l.zero {
		h.prev.Hook().next = h.next
	} else {
		l.head = h.next
	}
	if h.next != l.zero {
		h.next.Hook().prev = h.prev
	} else {
		l.tail = h.prev
	}
	h.next = l.zero
	h.prev = l.zero
	h.linked = false
	l.size--
}

// PopFront removes and returns the first element. Returns the zero value
// if the list is empty.
func (l *List[T]) PopFront() T {
	v := l.head
	if v == l.zero {
		return l.zero
	}
	l.Remove(v)
	return v
}

// PopBack removes and returns the last element. Returns the zero value if
// the list is empty.
func (l *List[T]) PopBack() T {
	v := l.tail
	if v == l.zero {
		return l.zero
	}
	l.Remove(v)
	return v
}

// MoveAllFrom appends every element of other to l, in order, leaving other
// empty. O(1).
func (l *List[T]) MoveAllFrom(other *List[T]) {
	if other.Empty() {
		return
	}
	if l.Empty() {
		l.head = other.head
		l.tail = other.tail
		l.size = other.size
	} else {
		l.tail.Hook().next = other.head
		other.head.Hook().prev = l.tail
		l.tail = other.tail
		l.size += other.size
	}
	other.Init()
}

// Swap exchanges the contents of l and other in O(1).
func (l *List[T]) Swap(other *List[T]) {
	l.head, other.head = other.head, l.head
	l.tail, other.tail = other.tail, l.tail
	l.size, other.size = other.size, l.size
}

// ForEach walks the list front to back, calling fn for each element. fn
// may not mutate the list.
func (l *List[T]) ForEach(fn func(T)) {
	for v := l.head; v != l.zero; v = v.Hook().next {
		fn(v)
	}
}

// ForEachReverse walks the list back to front, calling fn for each
// element. fn may not mutate the list.
func (l *List[T]) ForEachReverse(fn func(T)) {
	for v := l.tail; v != l.zero; v = v.Hook().prev {
		fn(v)
	}
}
