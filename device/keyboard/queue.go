package keyboard

import "sync/atomic"

// EventKind uses the X11 event type numbers.
type EventKind uint8

const (
	KeyPress      EventKind = 2
	KeyRelease    EventKind = 3
	ButtonPress   EventKind = 4
	ButtonRelease EventKind = 5
	MotionNotify  EventKind = 6
)

func (k EventKind) String() string {
	switch k {
	case KeyPress:
		return "key_press"
	case KeyRelease:
		return "key_release"
	case ButtonPress:
		return "button_press"
	case ButtonRelease:
		return "button_release"
	case MotionNotify:
		return "motion"
	}
	return "none"
}

// Event is a key, mouse button or pointer motion from the host. Key holds
// the keysym or button number; X and Y the pointer position for motion.
type Event struct {
	Kind EventKind
	Key  uint32
	X, Y int32
}

type node struct {
	ev   Event
	next *node
}

// EventQueue is a lock-free FIFO with any number of producers and a single
// consumer. Producers push onto a stack; DrainAll swaps the whole stack out
// and reverses it. It is unbounded and neither Push nor DrainAll blocks.
type EventQueue struct {
	head atomic.Pointer[node]
	len  atomic.Int32
}

// Push appends ev. Safe for concurrent use.
func (q *EventQueue) Push(ev Event) {
	n := &node{ev: ev}
	for {
		old := q.head.Load()
		n.next = old
		if q.head.CompareAndSwap(old, n) {
			q.len.Add(1)
			return
		}
	}
}

// DrainAll removes every queued event and passes them to fn oldest first.
// Only one goroutine may drain at a time.
func (q *EventQueue) DrainAll(fn func(Event)) int {
	top := q.head.Swap(nil)
	if top == nil {
		return 0
	}

	// The stack is newest first.
	var fifo *node
	n := 0
	for top != nil {
		next := top.next
		top.next = fifo
		fifo = top
		top = next
		n++
	}
	q.len.Add(int32(-n))

	for ; fifo != nil; fifo = fifo.next {
		fn(fifo.ev)
	}
	return n
}

// Len is an estimate of the number of queued events.
func (q *EventQueue) Len() int { return int(q.len.Load()) }
