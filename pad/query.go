package pad

// Query is the cursor of the transaction currently clocked by the console.
type Query struct {
	Port           uint8
	Slot           uint8
	LastByte       uint8
	CurrentCommand uint8
	NumBytes       uint8
	QueryDone      uint8
	Response       [ResponseSize]uint8
}

// Reset closes any open transaction.
func (q *Query) Reset() {
	q.Port = 0
	q.Slot = 0
	q.LastByte = 1
	q.CurrentCommand = 0
	q.NumBytes = 0
	q.QueryDone = 1
	for i := range q.Response {
		q.Response[i] = ackByte
	}
}

// Done reports whether the command has produced its final reply.
func (q *Query) Done() bool { return q.QueryDone != 0 }

// open starts a transaction addressed to port and slot (both 0-based).
func (q *Query) open(port, slot uint8) {
	q.QueryDone = 0
	q.Port = port
	q.Slot = slot
	q.NumBytes = 2
	q.LastByte = 0
}

// close ends the transaction without a reply, leaving the slot bookkeeping
// in place.
func (q *Query) close() {
	q.QueryDone = 1
	q.NumBytes = 0
	q.LastByte = 1
}

func (q *Query) setResult(r reply) {
	copy(q.Response[2:], r[:])
	q.NumBytes = uint8(2 + len(r))
}

func (q *Query) setFinalResult(r reply) {
	q.setResult(r)
	q.QueryDone = 1
}
