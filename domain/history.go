package domain

// HistoryLog is the ordered, append-only message history.
//
// It is a FIFO queue over monotonically increasing logical positions:
// head is the oldest retained position, tail the next insertion slot,
// and elements exist exactly for positions in [head, tail). Keeping a
// sparse map keyed by absolute position avoids re-indexing on dequeue;
// positions grow without bound, which is fine since no eviction is in
// scope.
//
// HistoryLog is not synchronized. The coordinator owns it exclusively.
type HistoryLog struct {
	head     int
	tail     int
	elements map[int]Message
}

// HistorySnapshot is the serializable whole-state view of a HistoryLog.
// Its JSON shape is the persisted blob format.
type HistorySnapshot struct {
	Head     int             `json:"head"`
	Tail     int             `json:"tail"`
	Elements map[int]Message `json:"elements"`
}

func NewHistoryLog() *HistoryLog {
	return &HistoryLog{elements: make(map[int]Message)}
}

// Enqueue appends a message at the back of the queue.
func (l *HistoryLog) Enqueue(message Message) {
	l.elements[l.tail] = message
	l.tail++
}

// Dequeue removes and returns the oldest message. The second return
// value is false on an empty log; that is a normal outcome, not an
// error.
func (l *HistoryLog) Dequeue() (Message, bool) {
	if l.head == l.tail {
		return Message{}, false
	}
	message := l.elements[l.head]
	delete(l.elements, l.head)
	l.head++
	return message, true
}

func (l *HistoryLog) Length() int {
	return l.tail - l.head
}

func (l *HistoryLog) IsEmpty() bool {
	return l.Length() == 0
}

// Messages returns the retained messages oldest first without consuming
// the log. Positions absent from the element map are skipped; a
// well-formed log has none.
func (l *HistoryLog) Messages() []Message {
	if l.IsEmpty() {
		return nil
	}
	messages := make([]Message, 0, l.Length())
	for pos := l.head; pos < l.tail; pos++ {
		message, ok := l.elements[pos]
		if !ok {
			continue
		}
		messages = append(messages, message)
	}
	return messages
}

// Snapshot returns an independent copy of the whole queue state,
// suitable for persisting without holding any lock.
func (l *HistoryLog) Snapshot() HistorySnapshot {
	elements := make(map[int]Message, len(l.elements))
	for pos, message := range l.elements {
		elements[pos] = message
	}
	return HistorySnapshot{Head: l.head, Tail: l.tail, Elements: elements}
}

// FromSnapshot rebuilds a log from a persisted snapshot. The zero
// snapshot (missing or empty blob) yields a fresh empty log.
func FromSnapshot(snapshot HistorySnapshot) *HistoryLog {
	elements := make(map[int]Message, len(snapshot.Elements))
	for pos, message := range snapshot.Elements {
		elements[pos] = message
	}
	return &HistoryLog{head: snapshot.Head, tail: snapshot.Tail, elements: elements}
}
