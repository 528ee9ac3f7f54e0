package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newMessage(sender, content string) Message {
	return Message{
		ID:         uuid.New(),
		SenderID:   sender,
		SenderName: sender,
		Content:    content,
		CreatedAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func Test_Enqueue_Preserves_FIFO_Order(t *testing.T) {
	req := require.New(t)
	history := NewHistoryLog()

	// Given messages enqueued in order
	first := newMessage("u1", "first")
	second := newMessage("u2", "second")
	third := newMessage("u1", "third")
	history.Enqueue(first)
	history.Enqueue(second)
	history.Enqueue(third)

	// Then the ordered listing returns them oldest first
	req.Equal(3, history.Length())
	req.Equal([]Message{first, second, third}, history.Messages())

	// And listing does not consume the log
	req.Equal([]Message{first, second, third}, history.Messages())
}

func Test_Dequeue_Returns_Oldest_First(t *testing.T) {
	req := require.New(t)
	history := NewHistoryLog()
	first := newMessage("u1", "first")
	second := newMessage("u2", "second")
	history.Enqueue(first)
	history.Enqueue(second)

	// When dequeuing
	message, ok := history.Dequeue()

	// Then the oldest message comes out and the log shrinks
	req.True(ok)
	req.Equal(first, message)
	req.Equal(1, history.Length())
	req.Equal([]Message{second}, history.Messages())
}

func Test_Dequeue_Empty_Log_Is_Not_An_Error(t *testing.T) {
	req := require.New(t)
	history := NewHistoryLog()

	// When dequeuing an empty log
	message, ok := history.Dequeue()

	// Then the absent result is normal and head/tail are untouched
	req.False(ok)
	req.Equal(Message{}, message)
	req.True(history.IsEmpty())
	snapshot := history.Snapshot()
	req.Equal(0, snapshot.Head)
	req.Equal(0, snapshot.Tail)
}

func Test_Snapshot_Roundtrip(t *testing.T) {
	req := require.New(t)
	history := NewHistoryLog()
	history.Enqueue(newMessage("u1", "keep"))
	history.Enqueue(newMessage("u2", "these"))
	// Advance head so positions are not zero-based anymore
	_, ok := history.Dequeue()
	req.True(ok)

	// When restoring from a snapshot
	restored := FromSnapshot(history.Snapshot())

	// Then the ordered list and positions are identical
	req.Equal(history.Messages(), restored.Messages())
	req.Equal(history.Snapshot(), restored.Snapshot())
}

func Test_Snapshot_Is_Independent_Copy(t *testing.T) {
	req := require.New(t)
	history := NewHistoryLog()
	history.Enqueue(newMessage("u1", "original"))

	snapshot := history.Snapshot()

	// When the log mutates after the snapshot was taken
	history.Enqueue(newMessage("u2", "later"))

	// Then the snapshot still holds the earlier state
	req.Len(snapshot.Elements, 1)
	req.Equal(1, snapshot.Tail)
}

func Test_From_Zero_Snapshot_Yields_Empty_Log(t *testing.T) {
	req := require.New(t)

	history := FromSnapshot(HistorySnapshot{})

	req.True(history.IsEmpty())
	req.Nil(history.Messages())
}

func Test_Messages_Skips_Absent_Positions(t *testing.T) {
	req := require.New(t)
	kept := newMessage("u1", "kept")
	alsoKept := newMessage("u2", "also kept")

	// Given a sparse snapshot with a hole at position 1
	history := FromSnapshot(HistorySnapshot{
		Head: 0,
		Tail: 3,
		Elements: map[int]Message{
			0: kept,
			2: alsoKept,
		},
	})

	// Then listing skips the hole but keeps the order
	req.Equal(3, history.Length())
	req.Equal([]Message{kept, alsoKept}, history.Messages())
}
