package messages

import "fmt"

// Queue keeps messages of one type in the order they were posted.
type Queue[T any] struct {
	items []T
}

func (q *Queue[T]) Post(m T) {
	q.items = append(q.items, m)
}

// Items returns the posted messages. The slice is owned by the queue and
// valid until the queue is cleared.
func (q *Queue[T]) Items() []T {
	return q.items
}

func (q *Queue[T]) Len() int {
	return len(q.items)
}

// Drain returns the posted messages and empties the queue.
func (q *Queue[T]) Drain() []T {
	out := q.items
	q.items = nil
	return out
}

func (q *Queue[T]) Clear() {
	clear(q.items)
	q.items = q.items[:0]
}

// Bus holds one queue per message type. It lives for one step and is
// cleared before the next begins.
type Bus struct {
	intents       Queue[Intent]
	collisions    Queue[Collision]
	damages       Queue[Damage]
	healthEvents  Queue[HealthEvent]
	deletions     Queue[QueueDeletion]
	soonDeleted   Queue[WillSoonBeDeleted]
	transfers     Queue[TransferRequest]
	pickups       Queue[Pickup]
	corrections   Queue[InterpolationCorrection]
	startedSounds Queue[StartSound]
	stoppedSounds Queue[StopSound]
}

func NewBus() *Bus {
	return &Bus{}
}

// QueueOf returns the queue of message type T.
func QueueOf[T any](b *Bus) *Queue[T] {
	var q any
	switch any((*T)(nil)).(type) {
	case *Intent:
		q = &b.intents
	case *Collision:
		q = &b.collisions
	case *Damage:
		q = &b.damages
	case *HealthEvent:
		q = &b.healthEvents
	case *QueueDeletion:
		q = &b.deletions
	case *WillSoonBeDeleted:
		q = &b.soonDeleted
	case *TransferRequest:
		q = &b.transfers
	case *Pickup:
		q = &b.pickups
	case *InterpolationCorrection:
		q = &b.corrections
	case *StartSound:
		q = &b.startedSounds
	case *StopSound:
		q = &b.stoppedSounds
	}

	queue, ok := q.(*Queue[T])
	if !ok {
		panic(fmt.Sprintf("messages: %T is not a message", *new(T)))
	}
	return queue
}

// Post appends m to the queue of its type.
func Post[T any](b *Bus, m T) {
	QueueOf[T](b).Post(m)
}

// Clear empties every queue.
func (b *Bus) Clear() {
	b.intents.Clear()
	b.collisions.Clear()
	b.damages.Clear()
	b.healthEvents.Clear()
	b.deletions.Clear()
	b.soonDeleted.Clear()
	b.transfers.Clear()
	b.pickups.Clear()
	b.corrections.Clear()
	b.startedSounds.Clear()
	b.stoppedSounds.Clear()
}
