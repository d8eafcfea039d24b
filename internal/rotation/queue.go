package rotation

import "slices"

// Queue is the ordered host rotation list. Insertion order is rotation
// order and every name appears at most once. It is owned by a single
// Controller and is never shared, so it needs no locking.
type Queue struct {
	names []string
}

func NewQueue() *Queue {
	return &Queue{names: []string{}}
}

// Push appends name unless it is already queued. Returns true if it was added.
func (q *Queue) Push(name string) bool {
	if slices.Contains(q.names, name) {
		return false
	}
	q.names = append(q.names, name)
	return true
}

// Remove drops name from the queue. Returns true if it was present.
func (q *Queue) Remove(name string) bool {
	i := slices.Index(q.names, name)
	if i < 0 {
		return false
	}
	q.names = slices.Delete(q.names, i, i+1)
	return true
}

// MoveFront puts name at index 0, removing any prior occurrence first.
// Names that were never queued are inserted anyway (operator override).
func (q *Queue) MoveFront(name string) {
	q.Remove(name)
	q.names = slices.Insert(q.names, 0, name)
}

// Rotate moves the front entry to the back. No-op for empty or
// single-entry queues.
func (q *Queue) Rotate() {
	if len(q.names) < 2 {
		return
	}
	front := q.names[0]
	q.names = append(q.names[1:], front)
}

// Front returns the intended current host, or "" when the queue is empty.
func (q *Queue) Front() string {
	if len(q.names) == 0 {
		return ""
	}
	return q.names[0]
}

func (q *Queue) Len() int { return len(q.names) }

func (q *Queue) Clear() { q.names = q.names[:0] }

// First returns a copy of up to n entries from the front.
func (q *Queue) First(n int) []string {
	if n > len(q.names) {
		n = len(q.names)
	}
	return slices.Clone(q.names[:n])
}

// Names returns a copy of the whole queue, front first.
func (q *Queue) Names() []string {
	return slices.Clone(q.names)
}
