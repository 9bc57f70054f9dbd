package search

import "container/heap"

// entry is one not-yet-expanded frontier item. seq is the insertion counter
// and only breaks ties between equal priorities.
type entry[S comparable, A any] struct {
	priority float64
	seq      uint64
	g        float64
	state    S
	path     []A
}

type frontier[S comparable, A any] interface {
	push(entry[S, A])
	pop() entry[S, A]
	len() int
}

// fifo is the breadth-first queue.
type fifo[S comparable, A any] struct {
	items []entry[S, A]
	head  int
}

func (q *fifo[S, A]) push(e entry[S, A]) { q.items = append(q.items, e) }
func (q *fifo[S, A]) len() int           { return len(q.items) - q.head }

func (q *fifo[S, A]) pop() entry[S, A] {
	e := q.items[q.head]
	q.items[q.head] = entry[S, A]{}
	q.head++
	// Compact once the consumed prefix dominates the backing array.
	if q.head > 64 && q.head*2 > len(q.items) {
		n := copy(q.items, q.items[q.head:])
		q.items = q.items[:n]
		q.head = 0
	}
	return e
}

// lifo is the depth-first stack.
type lifo[S comparable, A any] struct {
	items []entry[S, A]
}

func (s *lifo[S, A]) push(e entry[S, A]) { s.items = append(s.items, e) }
func (s *lifo[S, A]) len() int           { return len(s.items) }

func (s *lifo[S, A]) pop() entry[S, A] {
	n := len(s.items) - 1
	e := s.items[n]
	s.items[n] = entry[S, A]{}
	s.items = s.items[:n]
	return e
}

// priorityQueue implements heap.Interface ordered by (priority, seq).
type priorityQueue[S comparable, A any] []entry[S, A]

func (q priorityQueue[S, A]) Len() int { return len(q) }
func (q priorityQueue[S, A]) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority < q[j].priority
	}
	return q[i].seq < q[j].seq
}
func (q priorityQueue[S, A]) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *priorityQueue[S, A]) Push(x any) {
	*q = append(*q, x.(entry[S, A]))
}

func (q *priorityQueue[S, A]) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = entry[S, A]{}
	*q = old[:n-1]
	return e
}

type priorityFrontier[S comparable, A any] struct {
	queue priorityQueue[S, A]
}

func (f *priorityFrontier[S, A]) push(e entry[S, A]) { heap.Push(&f.queue, e) }
func (f *priorityFrontier[S, A]) pop() entry[S, A]   { return heap.Pop(&f.queue).(entry[S, A]) }
func (f *priorityFrontier[S, A]) len() int           { return f.queue.Len() }
