package memory

import "sync"

// MatchQueue FIFO очередь соединений, ищущих случайного собеседника
type MatchQueue interface {
	// Enqueue идемпотентен, повторное добавление ничего не меняет
	Enqueue(connID string) bool
	Dequeue(connID string) bool

	// TryPair забирает два самых старых соединения, если их хотя бы два
	TryPair() (string, string, bool)

	Contains(connID string) bool
	Len() int
}

type matchQueue struct {
	order  []string
	queued map[string]struct{}

	mu sync.Mutex
}

func NewMatchQueue() MatchQueue {
	return &matchQueue{
		queued: make(map[string]struct{}),
	}
}

func (q *matchQueue) Enqueue(connID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.queued[connID]; ok {
		return false
	}

	q.queued[connID] = struct{}{}
	q.order = append(q.order, connID)

	return true
}

func (q *matchQueue) Dequeue(connID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.queued[connID]; !ok {
		return false
	}

	delete(q.queued, connID)

	for i, id := range q.order {
		if id == connID {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}

	return true
}

func (q *matchQueue) TryPair() (string, string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.order) < 2 {
		return "", "", false
	}

	first, second := q.order[0], q.order[1]
	q.order = q.order[2:]

	delete(q.queued, first)
	delete(q.queued, second)

	return first, second, true
}

func (q *matchQueue) Contains(connID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	_, ok := q.queued[connID]
	return ok
}

func (q *matchQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.order)
}
