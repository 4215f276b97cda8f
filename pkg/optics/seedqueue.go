package optics

import "container/heap"

// seedItem is one entry in the SeedQueue: a candidate point and its current
// reachability key.
type seedItem struct {
	handle Handle
	key    float64
}

// seedHeap is the container/heap plumbing SeedQueue sits on: a plain slice
// with Less/Swap/Push/Pop, where Swap also keeps an external index map in
// sync so the
// queue can decrease a key in place instead of only ever popping and
// re-inserting.
type seedHeap struct {
	items []seedItem
	index map[Handle]int
}

func (h seedHeap) Len() int { return len(h.items) }

// Less orders by key, then by handle as a deterministic tie-break: two
// seeds with equal reachability are ordered by storage-order identity, so a
// run always picks the same one first.
func (h seedHeap) Less(i, j int) bool {
	if h.items[i].key != h.items[j].key {
		return h.items[i].key < h.items[j].key
	}
	return h.items[i].handle < h.items[j].handle
}

func (h seedHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.index[h.items[i].handle] = i
	h.index[h.items[j].handle] = j
}

func (h *seedHeap) Push(x any) {
	item := x.(seedItem)
	h.index[item.handle] = len(h.items)
	h.items = append(h.items, item)
}

func (h *seedHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	delete(h.index, item.handle)
	return item
}

// SeedQueue is the indexed min-priority queue OpticsOrdering uses to select
// the next point to expand. Unlike a lazy-deletion heap (remin-insert on
// every key decrease, tolerating stale entries), SeedQueue supports true
// decrease-key: every handle appears at most once, so Len reports the exact
// number of live seeds and no staleness check is needed at pop time.
type SeedQueue struct {
	h seedHeap
}

// NewSeedQueue returns an empty queue.
func NewSeedQueue() *SeedQueue {
	return &SeedQueue{h: seedHeap{index: make(map[Handle]int)}}
}

// Len returns the number of seeds currently queued.
func (q *SeedQueue) Len() int { return q.h.Len() }

// Contains reports whether h is currently queued.
func (q *SeedQueue) Contains(h Handle) bool {
	_, ok := q.h.index[h]
	return ok
}

// Insert adds h to the queue with the given key. h must not already be
// queued; callers use UpdateKey for an already-queued handle.
func (q *SeedQueue) Insert(h Handle, key float64) {
	heap.Push(&q.h, seedItem{handle: h, key: key})
}

// UpdateKey lowers the key of an already-queued handle and restores heap
// order. A seed's key only ever decreases once queued, so this always
// re-sifts upward.
func (q *SeedQueue) UpdateKey(h Handle, key float64) {
	i, ok := q.h.index[h]
	if !ok {
		panic(&LogicError{Reason: "UpdateKey on a handle not in the queue"})
	}
	q.h.items[i].key = key
	heap.Fix(&q.h, i)
}

// PopMin removes and returns the queued handle with the smallest key,
// breaking ties by handle identity. ok is false if the queue is empty.
func (q *SeedQueue) PopMin() (h Handle, ok bool) {
	if q.h.Len() == 0 {
		return 0, false
	}
	item := heap.Pop(&q.h).(seedItem)
	return item.handle, true
}
