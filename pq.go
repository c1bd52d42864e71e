package astar

import "container/heap"

// PriorityQueueItem is one frontier entry.
type PriorityQueueItem struct {
	Node         Coord
	GCost        int
	HCost        int
	Sequence     int
	IndexInQueue int
}

// FCost is always derived from GCost and HCost.
func (item *PriorityQueueItem) FCost() int { return item.GCost + item.HCost }

// PriorityQueue orders items by fCost, then hCost, then first-insertion order.
type PriorityQueue []*PriorityQueueItem

func (queue PriorityQueue) Len() int { return len(queue) }
func (queue PriorityQueue) Less(i, j int) bool {
	a, b := queue[i], queue[j]
	if a.FCost() != b.FCost() {
		return a.FCost() < b.FCost()
	}
	if a.HCost != b.HCost {
		return a.HCost < b.HCost
	}
	return a.Sequence < b.Sequence
}
func (queue PriorityQueue) Swap(i, j int) {
	queue[i], queue[j] = queue[j], queue[i]
	queue[i].IndexInQueue = i
	queue[j].IndexInQueue = j
}

func (queue *PriorityQueue) Push(x any) {
	item := x.(*PriorityQueueItem)
	item.IndexInQueue = len(*queue)
	*queue = append(*queue, item)
}

func (queue *PriorityQueue) Pop() any {
	oldQueue := *queue
	n := len(oldQueue)
	item := oldQueue[n-1]
	oldQueue[n-1] = nil
	item.IndexInQueue = -1
	*queue = oldQueue[:n-1]
	return item
}

// frontier is the open set: a heap plus a coordinate index that keeps at most
// one entry per coordinate.
type frontier struct {
	queue   PriorityQueue
	index   map[Coord]*PriorityQueueItem
	nextSeq int
}

func newFrontier() *frontier {
	f := &frontier{index: make(map[Coord]*PriorityQueueItem)}
	heap.Init(&f.queue)
	return f
}

func (f *frontier) Len() int { return f.queue.Len() }

func (f *frontier) Get(c Coord) (*PriorityQueueItem, bool) {
	item, ok := f.index[c]
	return item, ok
}

// Upsert inserts c if absent, otherwise updates its costs and restores heap
// order. The insertion sequence of an existing entry is kept.
func (f *frontier) Upsert(c Coord, g, h int) {
	if item, ok := f.index[c]; ok {
		item.GCost, item.HCost = g, h
		heap.Fix(&f.queue, item.IndexInQueue)
		return
	}
	item := &PriorityQueueItem{Node: c, GCost: g, HCost: h, Sequence: f.nextSeq}
	f.nextSeq++
	heap.Push(&f.queue, item)
	f.index[c] = item
}

// PopMin removes and returns the best entry.
func (f *frontier) PopMin() *PriorityQueueItem {
	item := heap.Pop(&f.queue).(*PriorityQueueItem)
	delete(f.index, item.Node)
	return item
}

func (f *frontier) coords() map[Coord]bool {
	m := make(map[Coord]bool, len(f.index))
	for c := range f.index {
		m[c] = true
	}
	return m
}
