package pathfind

// node is the bookkeeping record of one search node.
type node struct {
	pos    Position
	cost   float64 // best cumulative cost from the origin
	parent *node
}

// frontierItem is one queued expansion. An item whose cost is above its
// node's recorded cost has been superseded by a later relaxation.
type frontierItem struct {
	node     *node
	cost     float64
	priority float64
	seq      uint64
}

// frontier implements heap.Interface ordered by priority, then by
// insertion order.
type frontier []*frontierItem

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].priority != f[j].priority {
		return f[i].priority < f[j].priority
	}
	return f[i].seq < f[j].seq
}

func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x any) {
	*f = append(*f, x.(*frontierItem))
}

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]
	return item
}
