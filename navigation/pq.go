package navigation

// nodeQueue is a min-heap of pathing nodes keyed by (distance, discovery
// order) so equal distances pop in the order the flood fill found them.
type nodeQueue []*PathingNode

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].Distance != q[j].Distance {
		return q[i].Distance < q[j].Distance
	}
	return q[i].order < q[j].order
}

func (q nodeQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].indexInQueue = i
	q[j].indexInQueue = j
}

func (q *nodeQueue) Push(x any) {
	node := x.(*PathingNode)
	node.indexInQueue = len(*q)
	*q = append(*q, node)
}

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.indexInQueue = -1
	*q = old[:n-1]
	return node
}
