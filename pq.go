package pathviz

type priorityQueueItem[NodeType comparable] struct {
	Node         NodeType
	Cost         float64
	Sequence     int
	IndexInQueue int
}

// priorityQueue orders items by cost, then by push order.
type priorityQueue[NodeType comparable] []*priorityQueueItem[NodeType]

func (queue priorityQueue[NodeType]) Len() int { return len(queue) }
func (queue priorityQueue[NodeType]) Less(i, j int) bool {
	if queue[i].Cost != queue[j].Cost {
		return queue[i].Cost < queue[j].Cost
	}
	return queue[i].Sequence < queue[j].Sequence
}
func (queue priorityQueue[NodeType]) Swap(i, j int) {
	queue[i], queue[j] = queue[j], queue[i]
	queue[i].IndexInQueue = i
	queue[j].IndexInQueue = j
}

func (queue *priorityQueue[NodeType]) Push(x any) {
	item := x.(*priorityQueueItem[NodeType])
	item.IndexInQueue = len(*queue)
	*queue = append(*queue, item)
}

func (queue *priorityQueue[NodeType]) Pop() any {
	oldQueue := *queue
	n := len(oldQueue)
	item := oldQueue[n-1]
	oldQueue[n-1] = nil
	item.IndexInQueue = -1
	*queue = oldQueue[:n-1]
	return item
}
