package stastar

// PriorityQueueItem references a node of the search arena by index.
type PriorityQueueItem struct {
	Node  int
	FCost float64
}

// PriorityQueue is a min-heap on FCost. Equal costs pop in arena order,
// which makes the expansion order total and repeatable.
type PriorityQueue []PriorityQueueItem

func (queue PriorityQueue) Len() int { return len(queue) }
func (queue PriorityQueue) Less(i, j int) bool {
	if queue[i].FCost != queue[j].FCost {
		return queue[i].FCost < queue[j].FCost
	}
	return queue[i].Node < queue[j].Node
}
func (queue PriorityQueue) Swap(i, j int) { queue[i], queue[j] = queue[j], queue[i] }

func (queue *PriorityQueue) Push(x any) {
	*queue = append(*queue, x.(PriorityQueueItem))
}

func (queue *PriorityQueue) Pop() any {
	oldQueue := *queue
	n := len(oldQueue)
	item := oldQueue[n-1]
	*queue = oldQueue[:n-1]
	return item
}
