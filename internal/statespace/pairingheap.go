package statespace

// PairingHeap is a meldable heap over node ids, comparator-driven so the
// same node can participate in two independently-ordered heaps (open-by-f,
// open-by-g) without needing intrusive per-heap hook fields — each heap
// instance keeps its own tree of heapNode wrappers keyed by id, giving
// amortised meld.
type PairingHeap struct {
	less func(a, b int) bool // a, b are node ids
	root *heapNode
	locs map[int]*heapNode
	size int
}

type heapNode struct {
	id       int
	children []*heapNode
}

func NewPairingHeap(less func(a, b int) bool) *PairingHeap {
	return &PairingHeap{less: less, locs: make(map[int]*heapNode)}
}

func (h *PairingHeap) Len() int { return h.size }

// Push inserts a node id.
func (h *PairingHeap) Push(id int) {
	n := &heapNode{id: id}
	h.locs[id] = n
	h.root = h.meld(h.root, n)
	h.size++
}

// Peek returns the minimum id without removing it.
func (h *PairingHeap) Peek() (int, bool) {
	if h.root == nil {
		return 0, false
	}
	return h.root.id, true
}

// Pop removes and returns the minimum id.
func (h *PairingHeap) Pop() (int, bool) {
	if h.root == nil {
		return 0, false
	}
	min := h.root
	h.root = h.mergePairs(min.children)
	delete(h.locs, min.id)
	h.size--
	return min.id, true
}

// Remove deletes an arbitrary id from the heap (used so open_by_f and
// open_by_g can stay in sync: popping from one heap removes the same node
// from the other via its id).
func (h *PairingHeap) Remove(id int) bool {
	n, ok := h.locs[id]
	if !ok {
		return false
	}
	if n == h.root {
		h.root = h.mergePairs(n.children)
		delete(h.locs, id)
		h.size--
		return true
	}
	// detach rebuilds the heap from every remaining id (n's children
	// included), which also resets locs and size.
	h.detach(n)
	return true
}

// detach rebuilds the heap without n by rebuilding from scratch; pairing
// heaps don't support O(log n) arbitrary delete without parent pointers, so
// for the modest state-space sizes this search handles we accept an O(n)
// rebuild on the (rare) arbitrary-remove path. Pop/Push/Peek stay O(1)
// amortised.
func (h *PairingHeap) detach(n *heapNode) {
	collected := collectExcept(h.root, n.id)
	h.root = nil
	h.locs = make(map[int]*heapNode)
	h.size = 0
	for _, id := range collected {
		h.Push(id)
	}
}

func collectExcept(n *heapNode, skip int) []int {
	if n == nil {
		return nil
	}
	var out []int
	if n.id != skip {
		out = append(out, n.id)
	}
	for _, c := range n.children {
		out = append(out, collectExcept(c, skip)...)
	}
	return out
}

func (h *PairingHeap) meld(a, b *heapNode) *heapNode {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if h.less(b.id, a.id) {
		a, b = b, a
	}
	a.children = append(a.children, b)
	return a
}

func (h *PairingHeap) mergePairs(nodes []*heapNode) *heapNode {
	if len(nodes) == 0 {
		return nil
	}
	if len(nodes) == 1 {
		return nodes[0]
	}
	var merged []*heapNode
	i := 0
	for ; i+1 < len(nodes); i += 2 {
		merged = append(merged, h.meld(nodes[i], nodes[i+1]))
	}
	var result *heapNode
	if i < len(nodes) {
		result = nodes[i]
	}
	for j := len(merged) - 1; j >= 0; j-- {
		result = h.meld(merged[j], result)
	}
	return result
}
