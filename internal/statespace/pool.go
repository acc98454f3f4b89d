package statespace

import (
	"symplan/internal/bdd"
	"symplan/internal/fdr"
)

const blockSize = 4096

// Node is a symbolic state node.
type Node struct {
	ID        int
	ParentID  int // -1 for roots, -2 for merged
	ParentIDs []int
	TransID   int
	Cost      fdr.Cost
	Heur      int
	FValue    fdr.Cost
	BDD       bdd.Node
	IsClosed  bool
}

// Pool is an extendable, lazily-growing node store: new nodes are appended
// to fixed-size blocks so existing Node pointers stay valid across growth.
type Pool struct {
	blocks [][]Node
	size   int
}

func NewPool() *Pool { return &Pool{} }

// Add allocates a node with zeroed costs and no BDD, returning a pointer to it.
func (p *Pool) Add() *Node {
	id := p.size
	blockIdx := id / blockSize
	for blockIdx >= len(p.blocks) {
		p.blocks = append(p.blocks, make([]Node, blockSize))
	}
	n := &p.blocks[blockIdx][id%blockSize]
	*n = Node{ID: id, ParentID: -1, TransID: -1}
	p.size++
	return n
}

// Get returns the node stored at id.
func (p *Pool) Get(id int) *Node {
	return &p.blocks[id/blockSize][id%blockSize]
}

// Len returns the number of allocated nodes.
func (p *Pool) Len() int { return p.size }
