package statespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolAddAssignsSequentialIDs(t *testing.T) {
	p := NewPool()
	a := p.Add()
	b := p.Add()

	assert.Equal(t, 0, a.ID)
	assert.Equal(t, 1, b.ID)
	assert.Equal(t, 2, p.Len())
}

func TestPoolAddDefaultsParentAndTransToSentinel(t *testing.T) {
	p := NewPool()
	n := p.Add()
	assert.Equal(t, -1, n.ParentID)
	assert.Equal(t, -1, n.TransID)
}

func TestPoolGetReturnsStablePointerAcrossGrowth(t *testing.T) {
	p := NewPool()
	first := p.Add()
	first.Heur = 7

	// Allocate enough nodes to force at least one block growth.
	for i := 0; i < blockSize+10; i++ {
		p.Add()
	}

	got := p.Get(first.ID)
	assert.Equal(t, 7, got.Heur, "a node's data must survive pool growth")
	assert.Same(t, first, got, "Get must return the same backing pointer Add returned")
}
