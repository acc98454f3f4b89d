package mutexdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"symplan/internal/fdr"
)

func TestPairTableAddAndMutex(t *testing.T) {
	pt := NewPairTable()
	pt.Add(1, 2, FwMutex)

	assert.True(t, pt.Mutex(1, 2))
	assert.True(t, pt.Mutex(2, 1), "mutex is symmetric regardless of insertion order")
	assert.False(t, pt.Mutex(1, 3))
}

func TestPairTableAddSelfIsNoop(t *testing.T) {
	pt := NewPairTable()
	pt.Add(1, 1, FwMutex)
	assert.False(t, pt.Mutex(1, 1))
}

func TestPairTableMutexDir(t *testing.T) {
	pt := NewPairTable()
	pt.Add(1, 2, FwMutex)

	assert.True(t, pt.MutexDir(1, 2, FwMutex))
	assert.False(t, pt.MutexDir(1, 2, BwMutex))

	pt.Add(1, 2, BwMutex)
	assert.True(t, pt.MutexDir(1, 2, BwMutex))
	assert.True(t, pt.MutexDir(1, 2, FwMutex), "a second Add ORs in new direction flags rather than overwriting")
}

func TestPairTableMutexSetAgainstSet(t *testing.T) {
	pt := NewPairTable()
	pt.Add(1, 5, FwMutex)

	assert.True(t, pt.MutexSetAgainstSet([]fdr.FactID{1, 2}, []fdr.FactID{5, 6}, FwMutex))
	assert.False(t, pt.MutexSetAgainstSet([]fdr.FactID{2}, []fdr.FactID{6}, FwMutex))
}

func TestPairTablePairsIteratesAll(t *testing.T) {
	pt := NewPairTable()
	pt.Add(1, 2, FwMutex)
	pt.Add(3, 4, BwMutex)

	seen := 0
	pt.Pairs(func(a, b fdr.FactID, dir Direction) bool {
		seen++
		return true
	})
	assert.Equal(t, 2, seen)
}

func TestPairTablePairsStopsOnFalse(t *testing.T) {
	pt := NewPairTable()
	pt.Add(1, 2, FwMutex)
	pt.Add(3, 4, BwMutex)

	seen := 0
	pt.Pairs(func(a, b fdr.FactID, dir Direction) bool {
		seen++
		return false
	})
	assert.Equal(t, 1, seen)
}

func TestMGroupsSortUniqDedupsAndOrdersBySize(t *testing.T) {
	m := &MGroups{}
	m.Add(MGroup{Facts: []fdr.FactID{1, 2}})
	m.Add(MGroup{Facts: []fdr.FactID{2, 1}}) // duplicate, different order
	m.Add(MGroup{Facts: []fdr.FactID{3, 4, 5}})

	m.SortUniq()

	assert.Len(t, m.Groups, 2)
	assert.Len(t, m.Groups[0].Facts, 3, "larger group sorts first")
	assert.Len(t, m.Groups[1].Facts, 2)
}

func TestExtractCoverLargestFirst(t *testing.T) {
	m := &MGroups{Groups: []MGroup{
		{Facts: []fdr.FactID{1, 2}, IsExactlyOne: true},
		{Facts: []fdr.FactID{1, 2, 3}, IsExactlyOne: true},
		{Facts: []fdr.FactID{9}, IsExactlyOne: false}, // not exactly-one, excluded
	}}

	cover := m.ExtractCover([]fdr.FactID{1, 3}, false)

	assert.Len(t, cover, 1)
	assert.ElementsMatch(t, []fdr.FactID{1, 2, 3}, cover[0].Facts)
}

func TestExtractCoverEssentialFirst(t *testing.T) {
	m := &MGroups{Groups: []MGroup{
		{Facts: []fdr.FactID{1, 2, 3, 4}, IsExactlyOne: true}, // covers only fact 1 of what's needed
		{Facts: []fdr.FactID{1, 5}, IsExactlyOne: true},       // also covers only fact 1
		{Facts: []fdr.FactID{6, 7}, IsExactlyOne: true},       // covers nothing needed
	}}

	cover := m.ExtractCover([]fdr.FactID{1}, true)

	assert.Len(t, cover, 1)
	assert.Contains(t, cover[0].Facts, fdr.FactID(1))
}

func TestExtractCoverStopsWhenSatisfied(t *testing.T) {
	m := &MGroups{Groups: []MGroup{
		{Facts: []fdr.FactID{1, 2}, IsExactlyOne: true},
		{Facts: []fdr.FactID{3, 4}, IsExactlyOne: true},
	}}

	cover := m.ExtractCover([]fdr.FactID{1}, false)
	assert.Len(t, cover, 1)
}

func TestDirectionHas(t *testing.T) {
	both := FwMutex | BwMutex
	assert.True(t, both.Has(FwMutex))
	assert.True(t, both.Has(BwMutex))
	assert.False(t, FwMutex.Has(BwMutex))
}
