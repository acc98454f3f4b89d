package bdd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDeadlineNonPositiveIsUnbounded(t *testing.T) {
	assert.False(t, NewDeadline(0).Expired())
	assert.False(t, NewDeadline(-time.Second).Expired())
}

func TestNewDeadlineExpiresAfterDuration(t *testing.T) {
	d := NewDeadline(-1) // non-positive -> unbounded, sanity check first
	assert.False(t, d.Expired())

	past := Deadline{at: time.Now().Add(-time.Millisecond)}
	assert.True(t, past.Expired())

	future := NewDeadline(time.Hour)
	assert.False(t, future.Expired())
}

func TestDeadlineRemainingIsMaxDurationWhenUnbounded(t *testing.T) {
	var d Deadline
	assert.Equal(t, time.Duration(1<<63-1), d.Remaining())
}

func TestDeadlineRemainingCountsDownWhenBounded(t *testing.T) {
	d := NewDeadline(time.Hour)
	assert.Greater(t, d.Remaining(), time.Duration(0))
	assert.LessOrEqual(t, d.Remaining(), time.Hour)
}

func TestLimitExceededRespectsZeroValueMaxNodes(t *testing.T) {
	var l Limit
	assert.False(t, l.exceeded(1_000_000), "a zero Limit enforces neither bound")
}

func TestLimitExceededOnNodeBudget(t *testing.T) {
	l := Limit{MaxNodes: 10}
	assert.False(t, l.exceeded(10))
	assert.True(t, l.exceeded(11))
}

func TestLimitExceededOnExpiredDeadlineRegardlessOfNodeCount(t *testing.T) {
	l := Limit{MaxNodes: 1000, Deadline: Deadline{at: time.Now().Add(-time.Hour)}}
	assert.True(t, l.exceeded(1))
}
