package taskio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symplan/internal/fdr"
	"symplan/internal/mutexdata"
)

// writeTaskFile writes contents to a fresh task.json under t.TempDir and
// returns its path.
func writeTaskFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "task.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

const twoVarTaskJSON = `{
  "vars": [
    {"name": "at", "values": ["a", "b"]},
    {"name": "carry", "values": ["no", "yes"]}
  ],
  "init": {"0": 0, "1": 0},
  "goal": {"0": 1},
  "operators": [
    {"name": "move", "cost": 1, "pre": {"0": 0}, "effect": {"0": 1, "1": 1}}
  ],
  "has_cond_eff": false,
  "mutex_pairs": [
    {"a": 0, "b": 2, "dir": "fw"},
    {"a": 1, "b": 3, "dir": "bw"},
    {"a": 0, "b": 3, "dir": "both"}
  ],
  "mgroups": [
    {"facts": [0, 1], "goal": true, "exactly_one": true, "fam_group": false},
    {"facts": [2, 3], "goal": false, "exactly_one": true, "fam_group": true}
  ]
}`

// Facts are assigned a single global index in variable/value order: var 0
// ("at") gets facts 0,1 for its two values, var 1 ("carry") gets facts 2,3.
func TestLoadAssignsGlobalFactIDsInVariableOrder(t *testing.T) {
	path := writeTaskFile(t, twoVarTaskJSON)

	task, _, _, err := Load(path)
	require.NoError(t, err)

	require.Len(t, task.Vars, 2)
	assert.Equal(t, "at", task.Vars[0].Name)
	assert.Equal(t, []fdr.FactID{0, 1}, task.Vars[0].Facts)
	assert.Equal(t, "carry", task.Vars[1].Name)
	assert.Equal(t, []fdr.FactID{2, 3}, task.Vars[1].Facts)
}

func TestLoadParsesInitGoalAndOperators(t *testing.T) {
	path := writeTaskFile(t, twoVarTaskJSON)

	task, _, _, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, fdr.PartialState{0: 0, 1: 0}, task.Init)
	assert.Equal(t, fdr.PartialState{0: 1}, task.Goal)
	assert.False(t, task.HasCondEff)

	require.Len(t, task.Operators, 1)
	op := task.Operators[0]
	assert.Equal(t, 0, op.ID)
	assert.Equal(t, "move", op.Name)
	assert.Equal(t, 1, op.Cost)
	assert.Equal(t, fdr.PartialState{0: 0}, op.Pre)
	assert.Equal(t, fdr.PartialState{0: 1, 1: 1}, op.Effect)
}

func TestLoadBuildsMutexPairsWithDirectionFlags(t *testing.T) {
	path := writeTaskFile(t, twoVarTaskJSON)

	_, mutex, _, err := Load(path)
	require.NoError(t, err)

	assert.True(t, mutex.MutexDir(0, 2, mutexdata.FwMutex))
	assert.False(t, mutex.MutexDir(0, 2, mutexdata.BwMutex))

	assert.True(t, mutex.MutexDir(1, 3, mutexdata.BwMutex))
	assert.False(t, mutex.MutexDir(1, 3, mutexdata.FwMutex))

	assert.True(t, mutex.MutexDir(0, 3, mutexdata.FwMutex))
	assert.True(t, mutex.MutexDir(0, 3, mutexdata.BwMutex))

	assert.False(t, mutex.Mutex(0, 1), "pair never listed must not be mutex")
}

func TestLoadBuildsAndSortsMGroups(t *testing.T) {
	path := writeTaskFile(t, twoVarTaskJSON)

	_, _, mgroups, err := Load(path)
	require.NoError(t, err)

	require.Len(t, mgroups.Groups, 2)
	for _, g := range mgroups.Groups {
		assert.True(t, g.IsExactlyOne)
	}

	var goalGroup, famGroup mutexdata.MGroup
	for _, g := range mgroups.Groups {
		if g.IsGoal {
			goalGroup = g
		}
		if g.IsFAMGroup {
			famGroup = g
		}
	}
	assert.Equal(t, []fdr.FactID{0, 1}, goalGroup.Facts)
	assert.Equal(t, []fdr.FactID{2, 3}, famGroup.Facts)
}

func TestLoadDeduplicatesIdenticalMGroups(t *testing.T) {
	contents := `{
  "vars": [{"name": "at", "values": ["a", "b"]}],
  "init": {"0": 0},
  "goal": {"0": 1},
  "operators": [],
  "mgroups": [
    {"facts": [0, 1], "exactly_one": true},
    {"facts": [1, 0], "exactly_one": true}
  ]
}`
	path := writeTaskFile(t, contents)

	_, _, mgroups, err := Load(path)
	require.NoError(t, err)

	assert.Len(t, mgroups.Groups, 1, "facts [0,1] and [1,0] are the same group regardless of order")
}

func TestLoadDefaultsUnknownMutexDirToBothDirections(t *testing.T) {
	contents := `{
  "vars": [{"name": "at", "values": ["a", "b"]}],
  "init": {"0": 0},
  "goal": {"0": 1},
  "operators": [],
  "mutex_pairs": [{"a": 0, "b": 1, "dir": "bogus"}]
}`
	path := writeTaskFile(t, contents)

	_, mutex, _, err := Load(path)
	require.NoError(t, err)

	assert.True(t, mutex.MutexDir(0, 1, mutexdata.FwMutex))
	assert.True(t, mutex.MutexDir(0, 1, mutexdata.BwMutex))
}

func TestLoadReturnsErrorForMissingFile(t *testing.T) {
	_, _, _, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	assert.Error(t, err)
}

func TestLoadReturnsErrorForMalformedJSON(t *testing.T) {
	path := writeTaskFile(t, `{"vars": [}`)
	_, _, _, err := Load(path)
	assert.Error(t, err)
}

func TestLoadHandlesTaskWithNoOperatorsOrMutexData(t *testing.T) {
	contents := `{
  "vars": [{"name": "at", "values": ["a", "b"]}],
  "init": {"0": 0},
  "goal": {"0": 1},
  "operators": []
}`
	path := writeTaskFile(t, contents)

	task, mutex, mgroups, err := Load(path)
	require.NoError(t, err)

	assert.Empty(t, task.Operators)
	assert.False(t, mutex.Mutex(0, 1))
	assert.Empty(t, mgroups.Groups)
}
