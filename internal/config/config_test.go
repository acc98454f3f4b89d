package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	plannererrors "symplan/internal/errors"
)

func TestDefaultPassesValidate(t *testing.T) {
	assert.NoError(t, Validate(Default()))
}

func TestDefaultEnablesBothDirections(t *testing.T) {
	d := Default()
	assert.True(t, d.Fw.Enabled)
	assert.True(t, d.Bw.Enabled)
}

func TestValidateRejectsNonPositiveCacheSize(t *testing.T) {
	c := Default()
	c.CacheSize = 0
	err := Validate(c)
	require.Error(t, err)
	var pe *plannererrors.PlannerError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, plannererrors.CodeInvalidConfig, pe.Code)
}

func TestValidateRejectsNonPositiveConstrMaxNodes(t *testing.T) {
	c := Default()
	c.ConstrMaxNodes = -1
	assert.Error(t, Validate(c))
}

func TestValidateRejectsNegativeFamGroups(t *testing.T) {
	c := Default()
	c.FamGroups = -1
	assert.Error(t, Validate(c))
}

func TestValidateRejectsBothDirectionsDisabled(t *testing.T) {
	c := Default()
	c.Fw.Enabled = false
	c.Bw.Enabled = false
	assert.Error(t, Validate(c))
}

func TestValidateAllowsOneDirectionDisabled(t *testing.T) {
	c := Default()
	c.Bw.Enabled = false
	assert.NoError(t, Validate(c))
}

func TestValidateIgnoresDisabledDirectionFieldErrors(t *testing.T) {
	c := Default()
	c.Bw.Enabled = false
	c.Bw.TransMergeMaxNodes = 0 // would fail validateDirection if Bw were enabled
	assert.NoError(t, Validate(c))
}

func TestValidateRejectsEnabledDirectionWithNonPositiveTransMergeMaxNodes(t *testing.T) {
	c := Default()
	c.Fw.TransMergeMaxNodes = 0
	assert.Error(t, Validate(c))
}

func TestValidateRejectsNegativeStepTimeLimit(t *testing.T) {
	c := Default()
	c.Fw.StepTimeLimitMs = -1
	assert.Error(t, Validate(c))
}

func TestValidateAllowsZeroStepTimeLimit(t *testing.T) {
	c := Default()
	c.Fw.StepTimeLimitMs = 0
	assert.NoError(t, Validate(c))
}

func TestLoadParsesYamlOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlContent := "cache_size: 500\nbw:\n  enabled: false\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.CacheSize)
	assert.False(t, cfg.Bw.Enabled)
	assert.True(t, cfg.Fw.Enabled, "unspecified fields must keep their Default() value")
}

func TestLoadReturnsErrorForMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadValidatesParsedConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_size: 0\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
