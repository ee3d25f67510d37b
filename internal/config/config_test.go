package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMergesWithDefaults(t *testing.T) {
	path := writeConfig(t, `
# small problem
num_train: 20
dim: 8
num_classes: 4
reg: 0.5
bias: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 20, cfg.NumTrain)
	require.Equal(t, 8, cfg.Dim)
	require.Equal(t, 4, cfg.NumClasses)
	require.Equal(t, 0.5, cfg.Reg)
	require.False(t, cfg.Bias)
	require.Equal(t, Default().Trials, cfg.Trials)
	require.Equal(t, Default().Step, cfg.Step)
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, "num_trian: 3\n"))
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "num_trian"), err.Error())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	_, err := Load(writeConfig(t, "reg: -1\n"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "dim: abc\n"))
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	zero := 0.0
	cfg.ApplyOverrides(Overrides{NumTrain: 10, Trials: 3, Reg: &zero})
	require.Equal(t, 10, cfg.NumTrain)
	require.Equal(t, 3, cfg.Trials)
	require.Equal(t, 0.0, cfg.Reg)
	require.Equal(t, Default().Dim, cfg.Dim)

	cfg.ApplyOverrides(Overrides{})
	require.Equal(t, 0.0, cfg.Reg, "nil reg override must not reset")
}

func TestValidateFillsDefaults(t *testing.T) {
	cfg := Default()
	cfg.Workers = 0
	cfg.LogEvery = 0
	require.NoError(t, cfg.Validate())
	require.Equal(t, 1, cfg.Workers)
	require.Equal(t, 5, cfg.LogEvery)

	var nilCfg *Config
	require.Error(t, nilCfg.Validate())
}
