package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"slaunch/internal/resolve"
)

func TestBuildLoggerLevels(t *testing.T) {
	l, err := buildLogger(false)
	require.NoError(t, err)
	require.False(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = buildLogger(true)
	require.NoError(t, err)
	require.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestLauncherSpecCoversEveryDefaultKey(t *testing.T) {
	spec := launcherSpec()
	covered := map[string]bool{}
	for _, key := range spec.Value {
		covered[key] = true
	}
	for _, key := range resolve.OptionOrder {
		if !covered[key] {
			t.Errorf("built-in default %q has no launcher option", key)
		}
	}
}

func TestLaunchDryRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	jobsFile := filepath.Join(dir, "sweep.yaml")
	require.NoError(t, os.WriteFile(jobsFile, []byte(`
shared:
  script:
    user: $USER
jobs:
  - job_name: a
    script: {lr: 0.1}
  - job_name: b
    script: {lr: 0.2}
`), 0o644))

	outdir := filepath.Join(dir, "out")
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"launch",
		"--jobs", jobsFile,
		"--outdir", outdir,
		"--dry-run",
		"env.seed=7",
	})
	require.NoError(t, rootCmd.Execute())

	scripts, err := filepath.Glob(filepath.Join(outdir, "*.sbatch"))
	require.NoError(t, err)
	require.Len(t, scripts, 2)

	var a string
	for _, s := range scripts {
		if filepath.Base(s)[0] == 'a' {
			a = s
		}
	}
	require.NotEmpty(t, a, "script for job a not found in %v", scripts)
	content, err := os.ReadFile(a)
	require.NoError(t, err)
	require.Contains(t, string(content), "#SBATCH --job-name=a")
	require.Contains(t, string(content), "python main.py user=$USER lr=0.1 env.seed=7")

	summaries, err := filepath.Glob(filepath.Join(outdir, "slaunch_summary_*.yaml"))
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Contains(t, buf.String(), "dry-run: would submit")
}

func TestLaunchRejectsUnknownOption(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"launch", "--no-such-option", "x"})
	err := rootCmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "--no-such-option")
}
