package launch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"slaunch/internal/resolve"
)

func testSlurmTree() *resolve.Defaults {
	return &resolve.Defaults{
		JobName:     "crystal-gfn",
		Outdir:      "$SCRATCH/logs",
		CpusPerTask: 2,
		Mem:         "32G",
		Gres:        "gpu:1",
		Partition:   "long",
		Modules:     "anaconda/3 cuda/11.3",
		CondaEnv:    "gfn",
		CodeDir:     "$HOME/project",
	}
}

func TestRenderScriptDefaultTemplate(t *testing.T) {
	got, err := RenderScript(DefaultTemplate, testSlurmTree().Tree(),
		"user=$USER gflownet=flowmatch")
	require.NoError(t, err)

	for _, want := range []string{
		"#SBATCH --job-name=crystal-gfn",
		"#SBATCH --output=$SCRATCH/logs/crystal-gfn-%j.out",
		"#SBATCH --cpus-per-task=2",
		"#SBATCH --mem=32G",
		"#SBATCH --gres=gpu:1",
		"#SBATCH --partition=long",
		"module load anaconda/3 cuda/11.3",
		"conda activate gfn",
		"cd $HOME/project",
		"python main.py user=$USER gflownet=flowmatch",
	} {
		require.Contains(t, got, want)
	}
	require.True(t, strings.HasPrefix(got, "#!/bin/bash\n"))
	// Unset slots leave no half-rendered directives behind.
	require.NotContains(t, got, "--time=")
	require.NotContains(t, got, "source ")
}

func TestRenderScriptVenvFallback(t *testing.T) {
	d := testSlurmTree()
	d.CondaEnv = ""
	d.Venv = "$HOME/venvs/gfn"
	got, err := RenderScript(DefaultTemplate, d.Tree(), "")
	require.NoError(t, err)
	require.Contains(t, got, "source $HOME/venvs/gfn/bin/activate")
	require.NotContains(t, got, "conda activate")
}

func TestRenderScriptCustomTemplate(t *testing.T) {
	custom := "run {{.JobName}} on {{.Partition}} with: {{.Command}}\n"
	got, err := RenderScript(custom, testSlurmTree().Tree(), "lr=0.1")
	require.NoError(t, err)
	require.Equal(t, "run crystal-gfn on long with: lr=0.1\n", got)
}

func TestLoadTemplateDefault(t *testing.T) {
	text, err := LoadTemplate("")
	require.NoError(t, err)
	require.Equal(t, DefaultTemplate, text)
}
