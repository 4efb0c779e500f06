// Package resolve turns a job-definition document, built-in defaults and
// command-line overrides into fully merged per-job configuration: one
// scheduler tree and one script tree per entry in the jobs list.
package resolve

import "slaunch/internal/tree"

// Defaults are the built-in scheduler parameters. The struct is constructed
// once per invocation and passed in explicitly; nothing reads it from
// ambient state, so tests can inject arbitrary values.
type Defaults struct {
	JobName     string
	Outdir      string
	CpusPerTask int
	Mem         string
	Gres        string
	Partition   string
	Time        string
	Modules     string
	CondaEnv    string
	Venv        string
	CodeDir     string
	Template    string
}

// OptionOrder is the canonical ordering of the scheduler parameter keys. It
// fixes both the defaults tree layout and the order in which command-line
// launcher overrides are applied.
var OptionOrder = []string{
	"job_name", "outdir", "cpus_per_task", "mem", "gres", "partition",
	"time", "modules", "conda_env", "venv", "code_dir", "template",
}

// Tree renders the defaults as a config tree in canonical option order.
// Unset string parameters become empty markers: they stay overridable but
// are dropped from any flattened output.
func (d Defaults) Tree() *tree.Node {
	str := func(s string) *tree.Node {
		if s == "" {
			return tree.Empty()
		}
		return tree.Scalar(s)
	}
	cpus := tree.Empty()
	if d.CpusPerTask > 0 {
		cpus = tree.Scalar(d.CpusPerTask)
	}
	return tree.Mapping(
		tree.Pair{Key: "job_name", Value: str(d.JobName)},
		tree.Pair{Key: "outdir", Value: str(d.Outdir)},
		tree.Pair{Key: "cpus_per_task", Value: cpus},
		tree.Pair{Key: "mem", Value: str(d.Mem)},
		tree.Pair{Key: "gres", Value: str(d.Gres)},
		tree.Pair{Key: "partition", Value: str(d.Partition)},
		tree.Pair{Key: "time", Value: str(d.Time)},
		tree.Pair{Key: "modules", Value: str(d.Modules)},
		tree.Pair{Key: "conda_env", Value: str(d.CondaEnv)},
		tree.Pair{Key: "venv", Value: str(d.Venv)},
		tree.Pair{Key: "code_dir", Value: str(d.CodeDir)},
		tree.Pair{Key: "template", Value: str(d.Template)},
	)
}
