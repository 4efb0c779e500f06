package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"slaunch/internal/cliargs"
	"slaunch/internal/history"
	"slaunch/internal/launch"
	"slaunch/internal/resolve"
	"slaunch/internal/tree"
)

// launchCmd resolves and submits a batch of jobs. Flag parsing is disabled:
// the raw tokens go through the passthrough partition so that unrecognized
// key=value tokens reach the target program instead of failing cobra.
var launchCmd = &cobra.Command{
	Use:   "launch [options] [key=value ...]",
	Short: "Resolve a sweep and submit its jobs via sbatch",
	Long: `Resolves one Slurm job per entry of the sweep file's jobs list and
submits them in order. Configuration layers, lowest to highest precedence:
built-in defaults, the sweep file's shared block, the job's own entry,
recognized launcher options, and free-form key=value script overrides.

Launcher options:
  --jobs FILE            sweep definition file (YAML)
  --job-name NAME        scheduler job name
  --outdir DIR           output directory for scripts, logs and summaries
  --cpus-per-task N      cpus per task
  --mem MEM              memory request, e.g. 32G
  --gres GRES            generic resources, e.g. gpu:1
  --partition NAME       scheduler partition
  --time LIMIT           time limit
  --modules LIST         modules to load, space separated
  --conda-env NAME       conda environment to activate
  --venv PATH            virtualenv to source when no conda env is set
  --code-dir DIR         directory to cd into before running
  --template FILE        custom sbatch template
  --dry-run              render everything, submit nothing
  --force                skip the confirmation prompt
  --verbose              enable debug logging

Every remaining token must be key=value (dotted keys allowed) and is passed
to the target program of every job in the batch, overriding the sweep file.`,
	DisableFlagParsing: true,
	RunE:               runLaunch,
}

// builtinDefaults is the single source of the recognized scheduler
// parameters and their values. Constructed once and passed down explicitly.
func builtinDefaults() resolve.Defaults {
	return resolve.Defaults{
		JobName:     "slaunch",
		Outdir:      "$SCRATCH/slaunch/logs",
		CpusPerTask: 2,
		Mem:         "32G",
		Gres:        "gpu:1",
		Partition:   "long",
		Modules:     "anaconda/3 cuda/11.3",
		CondaEnv:    "base",
		CodeDir:     "$HOME/project",
	}
}

// launcherSpec declares the option surface for the passthrough partition,
// 1:1 with the built-in default keys plus the process-level flags.
func launcherSpec() cliargs.Spec {
	return cliargs.Spec{
		Value: map[string]string{
			"job-name":      "job_name",
			"outdir":        "outdir",
			"cpus-per-task": "cpus_per_task",
			"mem":           "mem",
			"gres":          "gres",
			"partition":     "partition",
			"time":          "time",
			"modules":       "modules",
			"conda-env":     "conda_env",
			"venv":          "venv",
			"code-dir":      "code_dir",
			"template":      "template",
			"jobs":          "jobs",
		},
		Bool: []string{"dry-run", "force", "verbose", "help"},
	}
}

func runLaunch(cmd *cobra.Command, args []string) error {
	res, err := cliargs.Partition(args, launcherSpec())
	if err != nil {
		return err
	}
	if res.Flags["help"] {
		return cmd.Help()
	}
	if res.Flags["verbose"] {
		if l, err := buildLogger(true); err == nil {
			_ = logger.Sync()
			logger = l
		}
	}

	// The jobs file and template options steer the launcher itself; the
	// rest become the highest-precedence scheduler layer.
	jobsPath := res.Options["jobs"]
	delete(res.Options, "jobs")
	var pairs []tree.Pair
	for _, key := range resolve.OptionOrder {
		if v, ok := res.Options[key]; ok {
			pairs = append(pairs, tree.Pair{Key: key, Value: tree.Scalar(v)})
		}
	}
	launcherTree := tree.Mapping(pairs...)

	doc := resolve.EmptyDocument()
	if jobsPath != "" {
		doc, err = resolve.LoadDocument(launch.ExpandPath(jobsPath))
		if err != nil {
			return err
		}
	}

	defaults := builtinDefaults()
	jobs, err := resolve.Resolve(cmd.Context(), defaults.Tree(), doc, launcherTree, res.Script)
	if err != nil {
		return err
	}
	logger.Debug("batch resolved",
		zap.Int("jobs", len(jobs)),
		zap.String("jobs_file", jobsPath))

	merged := tree.Merge(defaults.Tree(), launcherTree)
	outdir := scalarAt(merged, "outdir")
	templateText, err := launch.LoadTemplate(launch.ExpandPath(scalarAt(launcherTree, "template")))
	if err != nil {
		return err
	}

	var submitter launch.Submitter = &launch.SbatchSubmitter{Logger: logger}
	dryRun := res.Flags["dry-run"]
	if dryRun {
		submitter = &launch.DryRunSubmitter{Out: cmd.OutOrStdout()}
	}

	l := &launch.Launcher{
		Outdir:       outdir,
		TemplateText: templateText,
		Force:        res.Flags["force"] || dryRun,
		In:           cmd.InOrStdin(),
		Out:          cmd.OutOrStdout(),
		Logger:       logger,
		Submitter:    submitter,
	}
	summary, err := l.Run(cmd.Context(), jobs)
	if err != nil {
		return err
	}

	if !dryRun {
		recordHistory(summary)
	}
	return nil
}

// recordHistory is best effort: a broken local database must not fail a
// submission that already went through.
func recordHistory(summary *launch.Summary) {
	path, err := history.DefaultPath()
	if err == nil {
		var store *history.Store
		if store, err = history.Open(path); err == nil {
			defer store.Close()
			for _, job := range summary.Jobs {
				var detail []byte
				if detail, err = yaml.Marshal(job); err != nil {
					break
				}
				if _, err = store.Add(history.Record{
					Name:        job.Name,
					JobID:       job.JobID,
					ScriptPath:  job.ScriptPath,
					Args:        job.Args,
					Summary:     string(detail),
					SubmittedAt: time.Now(),
				}); err != nil {
					break
				}
			}
		}
	}
	if err != nil {
		logger.Warn("failed to record submission history", zap.Error(err))
	}
}

// scalarAt returns the rendered scalar at a top-level key, or "".
func scalarAt(n *tree.Node, key string) string {
	c, ok := n.Child(key)
	if !ok || c.Kind() != tree.KindScalar {
		return ""
	}
	return tree.FormatScalar(c.Value())
}
