package launch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"slaunch/internal/resolve"
	"slaunch/internal/tree"
)

// ErrAborted is returned when the user declines the confirmation prompt.
var ErrAborted = errors.New("submission aborted")

// Launcher renders and submits a batch of resolved jobs. Scripts are all
// rendered before anything is submitted, so a bad template or tree fails
// the whole invocation without touching the scheduler. Submission itself is
// sequential in jobs order — that order is user-visible in the summary and
// in the scheduler's queue.
type Launcher struct {
	Outdir       string
	TemplateText string
	Force        bool
	In           io.Reader
	Out          io.Writer
	Logger       *zap.Logger
	Submitter    Submitter
}

// Summary records one invocation: every rendered script, the scheduler ids
// assigned, and the resolved configuration each job ran with.
type Summary struct {
	LaunchedAt time.Time    `yaml:"launched_at"`
	Jobs       []SummaryJob `yaml:"jobs"`
}

// SummaryJob is the record of a single submitted job.
type SummaryJob struct {
	Name       string     `yaml:"name"`
	JobID      string     `yaml:"job_id,omitempty"`
	ScriptPath string     `yaml:"script_path"`
	Args       string     `yaml:"args,omitempty"`
	Slurm      *tree.Node `yaml:"slurm"`
	Script     *tree.Node `yaml:"script"`
}

// Run renders, confirms, submits and summarizes the batch. The returned
// summary is also written as a YAML document next to the scripts.
func (l *Launcher) Run(ctx context.Context, jobs []resolve.ResolvedJob) (*Summary, error) {
	outdir := ExpandPath(l.Outdir)
	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	stamp := time.Now()
	summary := &Summary{LaunchedAt: stamp}
	scripts := make([]string, len(jobs))
	for i, job := range jobs {
		content, err := RenderScript(l.TemplateText, job.Slurm, job.ScriptCommandLine())
		if err != nil {
			return nil, fmt.Errorf("job %d: %w", i, err)
		}
		scripts[i] = content
	}

	if !l.Force {
		ok, err := l.confirm(len(jobs))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrAborted
		}
	}

	for i, job := range jobs {
		name := jobName(job.Slurm)
		path := filepath.Join(outdir, fmt.Sprintf("%s_%s_%d.sbatch",
			name, stamp.Format("20060102_150405"), i))
		if err := os.WriteFile(path, []byte(scripts[i]), 0o644); err != nil {
			return nil, fmt.Errorf("write script: %w", err)
		}

		jobID, err := l.Submitter.Submit(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("job %d (%s): %w", i, name, err)
		}
		if l.Logger != nil {
			l.Logger.Info("job launched",
				zap.Int("index", i),
				zap.String("name", name),
				zap.String("job_id", jobID),
				zap.String("script", path))
		}
		summary.Jobs = append(summary.Jobs, SummaryJob{
			Name:       name,
			JobID:      jobID,
			ScriptPath: path,
			Args:       job.ScriptCommandLine(),
			Slurm:      job.Slurm,
			Script:     job.Script,
		})
	}

	summaryPath := filepath.Join(outdir, fmt.Sprintf("slaunch_summary_%s.yaml",
		stamp.Format("20060102_150405")))
	if err := writeSummary(summaryPath, summary); err != nil {
		return nil, err
	}
	fmt.Fprintf(l.Out, "wrote summary %s\n", summaryPath)
	return summary, nil
}

func (l *Launcher) confirm(n int) (bool, error) {
	fmt.Fprintf(l.Out, "About to submit %d job(s). Continue? [y/N] ", n)
	reader := bufio.NewReader(l.In)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func jobName(slurm *tree.Node) string {
	if n, ok := slurm.Child("job_name"); ok && n.Kind() == tree.KindScalar {
		if s := tree.FormatScalar(n.Value()); s != "" {
			return s
		}
	}
	return "job"
}

func writeSummary(path string, s *Summary) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// ExpandPath expands environment variables and a leading ~ in a local
// filesystem path. Values rendered into scripts stay unexpanded; the shell
// on the compute node resolves those.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
		}
	}
	return os.ExpandEnv(path)
}
