package launch

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Submitter hands a rendered script to the scheduler and returns the
// assigned job identifier.
type Submitter interface {
	Submit(ctx context.Context, scriptPath string) (jobID string, err error)
}

// SbatchSubmitter shells out to sbatch. Submission is a blocking external
// call; failures are returned with sbatch's own output attached and are
// never retried here.
type SbatchSubmitter struct {
	// Command overrides the sbatch executable, mainly for tests.
	Command string
	Logger  *zap.Logger
}

func (s *SbatchSubmitter) Submit(ctx context.Context, scriptPath string) (string, error) {
	command := s.Command
	if command == "" {
		command = "sbatch"
	}
	cmd := exec.CommandContext(ctx, command, scriptPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("sbatch failed: %w\noutput: %s", err, out)
	}
	jobID, err := parseSbatchOutput(string(out))
	if err != nil {
		return "", err
	}
	if s.Logger != nil {
		s.Logger.Info("job submitted",
			zap.String("script", scriptPath),
			zap.String("job_id", jobID))
	}
	return jobID, nil
}

// parseSbatchOutput extracts the job id from sbatch's stdout, which looks
// like "Submitted batch job 2723147".
func parseSbatchOutput(out string) (string, error) {
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "", fmt.Errorf("unable to parse sbatch output: %q", out)
	}
	jobID := fields[len(fields)-1]
	for _, r := range jobID {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("unable to parse sbatch output: %q", out)
		}
	}
	return jobID, nil
}

// DryRunSubmitter prints what would be submitted and assigns no job id.
type DryRunSubmitter struct {
	Out io.Writer
}

func (s *DryRunSubmitter) Submit(_ context.Context, scriptPath string) (string, error) {
	fmt.Fprintf(s.Out, "dry-run: would submit %s\n", scriptPath)
	return "", nil
}
