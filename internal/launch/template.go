// Package launch renders resolved jobs into sbatch scripts, submits them to
// the scheduler in list order, and records what was launched.
package launch

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"slaunch/internal/tree"
)

// DefaultTemplate is the built-in sbatch script template. Slots are named:
// they are filled from the scheduler tree's top-level keys, never from the
// token positions.
const DefaultTemplate = `#!/bin/bash
#SBATCH --job-name={{.JobName}}
#SBATCH --output={{.Outdir}}/{{.JobName}}-%j.out
{{if .CpusPerTask -}}
#SBATCH --cpus-per-task={{.CpusPerTask}}
{{end -}}
{{if .Mem -}}
#SBATCH --mem={{.Mem}}
{{end -}}
{{if .Gres -}}
#SBATCH --gres={{.Gres}}
{{end -}}
{{if .Partition -}}
#SBATCH --partition={{.Partition}}
{{end -}}
{{if .Time -}}
#SBATCH --time={{.Time}}
{{end -}}

{{if .Modules -}}
module load {{.Modules}}
{{end -}}
{{if .CondaEnv -}}
conda activate {{.CondaEnv}}
{{else if .Venv -}}
source {{.Venv}}/bin/activate
{{end -}}
cd {{.CodeDir}}
python main.py {{.Command}}
`

// TemplateData carries the named slots available to a script template.
type TemplateData struct {
	JobName     string
	Outdir      string
	CpusPerTask string
	Mem         string
	Gres        string
	Partition   string
	Time        string
	Modules     string
	CondaEnv    string
	Venv        string
	CodeDir     string
	// Command is the space-joined script override string appended to the
	// target program invocation.
	Command string
}

// LoadTemplate reads a custom template file, falling back to the built-in
// template when path is empty.
func LoadTemplate(path string) (string, error) {
	if path == "" {
		return DefaultTemplate, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", path, err)
	}
	return string(data), nil
}

// RenderScript fills the template's named slots from the scheduler tree and
// appends the script command line to the target invocation.
func RenderScript(text string, slurm *tree.Node, command string) (string, error) {
	data, err := slotData(slurm)
	if err != nil {
		return "", err
	}
	data.Command = command

	tmpl, err := template.New("sbatch").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse script template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render script template: %w", err)
	}
	return buf.String(), nil
}

func slotData(slurm *tree.Node) (TemplateData, error) {
	toks, err := tree.Flatten(slurm)
	if err != nil {
		return TemplateData{}, err
	}
	slots := map[string]string{}
	for _, t := range toks {
		slots[t.Key()] = tree.FormatScalar(t.Value)
	}
	return TemplateData{
		JobName:     slots["job_name"],
		Outdir:      slots["outdir"],
		CpusPerTask: slots["cpus_per_task"],
		Mem:         slots["mem"],
		Gres:        slots["gres"],
		Partition:   slots["partition"],
		Time:        slots["time"],
		Modules:     slots["modules"],
		CondaEnv:    slots["conda_env"],
		Venv:        slots["venv"],
		CodeDir:     slots["code_dir"],
	}, nil
}
