package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slaunch/internal/launch"
)

var templatePath string

// templateCmd prints the active sbatch template, a starting point for
// writing a custom one.
var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Print the sbatch script template",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := launch.LoadTemplate(launch.ExpandPath(templatePath))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	templateCmd.Flags().StringVar(&templatePath, "template", "", "template file to print instead of the built-in one")
}
