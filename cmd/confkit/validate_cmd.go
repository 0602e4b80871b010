// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"

	"github.com/confkit/confkit/internal/config"
	"github.com/spf13/cobra"
)

var strictFlag bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Parse and validate the configuration file",
	Long: "Parse the configuration file, build every tool view and run the\n" +
		"guardrail checks. Warnings go to stderr; with --strict they fail\n" +
		"the command.",
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := loadProject()
		if err != nil {
			return err
		}
		warnings, err := config.Validate(project)
		if err != nil {
			return err
		}

		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		if strictFlag && len(warnings) > 0 {
			return fmt.Errorf("%d warning(s) in strict mode", len(warnings))
		}

		fmt.Printf("%s: ok (%d sections)\n", configPath, len(project.Store.Sections()))
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&strictFlag, "strict", false, "treat warnings as errors")
}
