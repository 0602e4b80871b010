// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"

	"github.com/confkit/confkit/internal/export"
	"github.com/spf13/cobra"
)

var (
	checkFlag bool
	writeFlag bool
)

var fmtCmd = &cobra.Command{
	Use:   "fmt",
	Short: "Canonicalize the configuration file",
	Long: "Rewrite the file into its canonical form: normalized delimiters,\n" +
		"continuation-line lists, one blank line between sections. With\n" +
		"--check, exit 1 when the file is not canonical; with --write,\n" +
		"rewrite it in place atomically.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if checkFlag && writeFlag {
			return fmt.Errorf("--check and --write are mutually exclusive")
		}

		result, err := export.Rewrite(configPath, writeFlag)
		if err != nil {
			return err
		}

		switch {
		case checkFlag:
			if result.Changed {
				fmt.Fprintf(os.Stderr, "%s: not canonical\n", configPath)
				os.Exit(1)
			}
			fmt.Printf("%s: canonical\n", configPath)
		case writeFlag:
			if result.Changed {
				fmt.Printf("%s: rewritten\n", configPath)
			} else {
				fmt.Printf("%s: already canonical\n", configPath)
			}
		default:
			// No flag: print the canonical form to stdout.
			fmt.Print(string(result.Canonical))
		}
		return nil
	},
}

func init() {
	fmtCmd.Flags().BoolVar(&checkFlag, "check", false, "exit non-zero when the file is not canonical")
	fmtCmd.Flags().BoolVarP(&writeFlag, "write", "w", false, "rewrite the file in place")
}
