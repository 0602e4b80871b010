// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"

	"github.com/confkit/confkit/internal/config"
	"github.com/confkit/confkit/internal/ini"
	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff <old> <new>",
	Short: "Compare two configuration files",
	Long: "Compare two configuration files semantically, ignoring formatting.\n" +
		"Exits with status 1 when the files differ.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		old, err := ini.LoadFile(args[0])
		if err != nil {
			return err
		}
		next, err := ini.LoadFile(args[1])
		if err != nil {
			return err
		}

		summary := config.Diff(old, next)
		if summary.Empty() {
			return nil
		}

		for _, name := range summary.RemovedSections {
			fmt.Printf("- [%s]\n", name)
		}
		for _, name := range summary.AddedSections {
			fmt.Printf("+ [%s]\n", name)
		}
		for _, c := range summary.Changed {
			fmt.Println(c)
		}
		os.Exit(1)
		return nil
	},
}
