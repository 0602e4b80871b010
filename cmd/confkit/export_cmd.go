// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"

	"github.com/confkit/confkit/internal/export"
	"github.com/spf13/cobra"
)

var (
	formatFlag  string
	sectionFlag string
	outputFlag  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the configuration as INI, JSON or YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		store, err := loadStore()
		if err != nil {
			return err
		}
		payload, err := export.Render(store, sectionFlag, format)
		if err != nil {
			return err
		}

		if outputFlag == "" || outputFlag == "-" {
			_, err = os.Stdout.Write(payload)
			return err
		}
		if err := export.WriteFileAtomic(outputFlag, payload); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d bytes)\n", outputFlag, len(payload))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&formatFlag, "format", "f", "ini", "output format (ini, json, yaml)")
	exportCmd.Flags().StringVarP(&sectionFlag, "section", "s", "", "export a single section")
	exportCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "write to file instead of stdout")
}
