// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var typeFlag string

var getCmd = &cobra.Command{
	Use:   "get <section> <key>",
	Short: "Print one option value",
	Long: "Print an option value, optionally coerced. Key lookup folds dashes\n" +
		"and underscores the way the consuming tools do. Exits with status 2\n" +
		"when the section or key is not declared.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		section, key := args[0], args[1]

		store, err := loadStore()
		if err != nil {
			return err
		}
		if !store.Has(section) {
			fmt.Fprintf(os.Stderr, "confkit: section %q is not declared\n", section)
			os.Exit(2)
		}
		sec := store.Section(section)
		raw, ok := sec.Raw(key)
		if !ok {
			fmt.Fprintf(os.Stderr, "confkit: option %q is not declared in %q\n", key, section)
			os.Exit(2)
		}

		switch typeFlag {
		case "string", "":
			fmt.Println(raw)
		case "int":
			n, err := sec.Int(key, 0)
			if err != nil {
				return err
			}
			fmt.Println(n)
		case "bool":
			b, err := sec.Bool(key, false)
			if err != nil {
				return err
			}
			fmt.Println(b)
		case "list":
			fmt.Println(strings.Join(sec.List(key, nil), "\n"))
		default:
			return fmt.Errorf("unknown type %q (want string, int, bool or list)", typeFlag)
		}
		return nil
	},
}

func init() {
	getCmd.Flags().StringVarP(&typeFlag, "type", "t", "string", "coerce the value (string, int, bool, list)")
}
