// Package main is the entry point for the equipset CLI
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "equipset",
	Short: "Equip set resolution engine",
	Long:  `equipset resolves slot-keyed inventories into equippable item sets using a declarative rule configuration.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(loadoutCmd)
}
