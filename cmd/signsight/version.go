package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"signsight/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("signsight %s (%s)\n", version.VERSION, version.COMMIT)
	},
}
