package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time with ldflags
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the facelock version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("facelock", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
