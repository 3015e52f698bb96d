package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "facelock",
	Short: "Lock onto an enrolled face and record its behavior",
	Long: `facelock runs face detection and recognition on a camera feed,
locks onto a chosen enrolled identity, and records the locked face's
movements, blinks, and smiles to a per session history file.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is facelock.yaml in the working directory)")
}

func initConfig() {
	// load optional .env file for environment based overrides
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}
}
