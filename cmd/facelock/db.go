package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/swdee/go-facelock/enroll"
)

var dbFile string

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect and manage the enrolled face database",
}

var dbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enrolled identities and their sample counts",
	RunE: func(cmd *cobra.Command, args []string) error {

		dbFile = envDefault(cmd, "db", "FACELOCK_DB", dbFile)

		db, err := enroll.Load(dbFile)

		if err != nil {
			return fmt.Errorf("error loading face database: %w", err)
		}

		names := db.Names()

		if len(names) == 0 {
			fmt.Println("No identities enrolled")
			return nil
		}

		for _, name := range names {
			fmt.Printf("%s: %d samples\n", name, len(db.Identities[name]))
		}

		return nil
	},
}

var dbImportCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Merge identities from other database files into the database",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {

		dbFile = envDefault(cmd, "db", "FACELOCK_DB", dbFile)

		db, err := enroll.Load(dbFile)

		if err != nil {
			return fmt.Errorf("error loading face database: %w", err)
		}

		bar := progressbar.Default(int64(len(args)), "importing")
		merged := 0

		for _, path := range args {

			other, err := enroll.Load(path)

			if err != nil {
				return fmt.Errorf("error loading %s: %w", path, err)
			}

			merged += db.Merge(other)
			_ = bar.Add(1)
		}

		if err := db.Save(dbFile); err != nil {
			return fmt.Errorf("error saving face database: %w", err)
		}

		fmt.Printf("Imported %d embeddings into %s\n", merged, dbFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbListCmd)
	dbCmd.AddCommand(dbImportCmd)

	dbCmd.PersistentFlags().StringVar(&dbFile, "db", "data/db/face_db.json",
		"path to the enrolled face database file")
}
