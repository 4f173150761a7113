package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var seedReset bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the default feedback messages",
	Long: `Insert the default feedback messages into the store.

With --reset the feedback table is dropped and recreated first.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "Drop and recreate the feedback table before seeding")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Stop()
	if err = a.Init(); err != nil {
		return err
	}
	n, err := a.Seed(cmd.Context(), seedReset)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d messages\n", n)
	return nil
}
