package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the built-in demo catalog",
	Long: `Seed stores the built-in demo product set, embedding each batch as
it goes. Existing products with the same ids are overwritten.

Example:
  catalogctl seed`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	svc := newIngestService(store)

	fmt.Println("Seeding demo catalog...")
	report, err := svc.Seed(context.Background(), newProgress("Seeding"))
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	printReport(report)
	return nil
}
