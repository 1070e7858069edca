package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import products from a CSV export",
	Long: `Import reads a header-mapped CSV file and stores every valid row in
the catalog, embedding each batch as it goes. Invalid rows are skipped
and counted. Rows whose batch fails to embed are stored without a
vector and stay reachable through non-semantic orderings.

Required columns: id, title, description, category (rows with an empty
description or category are skipped). Recognized columns: tags, brand,
price, was_price, discount, rating, popularity, image_url, product_url.

Example:
  catalogctl import products.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	svc := newIngestService(store)

	fmt.Printf("Importing %s...\n", args[0])
	report, err := svc.ImportCSV(context.Background(), f, newProgress("Importing"))
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	printReport(report)
	return nil
}
