package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var reembedAll bool

var reembedCmd = &cobra.Command{
	Use:   "reembed",
	Short: "Generate embeddings for products missing one",
	Long: `Reembed generates embeddings for stored products that have none,
for example after an import ran while the provider was down. With --all
it regenerates the whole catalog; run that after changing the embedding
model or dimensions so stored vectors match what queries are embedded
with.

A provider failure aborts the run: a partial refresh would leave
vectors from mixed model versions.

Examples:
  catalogctl reembed        # fill in missing embeddings
  catalogctl reembed --all  # regenerate everything`,
	Args: cobra.NoArgs,
	RunE: runReembed,
}

func init() {
	reembedCmd.Flags().BoolVar(&reembedAll, "all", false, "regenerate every embedding, not just missing ones")
	rootCmd.AddCommand(reembedCmd)
}

func runReembed(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	svc := newIngestService(store)

	if reembedAll {
		fmt.Println("Re-embedding the full catalog...")
	} else {
		fmt.Println("Embedding products without vectors...")
	}
	report, err := svc.Reembed(context.Background(), reembedAll, newProgress("Embedding"))
	if err != nil {
		return fmt.Errorf("reembed failed: %w", err)
	}

	printReport(report)
	return nil
}
