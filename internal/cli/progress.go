package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"

	"github.com/shoplens/shopsearch/internal/usecase/ingest"
)

// newProgress returns an ingest.Progress callback backed by a terminal bar.
// The bar is created lazily because the total is unknown until the first call.
func newProgress(description string) ingest.Progress {
	var bar *progressbar.ProgressBar

	return func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription(fmt.Sprintf("[cyan]%s[reset]", description)),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		_ = bar.Set(done)
	}
}

// printReport prints the run summary in aligned columns.
func printReport(report ingest.Report) {
	fmt.Printf("\nDone:\n")
	fmt.Printf("  Imported:  %d\n", report.Imported)
	if report.Skipped > 0 {
		fmt.Printf("  Skipped:   %d (invalid rows)\n", report.Skipped)
	}
	fmt.Printf("  Embedded:  %d\n", report.Embedded)
	if report.TokensUsed > 0 {
		fmt.Printf("  Tokens:    %d\n", report.TokensUsed)
	}
}
