package packguard

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/packguard/packguard/internal/audit"
)

var flagHistoryLimit int

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently recorded scans",
		RunE:  runHistory,
	}
	rootCmd.AddCommand(cmd)
	cmd.Flags().IntVar(&flagHistoryLimit, "limit", 10, "number of records to show")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	records, err := audit.New("").History()
	if err != nil {
		return fmt.Errorf("no scan history: %w", err)
	}
	if flagHistoryLimit > 0 && len(records) > flagHistoryLimit {
		records = records[:flagHistoryLimit]
	}
	for _, r := range records {
		fmt.Printf("%s  %-40s files=%d critical=%d warning=%d info=%d (%s)\n",
			r.Timestamp.Format("2006-01-02 15:04"), r.Archive, r.FileCount,
			r.Summary.Critical, r.Summary.Warning, r.Summary.Info, r.Duration)
	}
	return nil
}
