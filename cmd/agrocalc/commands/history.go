package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func historyCmd(e *env) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List calculations recorded with --history-db",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if e.history == nil {
				return errors.New("--history-db is required")
			}
			records, err := e.history.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, rec := range records {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", rec.CreatedAt.Format(time.RFC3339), rec.Kind, rec.ID, rec.Output)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of records to show")
	return cmd
}
