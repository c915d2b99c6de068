package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/forPelevin/recap/internal/ledger"
)

func newHistoryCommand(g *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recent runs, or the jobs of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cmd.Context(), cfg.Paths.LedgerPath)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				jobs, err := store.Jobs(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(jobs))
				for _, j := range jobs {
					rows = append(rows, []string{j.Kind, j.Subject, j.Variant, j.Status, formatDuration(j.Elapsed), firstLine(j.Error)})
				}
				fmt.Fprintln(out, renderTable([]string{"Kind", "Subject", "Variant", "Status", "Elapsed", "Error"}, rows, 4))
				return nil
			}

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					shortID(r.ID),
					formatTime(r.StartedAt),
					r.Status,
					strconv.Itoa(r.Recaps),
					strconv.Itoa(r.Failures),
					r.Input,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Run", "Started", "Status", "Recaps", "Failures", "Input"}, rows, 3, 4))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	return cmd
}
