package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/ericfisherdev/lintgate/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/lintgate/internal/domain/model"
)

func newRunsCmd(c *cli) *cobra.Command {
	var (
		repo  string
		pr    int
		limit int
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs for a pull request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := model.NewDiscussion(repo, pr)
			if err != nil {
				return err
			}

			db, err := openStore(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := sqliteadapter.NewRunRepo(db).ListByDiscussion(cmd.Context(), d, limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintf(out, "No runs recorded for %s\n", d)
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STARTED\tRANGE\tSTATUS\tOFFENSES\tPOSTED\tID")
			for _, run := range runs {
				cr := model.CommitRange{Base: run.BaseSHA, Head: run.HeadSHA}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%t\t%s\n",
					run.StartedAt.Local().Format(time.DateTime),
					cr, run.Status, run.OffenseCount, run.Posted, run.ID,
				)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "repository as owner/name")
	cmd.Flags().IntVar(&pr, "pr", 0, "pull request number")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	_ = cmd.MarkFlagRequired("repo")
	_ = cmd.MarkFlagRequired("pr")

	return cmd
}
