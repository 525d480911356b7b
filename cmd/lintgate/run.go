package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/lintgate/internal/domain/model"
)

type runOutput struct {
	model.RunResult
	Error string `json:"error,omitempty"`
}

func newRunCmd(c *cli) *cobra.Command {
	var (
		repo string
		pr   int
		base string
		head string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Lint a commit range and update the pull request's comments",
		Long: `Run the configured linters over the files changed between --base and --head,
filter the offenses to the changed lines, and reconcile the pull request's
comment thread. The result is printed as JSON; the exit status is non-zero
when the run fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := model.NewDiscussion(repo, pr)
			if err != nil {
				return err
			}
			cr := model.CommitRange{Base: base, Head: head}
			if err := cr.Validate(); err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			result, runErr := a.service.Run(cmd.Context(), d, cr)

			out := runOutput{RunResult: result}
			if runErr != nil {
				out.Error = runErr.Error()
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return fmt.Errorf("writing result: %w", err)
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "repository as owner/name")
	cmd.Flags().IntVar(&pr, "pr", 0, "pull request number")
	cmd.Flags().StringVar(&base, "base", "", "base revision of the range")
	cmd.Flags().StringVar(&head, "head", "", "head revision of the range")
	for _, name := range []string{"repo", "pr", "base", "head"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
