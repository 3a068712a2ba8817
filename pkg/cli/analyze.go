package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ekaya-inc/join-advisor/pkg/apperrors"
	"github.com/ekaya-inc/join-advisor/pkg/hints"
	"github.com/ekaya-inc/join-advisor/pkg/loader"
	"github.com/ekaya-inc/join-advisor/pkg/models"
	"github.com/ekaya-inc/join-advisor/pkg/session"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		useHints   bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <left.csv> <right.csv>",
		Short: "Detect and score candidate join keys between two CSV files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			var suggester *hints.Suggester
			if useHints {
				client, err := hints.NewClient(cfg.Hints, logger)
				if err != nil {
					return fmt.Errorf("create hint client: %w", err)
				}
				suggester = hints.NewSuggester(client, cfg.Hints, logger)
			}

			ld := loader.New(logger)
			left, err := ld.LoadFile(args[0])
			if err != nil {
				return err
			}
			right, err := ld.LoadFile(args[1])
			if err != nil {
				return err
			}

			sess := session.New(cfg, suggester, logger)
			if _, err := sess.LoadLeft(left); err != nil {
				return err
			}
			if _, err := sess.LoadRight(right); err != nil {
				return err
			}

			if _, err := sess.DetectCandidates(); err != nil {
				if errors.Is(err, apperrors.ErrInsufficientData) {
					fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", err)
					return nil
				}
				return err
			}

			reports, err := sess.ScoreAll(cmd.Context())
			if err != nil {
				return err
			}

			if useHints {
				reports, err = sess.ApplyHints(cmd.Context())
				if err != nil {
					return err
				}
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"reports": reports,
					"skipped": sess.Skipped(),
				})
			}

			printReports(cmd, reports)
			for _, skip := range sess.Skipped() {
				fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %s: %s\n", skip.Candidate.ID(), skip.Reason)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&useHints, "hints", false, "include LLM hint suggestions in the ranking")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit reports as JSON")

	return cmd
}

func printReports(cmd *cobra.Command, reports []*models.HealthReport) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tKEY\tMETHOD\tSCORE\tMATCH\tCARDINALITY\tFLAGS")
	for i, rep := range reports {
		flags := make([]string, len(rep.Flags))
		for j, f := range rep.Flags {
			flags[j] = string(f)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%.2f\t%s\t%s\n",
			i+1,
			rep.Candidate.ID(),
			rep.Candidate.Method,
			rep.Score,
			rep.Stats.MatchRate,
			rep.Stats.Cardinality,
			strings.Join(flags, ","))
	}
	_ = w.Flush()
}
