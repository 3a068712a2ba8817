package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ekaya-inc/join-advisor/pkg/export"
	"github.com/ekaya-inc/join-advisor/pkg/join"
	"github.com/ekaya-inc/join-advisor/pkg/loader"
	"github.com/ekaya-inc/join-advisor/pkg/models"
)

func newJoinCmd() *cobra.Command {
	var (
		leftCols  []string
		rightCols []string
		joinType  string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "join <left.csv> <right.csv>",
		Short: "Join two CSV files on the given key columns",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if len(leftCols) == 0 || len(leftCols) != len(rightCols) {
				return fmt.Errorf("--left-col and --right-col must be given the same number of times")
			}

			pairs := make([]models.ColumnPair, len(leftCols))
			for i := range leftCols {
				pairs[i] = models.ColumnPair{Left: leftCols[i], Right: rightCols[i]}
			}
			key := models.CandidateKey{Pairs: pairs, Method: models.DetectionMethodNameMatch}

			ld := loader.New(logger)
			left, err := ld.LoadFile(args[0])
			if err != nil {
				return err
			}
			right, err := ld.LoadFile(args[1])
			if err != nil {
				return err
			}

			result, err := join.New(logger).Execute(left, right, key, models.JoinType(joinType))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Joined %d rows (%d left, %d right, %d unmatched left, %d unmatched right)\n",
				result.JoinedRowCount, result.LeftRowCount, result.RightRowCount,
				result.UnmatchedLeft, result.UnmatchedRight)

			if output != "" {
				return export.WriteCSVFile(output, result.Table)
			}
			return export.WriteCSV(cmd.OutOrStdout(), result.Table)
		},
	}

	cmd.Flags().StringSliceVar(&leftCols, "left-col", nil, "left key column (repeat for composite keys)")
	cmd.Flags().StringSliceVar(&rightCols, "right-col", nil, "right key column (repeat for composite keys)")
	cmd.Flags().StringVar(&joinType, "type", string(models.JoinTypeLeftOuter), "join type: inner or left_outer")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write joined CSV to this file instead of stdout")

	return cmd
}
