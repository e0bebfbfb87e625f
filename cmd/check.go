package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"pinkong/internal/bootstrap"
	"pinkong/internal/bootstrap/logging"
	"pinkong/internal/domain/quality"
	"pinkong/internal/errs"
	"pinkong/internal/usecase/docchain"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate consistency rules over a document chain",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *docchain.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		rootID, _ := cmd.Flags().GetUint64("root")
		persist, _ := cmd.Flags().GetBool("persist")
		out, err := svc.CheckConsistency(ctx, docchain.CheckConsistencyInput{RootID: rootID, Persist: persist})
		if err != nil {
			logging.Error(ctx, "check consistency failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "check consistency")
		}

		writer := cmd.OutOrStdout()
		if _, werr := fmt.Fprintf(writer, "findings high=%d medium=%d low=%d persisted=%t\n",
			out.Counts[quality.SeverityHigh], out.Counts[quality.SeverityMedium], out.Counts[quality.SeverityLow], persist); werr != nil {
			return errs.Wrap(werr, "write check output")
		}
		for _, finding := range out.Findings {
			if _, werr := fmt.Fprintf(writer, "  %s [%s] %s=%d %s\n",
				finding.Rule, finding.Severity, finding.TargetKind, finding.TargetID, finding.Message); werr != nil {
				return errs.Wrap(werr, "write check output")
			}
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Uint64("root", 0, "Analysis root ID")
	checkCmd.Flags().Bool("persist", false, "Replace stored findings for the root")
	_ = checkCmd.MarkFlagRequired("root")
}
