package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"pinkong/internal/bootstrap"
	"pinkong/internal/bootstrap/logging"
	"pinkong/internal/errs"
	"pinkong/internal/usecase/docchain"
)

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Materialize the whole document chain for a product",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *docchain.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		productID, _ := cmd.Flags().GetUint64("product")
		out, err := svc.RepairTraceability(ctx, docchain.RepairTraceabilityInput{ProductID: productID})

		// Partial step reports are still worth printing when a stage failed.
		writer := cmd.OutOrStdout()
		if _, werr := fmt.Fprintf(writer, "repair run=%s\n", out.RunID); werr != nil {
			return errs.Wrap(werr, "write repair output")
		}
		for _, step := range out.Steps {
			if _, werr := fmt.Fprintf(writer, "  %s %s id=%d count=%d\n", step.Stage, step.Status, step.ID, step.Count); werr != nil {
				return errs.Wrap(werr, "write repair output")
			}
		}

		if err != nil {
			logging.Error(ctx, "repair traceability failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "repair traceability")
		}
		if _, werr := fmt.Fprintf(writer, "repair completed generated=%d existing=%d\n",
			len(out.Summary.GeneratedStages), len(out.Summary.ExistingStages)); werr != nil {
			return errs.Wrap(werr, "write repair output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(repairCmd)
	repairCmd.Flags().Uint64("product", 0, "Product ID")
	_ = repairCmd.MarkFlagRequired("product")
}
