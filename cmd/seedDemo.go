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

var seedDemoCmd = &cobra.Command{
	Use:   "seed-demo",
	Short: "Create a demo product with three characteristics",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *docchain.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		out, err := svc.SeedDemo(ctx)
		if err != nil {
			logging.Error(ctx, "seed demo failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "seed demo")
		}

		if _, werr := fmt.Fprintf(cmd.OutOrStdout(), "demo product=%d characteristics=%d\n",
			out.ProductID, len(out.CharacteristicIDs)); werr != nil {
			return errs.Wrap(werr, "write seed-demo output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(seedDemoCmd)
}
