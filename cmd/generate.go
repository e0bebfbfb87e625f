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

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one document of the chain",
}

var generateAnalysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Draft a failure-mode analysis for a product",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *docchain.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		productID, _ := cmd.Flags().GetUint64("product")
		out, err := svc.GenerateAnalysis(ctx, docchain.GenerateAnalysisInput{ProductID: productID})
		if err != nil {
			logging.Error(ctx, "generate analysis failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "generate analysis")
		}

		status := "created"
		if !out.Created {
			status = "existing"
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "analysis %s root=%d lines=%d\n", status, out.RootID, out.LinesCount); err != nil {
			return errs.Wrap(err, "write analysis output")
		}
		return nil
	}),
}

var generateControlPlanCmd = &cobra.Command{
	Use:   "control-plan",
	Short: "Derive a control plan from an analysis root",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *docchain.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		rootID, _ := cmd.Flags().GetUint64("root")
		out, err := svc.GenerateControlPlan(ctx, docchain.GenerateControlPlanInput{RootID: rootID})
		if err != nil {
			logging.Error(ctx, "generate control plan failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "generate control plan")
		}

		status := "created"
		if !out.Created {
			status = "existing"
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "control plan %s plan=%d items=%d linked-lines=%d\n",
			status, out.ControlPlanID, out.ItemsCount, len(out.Traceability.LinkedLineIDs)); err != nil {
			return errs.Wrap(err, "write control plan output")
		}
		return nil
	}),
}

var generateInstructionsCmd = &cobra.Command{
	Use:   "instructions",
	Short: "Derive work instructions from a control plan",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *docchain.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		planID, _ := cmd.Flags().GetUint64("plan")
		out, err := svc.GenerateInstructions(ctx, docchain.GenerateInstructionsInput{ControlPlanID: planID})
		if err != nil {
			logging.Error(ctx, "generate instructions failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "generate instructions")
		}

		status := "created"
		if !out.Created {
			status = "existing"
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "instructions %s doc=%d steps=%d linked-items=%d\n",
			status, out.InstructionsID, out.StepsCount, len(out.Traceability.LinkedCPItemIDs)); err != nil {
			return errs.Wrap(err, "write instructions output")
		}
		return nil
	}),
}

var generateInspectionPlanCmd = &cobra.Command{
	Use:   "inspection-plan",
	Short: "Derive an inspection plan from a control plan",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *docchain.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		planID, _ := cmd.Flags().GetUint64("plan")
		out, err := svc.GenerateInspectionPlan(ctx, docchain.GenerateInspectionPlanInput{ControlPlanID: planID})
		if err != nil {
			logging.Error(ctx, "generate inspection plan failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "generate inspection plan")
		}

		status := "created"
		if !out.Created {
			status = "existing"
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "inspection plan %s plan=%d items=%d linked-items=%d\n",
			status, out.InspectionPlanID, out.ItemsCount, len(out.Traceability.LinkedCPItemIDs)); err != nil {
			return errs.Wrap(err, "write inspection plan output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.AddCommand(generateAnalysisCmd)
	generateAnalysisCmd.Flags().Uint64("product", 0, "Product ID")
	_ = generateAnalysisCmd.MarkFlagRequired("product")

	generateCmd.AddCommand(generateControlPlanCmd)
	generateControlPlanCmd.Flags().Uint64("root", 0, "Analysis root ID")
	_ = generateControlPlanCmd.MarkFlagRequired("root")

	generateCmd.AddCommand(generateInstructionsCmd)
	generateInstructionsCmd.Flags().Uint64("plan", 0, "Control plan ID")
	_ = generateInstructionsCmd.MarkFlagRequired("plan")

	generateCmd.AddCommand(generateInspectionPlanCmd)
	generateInspectionPlanCmd.Flags().Uint64("plan", 0, "Control plan ID")
	_ = generateInspectionPlanCmd.MarkFlagRequired("plan")
}
