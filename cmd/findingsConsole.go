package cmd

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pinkong/internal/bootstrap"
	"pinkong/internal/bootstrap/logging"
	"pinkong/internal/errs"
	"pinkong/internal/usecase/docchain"
	"pinkong/internal/usecase/findingsconsole"
)

var consoleFindingsCmd = &cobra.Command{
	Use:   "findings",
	Short: "Watch consistency findings for an analysis root",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *docchain.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		rootID, _ := cmd.Flags().GetUint64("root")
		refreshInterval, _ := cmd.Flags().GetDuration("refresh-interval")
		if refreshInterval <= 0 {
			refreshInterval = 5 * time.Second
		}

		model := findingsconsole.NewFindingsModel(ctx, svc, findingsconsole.FindingsOptions{
			RootID:          rootID,
			RefreshInterval: refreshInterval,
		})

		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return errs.Wrap(err, "run findings console")
		}
		return nil
	}),
}

func init() {
	consoleCmd.AddCommand(consoleFindingsCmd)
	consoleFindingsCmd.Flags().Uint64("root", 0, "Analysis root ID")
	consoleFindingsCmd.Flags().Duration("refresh-interval", 5*time.Second, "Auto refresh interval")
	_ = consoleFindingsCmd.MarkFlagRequired("root")
}
