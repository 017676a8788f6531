package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizmind/internal/engine"
	"github.com/abhisek/quizmind/internal/ui/theme"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset learner data",
	Long:  "Discards the stored profile, knowledge state and event history. The user id is kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("reset deletes all learner data; rerun with --yes to confirm")
		}

		s, err := openSession(cmd, engine.Options{})
		if err != nil {
			return err
		}
		defer s.Close(ctx)

		if err := s.engine.Reset(ctx); err != nil {
			return err
		}
		printReport(cmd, theme.Hint.Render("Learner data reset for "+s.engine.UserID()))
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm the reset")
}
