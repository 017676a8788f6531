package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/quizmind/internal/engine"
	"github.com/abhisek/quizmind/internal/ui/components"
	"github.com/abhisek/quizmind/internal/ui/theme"
)

var trackCmd = &cobra.Command{
	Use:   "track <name>",
	Short: "Record an analytics event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pairs, _ := cmd.Flags().GetStringArray("prop")
		props, err := parseProps(pairs)
		if err != nil {
			return err
		}

		s, err := openSession(cmd, engine.Options{})
		if err != nil {
			return err
		}
		defer s.Close(ctx)

		ev := s.engine.Track(ctx, args[0], props)
		if err := s.engine.Flush(ctx); err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(cmd, ev)
		}
		printReport(cmd, theme.Title.Render("Tracked")+"\n"+components.Fields(
			components.Field{Label: "Event", Value: ev.Name},
			components.Field{Label: "ID", Value: ev.ID},
			components.Field{Label: "Session", Value: ev.SessionID},
		))
		return nil
	},
}

func init() {
	trackCmd.Flags().StringArray("prop", nil, "Event property as key=value (repeatable)")
}
