package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizmind/internal/engine"
	"github.com/abhisek/quizmind/internal/hints"
	"github.com/abhisek/quizmind/internal/ui/components"
	"github.com/abhisek/quizmind/internal/ui/theme"
)

var hintCmd = &cobra.Command{
	Use:   "hint <question.json>",
	Short: "Generate a hint for a question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		attempts, _ := cmd.Flags().GetInt("attempts")
		elapsed, _ := cmd.Flags().GetDuration("elapsed")
		level, _ := cmd.Flags().GetInt("level")
		if attempts < 0 || elapsed < 0 || level < 0 {
			return fmt.Errorf("--attempts, --elapsed and --level must not be negative")
		}

		data, err := readFile(args[0])
		if err != nil {
			return err
		}
		q, err := decodeQuestion(data)
		if err != nil {
			return err
		}

		s, err := openSession(cmd, engine.Options{})
		if err != nil {
			return err
		}
		defer s.Close(ctx)

		h := s.engine.GenerateHint(ctx, hints.Request{
			Question: q,
			Attempts: attempts,
			Elapsed:  elapsed,
			Level:    level,
		})
		if jsonOutput(cmd) {
			return printJSON(cmd, h)
		}
		printReport(cmd, renderHint(h))
		return nil
	},
}

func init() {
	hintCmd.Flags().Int("attempts", 0, "Attempts made on the question so far")
	hintCmd.Flags().Duration("elapsed", 0, "Time spent on the question so far")
	hintCmd.Flags().Int("level", 0, "Hint level to generate (0 = next level)")
}

func renderHint(h hints.Hint) string {
	body := theme.Body.Render(h.Content)
	if h.FollowUp != "" {
		body += "\n" + theme.Hint.Render(h.FollowUp)
	}
	meta := components.Fields(
		components.Field{Label: "Strategy", Value: string(h.Strategy)},
		components.Field{Label: "Level", Value: fmt.Sprintf("%d", h.Level)},
		components.Field{Label: "Confidence", Value: fmt.Sprintf("%.2f", h.Confidence)},
	)
	return theme.Card.Render(body) + "\n" + meta
}
