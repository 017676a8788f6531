package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizmind/internal/difficulty"
	"github.com/abhisek/quizmind/internal/engine"
	"github.com/abhisek/quizmind/internal/ui/components"
	"github.com/abhisek/quizmind/internal/ui/theme"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <attempts.json>",
	Short: "Score a batch of attempts and adapt difficulty",
	Long: "Scores a JSON array of attempts ({questionId, isCorrect, timeToAnswer (ms), topic, difficulty}), " +
		"updates the stored learner model and reports the adapted difficulty.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		current, err := parseDifficulty(mustString(cmd, "difficulty"))
		if err != nil {
			return err
		}
		data, err := readFile(args[0])
		if err != nil {
			return err
		}
		attempts, err := decodeAttempts(data)
		if err != nil {
			return err
		}

		s, err := openSession(cmd, engine.Options{})
		if err != nil {
			return err
		}
		defer s.Close(ctx)

		out := analyzeOutput{
			Analysis:   s.engine.AnalyzePerformance(ctx, attempts),
			Adaptation: newAdaptation(s.engine.AdaptDifficulty(ctx, current, attempts)),
		}
		if jsonOutput(cmd) {
			return printJSON(cmd, out)
		}
		printReport(cmd, renderAnalysis(out, s.cfg.Knowledge.WeakThreshold, s.cfg.Knowledge.StrongThreshold))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().String("difficulty", string(difficulty.Intermediate), "Current difficulty (level name or number in [0, 1])")
}

type adaptation struct {
	Level     difficulty.Level `json:"level"`
	Value     float64          `json:"value"`
	Previous  float64          `json:"previous"`
	Direction string           `json:"direction"`
}

func newAdaptation(r difficulty.Result) adaptation {
	return adaptation{Level: r.Level, Value: r.Value, Previous: r.Previous, Direction: r.Direction.String()}
}

type analyzeOutput struct {
	Analysis   engine.Analysis `json:"analysis"`
	Adaptation adaptation      `json:"adaptation"`
}

func renderAnalysis(out analyzeOutput, weak, strong float64) string {
	a := out.Analysis
	score := theme.Score(a.Score, weak, strong).Render(fmt.Sprintf("%.2f", a.Score))

	summary := components.Fields(
		components.Field{Label: "Score", Value: score},
		components.Field{Label: "Accuracy", Value: fmt.Sprintf("%.2f", a.Breakdown.Accuracy)},
		components.Field{Label: "Speed", Value: fmt.Sprintf("%.2f", a.Breakdown.Speed)},
		components.Field{Label: "Consistency", Value: fmt.Sprintf("%.2f", a.Breakdown.Consistency)},
		components.Field{Label: "Improvement", Value: fmt.Sprintf("%.2f", a.Breakdown.Improvement)},
		components.Field{Label: "Level", Value: string(a.Level)},
	)

	ad := out.Adaptation
	adapted := components.Fields(
		components.Field{Label: "Difficulty", Value: fmt.Sprintf("%.2f -> %.2f (%s)", ad.Previous, ad.Value, ad.Level)},
		components.Field{Label: "Direction", Value: ad.Direction},
	)

	report := theme.Title.Render("Performance") + "\n" + summary +
		"\n" + components.Section("Difficulty", adapted)
	if len(a.Mastery) > 0 {
		report += "\n" + components.Section("Mastery", masteryBars(a.Mastery))
	}
	return report
}
