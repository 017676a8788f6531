package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizmind/internal/analytics"
	"github.com/abhisek/quizmind/internal/engine"
	"github.com/abhisek/quizmind/internal/metrics"
	"github.com/abhisek/quizmind/internal/ui/components"
	"github.com/abhisek/quizmind/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, err := openSession(cmd, engine.Options{})
		if err != nil {
			return err
		}
		defer s.Close(ctx)

		out := statsOutput{Insights: s.engine.Insights()}
		out.Patterns, err = s.engine.Patterns(ctx, mustString(cmd, "group-by"))
		if err != nil {
			return err
		}
		if withMetrics, _ := cmd.Flags().GetBool("metrics"); withMetrics {
			if out.Metrics, err = metrics.Snapshot(s.registry); err != nil {
				return err
			}
		}

		if jsonOutput(cmd) {
			return printJSON(cmd, out)
		}
		printReport(cmd, renderStats(out, s.cfg.Knowledge.WeakThreshold, s.cfg.Knowledge.StrongThreshold))
		return nil
	},
}

func init() {
	statsCmd.Flags().String("group-by", "topic", "Event property to group answer patterns by")
	statsCmd.Flags().Bool("metrics", false, "Include the metrics collected by this command")
}

type statsOutput struct {
	Insights engine.Insights    `json:"insights"`
	Patterns analytics.Patterns `json:"patterns"`
	Metrics  []metrics.Sample   `json:"metrics,omitempty"`
}

func renderStats(out statsOutput, weak, strong float64) string {
	in := out.Insights
	perf := in.Performance
	style := string(in.LearningStyle)
	if style == "" {
		style = "unknown"
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render("Learner"))
	b.WriteString("\n")
	b.WriteString(components.Fields(
		components.Field{Label: "Sessions", Value: fmt.Sprintf("%d", perf.SessionCount)},
		components.Field{Label: "Questions", Value: fmt.Sprintf("%d", perf.TotalQuestions)},
		components.Field{Label: "Accuracy", Value: theme.Score(perf.AverageAccuracy, weak, strong).Render(fmt.Sprintf("%.2f", perf.AverageAccuracy))},
		components.Field{Label: "Average time", Value: fmt.Sprintf("%.0f ms", perf.AverageTime)},
		components.Field{Label: "Recent score", Value: fmt.Sprintf("%.2f (trend %+.2f)", in.RecentAverage, in.Trend)},
		components.Field{Label: "Level", Value: string(in.Level)},
		components.Field{Label: "Learning style", Value: style},
		components.Field{Label: "Hint style", Value: string(in.Preferences.HintStyle)},
	))

	if len(in.Strengths) > 0 {
		b.WriteString("\n" + components.Section("Strengths", levelBars(in.Strengths)))
	}
	if len(in.Weaknesses) > 0 {
		b.WriteString("\n" + components.Section("Weaknesses", levelBars(in.Weaknesses)))
	}
	if len(in.Recommendations) > 0 {
		recs := make([]string, len(in.Recommendations))
		for i, r := range in.Recommendations {
			recs[i] = theme.Weak.Render("• ") + theme.Body.Render(r.Reason)
		}
		b.WriteString("\n" + components.Section("Practice", strings.Join(recs, "\n")))
	}
	if len(in.NextConcepts) > 0 {
		b.WriteString("\n" + components.Section("Next concepts", theme.Body.Render(strings.Join(in.NextConcepts, ", "))))
	}

	p := out.Patterns
	if len(p.Groups) > 0 {
		rows := make([]string, len(p.Groups))
		for i, g := range p.Groups {
			rows[i] = fmt.Sprintf("%-18s %s  %d/%d  %.0f ms",
				g.Key, theme.Score(g.Accuracy, analytics.WeaknessAccuracy, analytics.StrengthAccuracy).Render(fmt.Sprintf("%.2f", g.Accuracy)),
				g.Correct, g.Attempts, g.AvgTimeMs)
		}
		b.WriteString("\n" + components.Section("Answer patterns", strings.Join(rows, "\n")))
		b.WriteString("\n" + components.Fields(
			components.Field{Label: "Average speed", Value: fmt.Sprintf("%.0f ms", p.AverageSpeedMs)},
			components.Field{Label: "Retention", Value: fmt.Sprintf("%.2f", p.Retention)},
		))
		for _, r := range p.Recommendations {
			b.WriteString("\n" + theme.Hint.Render(r))
		}
	}

	if len(out.Metrics) > 0 {
		fields := make([]components.Field, len(out.Metrics))
		for i, m := range out.Metrics {
			fields[i] = components.Field{Label: m.Name, Value: fmt.Sprintf("%g", m.Value)}
		}
		b.WriteString("\n" + components.Section("Metrics", components.Fields(fields...)))
	}
	return b.String()
}
