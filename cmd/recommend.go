package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizmind/internal/engine"
	"github.com/abhisek/quizmind/internal/knowledge"
	"github.com/abhisek/quizmind/internal/recommend"
	"github.com/abhisek/quizmind/internal/ui/components"
	"github.com/abhisek/quizmind/internal/ui/theme"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <catalog.json>",
	Short: "Recommend content from a catalog",
	Long: "Ranks a JSON content catalog against the stored learner model. " +
		"An optional --path file gives the topic prerequisite graph.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		limit, _ := cmd.Flags().GetInt("limit")
		topics, _ := cmd.Flags().GetStringSlice("topics")
		formats, _ := cmd.Flags().GetStringSlice("formats")
		minutes, _ := cmd.Flags().GetInt("minutes")
		premium, _ := cmd.Flags().GetBool("premium")
		age, _ := cmd.Flags().GetInt("age")
		if limit < 0 || minutes < 0 || age < 0 {
			return fmt.Errorf("--limit, --minutes and --age must not be negative")
		}

		data, err := readFile(args[0])
		if err != nil {
			return err
		}
		catalog, err := recommend.ParseCatalog(data)
		if err != nil {
			return err
		}

		var path *knowledge.Path
		if p := mustString(cmd, "path"); p != "" {
			raw, err := readFile(p)
			if err != nil {
				return err
			}
			if path, err = decodePath(raw); err != nil {
				return err
			}
		}

		s, err := openSession(cmd, engine.Options{
			Catalog:  catalog,
			Path:     path,
			Peers:    recommend.NoPeers{},
			Trending: recommend.NoTrending{},
		})
		if err != nil {
			return err
		}
		defer s.Close(ctx)

		res, err := s.engine.RecommendContent(ctx, recommend.Request{
			Subject:          mustString(cmd, "subject"),
			Limit:            limit,
			Interests:        topics,
			PreferredFormats: formats,
			Situation: recommend.Situation{
				AvailableTime: time.Duration(minutes) * time.Minute,
				Device:        strings.ToLower(mustString(cmd, "device")),
				Energy:        strings.ToLower(mustString(cmd, "energy")),
				Location:      strings.ToLower(mustString(cmd, "location")),
			},
			Premium: premium,
			Age:     age,
		})
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(cmd, res)
		}
		printReport(cmd, renderRecommendations(res))
		return nil
	},
}

func init() {
	f := recommendCmd.Flags()
	f.Int("limit", 0, "Maximum recommendations (0 = configured default)")
	f.StringSlice("topics", nil, "Topics of interest")
	f.StringSlice("formats", nil, "Preferred content formats")
	f.String("subject", "", "Restrict to content of this subject")
	f.String("device", "", "Current device (e.g. mobile, desktop)")
	f.String("energy", "", "Current energy (low, medium, high)")
	f.String("location", "", "Current location")
	f.Int("minutes", 0, "Available time in minutes (0 = unknown)")
	f.Bool("premium", false, "Learner has premium access")
	f.Int("age", 0, "Learner age (0 = unknown)")
	f.String("path", "", "JSON learning path: [{id, prerequisites}]")
}

func renderRecommendations(res recommend.Result) string {
	if len(res.Items) == 0 {
		return theme.Hint.Render("No recommendations.")
	}
	rows := make([]string, len(res.Items))
	for i, it := range res.Items {
		title := it.Content.Title
		if title == "" {
			title = it.Content.ID
		}
		strategies := make([]string, len(it.Aggregated.Strategies))
		for j, s := range it.Aggregated.Strategies {
			strategies[j] = string(s)
		}
		rows[i] = fmt.Sprintf("%s %s\n%s",
			theme.Body.Bold(true).Render(fmt.Sprintf("%d. %s", i+1, title)),
			theme.Label.Render(fmt.Sprintf("(%s, score %.2f)", it.Content.Topic, it.FinalScore)),
			theme.Hint.Render("   "+strings.Join(strategies, ", ")))
	}
	summary := components.Fields(
		components.Field{Label: "Confidence", Value: fmt.Sprintf("%.2f", res.Confidence)},
	)
	return theme.Title.Render("Recommendations") + "\n" + strings.Join(rows, "\n") + "\n\n" + summary
}
