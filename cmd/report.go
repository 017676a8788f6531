package cmd

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizmind/internal/knowledge"
	"github.com/abhisek/quizmind/internal/ui/components"
)

const (
	reportWidth = 56
	labelWidth  = 18
)

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

// masteryBars renders one bar per topic, sorted by topic name.
func masteryBars(mastery map[string]float64) string {
	topics := make([]string, 0, len(mastery))
	for t := range mastery {
		topics = append(topics, t)
	}
	slices.Sort(topics)

	levels := make([]knowledge.TopicLevel, len(topics))
	for i, t := range topics {
		levels[i] = knowledge.TopicLevel{Topic: t, Level: mastery[t]}
	}
	return levelBars(levels)
}

func levelBars(levels []knowledge.TopicLevel) string {
	rows := make([]string, len(levels))
	for i, l := range levels {
		bar := components.NewProgressBar(l.Topic, l.Level, true, reportWidth)
		bar.LabelWidth = labelWidth
		rows[i] = bar.View()
	}
	return strings.Join(rows, "\n")
}
