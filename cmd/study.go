package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/civicprep/civicprep/internal/app"
	"github.com/civicprep/civicprep/internal/practice"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review due flashcards",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, app.StartReview)
	},
}

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Start a practice session weighted toward weak questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides := map[string]any{}
		if cmd.Flags().Changed("count") {
			n, _ := cmd.Flags().GetInt("count")
			overrides["practice.count"] = n
		}
		if cmd.Flags().Changed("ratio") {
			r, _ := cmd.Flags().GetFloat64("ratio")
			overrides["practice.weak_ratio"] = r
		}
		weak, _ := cmd.Flags().GetBool("weak")
		drill, _ := cmd.Flags().GetBool("drill")
		switch {
		case weak && drill:
			return fmt.Errorf("--weak and --drill cannot be combined")
		case weak:
			overrides["practice.focus"] = string(practice.FocusWeak)
		case drill:
			overrides["practice.focus"] = string(practice.FocusDrill)
		}
		if cmd.Flags().Changed("category") {
			c, _ := cmd.Flags().GetString("category")
			overrides["practice.category"] = c
		}
		return runTUI(cmd, app.StartPractice, overrides)
	},
}

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Take a timed 20-question mock test",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, app.StartMock)
	},
}

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Practice the spoken civics interview",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, app.StartInterview)
	},
}

func init() {
	practiceCmd.Flags().IntP("count", "n", 10, "Number of questions")
	practiceCmd.Flags().Float64P("ratio", "r", 0.7, "Share of questions drawn from weak areas (0-1)")
	practiceCmd.Flags().Bool("weak", false, "Practice every question below 60% accuracy")
	practiceCmd.Flags().Bool("drill", false, "Drill only your weakest questions")
	practiceCmd.Flags().StringP("category", "c", "", `Limit to a category, e.g. "American History"`)
}
