package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/civicprep/civicprep/internal/logger"
	"github.com/civicprep/civicprep/internal/question"
	"github.com/civicprep/civicprep/internal/spacedrep"
	"github.com/civicprep/civicprep/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show readiness, mastery and review statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		recent, _ := cmd.Flags().GetInt("recent")

		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}
		log := logger.Setup(cfg.Log, "text")
		ctx := cmd.Context()

		st, err := openLocal(cfg, log)
		if err != nil {
			return err
		}
		defer st.Close()

		bank, err := question.Load()
		if err != nil {
			return fmt.Errorf("load question bank: %w", err)
		}
		history, err := st.AnswerRepo().History(ctx)
		if err != nil {
			return fmt.Errorf("read answer history: %w", err)
		}
		deck := spacedrep.NewDeck(st.CardRepo(), spacedrep.NewFSRS(), log)

		report, err := stats.Build(bank, history, deck.All(ctx), time.Now())
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		printReport(report)

		if recent > 0 {
			rs, err := openRemote(ctx, cfg, log)
			if err != nil {
				log.Warn("recent tests unavailable", "error", err)
				return nil
			}
			if rs == nil {
				return nil
			}
			defer rs.Close()
			results, err := rs.RecentResults(ctx, cfg.User.ID, recent)
			if err != nil {
				log.Warn("recent tests unavailable", "error", err)
				return nil
			}
			fmt.Println()
			fmt.Println("Recent Mock Tests")
			fmt.Println(strings.Repeat("─", 60))
			for _, r := range results {
				status := "not passed"
				if r.Passed {
					status = "passed"
				}
				fmt.Printf("%-19s  %2d/%-2d  %5s  %-10s  %s\n",
					r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					r.Score, r.TotalQuestions,
					(time.Duration(r.DurationSeconds) * time.Second).String(),
					status, r.EndReason)
			}
			if len(results) == 0 {
				fmt.Println("No mock tests saved yet.")
			}
		}
		return nil
	},
}

func printReport(r *stats.Report) {
	rd := r.Readiness
	fmt.Printf("Readiness: %d%%  %s\n", rd.Score, rd.Tier.EN)
	if rd.Tier.MY != "" {
		fmt.Printf("           %s\n", rd.Tier.MY)
	}
	if rd.IsCapped {
		fmt.Printf("Capped from %d%%: no answers yet in %s\n", rd.Uncapped, strings.Join(rd.CappedCategories, ", "))
	}
	fmt.Printf("  Mastery  %3d%%\n  Coverage %3d%%\n  Review   %3d%%\n",
		rd.Dimensions.Mastery.Value, rd.Dimensions.Breadth.Value, rd.Dimensions.SRS.Value)
	fmt.Printf("\n%d answers · %d of %d questions attempted · %d cards, %d due\n",
		r.Answered, r.Attempted, r.BankSize, r.DeckSize, r.DueCount)

	fmt.Println()
	fmt.Printf("%-70s  %7s  %9s\n", "Category", "Mastery", "Questions")
	fmt.Println(strings.Repeat("─", 90))
	for _, e := range r.Mastery.Categories {
		fmt.Printf("%-70s  %6d%%  %9d\n", truncate(question.Category(e.CategoryID).Name().EN, 70), e.Mastery, e.QuestionCount)
	}
	fmt.Println(strings.Repeat("─", 90))
	fmt.Printf("%-70s  %6d%%\n", "OVERALL", r.Mastery.Overall)

	if len(r.Mastery.WeakAreas) > 0 {
		fmt.Println("\nFocus on:")
		for _, w := range r.Mastery.WeakAreas {
			fmt.Printf("  %s (%d%%)\n", question.Category(w.CategoryID).Name().EN, w.Mastery)
		}
	}
	if m := r.Mastery.Milestone; m != nil {
		fmt.Printf("\nNext milestone: %s at %d%% (%d to go)\n", m.Level, m.Target, m.Remaining)
	}
}

func init() {
	statsCmd.Flags().Bool("json", false, "Print the report as JSON")
	statsCmd.Flags().Int("recent", 0, "Also list this many recent mock tests from the remote database")
}
