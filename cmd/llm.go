package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/civicprep/civicprep/internal/llm"
	"github.com/civicprep/civicprep/internal/logger"
	"github.com/civicprep/civicprep/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect interview-judge model calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent model calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		failed, _ := cmd.Flags().GetBool("failed")

		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if failed {
			kept := events[:0]
			for _, e := range events {
				if !e.Success {
					kept = append(kept, e)
				}
			}
			events = kept
		}
		if len(events) == 0 {
			fmt.Println("No model calls recorded.")
			return nil
		}

		fmt.Printf("%-5s  %-16s  %-16s  %-26s  %11s  %6s  %9s\n",
			"ID", "When", "Purpose", "Model", "Tokens", "Ms", "Cost")
		fmt.Println(rule(100))
		for _, e := range events {
			cost := "?"
			if c := llm.LookupCost(e.Model); c != nil {
				cost = formatCost(c.Cost(e.InputTokens, e.OutputTokens))
			}
			mark := ""
			if !e.Success {
				mark = "  failed"
			}
			fmt.Printf("%-5d  %-16s  %-16s  %-26s  %5d/%-5d  %6d  %9s%s\n",
				e.ID, e.Timestamp.Local().Format("Jan 02 15:04:05"),
				truncate(e.Purpose, 16), truncate(e.Model, 26),
				e.InputTokens, e.OutputTokens, e.LatencyMs, cost, mark)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and answer of one model call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q", args[0])
		}

		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("no model call with ID %d", id)
		}

		status := "ok"
		if !e.Success {
			status = "failed: " + e.ErrorMessage
		}
		fields := [][2]string{
			{"Call", strconv.Itoa(e.ID)},
			{"When", e.Timestamp.Local().Format("2006-01-02 15:04:05")},
			{"Model", e.Provider + " / " + e.Model},
			{"Purpose", e.Purpose},
			{"Tokens", fmt.Sprintf("%d in, %d out", e.InputTokens, e.OutputTokens)},
			{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
			{"Status", status},
		}
		for _, f := range fields {
			fmt.Printf("%-8s %s\n", f[0]+":", f[1])
		}
		printBlock("Prompt", e.RequestBody)
		printBlock("Answer", e.ResponseBody)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show model usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("usage by purpose: %w", err)
		}
		if len(byPurpose) == 0 {
			fmt.Println("No model calls recorded.")
			return nil
		}
		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("usage by model: %w", err)
		}

		fmt.Printf("%-18s  %6s  %10s  %10s  %8s\n", "Purpose", "Calls", "Input", "Output", "Avg ms")
		fmt.Println(rule(60))
		for _, u := range byPurpose {
			fmt.Printf("%-18s  %6d  %10d  %10d  %8d\n",
				truncate(u.Purpose, 18), u.Calls, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
		}

		fmt.Println()
		fmt.Printf("%-30s  %6s  %10s\n", "Model", "Calls", "Cost")
		fmt.Println(rule(50))
		var total float64
		var unpriced []string
		for _, u := range byModel {
			c := llm.LookupCost(u.Model)
			if c == nil {
				unpriced = append(unpriced, u.Model)
				fmt.Printf("%-30s  %6d  %10s\n", truncate(u.Model, 30), u.Calls, "?")
				continue
			}
			usd := c.Cost(u.InputTokens, u.OutputTokens)
			total += usd
			fmt.Printf("%-30s  %6d  %10s\n", truncate(u.Model, 30), u.Calls, formatCost(usd))
		}
		fmt.Println(rule(50))
		fmt.Printf("%-30s  %6s  %10s\n", "Estimated total", "", formatCost(total))
		if len(unpriced) > 0 {
			fmt.Printf("Not priced: %s\n", strings.Join(unpriced, ", "))
		}
		return nil
	},
}

// openEventStore opens the local database for reading the model call log.
func openEventStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return nil, err
	}
	return openLocal(cfg, logger.Setup(cfg.Log, "text"))
}

func printBlock(title, body string) {
	fmt.Printf("\n── %s %s\n", title, rule(56-len(title)))
	if body == "" {
		fmt.Println("(not captured)")
		return
	}
	fmt.Println(strings.TrimRight(body, "\n"))
}

func rule(n int) string {
	return strings.Repeat("─", max(n, 1))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only calls with this purpose, e.g. interview-judge")
	llmListCmd.Flags().Bool("failed", false, "Only failed calls")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
