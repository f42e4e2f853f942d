package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/irwinb/tradecouncil/internal/config"
	"github.com/irwinb/tradecouncil/internal/storage/sqlite"
	"github.com/irwinb/tradecouncil/internal/trading"
)

const version = "0.2.0"

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "tradecouncil",
		Short: "tradecouncil - multi-agent trading decision engine",
		Long: `tradecouncil coordinates a council of analysis agents - parallel analysts,
a bull/bear research debate, and a three-way risk debate - into a single
structured trading decision for a subject as of a given date.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cfg)
		},
	}

	rootCmd.AddCommand(newAnalyzeCmd(cfg))
	rootCmd.AddCommand(newHistoryCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [SUBJECT]",
		Short: "Run the analysis pipeline for a subject",
		Long: `Run the full pipeline for a ticker symbol as of a date.
Example: tradecouncil analyze AAPL --date=2024-03-15`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject := args[0]
			date, _ := cmd.Flags().GetString("date")
			segment, _ := cmd.Flags().GetString("segment")
			if analysts, _ := cmd.Flags().GetStringSlice("analysts"); len(analysts) > 0 {
				cfg.SelectedAnalysts = analysts
			}
			if rounds, _ := cmd.Flags().GetInt("debate-rounds"); cmd.Flags().Changed("debate-rounds") {
				cfg.MaxDebateRounds = rounds
			}
			if rounds, _ := cmd.Flags().GetInt("risk-rounds"); cmd.Flags().Changed("risk-rounds") {
				cfg.MaxRiskRounds = rounds
			}
			if deadline, _ := cmd.Flags().GetDuration("deadline"); deadline > 0 {
				cfg.RunDeadline = deadline
			}

			return runAnalysis(cfg, subject, date, segment)
		},
	}

	cmd.Flags().String("date", time.Now().Format("2006-01-02"), "Analysis date in YYYY-MM-DD format")
	cmd.Flags().String("segment", "", "Market segment of the subject (affects analyst availability)")
	cmd.Flags().StringSlice("analysts", nil, "Analysts to run (market,fundamentals,news,sentiment)")
	cmd.Flags().Int("debate-rounds", 0, "Research debate round limit")
	cmd.Flags().Int("risk-rounds", 0, "Risk debate round limit")
	cmd.Flags().Duration("deadline", 0, "Run deadline (e.g. 5m)")

	return cmd
}

func newHistoryCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			store, err := sqlite.Open(cfg.HistoryDBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(context.Background(), limit)
			if err != nil {
				return err
			}
			renderHistory(runs)
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum number of runs to show")
	return cmd
}

func newConfigCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tradecouncil %s\n", version)
		},
	}
}

// runInteractive walks the user through subject, date, analysts, and round
// limits, then runs the analysis.
func runInteractive(cfg *config.Config) error {
	subject, err := PromptForSubject()
	if err != nil {
		return err
	}
	date, err := PromptForDate()
	if err != nil {
		return err
	}
	analysts, err := PromptForAnalysts(cfg.SelectedAnalysts)
	if err != nil {
		return err
	}
	cfg.SelectedAnalysts = analysts

	debateRounds, riskRounds, err := PromptForRounds(cfg.MaxDebateRounds, cfg.MaxRiskRounds)
	if err != nil {
		return err
	}
	cfg.MaxDebateRounds = debateRounds
	cfg.MaxRiskRounds = riskRounds

	return runAnalysis(cfg, subject, date, "")
}

func runAnalysis(cfg *config.Config, subject, date, segment string) error {
	fmt.Println(renderBanner(subject, date))

	session := trading.NewSession(cfg)
	result, err := session.Execute(context.Background(), subject, date, segment)
	if result != nil {
		fmt.Println(renderResult(result))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errorStyle.Render("run failed: "+err.Error()))
		return err
	}
	return nil
}
