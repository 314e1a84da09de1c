package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/helpdesk/internal/config"
	"github.com/ziadkadry99/helpdesk/internal/llm"
	"github.com/ziadkadry99/helpdesk/internal/prompt"
	"github.com/ziadkadry99/helpdesk/internal/retrieval"
)

var costCmd = &cobra.Command{
	Use:   "cost [question]",
	Short: "Estimate the API cost of answering a question",
	Long:  `Performs a dry run: retrieves context and composes the prompt for the question, then estimates tokens and cost per quality tier without calling the LLM.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCost,
}

func init() {
	rootCmd.AddCommand(costCmd)
}

func runCost(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openKnowledge(cfg)
	if err != nil {
		return err
	}

	entries := retrieval.New(store, cfg.Retrieval.Limit).Retrieve(question)
	if len(entries) == 0 {
		fmt.Println("No records match; the question would be refused without an LLM call ($0).")
		return nil
	}

	p := prompt.NewComposer(cfg.Institution).Compose(question, entries)
	inputTokens := llm.EstimateTokens(p)
	outputTokens := cfg.Generation.MaxTokens

	fmt.Println("Cost Estimate")
	fmt.Println("=============")
	fmt.Printf("  Matched entries:     %d\n", len(entries))
	fmt.Printf("  Prompt tokens:       ~%d\n", inputTokens)
	fmt.Printf("  Max output tokens:   %d\n", outputTokens)
	fmt.Println()

	fmt.Println("  Tier Comparison (worst case per question):")
	fmt.Println("  ────────────────────────────────────────")
	for _, tier := range []config.QualityTier{config.QualityLite, config.QualityNormal, config.QualityMax} {
		preset := config.GetPreset(cfg.Provider, tier)
		marker := " "
		if tier == cfg.Quality {
			marker = "*"
		}
		fmt.Printf("  %s %-8s  ~$%.5f  (model: %s)\n", marker, tier,
			llm.EstimateCost(preset.Model, inputTokens, outputTokens), preset.Model)
	}
	fmt.Println()
	fmt.Println("  * = current quality tier")
	fmt.Println()
	fmt.Printf("  Provider: %s\n", cfg.Provider)
	fmt.Printf("  Model:    %s\n", cfg.Model)
	fmt.Printf("  Quality:  %s\n", cfg.Quality)

	return nil
}
