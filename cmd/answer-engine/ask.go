// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/answer-engine/internal/engine"
	"github.com/pdiddy/answer-engine/internal/llm"
	"github.com/pdiddy/answer-engine/pkg/types"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a research question from the corpus",
	Long: `Ask answers a research question using the indexed corpus. The question
is classified, relevant documents are retrieved and scored, and an LLM
synthesizes an answer grounded in the best matches, with citations and
a confidence estimate.`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("corpus-dir", "corpus", "base directory for the corpus (contains index/)")
	askCmd.Flags().String("topic", "", "restrict retrieval to a topic")
	askCmd.Flags().Int("limit", 0, "maximum documents to consider (0 = default)")
	askCmd.Flags().String("model", "", "generation model (overrides config)")
	askCmd.Flags().Bool("json", false, "output the full result as JSON")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a question to answer")
	}
	question := strings.Join(args, " ")

	corpusDir, _ := cmd.Flags().GetString("corpus-dir")
	topic, _ := cmd.Flags().GetString("topic")
	limit, _ := cmd.Flags().GetInt("limit")
	model, _ := cmd.Flags().GetString("model")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg := engineConfig()
	if model != "" {
		cfg.Generation.Model = model
	}

	store, err := openCorpus(corpusDir)
	if err != nil {
		return err
	}
	defer store.Close()

	client := llm.New(cfg.Generation)

	eng, err := engine.New(store, client, client, cfg, os.Stderr)
	if err != nil {
		return err
	}

	result, err := eng.AnswerQuestion(cmd.Context(), question, topic, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(result)
	return nil
}

func printResult(result types.AnswerResult) {
	fmt.Println(result.Answer)
	fmt.Println()
	fmt.Printf("Confidence: %.2f  Type: %s  Status: %s  Time: %s\n",
		result.Confidence, result.QuestionType, result.Status, result.Elapsed.Round(time.Millisecond))
	if result.LowRelevance {
		fmt.Println("Note: no strongly relevant documents were found; the answer rests on weak matches.")
	}

	if len(result.Sources) > 0 {
		fmt.Println("\nSources:")
		for i, src := range result.Sources {
			fmt.Printf("  %d. %s", i+1, src.Title)
			if len(src.Authors) > 0 {
				fmt.Printf(" (%s)", strings.Join(src.Authors, ", "))
			}
			fmt.Printf(" [relevance %.2f]\n", src.Relevance)
		}
	}

	if len(result.FollowUps) > 0 {
		fmt.Println("\nFollow-up questions:")
		for _, f := range result.FollowUps {
			fmt.Printf("  - %s\n", f)
		}
	}
}
