// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/answer-engine/internal/assemble"
	"github.com/pdiddy/answer-engine/internal/classify"
	"github.com/pdiddy/answer-engine/internal/corpus"
	"github.com/pdiddy/answer-engine/pkg/types"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the document corpus (store, search, stats)",
	Long: `Corpus manages the local SQLite document index the engine answers
from. Use subcommands to ingest document metadata, search the index, or
inspect its size.`,
}

// --- store subcommand ---

var corpusStoreCmd = &cobra.Command{
	Use:   "store [documents-dir]",
	Short: "Ingest document metadata into the corpus index",
	Long: `Store reads document metadata YAML files from a directory and ingests
them into a SQLite database with FTS5 indexing. Existing documents are
replaced; malformed files are reported and skipped.`,
	RunE: runCorpusStore,
}

func runCorpusStore(cmd *cobra.Command, args []string) error {
	docsDir := "corpus/documents"
	if len(args) > 0 {
		docsDir = args[0]
	}

	store, err := openCorpusFromFlags(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), docsDir, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d document(s) failed ingestion", summary.Failed)
	}
	fmt.Printf("Ingested %d document(s)\n", summary.Ingested)
	return nil
}

// --- search subcommand ---

var corpusSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the corpus index directly",
	Long: `Search runs the retrieval stage alone: the query is classified, its
key terms matched against the FTS5 index, and matching documents listed
by rank. Useful for checking what the engine would consider before
asking a full question.`,
	RunE: runCorpusSearch,
}

func runCorpusSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a search query")
	}

	topic, _ := cmd.Flags().GetString("topic")
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = 20
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := openCorpusFromFlags(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	q := classify.Classify(strings.Join(args, " "))
	docs, err := store.Query(context.Background(), q.KeyTerms, topic, limit)
	if err != nil {
		return err
	}

	return formatSearchOutput(docs, jsonOutput)
}

func formatSearchOutput(docs []types.Document, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}

	if len(docs) == 0 {
		fmt.Println("No documents found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-20s  %-60s  %s\n", "Rank", "ID", "Title", "Citations")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for i, d := range docs {
		title := assemble.Excerpt(d.Title, 60)
		id := assemble.Excerpt(d.ID, 20)
		fmt.Fprintf(os.Stdout, "%-4d  %-20s  %-60s  %d\n", i+1, id, title, d.Citations)
	}
	fmt.Fprintf(os.Stdout, "\n%d document(s)\n", len(docs))
	return nil
}

// --- stats subcommand ---

var corpusStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print corpus index statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCorpusFromFlags(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Count(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("%d document(s) indexed\n", n)
		return nil
	},
}

// --- shared helpers ---

func openCorpus(corpusDir string) (*corpus.Store, error) {
	if corpusDir == "" {
		corpusDir = "corpus"
	}
	return corpus.NewStore(types.CorpusConfig{CorpusDir: corpusDir})
}

func openCorpusFromFlags(cmd *cobra.Command) (*corpus.Store, error) {
	corpusDir, _ := cmd.Flags().GetString("corpus-dir")
	return openCorpus(corpusDir)
}

func init() {
	corpusCmd.PersistentFlags().String("corpus-dir", "corpus", "base directory for the corpus (contains index/)")

	corpusSearchCmd.Flags().String("topic", "", "filter by topic")
	corpusSearchCmd.Flags().Int("limit", 20, "maximum number of results")
	corpusSearchCmd.Flags().Bool("json", false, "output results as JSON")

	corpusCmd.AddCommand(corpusStoreCmd)
	corpusCmd.AddCommand(corpusSearchCmd)
	corpusCmd.AddCommand(corpusStatsCmd)

	rootCmd.AddCommand(corpusCmd)
}
