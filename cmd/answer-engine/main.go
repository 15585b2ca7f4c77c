// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the answer-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/answer-engine/internal/secrets"
	"github.com/pdiddy/answer-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the answer-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "answer-engine",
	Short: "Literature-grounded question answering over a local corpus",
	Long: `answer-engine answers research questions from a local document corpus.
Questions are classified, matched against the corpus with full-text and
relevance scoring, and answered by an LLM grounded in the most relevant
documents, with citations and a confidence estimate.

Use the corpus subcommands to build and inspect the document index, and
ask to answer a question against it.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./answer-engine.yaml or ~/.config/answer-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("answer-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "answer-engine"))
		}
	}

	viper.SetEnvPrefix("ANSWER_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// engineConfig assembles the pipeline configuration from the config
// file and environment. Zero values fall through to the use-site
// defaults inside each stage.
func engineConfig() types.EngineConfig {
	return types.EngineConfig{
		Retrieval: types.RetrievalConfig{
			DefaultLimit:    viper.GetInt("default_limit"),
			MaxLimit:        viper.GetInt("max_limit"),
			OverfetchFactor: viper.GetInt("overfetch_factor"),
		},
		Scoring: types.ScoringConfig{
			Weights: types.ScoringWeights{
				Lexical:     viper.GetFloat64("scoring_weights.lexical"),
				Statistical: viper.GetFloat64("scoring_weights.statistical"),
				Semantic:    viper.GetFloat64("scoring_weights.semantic"),
			},
			MinRelevance:          viper.GetFloat64("min_relevance_score"),
			UseSemanticSimilarity: viper.GetBool("use_semantic_similarity"),
			Workers:               viper.GetInt("parallel_workers"),
		},
		Context: types.ContextConfig{
			MaxDocuments: viper.GetInt("max_documents_in_context"),
			MaxChars:     viper.GetInt("max_context_chars"),
		},
		Generation: types.GenerationConfig{
			Model:          viper.GetString("model"),
			BaseURL:        viper.GetString("base_url"),
			EmbeddingModel: viper.GetString("embedding_model"),
			APIKey:         secretDefault("OPENAI_API_KEY", viper.GetString("api_key")),
		},
		Cache: types.CacheConfig{
			TTL:      time.Duration(viper.GetInt("cache_ttl_seconds")) * time.Second,
			Capacity: viper.GetInt("cache_capacity"),
		},
		PipelineTimeout: time.Duration(viper.GetInt("pipeline_timeout_seconds")) * time.Second,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
