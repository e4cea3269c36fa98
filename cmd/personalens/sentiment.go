package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mreed/personalens/internal/reddit"
	"github.com/mreed/personalens/internal/service"
)

var (
	sentimentLimit     int
	sentimentThreshold float64
	sentimentOutput    string
)

var sentimentCmd = &cobra.Command{
	Use:   "sentiment THREAD_URL",
	Short: "Score a thread's top-level comments and shortlist engaged users",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := reddit.NewClient(&reddit.Config{
			ClientID:           cfg.Reddit.ClientID,
			ClientSecret:       cfg.Reddit.ClientSecret,
			UserAgent:          cfg.Reddit.UserAgent,
			MaxCommentsPerUser: cfg.Reddit.MaxCommentsPerUser,
			RateLimitSeconds:   cfg.Reddit.RateLimitSeconds,
		})

		llm := service.NewOllamaClient(&service.OllamaConfig{
			BaseURL:        cfg.Ollama.BaseURL,
			Model:          cfg.Ollama.Model,
			EmbeddingModel: cfg.Embedding.Model,
		})

		analyzer, err := service.NewSentimentAnalyzer(llm, &service.SentimentConfig{
			BatchSize:   cfg.Sentiment.BatchSize,
			Temperature: 0,
		}, appLog)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		post, comments, err := client.GetThread(ctx, args[0], sentimentLimit)
		if err != nil {
			return err
		}
		if len(comments) == 0 {
			fmt.Println("No top-level comments found.")
			return nil
		}

		fmt.Printf("Analyzing %d comments on %q...\n", len(comments), post.Title)

		results, err := analyzer.AnalyzeAll(ctx, comments, post.Title, post.Body)
		if err != nil {
			return err
		}

		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})

		for _, r := range results {
			fmt.Printf("%+.2f  u/%-20s %s\n", r.Score, r.Username, r.Rationale)
		}

		threshold := sentimentThreshold
		if !cmd.Flags().Changed("min-score") {
			threshold = cfg.Sentiment.Threshold
		}

		var shortlist []string
		for _, r := range results {
			if r.Score >= threshold && r.Username != "unknown" {
				shortlist = append(shortlist, r.Username)
			}
		}

		fmt.Printf("\n%d of %d users at or above %.2f\n", len(shortlist), len(results), threshold)

		if sentimentOutput != "" && len(shortlist) > 0 {
			content := strings.Join(shortlist, "\n") + "\n"
			if err := os.WriteFile(sentimentOutput, []byte(content), 0o644); err != nil {
				return fmt.Errorf("failed to write shortlist: %w", err)
			}
			fmt.Printf("Shortlist written to %s\n", sentimentOutput)
		}
		return nil
	},
}

func init() {
	sentimentCmd.Flags().IntVarP(&sentimentLimit, "limit", "n", 100, "maximum top-level comments to fetch")
	sentimentCmd.Flags().Float64Var(&sentimentThreshold, "min-score", 0.3, "shortlist threshold (default from config)")
	sentimentCmd.Flags().StringVarP(&sentimentOutput, "output", "o", "", "write shortlisted usernames to this file")
	rootCmd.AddCommand(sentimentCmd)
}
