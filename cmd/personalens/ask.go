package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mreed/personalens/internal/repository"
	"github.com/mreed/personalens/internal/service"
)

var (
	askLimit    int
	askPersonas bool
)

var askCmd = &cobra.Command{
	Use:   "ask QUESTION...",
	Short: "Answer a free-text question from the embedded corpus",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")

		llm := service.NewOllamaClient(&service.OllamaConfig{
			BaseURL:        cfg.Ollama.BaseURL,
			Model:          cfg.Ollama.Model,
			EmbeddingModel: cfg.Embedding.Model,
		})

		store, err := repository.NewVectorStore(&repository.VectorStoreConfig{
			Host:               cfg.Qdrant.Host,
			Port:               cfg.Qdrant.Port,
			APIKey:             cfg.Qdrant.APIKey,
			UseTLS:             cfg.Qdrant.UseTLS,
			VectorSize:         cfg.Qdrant.VectorSize,
			CommentsCollection: cfg.Qdrant.Collections.Comments,
			PersonasCollection: cfg.Qdrant.Collections.Personas,
		}, llm)
		if err != nil {
			return err
		}
		defer store.Close()

		asker := service.NewAskService(store, llm, cfg.Ollama.Temperature)
		answer, err := asker.Ask(cmd.Context(), question, askLimit, askPersonas)
		if err != nil {
			return err
		}

		fmt.Println(answer.Text)

		if len(answer.Hits) > 0 {
			fmt.Println("\nSources:")
			for _, hit := range answer.Hits {
				username, _ := hit.Payload["username"].(string)
				if subreddit, ok := hit.Payload["subreddit"].(string); ok {
					fmt.Printf("  - u/%s in r/%s (similarity %.3f)\n", username, subreddit, hit.Similarity)
				} else {
					fmt.Printf("  - persona of u/%s (similarity %.3f)\n", username, hit.Similarity)
				}
			}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().IntVarP(&askLimit, "limit", "n", 10, "number of comments to retrieve")
	askCmd.Flags().BoolVar(&askPersonas, "personas", false, "also retrieve matching personas")
	rootCmd.AddCommand(askCmd)
}
