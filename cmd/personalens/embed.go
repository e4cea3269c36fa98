package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mreed/personalens/internal/repository"
	"github.com/mreed/personalens/internal/service"
)

var (
	embedInputDir string
	embedForce    bool
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Embed comment and persona markdown files into the vector store",
	RunE: func(cmd *cobra.Command, args []string) error {
		inputDir := embedInputDir
		if inputDir == "" {
			inputDir = cfg.Output.Dir
		}

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

		embedder := service.NewEmbedService(store, appLog)
		stats, err := embedder.EmbedDirectory(cmd.Context(), inputDir, embedForce)
		if err != nil {
			return err
		}

		fmt.Printf("Embedding complete: %d users processed, %d skipped, %d failed, %d comments, %d personas\n",
			stats.UsersProcessed, stats.UsersSkipped, stats.UsersFailed,
			stats.CommentsEmbedded, stats.PersonasEmbedded)
		return nil
	},
}

func init() {
	embedCmd.Flags().StringVarP(&embedInputDir, "input-dir", "i", "", "directory with markdown files (default from config)")
	embedCmd.Flags().BoolVar(&embedForce, "force", false, "re-embed even when existence probes find prior data")
	rootCmd.AddCommand(embedCmd)
}
