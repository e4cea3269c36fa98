package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mreed/personalens/internal/logger"
	"github.com/mreed/personalens/internal/service"
)

var (
	personasInputDir     string
	personasSkipExisting bool
)

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "Generate personas from existing comment markdown files",
	RunE: func(cmd *cobra.Command, args []string) error {
		inputDir := personasInputDir
		if inputDir == "" {
			inputDir = cfg.Output.Dir
		}

		usernames, err := service.DiscoverCommentFiles(inputDir)
		if err != nil {
			return err
		}
		if len(usernames) == 0 {
			return fmt.Errorf("no comment files found in %s", inputDir)
		}

		if personasSkipExisting {
			var toAnalyze []string
			skipped := 0
			for _, username := range usernames {
				if _, ok := service.FindPersonaFile(inputDir, username); ok {
					skipped++
					continue
				}
				toAnalyze = append(toAnalyze, username)
			}
			if skipped > 0 {
				appLog.WithField(logger.FieldCount, skipped).Info("Skipping users with existing personas")
			}
			usernames = toAnalyze
		}

		if len(usernames) == 0 {
			fmt.Println("All users already have personas.")
			return nil
		}

		llm := service.NewOllamaClient(&service.OllamaConfig{
			BaseURL:        cfg.Ollama.BaseURL,
			Model:          cfg.Ollama.Model,
			EmbeddingModel: cfg.Embedding.Model,
		})
		generator := service.NewPersonaGenerator(llm, &service.PersonaGeneratorConfig{
			Temperature: cfg.Ollama.Temperature,
			NumCtx:      cfg.Ollama.NumCtx,
		})

		ctx := cmd.Context()
		failed := 0
		for _, username := range usernames {
			log := appLog.WithField(logger.FieldUsername, username)

			commentsMarkdown, err := os.ReadFile(filepath.Join(inputDir, username+".md"))
			if err != nil {
				log.WithError(err).Error("Failed to read comments file")
				failed++
				continue
			}

			persona, err := generator.Generate(ctx, username, string(commentsMarkdown))
			if err != nil {
				log.WithError(err).Error("Failed to generate persona")
				failed++
				continue
			}

			personaPath := filepath.Join(inputDir, username+"_persona.md")
			if err := os.WriteFile(personaPath, []byte(persona), 0o644); err != nil {
				log.WithError(err).Error("Failed to write persona file")
				failed++
				continue
			}

			fmt.Printf("u/%s persona generated\n", username)
		}

		fmt.Printf("Persona generation complete: %d users, %d failed.\n", len(usernames), failed)
		return nil
	},
}

func init() {
	personasCmd.Flags().StringVarP(&personasInputDir, "input-dir", "i", "", "directory with comment markdown files (default from config)")
	personasCmd.Flags().BoolVar(&personasSkipExisting, "skip-existing", true, "skip users that already have persona files")
	rootCmd.AddCommand(personasCmd)
}
