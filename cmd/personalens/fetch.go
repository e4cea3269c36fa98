package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mreed/personalens/internal/logger"
	"github.com/mreed/personalens/internal/markdown"
	"github.com/mreed/personalens/internal/reddit"
)

var (
	fetchOutputDir    string
	fetchSkipExisting bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch USERFILE",
	Short: "Fetch Reddit comments for each user in USERFILE and save to markdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		usernames, err := markdown.ReadUsernamesFile(args[0])
		if err != nil {
			return err
		}

		outputDir := fetchOutputDir
		if outputDir == "" {
			outputDir = cfg.Output.Dir
		}
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		if fetchSkipExisting {
			var toProcess []string
			skipped := 0
			for _, username := range usernames {
				if _, err := os.Stat(filepath.Join(outputDir, username+".md")); err == nil {
					skipped++
					continue
				}
				toProcess = append(toProcess, username)
			}
			if skipped > 0 {
				appLog.WithField(logger.FieldCount, skipped).Info("Skipping users with existing files")
			}
			usernames = toProcess
		}

		if len(usernames) == 0 {
			fmt.Println("No users to process.")
			return nil
		}

		client := reddit.NewClient(&reddit.Config{
			ClientID:           cfg.Reddit.ClientID,
			ClientSecret:       cfg.Reddit.ClientSecret,
			UserAgent:          cfg.Reddit.UserAgent,
			MaxCommentsPerUser: cfg.Reddit.MaxCommentsPerUser,
			RateLimitSeconds:   cfg.Reddit.RateLimitSeconds,
		})

		ctx := cmd.Context()
		failed := 0
		for _, username := range usernames {
			log := appLog.WithField(logger.FieldUsername, username)

			comments, err := client.GetUserComments(ctx, username)
			if err != nil {
				log.WithError(err).Error("Failed to fetch comments")
				failed++
				continue
			}

			path := filepath.Join(outputDir, username+".md")
			if err := markdown.WriteCommentsFile(path, comments, username); err != nil {
				log.WithError(err).Error("Failed to write comments file")
				failed++
				continue
			}

			fmt.Printf("u/%s: %d comments saved\n", username, len(comments))
		}

		fmt.Printf("Done: %d users, %d failed. Results in %s\n", len(usernames), failed, outputDir)
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchOutputDir, "output-dir", "o", "", "output directory (default from config)")
	fetchCmd.Flags().BoolVar(&fetchSkipExisting, "skip-existing", true, "skip users that already have output files")
	rootCmd.AddCommand(fetchCmd)
}
