package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mreed/personalens/internal/domain"
	"github.com/mreed/personalens/internal/logger"
	"github.com/mreed/personalens/internal/markdown"
)

// VectorWriter is the write surface the embed flow needs from the vector
// store.
type VectorWriter interface {
	EnsureCollections(ctx context.Context) error
	StoreComment(ctx context.Context, comment domain.Comment, username string) error
	StorePersona(ctx context.Context, persona domain.Persona, commentCount int) error
	HasComments(ctx context.Context, username string) bool
	HasPersona(ctx context.Context, username string) bool
}

// EmbedService reads comment and persona markdown files from disk and
// embeds them into the vector store. The markdown files are the source of
// truth; the store can always be rebuilt from them.
type EmbedService struct {
	store  VectorWriter
	logger *logger.Logger
}

// NewEmbedService creates an embed service.
func NewEmbedService(store VectorWriter, log *logger.Logger) *EmbedService {
	if log == nil {
		log = logger.Default()
	}
	return &EmbedService{store: store, logger: log}
}

// EmbedStats holds counters for one embedding run.
type EmbedStats struct {
	UsersProcessed   int
	UsersSkipped     int
	UsersFailed      int
	CommentsEmbedded int
	PersonasEmbedded int
}

// EmbedDirectory embeds every user whose comments file is found in dir.
// Per-user failures are logged with the username and the loop continues;
// existence probes decide skips unless force is set.
func (s *EmbedService) EmbedDirectory(ctx context.Context, dir string, force bool) (*EmbedStats, error) {
	if err := s.store.EnsureCollections(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure collections: %w", err)
	}

	usernames, err := DiscoverCommentFiles(dir)
	if err != nil {
		return nil, err
	}

	stats := &EmbedStats{}
	for _, username := range usernames {
		if err := s.embedUser(ctx, dir, username, force, stats); err != nil {
			stats.UsersFailed++
			s.logger.WithField(logger.FieldUsername, username).WithError(err).Error("Failed to embed user")
			continue
		}
		stats.UsersProcessed++
	}

	return stats, nil
}

func (s *EmbedService) embedUser(ctx context.Context, dir, username string, force bool, stats *EmbedStats) error {
	log := s.logger.WithField(logger.FieldUsername, username)

	if !force && s.store.HasComments(ctx, username) {
		log.Info("Comments already embedded, skipping")
		stats.UsersSkipped++
		return nil
	}

	comments, err := markdown.ParseCommentsFile(filepath.Join(dir, username+".md"))
	if err != nil {
		return err
	}

	for _, comment := range comments {
		if err := s.store.StoreComment(ctx, comment, username); err != nil {
			return fmt.Errorf("failed to store comment: %w", err)
		}
		stats.CommentsEmbedded++
	}
	log.WithField(logger.FieldCount, len(comments)).Info("Embedded comments")

	personaPath, ok := FindPersonaFile(dir, username)
	if !ok {
		return nil
	}
	if !force && s.store.HasPersona(ctx, username) {
		log.Info("Persona already embedded, skipping")
		return nil
	}

	persona, err := markdown.ParsePersonaFile(personaPath)
	if err != nil {
		return err
	}
	if persona.Username == "" {
		persona.Username = username
	}

	if err := s.store.StorePersona(ctx, persona, len(comments)); err != nil {
		return fmt.Errorf("failed to store persona: %w", err)
	}
	stats.PersonasEmbedded++
	log.Info("Embedded persona")

	return nil
}

// DiscoverCommentFiles lists usernames that have a comments markdown file
// in dir, excluding persona and test files.
func DiscoverCommentFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var usernames []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		lower := strings.ToLower(name)
		if strings.HasSuffix(lower, "_persona.md") || strings.HasSuffix(lower, "_test.md") {
			continue
		}
		usernames = append(usernames, strings.TrimSuffix(name, ".md"))
	}

	return usernames, nil
}

// FindPersonaFile locates a user's persona file. Two casing conventions
// exist historically (_persona.md from the personas command, _Persona.md
// from older runs); both are accepted on read, writer casing is preserved.
func FindPersonaFile(dir, username string) (string, bool) {
	for _, suffix := range []string{"_persona.md", "_Persona.md"} {
		path := filepath.Join(dir, username+suffix)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}
