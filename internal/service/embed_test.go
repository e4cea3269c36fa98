package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mreed/personalens/internal/domain"
)

type fakeVectorWriter struct {
	comments map[string]int
	personas map[string]int

	existingComments map[string]bool
	existingPersonas map[string]bool

	failUser string
}

func newFakeVectorWriter() *fakeVectorWriter {
	return &fakeVectorWriter{
		comments:         make(map[string]int),
		personas:         make(map[string]int),
		existingComments: make(map[string]bool),
		existingPersonas: make(map[string]bool),
	}
}

func (f *fakeVectorWriter) EnsureCollections(ctx context.Context) error { return nil }

func (f *fakeVectorWriter) StoreComment(ctx context.Context, comment domain.Comment, username string) error {
	if username == f.failUser {
		return errors.New("store failure")
	}
	f.comments[username]++
	return nil
}

func (f *fakeVectorWriter) StorePersona(ctx context.Context, persona domain.Persona, commentCount int) error {
	f.personas[persona.Username]++
	return nil
}

func (f *fakeVectorWriter) HasComments(ctx context.Context, username string) bool {
	return f.existingComments[username]
}

func (f *fakeVectorWriter) HasPersona(ctx context.Context, username string) bool {
	return f.existingPersonas[username]
}

const commentsFixture = `# Reddit Comments Analysis: u/%s

## r/golang (2 comments)

### Comment (Score: 5)
**Date:** 2024-01-15
**Link:** [View on Reddit](https://reddit.com/r/golang/comments/a/x/1/)

First comment.

---

### Comment (Score: 9)
**Date:** 2024-01-16
**Link:** [View on Reddit](https://reddit.com/r/golang/comments/a/x/2/)

Second comment.

---
`

func writeCommentsFixture(t *testing.T, dir, username string) {
	t.Helper()
	content := fmt.Sprintf(commentsFixture, username)
	if err := os.WriteFile(filepath.Join(dir, username+".md"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writePersonaFixture(t *testing.T, dir, username, suffix string) {
	t.Helper()
	content := "# User Persona: u/" + username + "\n\n**The Sage** – thoughtful.\n"
	if err := os.WriteFile(filepath.Join(dir, username+suffix), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverCommentFiles(t *testing.T) {
	dir := t.TempDir()
	writeCommentsFixture(t, dir, "alice")
	writeCommentsFixture(t, dir, "bob")
	writePersonaFixture(t, dir, "alice", "_persona.md")
	writePersonaFixture(t, dir, "bob", "_Persona.md")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	usernames, err := DiscoverCommentFiles(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(usernames) != 2 {
		t.Fatalf("expected 2 usernames, got %v", usernames)
	}
	found := map[string]bool{}
	for _, u := range usernames {
		found[u] = true
	}
	if !found["alice"] || !found["bob"] {
		t.Errorf("expected alice and bob, got %v", usernames)
	}
}

func TestFindPersonaFileBothCasings(t *testing.T) {
	dir := t.TempDir()
	writePersonaFixture(t, dir, "alice", "_persona.md")
	writePersonaFixture(t, dir, "bob", "_Persona.md")

	if path, ok := FindPersonaFile(dir, "alice"); !ok || filepath.Base(path) != "alice_persona.md" {
		t.Errorf("expected lowercase persona file, got %q ok=%v", path, ok)
	}
	if path, ok := FindPersonaFile(dir, "bob"); !ok || filepath.Base(path) != "bob_Persona.md" {
		t.Errorf("expected capitalized persona file, got %q ok=%v", path, ok)
	}
	if _, ok := FindPersonaFile(dir, "charlie"); ok {
		t.Error("expected no persona file for charlie")
	}
}

func TestEmbedDirectory(t *testing.T) {
	dir := t.TempDir()
	writeCommentsFixture(t, dir, "alice")
	writeCommentsFixture(t, dir, "bob")
	writePersonaFixture(t, dir, "alice", "_persona.md")

	store := newFakeVectorWriter()
	svc := NewEmbedService(store, nil)

	stats, err := svc.EmbedDirectory(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.UsersProcessed != 2 {
		t.Errorf("expected 2 users processed, got %d", stats.UsersProcessed)
	}
	if stats.CommentsEmbedded != 4 {
		t.Errorf("expected 4 comments embedded, got %d", stats.CommentsEmbedded)
	}
	if stats.PersonasEmbedded != 1 {
		t.Errorf("expected 1 persona embedded, got %d", stats.PersonasEmbedded)
	}
	if store.comments["alice"] != 2 || store.comments["bob"] != 2 {
		t.Errorf("unexpected comment counts: %v", store.comments)
	}
	if store.personas["alice"] != 1 {
		t.Errorf("expected alice persona stored once, got %v", store.personas)
	}
}

func TestEmbedDirectorySkipsExisting(t *testing.T) {
	dir := t.TempDir()
	writeCommentsFixture(t, dir, "alice")

	store := newFakeVectorWriter()
	store.existingComments["alice"] = true
	svc := NewEmbedService(store, nil)

	stats, err := svc.EmbedDirectory(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.UsersSkipped != 1 {
		t.Errorf("expected 1 user skipped, got %d", stats.UsersSkipped)
	}
	if stats.CommentsEmbedded != 0 {
		t.Errorf("expected no comments embedded, got %d", stats.CommentsEmbedded)
	}
}

func TestEmbedDirectoryForceReembeds(t *testing.T) {
	dir := t.TempDir()
	writeCommentsFixture(t, dir, "alice")

	store := newFakeVectorWriter()
	store.existingComments["alice"] = true
	svc := NewEmbedService(store, nil)

	stats, err := svc.EmbedDirectory(context.Background(), dir, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.UsersSkipped != 0 {
		t.Errorf("expected no skips with force, got %d", stats.UsersSkipped)
	}
	if stats.CommentsEmbedded != 2 {
		t.Errorf("expected 2 comments embedded, got %d", stats.CommentsEmbedded)
	}
}

func TestEmbedDirectoryContinuesAfterUserFailure(t *testing.T) {
	dir := t.TempDir()
	writeCommentsFixture(t, dir, "alice")
	writeCommentsFixture(t, dir, "bob")

	store := newFakeVectorWriter()
	store.failUser = "alice"
	svc := NewEmbedService(store, nil)

	stats, err := svc.EmbedDirectory(context.Background(), dir, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.UsersFailed != 1 {
		t.Errorf("expected 1 user failed, got %d", stats.UsersFailed)
	}
	if stats.UsersProcessed != 1 {
		t.Errorf("expected 1 user processed, got %d", stats.UsersProcessed)
	}
	if store.comments["bob"] != 2 {
		t.Errorf("expected bob's comments stored despite alice's failure, got %v", store.comments)
	}
}
