package markdown

import (
	"strings"
	"testing"
	"time"

	"github.com/mreed/personalens/internal/domain"
)

func TestRenderParseRoundTrip(t *testing.T) {
	comments := []domain.Comment{
		{
			Body:       "Great tip!",
			Score:      24,
			Subreddit:  "productivity",
			CreatedUTC: 1700000000,
			Permalink:  "https://reddit.com/r/productivity/comments/abc/x/c1/",
		},
		{
			Body:       "Multi-line body.\n\nWith a second paragraph.",
			Score:      -3,
			Subreddit:  "golang",
			CreatedUTC: 1699999999,
			Permalink:  "https://reddit.com/r/golang/comments/def/post/uvw/",
		},
		{
			Body:       "Second productivity comment",
			Score:      0,
			Subreddit:  "productivity",
			CreatedUTC: 1700050000,
			Permalink:  "https://reddit.com/r/productivity/comments/ghi/other/rst/",
		},
	}

	rendered := RenderComments(comments, "TestUser", time.Date(2023, 11, 14, 12, 0, 0, 0, time.UTC))
	parsed := ParseComments(rendered)

	if len(parsed) != len(comments) {
		t.Fatalf("expected %d comments, got %d", len(comments), len(parsed))
	}

	// Grouping puts both productivity comments first, golang last.
	wantOrder := []string{"productivity", "productivity", "golang"}
	for i, want := range wantOrder {
		if parsed[i].Subreddit != want {
			t.Errorf("comment %d: expected subreddit %q, got %q", i, want, parsed[i].Subreddit)
		}
	}

	byPermalink := make(map[string]domain.Comment)
	for _, c := range parsed {
		byPermalink[c.Permalink] = c
	}

	for _, orig := range comments {
		got, ok := byPermalink[orig.Permalink]
		if !ok {
			t.Errorf("comment with permalink %s missing after round trip", orig.Permalink)
			continue
		}
		if got.Body != orig.Body {
			t.Errorf("body mismatch: expected %q, got %q", orig.Body, got.Body)
		}
		if got.Score != orig.Score {
			t.Errorf("score mismatch: expected %d, got %d", orig.Score, got.Score)
		}
		if got.Subreddit != orig.Subreddit {
			t.Errorf("subreddit mismatch: expected %q, got %q", orig.Subreddit, got.Subreddit)
		}

		// The round trip preserves the date, not the time of day.
		origDay := time.Unix(orig.CreatedUTC, 0).Format("2006-01-02")
		gotDay := time.Unix(got.CreatedUTC, 0).Format("2006-01-02")
		if gotDay != origDay {
			t.Errorf("date mismatch: expected %s, got %s", origDay, gotDay)
		}
	}
}

func TestRenderCommentsLayout(t *testing.T) {
	comments := []domain.Comment{
		{
			Body:       "Great tip!",
			Score:      24,
			Subreddit:  "productivity",
			CreatedUTC: 1700000000,
			Permalink:  "https://reddit.com/r/productivity/comments/abc/x/c1/",
		},
	}

	rendered := RenderComments(comments, "TestUser", time.Date(2023, 11, 14, 12, 0, 0, 0, time.UTC))

	for _, want := range []string{
		"# Reddit Comments Analysis: u/TestUser",
		"**Generated:** 2023-11-14 12:00:00",
		"**Total Comments:** 1",
		"## r/productivity (1 comments)",
		"### Comment (Score: 24)",
		"[View on Reddit](https://reddit.com/r/productivity/comments/abc/x/c1/)",
		"Great tip!",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("rendered output missing %q:\n%s", want, rendered)
		}
	}
}

func TestParseCommentsNegativeScore(t *testing.T) {
	content := `# Reddit Comments Analysis: u/someone

## r/golang (1 comments)

### Comment (Score: -12)
**Date:** 2024-01-15
**Link:** [View on Reddit](https://reddit.com/r/golang/comments/abc/x/y/)

Downvoted take.

---
`
	parsed := ParseComments(content)
	if len(parsed) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(parsed))
	}
	if parsed[0].Score != -12 {
		t.Errorf("expected score -12, got %d", parsed[0].Score)
	}
}

func TestParseCommentsDropsMalformedBlocks(t *testing.T) {
	content := `# Reddit Comments Analysis: u/someone

## r/golang (2 comments)

### Comment (Score: 5)
**Date:** not-a-date
**Link:** [View on Reddit](https://reddit.com/r/golang/comments/bad/x/y/)

Broken date line.

---

### Comment (Score: 7)
**Date:** 2024-03-01
**Link:** [View on Reddit](https://reddit.com/r/golang/comments/good/x/y/)

Well formed.

---
`
	parsed := ParseComments(content)
	if len(parsed) != 1 {
		t.Fatalf("expected malformed block to be dropped, got %d comments", len(parsed))
	}
	if parsed[0].Body != "Well formed." {
		t.Errorf("expected surviving comment body %q, got %q", "Well formed.", parsed[0].Body)
	}
}

func TestParseCommentsIgnoresBlocksBeforeHeader(t *testing.T) {
	content := `# Reddit Comments Analysis: u/someone

### Comment (Score: 3)
**Date:** 2024-02-02
**Link:** [View on Reddit](https://reddit.com/r/ghost/comments/zzz/x/y/)

No subreddit header above me.

---
`
	if parsed := ParseComments(content); len(parsed) != 0 {
		t.Errorf("expected 0 comments for headerless content, got %d", len(parsed))
	}
}

func TestParseCommentsEmptyInput(t *testing.T) {
	if parsed := ParseComments(""); len(parsed) != 0 {
		t.Errorf("expected no comments from empty input, got %d", len(parsed))
	}
}
