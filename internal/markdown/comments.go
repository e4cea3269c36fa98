package markdown

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mreed/personalens/internal/domain"
)

var (
	subredditHeaderRe = regexp.MustCompile(`(?m)^## r/(\w+)`)

	// A comment block: score heading, date line, link line, blank line, body.
	// The body runs lazily until the next --- separator or end of input.
	commentBlockRe = regexp.MustCompile(
		`### Comment \(Score: (-?\d+)\)\n` +
			`\*\*Date:\*\* (\d{4}-\d{2}-\d{2})\n` +
			`\*\*Link:\*\* \[View on Reddit\]\((https://[^)]+)\)\n\n` +
			`(?s:(.*?))(?:\n---|\z)`)
)

// RenderComments serializes comments to the analysis markdown layout:
// a title naming the user, generation timestamp, total count, then one
// section per subreddit in first-seen order. Bodies are written raw,
// without escaping.
func RenderComments(comments []domain.Comment, username string, generated time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Reddit Comments Analysis: u/%s\n\n", username)
	fmt.Fprintf(&b, "**Generated:** %s\n", generated.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Total Comments:** %d\n\n", len(comments))

	// Group by subreddit, preserving first-seen order
	var order []string
	groups := make(map[string][]domain.Comment)
	for _, c := range comments {
		if _, ok := groups[c.Subreddit]; !ok {
			order = append(order, c.Subreddit)
		}
		groups[c.Subreddit] = append(groups[c.Subreddit], c)
	}

	for _, subreddit := range order {
		group := groups[subreddit]
		fmt.Fprintf(&b, "## r/%s (%d comments)\n\n", subreddit, len(group))

		for _, c := range group {
			createdDate := time.Unix(c.CreatedUTC, 0).Format("2006-01-02")
			fmt.Fprintf(&b, "### Comment (Score: %d)\n", c.Score)
			fmt.Fprintf(&b, "**Date:** %s\n", createdDate)
			fmt.Fprintf(&b, "**Link:** [View on Reddit](%s)\n\n", c.Permalink)
			fmt.Fprintf(&b, "%s\n\n", c.Body)
			b.WriteString("---\n\n")
		}
	}

	return b.String()
}

// WriteCommentsFile renders comments for username and writes them to path.
func WriteCommentsFile(path string, comments []domain.Comment, username string) error {
	content := RenderComments(comments, username, time.Now())
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write comments file: %w", err)
	}
	return nil
}

// ParseComments reconstructs comment records from the analysis markdown
// layout. Blocks that do not match the grammar are silently dropped, as are
// blocks appearing before any subreddit header. The round trip is lossy on
// time-of-day: created_utc is recomputed as local midnight of the parsed
// date.
func ParseComments(content string) []domain.Comment {
	var comments []domain.Comment

	headers := subredditHeaderRe.FindAllStringSubmatchIndex(content, -1)
	for i, header := range headers {
		subreddit := content[header[2]:header[3]]

		sectionEnd := len(content)
		if i+1 < len(headers) {
			sectionEnd = headers[i+1][0]
		}
		section := content[header[1]:sectionEnd]

		for _, m := range commentBlockRe.FindAllStringSubmatch(section, -1) {
			score, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			date, err := time.ParseInLocation("2006-01-02", m[2], time.Local)
			if err != nil {
				continue
			}

			comments = append(comments, domain.Comment{
				Body:       strings.TrimSpace(m[4]),
				Score:      score,
				Subreddit:  subreddit,
				CreatedUTC: date.Unix(),
				Permalink:  m[3],
			})
		}
	}

	return comments
}

// ParseCommentsFile reads and parses a comments markdown file.
func ParseCommentsFile(path string) ([]domain.Comment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read comments file: %w", err)
	}
	return ParseComments(string(data)), nil
}
