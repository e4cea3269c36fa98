package markdown

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseUsernames reads usernames one per line. A line containing the "→"
// delimiter is treated as "<index>→<username>" and only the part after the
// delimiter is kept. Blank lines are skipped.
func ParseUsernames(r io.Reader) ([]string, error) {
	var usernames []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if idx := strings.Index(line, "→"); idx != -1 {
			username := strings.TrimSpace(line[idx+len("→"):])
			if username != "" {
				usernames = append(usernames, username)
			}
			continue
		}

		usernames = append(usernames, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read username list: %w", err)
	}

	return usernames, nil
}

// ReadUsernamesFile parses a username list file.
func ReadUsernamesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open username list: %w", err)
	}
	defer f.Close()
	return ParseUsernames(f)
}
