package markdown

import (
	"fmt"
	"os"
	"regexp"

	"github.com/mreed/personalens/internal/domain"
)

var (
	personaUsernameRe = regexp.MustCompile(`# User Persona: u/(\w+)`)

	// First bolded phrase followed by an en-dash or hyphen and a space,
	// e.g. "**The Sage** – seeks truth...". Heuristic: the persona prompt
	// asks for the archetype in exactly this shape, but the model may
	// deviate, in which case the field stays empty.
	personaArchetypeRe = regexp.MustCompile(`\*\*([^*]+)\*\* [–-] `)

	personaCommunitiesRe = regexp.MustCompile(`\*\*Most Active Communities:\*\*\s*([^\n]+)`)

	subredditTokenRe = regexp.MustCompile(`r/(\w+)`)
)

// ParsePersona extracts the structured summary from a persona document.
// Every field is best-effort: anything not found defaults to empty rather
// than erroring, and the full text is always retained as the source of
// truth.
func ParsePersona(content string) domain.Persona {
	p := domain.Persona{PersonaText: content}

	if m := personaUsernameRe.FindStringSubmatch(content); m != nil {
		p.Username = m[1]
	}

	if m := personaArchetypeRe.FindStringSubmatch(content); m != nil {
		p.Archetype = m[1]
	}

	if m := personaCommunitiesRe.FindStringSubmatch(content); m != nil {
		for _, token := range subredditTokenRe.FindAllStringSubmatch(m[1], -1) {
			p.TopSubreddits = append(p.TopSubreddits, token[1])
		}
	}

	return p
}

// ParsePersonaFile reads and parses a persona markdown file.
func ParsePersonaFile(path string) (domain.Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Persona{}, fmt.Errorf("failed to read persona file: %w", err)
	}
	return ParsePersona(string(data)), nil
}
