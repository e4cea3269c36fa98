package domain

// Archetypes are the twelve Jungian archetype labels the persona prompt
// asks the model to choose from. The parsed Archetype field is best-effort:
// it is empty when the model output does not match the expected template.
var Archetypes = []string{
	"The Innocent", "The Everyman", "The Hero", "The Caregiver",
	"The Explorer", "The Rebel", "The Lover", "The Creator",
	"The Jester", "The Sage", "The Magician", "The Ruler",
}

// Persona is a narrative user profile generated by the LLM from a user's
// comment history. PersonaText is the source of truth; Username, Archetype
// and TopSubreddits are projections extracted from it and may be empty.
type Persona struct {
	Username      string   `json:"username"`
	Archetype     string   `json:"archetype"`
	TopSubreddits []string `json:"top_subreddits"`
	PersonaText   string   `json:"persona_text"`
}
