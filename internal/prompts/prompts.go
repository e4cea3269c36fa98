package prompts

// ============================================================================
// Persona Generation
// ============================================================================

// PersonaPromptTemplate is the persona generation prompt. It takes three
// arguments in order: username, raw comments markdown, comma-joined
// archetype list. The section layout below is what the persona codec's
// extraction patterns expect (archetype in bold followed by a dash, top
// subreddits after the Most Active Communities label).
const PersonaPromptTemplate = `
Analyze the Reddit comments below for user u/%s and create a comprehensive user persona.

REDDIT COMMENTS DATA:
%s

Please provide a structured analysis in the following format:

## User Persona Summary
Write 2-3 sentences describing this user's overall personality and online presence.

## Demographics & Background
- **Likely Age Range:** [age range with reasoning]
- **Possible Occupation/Field:** [based on language, interests, time patterns]
- **Technical Level:** [beginner/intermediate/advanced in tech topics]

## Communication Style
- **Tone:** [formal/casual/humorous/technical/etc.]
- **Language Patterns:** [specific phrases, technical jargon, emotional expressions]
- **Engagement Style:** [how they interact - helpful, argumentative, supportive, etc.]

## Interests & Topics
List the main topics this user discusses and seems passionate about.

## Jungian Archetype
Choose the most fitting archetype from: %s
Explain why this archetype fits and what it means for engagement.

## Subreddit Activity Analysis
- **Most Active Communities:** [list top subreddits with engagement patterns]
- **Community Role:** [lurker/contributor/expert/newcomer in each community]

## Engagement Recommendations
- **Content Types:** [what kind of posts would appeal - memes, tutorials, discussions, etc.]
- **Communication Approach:** [how to talk to them - technical depth, humor style, etc.]
- **Best Subreddits to Reach Similar Users:** [where to find people like them]

Base your analysis only on the provided comments. Be specific and actionable in recommendations.
`

// ============================================================================
// Sentiment Analysis
// ============================================================================

// SentimentPromptTemplate is the batched sentiment prompt. Arguments in
// order: post title, post body preview (truncated to 500 chars or a
// placeholder), newline-joined formatted comment lines.
const SentimentPromptTemplate = `You are analyzing Reddit comments for sentiment toward the original post.

POST TITLE: %s
POST BODY: %s

COMMENTS TO ANALYZE:
%s

For each comment, determine the sentiment toward the post/idea on a scale from -1 (negative/dismissive) to 1 (positive/enthusiastic).

Return a JSON array with:
- id: the comment ID (e.g., "c1")
- score: sentiment from -1 to 1
- rationale: brief explanation (10 words max)

Respond ONLY with valid JSON array. Example:
[
  {"id": "c1", "score": 0.8, "rationale": "Enthusiastic endorsement"},
  {"id": "c2", "score": -0.4, "rationale": "Dismissive comparison"}
]`

// ============================================================================
// Retrieval-Augmented Answering
// ============================================================================

// AskPromptTemplate wraps retrieved context and a free-text question.
// Arguments in order: retrieved context block, question.
const AskPromptTemplate = `You are a research assistant answering questions about Reddit users based on their comments and personas.

CONTEXT (retrieved from the research database):
%s

QUESTION: %s

Answer using only the context above. When the context is insufficient, say so instead of guessing. Cite usernames and subreddits where relevant.`
