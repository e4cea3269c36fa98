package domain

// SentimentResult is the per-comment outcome of a sentiment batch.
// Score ranges from -1 (negative/dismissive) to 1 (positive/enthusiastic).
// Results are ephemeral; persisting them is a CLI-level side effect.
type SentimentResult struct {
	CommentID string  `json:"comment_id"`
	Username  string  `json:"username"`
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}
