package domain

// ParentType classifies what a comment replies to.
// Values are ParentTypePost (top-level reply to a submission) and
// ParentTypeComment (reply to another comment).
type ParentType string

const (
	ParentTypePost    ParentType = "post"
	ParentTypeComment ParentType = "comment"
)

// Comment represents a single Reddit comment fetched from a user's history.
// Immutable once fetched; grouping by subreddit is a rendering concern of
// the markdown codec, not part of the record.
type Comment struct {
	Body       string     `json:"body"`
	Score      int        `json:"score"`
	Subreddit  string     `json:"subreddit"`
	CreatedUTC int64      `json:"created_utc"`
	Permalink  string     `json:"permalink"`
	ParentType ParentType `json:"parent_type"`
}

// ThreadComment is a top-level comment from a submission thread,
// used as sentiment-analysis input.
type ThreadComment struct {
	ID     string `json:"id"`
	Author string `json:"author"`
	Body   string `json:"body"`
}

// Post carries the submission context a thread's comments respond to.
type Post struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}
