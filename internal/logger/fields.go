package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard field names shared across commands so log lines aggregate cleanly.
const (
	// FieldUsername is the Reddit username being processed
	FieldUsername = "username"

	// FieldSubreddit is the subreddit a comment belongs to
	FieldSubreddit = "subreddit"

	// FieldCollection is the vector collection being written or queried
	FieldCollection = "collection"

	// FieldBatch is the 1-based sentiment batch index
	FieldBatch = "batch"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldComponent is the component/module name
	FieldComponent = "component"
)
