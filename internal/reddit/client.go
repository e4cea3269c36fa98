package reddit

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mreed/personalens/internal/domain"
)

const (
	tokenURL = "https://www.reddit.com/api/v1/access_token"
	apiBase  = "https://oauth.reddit.com"

	// Reddit caps listing pages at 100 items.
	maxPageSize = 100
)

var threadIDRe = regexp.MustCompile(`/comments/([a-z0-9]+)`)

// Client talks to the Reddit API using an OAuth2 application-only token.
// All calls are throttled to a configured minimum delay; the client has no
// other backpressure.
type Client struct {
	http        *resty.Client
	clientID    string
	secret      string
	userAgent   string
	maxComments int
	minDelay    time.Duration

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
	lastRequest time.Time
}

// Config holds Reddit API credentials and fetch limits.
type Config struct {
	ClientID           string
	ClientSecret       string
	UserAgent          string
	MaxCommentsPerUser int
	RateLimitSeconds   int
}

// NewClient creates a Reddit API client.
func NewClient(cfg *Config) *Client {
	http := resty.New()
	http.SetTimeout(30 * time.Second)

	maxComments := cfg.MaxCommentsPerUser
	if maxComments <= 0 {
		maxComments = 100
	}
	minDelay := time.Duration(cfg.RateLimitSeconds) * time.Second

	return &Client{
		http:        http,
		clientID:    cfg.ClientID,
		secret:      cfg.ClientSecret,
		userAgent:   cfg.UserAgent,
		maxComments: maxComments,
		minDelay:    minDelay,
	}
}

// ParseThreadID extracts the submission ID from a Reddit thread URL.
// An unparseable URL is a contract violation, not a transient failure.
func ParseThreadID(url string) (string, error) {
	m := threadIDRe.FindStringSubmatch(url)
	if m == nil {
		return "", fmt.Errorf("unable to parse thread ID from URL: %s", url)
	}
	return m[1], nil
}

// throttle enforces the minimum delay between API calls.
func (c *Client) throttle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.minDelay > 0 && !c.lastRequest.IsZero() {
		if wait := c.minDelay - time.Since(c.lastRequest); wait > 0 {
			time.Sleep(wait)
		}
	}
	c.lastRequest = time.Now()
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	Error       string `json:"error,omitempty"`
}

// ensureToken fetches (or reuses) an application-only OAuth token.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		token := c.token
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	var resp tokenResponse
	httpResp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.clientID, c.secret).
		SetHeader("User-Agent", c.userAgent).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&resp).
		Post(tokenURL)
	if err != nil {
		return "", fmt.Errorf("failed to request Reddit token: %w", err)
	}
	if httpResp.StatusCode() != 200 || resp.AccessToken == "" {
		return "", fmt.Errorf("Reddit token request failed: HTTP %d %s", httpResp.StatusCode(), resp.Error)
	}

	c.mu.Lock()
	c.token = resp.AccessToken
	// Refresh one minute before expiry
	c.tokenExpiry = time.Now().Add(time.Duration(resp.ExpiresIn)*time.Second - time.Minute)
	c.mu.Unlock()

	return resp.AccessToken, nil
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, result interface{}) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	c.throttle()

	httpResp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("User-Agent", c.userAgent).
		SetQueryParams(query).
		SetResult(result).
		Get(apiBase + path)
	if err != nil {
		return fmt.Errorf("Reddit API request failed: %w", err)
	}
	if httpResp.StatusCode() != 200 {
		return fmt.Errorf("Reddit API returned HTTP %d for %s", httpResp.StatusCode(), path)
	}

	return nil
}

// listing mirrors Reddit's generic Listing envelope.
type listing struct {
	Data struct {
		After    string  `json:"after"`
		Children []thing `json:"children"`
	} `json:"data"`
}

type thing struct {
	Kind string    `json:"kind"`
	Data thingData `json:"data"`
}

type thingData struct {
	ID         string  `json:"id"`
	Author     string  `json:"author"`
	Body       string  `json:"body"`
	Score      int     `json:"score"`
	Subreddit  string  `json:"subreddit"`
	CreatedUTC float64 `json:"created_utc"`
	Permalink  string  `json:"permalink"`
	ParentID   string  `json:"parent_id"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
}

// GetUserComments fetches up to the configured maximum of a user's top
// comments, paging when the limit exceeds one listing page.
func (c *Client) GetUserComments(ctx context.Context, username string) ([]domain.Comment, error) {
	var comments []domain.Comment
	after := ""

	for len(comments) < c.maxComments {
		pageSize := c.maxComments - len(comments)
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}

		query := map[string]string{
			"sort":  "top",
			"limit": strconv.Itoa(pageSize),
		}
		if after != "" {
			query["after"] = after
		}

		var page listing
		if err := c.get(ctx, "/user/"+username+"/comments", query, &page); err != nil {
			return nil, fmt.Errorf("failed to fetch comments for %s: %w", username, err)
		}

		for _, child := range page.Data.Children {
			if child.Kind != "t1" {
				continue
			}
			comments = append(comments, commentFromThing(child.Data))
		}

		if page.Data.After == "" || len(page.Data.Children) == 0 {
			break
		}
		after = page.Data.After
	}

	if len(comments) > c.maxComments {
		comments = comments[:c.maxComments]
	}
	return comments, nil
}

func commentFromThing(d thingData) domain.Comment {
	parentType := domain.ParentTypeComment
	if strings.HasPrefix(d.ParentID, "t3_") {
		parentType = domain.ParentTypePost
	}

	return domain.Comment{
		Body:       d.Body,
		Score:      d.Score,
		Subreddit:  d.Subreddit,
		CreatedUTC: int64(d.CreatedUTC),
		Permalink:  "https://reddit.com" + d.Permalink,
		ParentType: parentType,
	}
}

// GetThread fetches a submission and its top-level comments. The comments
// endpoint returns two listings: the post itself, then the comment tree
// (depth-limited to top level here).
func (c *Client) GetThread(ctx context.Context, url string, limit int) (*domain.Post, []domain.ThreadComment, error) {
	threadID, err := ParseThreadID(url)
	if err != nil {
		return nil, nil, err
	}

	query := map[string]string{"depth": "1"}
	if limit > 0 {
		query["limit"] = strconv.Itoa(limit)
	}

	var listings []listing
	if err := c.get(ctx, "/comments/"+threadID, query, &listings); err != nil {
		return nil, nil, fmt.Errorf("failed to fetch thread %s: %w", threadID, err)
	}
	if len(listings) < 2 || len(listings[0].Data.Children) == 0 {
		return nil, nil, fmt.Errorf("unexpected thread response for %s", threadID)
	}

	postData := listings[0].Data.Children[0].Data
	post := &domain.Post{
		ID:    postData.ID,
		Title: postData.Title,
		Body:  postData.Selftext,
	}

	var comments []domain.ThreadComment
	for _, child := range listings[1].Data.Children {
		if child.Kind != "t1" {
			continue // skip "more" stubs
		}
		if child.Data.Author == "" || child.Data.Author == "[deleted]" {
			continue
		}
		comments = append(comments, domain.ThreadComment{
			ID:     child.Data.ID,
			Author: child.Data.Author,
			Body:   child.Data.Body,
		})
	}

	return post, comments, nil
}
