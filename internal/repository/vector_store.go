package repository

import (
	"context"
	"crypto/md5"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/mreed/personalens/internal/domain"
)

const defaultVectorSize = 768

// Embedder turns text into a fixed-dimension vector. Satisfied by
// service.OllamaClient; tests substitute a fake.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorStoreConfig holds configuration for the Qdrant connection and the
// two collections.
type VectorStoreConfig struct {
	Host               string
	Port               int
	APIKey             string // enables TLS automatically when set
	UseTLS             bool   // explicitly enable TLS without an API key
	VectorSize         int
	CommentsCollection string
	PersonasCollection string
}

// apiKeyInterceptor creates a unary interceptor that adds the API key to metadata
func apiKeyInterceptor(apiKey string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", apiKey)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// VectorStore embeds entities and stores them in Qdrant, one collection for
// comments and one for personas. Point IDs are pure functions of the
// entity's natural key, so re-storing the same logical entity overwrites
// rather than duplicates.
type VectorStore struct {
	conn               *grpc.ClientConn
	points             pb.PointsClient
	collections        pb.CollectionsClient
	embedder           Embedder
	vectorSize         int
	commentsCollection string
	personasCollection string
}

// NewVectorStore connects to Qdrant. Supports both local instances
// (insecure) and Qdrant Cloud (TLS + API key).
func NewVectorStore(cfg *VectorStoreConfig, embedder Embedder) (*VectorStore, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	vectorSize := cfg.VectorSize
	if vectorSize <= 0 {
		vectorSize = defaultVectorSize
	}

	var opts []grpc.DialOption
	useTLS := cfg.UseTLS || cfg.APIKey != ""
	if useTLS {
		creds := credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS13})
		opts = append(opts, grpc.WithTransportCredentials(creds))
		if cfg.APIKey != "" {
			opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
		}
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	return &VectorStore{
		conn:               conn,
		points:             pb.NewPointsClient(conn),
		collections:        pb.NewCollectionsClient(conn),
		embedder:           embedder,
		vectorSize:         vectorSize,
		commentsCollection: cfg.CommentsCollection,
		personasCollection: cfg.PersonasCollection,
	}, nil
}

// Close closes the gRPC connection.
func (s *VectorStore) Close() error {
	return s.conn.Close()
}

// EnsureCollections lazily creates both collections with the configured
// dimensionality and cosine distance.
func (s *VectorStore) EnsureCollections(ctx context.Context) error {
	for _, name := range []string{s.commentsCollection, s.personasCollection} {
		if err := s.ensureCollection(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (s *VectorStore) ensureCollection(ctx context.Context, name string) error {
	_, err := s.collections.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: name,
	})
	if err == nil {
		return nil // collection exists
	}

	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: name,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(s.vectorSize),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}

	return nil
}

// DeriveCommentID computes the deterministic point ID for a comment from
// its permalink: the md5 digest formatted as a UUID. Identical permalinks
// always yield identical IDs, across processes and runs.
func DeriveCommentID(permalink string) string {
	return deriveID(permalink)
}

// DerivePersonaID computes the deterministic point ID for a persona from
// the username.
func DerivePersonaID(username string) string {
	return deriveID(username)
}

func deriveID(key string) string {
	sum := md5.Sum([]byte(key))
	id, _ := uuid.FromBytes(sum[:]) // md5 digest is always 16 bytes
	return id.String()
}

// StoreComment embeds the comment body and upserts it into the comments
// collection, keyed by permalink.
func (s *VectorStore) StoreComment(ctx context.Context, comment domain.Comment, username string) error {
	vector, err := s.embedder.Embed(ctx, comment.Body)
	if err != nil {
		return fmt.Errorf("failed to embed comment: %w", err)
	}

	payload := map[string]*pb.Value{
		"text":         stringValue(comment.Body),
		"username":     stringValue(username),
		"subreddit":    stringValue(comment.Subreddit),
		"score":        intValue(int64(comment.Score)),
		"permalink":    stringValue(comment.Permalink),
		"created_date": stringValue(time.Unix(comment.CreatedUTC, 0).Format("2006-01-02")),
	}

	return s.upsert(ctx, s.commentsCollection, DeriveCommentID(comment.Permalink), vector, payload)
}

// StorePersona embeds the full persona text and upserts it into the
// personas collection, keyed by username. Regeneration overwrites, it does
// not version.
func (s *VectorStore) StorePersona(ctx context.Context, persona domain.Persona, commentCount int) error {
	vector, err := s.embedder.Embed(ctx, persona.PersonaText)
	if err != nil {
		return fmt.Errorf("failed to embed persona: %w", err)
	}

	payload := map[string]*pb.Value{
		"username":       stringValue(persona.Username),
		"persona_text":   stringValue(persona.PersonaText),
		"archetype":      stringValue(persona.Archetype),
		"top_subreddits": stringListValue(persona.TopSubreddits),
		"comment_count":  intValue(int64(commentCount)),
		"embedded_at":    intValue(time.Now().Unix()),
	}

	return s.upsert(ctx, s.personasCollection, DerivePersonaID(persona.Username), vector, payload)
}

func (s *VectorStore) upsert(ctx context.Context, collection, pointID string, vector []float32, payload map[string]*pb.Value) error {
	points := []*pb.PointStruct{
		{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: pointID},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: vector},
				},
			},
			Payload: payload,
		},
	}

	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// HasComments reports whether any comment for username is already embedded.
// A filtered scan limited to one result; backend errors read as "not
// present", which only costs a redundant re-embed.
func (s *VectorStore) HasComments(ctx context.Context, username string) bool {
	limit := uint32(1)
	resp, err := s.points.Scroll(ctx, &pb.ScrollPoints{
		CollectionName: s.commentsCollection,
		Filter: &pb.Filter{
			Must: []*pb.Condition{
				{
					ConditionOneOf: &pb.Condition_Field{
						Field: &pb.FieldCondition{
							Key: "username",
							Match: &pb.Match{
								MatchValue: &pb.Match_Keyword{Keyword: username},
							},
						},
					},
				},
			},
		},
		Limit: &limit,
	})
	if err != nil {
		return false
	}
	return len(resp.GetResult()) > 0
}

// HasPersona reports whether a persona for username is already embedded,
// by direct retrieval of its deterministic point ID. Backend errors read
// as "not present".
func (s *VectorStore) HasPersona(ctx context.Context, username string) bool {
	resp, err := s.points.Get(ctx, &pb.GetPoints{
		CollectionName: s.personasCollection,
		Ids: []*pb.PointId{
			{PointIdOptions: &pb.PointId_Uuid{Uuid: DerivePersonaID(username)}},
		},
	})
	if err != nil {
		return false
	}
	return len(resp.GetResult()) > 0
}

// SearchHit is one nearest-neighbor result. Similarity is the vector
// similarity from Qdrant and is distinct from any "score" payload field
// (a comment's Reddit score); both are preserved independently.
type SearchHit struct {
	ID         string
	Similarity float32
	Payload    map[string]interface{}
}

// SearchComments runs a nearest-neighbor query over the comments collection.
func (s *VectorStore) SearchComments(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	return s.search(ctx, s.commentsCollection, query, limit)
}

// SearchPersonas runs a nearest-neighbor query over the personas collection.
func (s *VectorStore) SearchPersonas(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	return s.search(ctx, s.personasCollection, query, limit)
}

func (s *VectorStore) search(ctx context.Context, collection, query string, limit int) ([]SearchHit, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: collection,
		Vector:         vector,
		Limit:          uint64(limit),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", collection, err)
	}

	hits := make([]SearchHit, len(resp.Result))
	for i, scored := range resp.Result {
		hits[i] = SearchHit{
			ID:         scored.Id.GetUuid(),
			Similarity: scored.Score,
			Payload:    payloadToMap(scored.Payload),
		}
	}

	return hits, nil
}

func stringValue(v string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: v}}
}

func intValue(v int64) *pb.Value {
	return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: v}}
}

func stringListValue(items []string) *pb.Value {
	values := make([]*pb.Value, len(items))
	for i, item := range items {
		values[i] = stringValue(item)
	}
	return &pb.Value{
		Kind: &pb.Value_ListValue{
			ListValue: &pb.ListValue{Values: values},
		},
	}
}

func payloadToMap(payload map[string]*pb.Value) map[string]interface{} {
	if payload == nil {
		return nil
	}

	out := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		out[k] = valueToInterface(v)
	}
	return out
}

func valueToInterface(v *pb.Value) interface{} {
	switch kind := v.GetKind().(type) {
	case *pb.Value_StringValue:
		return kind.StringValue
	case *pb.Value_IntegerValue:
		return kind.IntegerValue
	case *pb.Value_DoubleValue:
		return kind.DoubleValue
	case *pb.Value_BoolValue:
		return kind.BoolValue
	case *pb.Value_ListValue:
		items := make([]interface{}, 0, len(kind.ListValue.GetValues()))
		for _, item := range kind.ListValue.GetValues() {
			items = append(items, valueToInterface(item))
		}
		return items
	default:
		return nil
	}
}
