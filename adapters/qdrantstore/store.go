// Package qdrantstore backs the corpus with a Qdrant collection over gRPC.
// It serves both sides of the corpus: retrieval for the workflows and
// upserts for the ingestion pipeline.
package qdrantstore

import (
	"context"
	"fmt"
	"log/slog"

	qdrantclient "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"lodestar/internal/ingest"
	"lodestar/internal/logging"
	"lodestar/internal/rag"
)

// Payload fields stored with every point.
const (
	payloadText   = "text"
	payloadSource = "source"
)

// Embedder turns text into the vector space of the collection. The same
// embedder must be used for indexing and for queries.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store is a Qdrant-backed corpus. It implements the retrieval capability
// and exposes upsert operations for ingestion.
type Store struct {
	conn        *grpc.ClientConn
	points      qdrantclient.PointsClient
	collections qdrantclient.CollectionsClient
	embedder    Embedder
	collection  string
	log         *slog.Logger
}

// Connect dials the Qdrant gRPC endpoint and returns a Store bound to one
// collection.
func Connect(host string, port int, useTLS bool, collection string, embedder Embedder) (*Store, error) {
	creds := insecure.NewCredentials()
	if useTLS {
		creds = credentials.NewClientTLSFromCert(nil, "")
	}
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("qdrant dial %s: %w", addr, err)
	}
	return &Store{
		conn:        conn,
		points:      qdrantclient.NewPointsClient(conn),
		collections: qdrantclient.NewCollectionsClient(conn),
		embedder:    embedder,
		collection:  collection,
		log:         logging.New("qdrant"),
	}, nil
}

// Close releases the gRPC connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// EnsureCollection creates the collection with cosine distance if it does
// not exist yet. vectorSize must match the embedder's output dimension.
func (s *Store) EnsureCollection(ctx context.Context, vectorSize int) error {
	list, err := s.collections.List(ctx, &qdrantclient.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("qdrant list collections: %w", err)
	}
	for _, col := range list.GetCollections() {
		if col.GetName() == s.collection {
			return nil
		}
	}

	s.log.Info("creating collection", "name", s.collection, "vector_size", vectorSize)
	_, err = s.collections.Create(ctx, &qdrantclient.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &qdrantclient.VectorsConfig{
			Config: &qdrantclient.VectorsConfig_Params{
				Params: &qdrantclient.VectorParams{
					Size:     uint64(vectorSize),
					Distance: qdrantclient.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant create collection: %w", err)
	}
	return nil
}

// InitCollection probes the embedder for its output dimension and ensures
// the collection exists with it.
func (s *Store) InitCollection(ctx context.Context) error {
	vec, err := s.embedder.Embed(ctx, "dimension probe")
	if err != nil {
		return fmt.Errorf("probe embedding dimension: %w", err)
	}
	return s.EnsureCollection(ctx, len(vec))
}

// Upsert embeds and writes the chunks in one batch. It implements
// ingest.Sink.
func (s *Store) Upsert(ctx context.Context, chunks []ingest.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrantclient.PointStruct, 0, len(chunks))
	for _, chunk := range chunks {
		vector, err := s.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return fmt.Errorf("embed chunk %s: %w", chunk.ID, err)
		}
		points = append(points, &qdrantclient.PointStruct{
			Id: &qdrantclient.PointId{
				PointIdOptions: &qdrantclient.PointId_Uuid{Uuid: chunk.ID},
			},
			Vectors: &qdrantclient.Vectors{
				VectorsOptions: &qdrantclient.Vectors_Vector{
					Vector: &qdrantclient.Vector{Data: vector},
				},
			},
			Payload: map[string]*qdrantclient.Value{
				payloadText:   {Kind: &qdrantclient.Value_StringValue{StringValue: chunk.Text}},
				payloadSource: {Kind: &qdrantclient.Value_StringValue{StringValue: chunk.Source}},
			},
		})
	}

	_, err := s.points.Upsert(ctx, &qdrantclient.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}
	s.log.Debug("upserted points", "count", len(points))
	return nil
}

// Retrieve embeds the query and returns the best-matching chunks as
// documents, strongest match first. nResults bounds the similarity search;
// rerankTopK truncates the ranked list to its head.
func (s *Store) Retrieve(ctx context.Context, query string, nResults, rerankTopK int) ([]rag.Document, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	resp, err := s.points.Search(ctx, &qdrantclient.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(nResults),
		WithPayload: &qdrantclient.WithPayloadSelector{
			SelectorOptions: &qdrantclient.WithPayloadSelector_Include{
				Include: &qdrantclient.PayloadIncludeSelector{
					Fields: []string{payloadText, payloadSource},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	results := resp.GetResult()
	if rerankTopK > 0 && rerankTopK < len(results) {
		results = results[:rerankTopK]
	}

	docs := make([]rag.Document, 0, len(results))
	for _, point := range results {
		doc := rag.Document{Metadata: map[string]string{}}
		if v, ok := point.Payload[payloadText]; ok {
			doc.Content = v.GetStringValue()
		}
		if v, ok := point.Payload[payloadSource]; ok {
			doc.Metadata[payloadSource] = v.GetStringValue()
		}
		docs = append(docs, doc)
	}
	s.log.Debug("retrieved documents", "count", len(docs), "limit", nResults, "top_k", rerankTopK)
	return docs, nil
}
