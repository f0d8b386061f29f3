// Package ingest turns source documents into corpus chunks: extract plain
// text, split it into overlapping chunks, and hand the chunks to a sink for
// embedding and storage.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"lodestar/internal/logging"
)

// Chunk is one indexable piece of a source document.
type Chunk struct {
	ID     string // uuid
	Text   string
	Source string
}

// Sink receives chunk batches for embedding and storage.
type Sink interface {
	Upsert(ctx context.Context, chunks []Chunk) error
}

// Pipeline runs extraction and splitting in front of a sink.
type Pipeline struct {
	sink     Sink
	splitter *Splitter
	log      *slog.Logger
}

// NewPipeline builds a pipeline with the given chunking parameters.
func NewPipeline(sink Sink, chunkSize, chunkOverlap int) *Pipeline {
	return &Pipeline{
		sink:     sink,
		splitter: NewSplitter(chunkSize, chunkOverlap),
		log:      logging.New("ingest"),
	}
}

// IngestText splits raw text attributed to source and stores the chunks.
// It returns the number of chunks written.
func (p *Pipeline) IngestText(ctx context.Context, source, text string) (int, error) {
	pieces := p.splitter.Split(text)
	if len(pieces) == 0 {
		return 0, nil
	}

	chunks := make([]Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = Chunk{
			ID:     uuid.NewString(),
			Text:   piece,
			Source: source,
		}
	}
	if err := p.sink.Upsert(ctx, chunks); err != nil {
		return 0, fmt.Errorf("ingest %s: %w", source, err)
	}
	p.log.Info("ingested document", "source", source, "chunks", len(chunks))
	return len(chunks), nil
}

// IngestFile extracts a file (text or PDF) and stores its chunks. The
// source label is the file's base name.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (int, error) {
	text, err := ExtractFile(path)
	if err != nil {
		return 0, err
	}
	return p.IngestText(ctx, filepath.Base(path), text)
}
