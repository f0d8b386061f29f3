package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type captureSink struct {
	chunks []Chunk
	err    error
}

func (s *captureSink) Upsert(_ context.Context, chunks []Chunk) error {
	if s.err != nil {
		return s.err
	}
	s.chunks = append(s.chunks, chunks...)
	return nil
}

func TestIngestText(t *testing.T) {
	sink := &captureSink{}
	p := NewPipeline(sink, 100, 20)

	text := strings.Repeat("sentence one. ", 30)
	n, err := p.IngestText(context.Background(), "notes.md", text)
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 || n != len(sink.chunks) {
		t.Fatalf("reported %d chunks, sink got %d", n, len(sink.chunks))
	}

	seen := map[string]bool{}
	for _, chunk := range sink.chunks {
		if chunk.Source != "notes.md" {
			t.Errorf("chunk source = %q", chunk.Source)
		}
		if chunk.ID == "" || seen[chunk.ID] {
			t.Errorf("chunk id %q missing or duplicated", chunk.ID)
		}
		seen[chunk.ID] = true
	}
}

func TestIngestText_EmptyInput(t *testing.T) {
	sink := &captureSink{}
	p := NewPipeline(sink, 100, 20)

	n, err := p.IngestText(context.Background(), "empty.txt", "  \n ")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 || len(sink.chunks) != 0 {
		t.Errorf("expected nothing stored, got %d chunks", len(sink.chunks))
	}
}

func TestIngestText_SinkErrorPropagates(t *testing.T) {
	wantErr := errors.New("collection missing")
	p := NewPipeline(&captureSink{err: wantErr}, 100, 20)

	_, err := p.IngestText(context.Background(), "doc.txt", "some content")
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v", err)
	}
}

func TestIngestFile_TextFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guide.txt")
	if err := os.WriteFile(path, []byte("how to configure the service"), 0o644); err != nil {
		t.Fatal(err)
	}

	sink := &captureSink{}
	p := NewPipeline(sink, 1000, 200)

	n, err := p.IngestFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("chunks = %d, want 1", n)
	}
	if sink.chunks[0].Source != "guide.txt" {
		t.Errorf("source = %q", sink.chunks[0].Source)
	}
}

func TestIngestFile_MissingFile(t *testing.T) {
	p := NewPipeline(&captureSink{}, 1000, 200)
	if _, err := p.IngestFile(context.Background(), "/nonexistent/file.txt"); err == nil {
		t.Error("expected error for missing file")
	}
}
