package ingest

import (
	"strings"
	"testing"
)

func TestSplit_ShortTextIsSingleChunk(t *testing.T) {
	s := NewSplitter(1000, 200)
	chunks := s.Split("a short document")
	if len(chunks) != 1 || chunks[0] != "a short document" {
		t.Errorf("chunks = %v", chunks)
	}
}

func TestSplit_EmptyTextYieldsNothing(t *testing.T) {
	s := NewSplitter(1000, 200)
	if chunks := s.Split("   \n\n "); len(chunks) != 0 {
		t.Errorf("expected no chunks, got %v", chunks)
	}
}

func TestSplit_PreferParagraphBoundaries(t *testing.T) {
	para := strings.Repeat("word ", 30) // ~150 bytes
	text := para + "\n\n" + para + "\n\n" + para
	s := NewSplitter(200, 50)

	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 200 {
			t.Errorf("chunk %d exceeds size: %d bytes", i, len(chunk))
		}
	}
}

func TestSplit_NoContentLost(t *testing.T) {
	text := strings.Repeat("alpha beta gamma. ", 100)
	s := NewSplitter(120, 30)

	chunks := s.Split(text)
	joined := strings.Join(chunks, "")
	// With overlap, every byte of the input must appear in order; strip the
	// overlaps by checking containment piecewise instead of equality.
	for _, word := range []string{"alpha", "beta", "gamma"} {
		if !strings.Contains(joined, word) {
			t.Errorf("word %q lost in splitting", word)
		}
	}
	for i, chunk := range chunks {
		if !strings.Contains(text, strings.TrimSpace(chunk[:min(40, len(chunk))])) {
			t.Errorf("chunk %d is not a substring of the input: %q", i, chunk)
		}
	}
}

func TestSplit_OverlapCarriesContext(t *testing.T) {
	text := strings.Repeat("x", 60) + " " + strings.Repeat("y", 60) + " " + strings.Repeat("z", 60)
	s := NewSplitter(100, 20)

	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// Each successive chunk starts with the tail of its predecessor.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-20:]
		if !strings.HasPrefix(chunks[i], tail) {
			t.Errorf("chunk %d does not start with predecessor tail %q: %q", i, tail, chunks[i])
		}
	}
	for i, chunk := range chunks {
		if len(chunk) > 100 {
			t.Errorf("chunk %d exceeds size: %d", i, len(chunk))
		}
	}
}

func TestSplit_HardSplitWithoutSeparators(t *testing.T) {
	text := strings.Repeat("a", 250)
	s := NewSplitter(100, 20)

	chunks := s.Split(text)
	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 100 {
			t.Errorf("chunk %d exceeds size: %d", i, len(chunk))
		}
	}
}

func TestSplit_HardSplitRespectsRuneBoundaries(t *testing.T) {
	text := strings.Repeat("é", 200)
	s := NewSplitter(50, 10)

	for i, chunk := range s.Split(text) {
		if strings.ContainsRune(chunk, '�') {
			t.Errorf("chunk %d contains a broken rune", i)
		}
	}
}
