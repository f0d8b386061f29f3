package ingest

import "strings"

// Splitter cuts text into overlapping chunks, preferring to break at
// paragraph boundaries, then lines, then sentences, then words, before
// falling back to a hard character split.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
}

var separators = []string{"\n\n", "\n", ". ", " ", ""}

// NewSplitter returns a splitter with the given chunk size and overlap.
// Non-positive values select 1000/200.
func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = 200
		if overlap >= size {
			overlap = size / 5
		}
	}
	return &Splitter{ChunkSize: size, ChunkOverlap: overlap}
}

// Split returns the chunks of text in order. Whitespace-only chunks are
// dropped.
func (s *Splitter) Split(text string) []string {
	raw := s.split(text, separators)
	out := make([]string, 0, len(raw))
	for _, chunk := range raw {
		if strings.TrimSpace(chunk) != "" {
			out = append(out, chunk)
		}
	}
	return out
}

func (s *Splitter) split(text string, seps []string) []string {
	if len(text) <= s.ChunkSize {
		return []string{text}
	}

	// First separator actually present wins; the empty separator always
	// matches and forces a hard split.
	sep := ""
	var rest []string
	for i, cand := range seps {
		if cand == "" || strings.Contains(text, cand) {
			sep = cand
			rest = seps[i+1:]
			break
		}
	}
	if sep == "" {
		return s.hardSplit(text)
	}

	pieces := splitKeep(text, sep)

	var chunks []string
	var buf strings.Builder
	for _, piece := range pieces {
		if len(piece) > s.ChunkSize {
			if buf.Len() > 0 {
				chunks = append(chunks, buf.String())
				buf.Reset()
			}
			chunks = append(chunks, s.split(piece, rest)...)
			continue
		}
		if buf.Len()+len(piece) > s.ChunkSize && buf.Len() > 0 {
			chunk := buf.String()
			chunks = append(chunks, chunk)
			buf.Reset()
			tail := overlapTail(chunk, s.ChunkOverlap)
			if len(tail)+len(piece) <= s.ChunkSize {
				buf.WriteString(tail)
			}
		}
		buf.WriteString(piece)
	}
	if buf.Len() > 0 {
		chunks = append(chunks, buf.String())
	}
	return chunks
}

// hardSplit cuts at rune boundaries when no separator fits within the
// chunk size.
func (s *Splitter) hardSplit(text string) []string {
	runes := []rune(text)
	step := s.ChunkSize - s.ChunkOverlap
	if step <= 0 {
		step = s.ChunkSize
	}
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + s.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// splitKeep splits text by sep, keeping the separator attached to the
// preceding piece so no characters are lost.
func splitKeep(text, sep string) []string {
	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, part := range parts {
		if i < len(parts)-1 {
			part += sep
		}
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// overlapTail returns the last n bytes of chunk, adjusted to a rune
// boundary.
func overlapTail(chunk string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(chunk) <= n {
		return chunk
	}
	tail := chunk[len(chunk)-n:]
	// Trim a partial leading rune.
	for len(tail) > 0 && (tail[0]&0xC0) == 0x80 {
		tail = tail[1:]
	}
	return tail
}
