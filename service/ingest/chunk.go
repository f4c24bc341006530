package ingest

import (
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

const (
	chunkSize    = 1000
	chunkOverlap = 200
)

// Chunk is one indexable piece of an uploaded document. Dieu/Khoan are set
// when the chunk opens with a recognizable legal heading.
type Chunk struct {
	Text  string
	Dieu  string
	Khoan string
}

var (
	// 匹配 "Điều 1."、"Điều 53a" 等条文标题
	dieuPattern   = regexp.MustCompile(`(?i)Điều\s+(\d+[a-z]?)\.?`)
	khoanPattern  = regexp.MustCompile(`(?i)Khoản\s+(\d+)`)
	dieuSplitExpr = regexp.MustCompile(`(?i)(Điều\s+\d+[a-z]?\.?)`)
)

// ChunkText splits text into chunks, preferring Vietnamese legal structure
// (one chunk per Điều) and falling back to a recursive character splitter
// with overlap when the text carries no article headings.
func ChunkText(text string) ([]Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	if chunks := chunkLegalText(text); len(chunks) > 0 {
		return chunks, nil
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
		textsplitter.WithSeparators([]string{"\n\n", "\n", ". ", " ", ""}),
	)

	parts, err := splitter.SplitText(text)
	if err != nil {
		return nil, err
	}

	chunks := make([]Chunk, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		chunks = append(chunks, Chunk{Text: part})
	}
	return chunks, nil
}

// chunkLegalText splits by Điều headings, one chunk per article. Returns nil
// when the text has no recognizable structure.
func chunkLegalText(text string) []Chunk {
	parts := dieuSplitExpr.Split(text, -1)
	headings := dieuSplitExpr.FindAllString(text, -1)

	// parts[0] is the preamble before the first heading; fewer than one
	// heading means no legal structure.
	if len(headings) == 0 {
		return nil
	}

	var chunks []Chunk
	for i, heading := range headings {
		body := ""
		if i+1 < len(parts) {
			body = strings.TrimSpace(parts[i+1])
		}
		if body == "" {
			continue
		}

		content := strings.TrimSpace(heading) + "\n" + body

		chunk := Chunk{Text: content}
		if m := dieuPattern.FindStringSubmatch(heading); m != nil {
			chunk.Dieu = strings.ToLower(m[1])
		}
		if m := khoanPattern.FindStringSubmatch(body); m != nil {
			chunk.Khoan = m[1]
		}

		chunks = append(chunks, chunk)
	}

	return chunks
}
