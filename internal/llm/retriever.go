package llm

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

const (
	DefaultChunkSize    = 10000
	DefaultChunkOverlap = 200
)

// Chunk is a slice of one source document
type Chunk struct {
	Source string
	Text   string
	terms  map[string]struct{}
}

// Retriever keeps policy documents in memory as overlapping chunks and
// ranks them against a question by shared terms.
type Retriever struct {
	chunks []Chunk
	logger *zap.Logger
}

// NewRetriever builds a Retriever over already loaded chunks
func NewRetriever(chunks []Chunk, logger *zap.Logger) *Retriever {
	for i := range chunks {
		chunks[i].terms = termSet(chunks[i].Text)
	}
	return &Retriever{chunks: chunks, logger: logger}
}

// LoadDir reads every .txt, .md and .pdf file under dir and splits it into chunks.
// chunkSize and overlap are measured in runes.
func LoadDir(dir string, chunkSize, overlap int, logger *zap.Logger) (*Retriever, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
	}

	var chunks []Chunk
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		var text string
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".md":
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read document %s: %w", path, err)
			}
			text = string(data)
		case ".pdf":
			text, err = readPDF(path)
			if err != nil {
				// one unreadable PDF should not hide the rest of the documents
				logger.Warn("Skipping unreadable PDF", zap.String("path", path), zap.Error(err))
				return nil
			}
		default:
			return nil
		}

		for _, piece := range Split(text, chunkSize, overlap) {
			chunks = append(chunks, Chunk{Source: path, Text: piece})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load documents from %s: %w", dir, err)
	}

	logger.Info("Documents loaded",
		zap.String("dir", dir),
		zap.Int("chunks", len(chunks)))

	return NewRetriever(chunks, logger), nil
}

// readPDF extracts the plain text of every page of a PDF
func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	return buf.String(), nil
}

// Split cuts text into pieces of at most size runes, each starting overlap
// runes before the end of the previous one. Blank text yields no pieces.
func Split(text string, size, overlap int) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	if size <= 0 {
		return []string{string(runes)}
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	step := size - overlap
	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end >= len(runes) {
			out = append(out, string(runes[start:]))
			break
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

// Len returns the number of chunks held
func (r *Retriever) Len() int {
	return len(r.chunks)
}

// Search returns up to k chunks sharing at least one term with question,
// best first. Ties keep document order.
func (r *Retriever) Search(question string, k int) []Chunk {
	query := termSet(question)
	if len(query) == 0 || k <= 0 {
		return nil
	}

	type scored struct {
		idx   int
		score int
	}
	var hits []scored
	for i, c := range r.chunks {
		score := 0
		for term := range query {
			if _, ok := c.terms[term]; ok {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, scored{idx: i, score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})
	if len(hits) > k {
		hits = hits[:k]
	}

	out := make([]Chunk, 0, len(hits))
	for _, h := range hits {
		out = append(out, r.chunks[h.idx])
	}

	r.logger.Debug("Chunks retrieved",
		zap.Int("candidates", len(r.chunks)),
		zap.Int("returned", len(out)))

	return out
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "do": {}, "does": {}, "for": {}, "how": {},
	"i": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {}, "or": {}, "the": {},
	"to": {}, "what": {}, "when": {}, "which": {}, "who": {}, "can": {}, "my": {}, "we": {},
}

func termSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if _, stop := stopWords[word]; stop || len(word) < 2 {
			continue
		}
		set[word] = struct{}{}
	}
	return set
}
