package index

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/lmonteir/handyspeech/internal/domain"
)

// Index is a flat per-project vector index: every chunk's text alongside
// its embedding, searched by brute-force cosine similarity. Rebuilt
// wholesale from all current transcripts each time indexing runs.
type Index struct {
	Project   string         `json:"project"`
	Embedder  string         `json:"embedder"`
	Dimension int            `json:"dimension"`
	BuiltAt   time.Time      `json:"built_at"`
	Chunks    []domain.Chunk `json:"chunks"`
	Vectors   [][]float64    `json:"vectors"`
}

// New creates an empty index for a project.
func New(project, embedder string) *Index {
	return &Index{
		Project:  project,
		Embedder: embedder,
		BuiltAt:  time.Now(),
	}
}

// Add appends chunks with their embedding vectors. All vectors must share
// one dimension; the first batch fixes it.
func (ix *Index) Add(chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d != %d", len(chunks), len(vectors))
	}
	for _, v := range vectors {
		if ix.Dimension == 0 {
			ix.Dimension = len(v)
		}
		if len(v) != ix.Dimension {
			return fmt.Errorf("vector dimension %d, index dimension %d", len(v), ix.Dimension)
		}
	}
	ix.Chunks = append(ix.Chunks, chunks...)
	ix.Vectors = append(ix.Vectors, vectors...)
	return nil
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	return len(ix.Chunks)
}

// Search returns the topK chunks most similar to the query vector by
// cosine similarity, best first.
func (ix *Index) Search(vector []float64, topK int) []domain.ScoredChunk {
	if topK <= 0 {
		topK = 4
	}

	results := make([]domain.ScoredChunk, 0, len(ix.Chunks))
	for i := range ix.Vectors {
		results = append(results, domain.ScoredChunk{
			Chunk: ix.Chunks[i],
			Score: cosine(ix.Vectors[i], vector),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK]
}

// Save writes the index to path atomically: readers see either the old
// complete index or the new one, never a partial write.
func (ix *Index) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	data, err := json.Marshal(ix)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace index: %w", err)
	}
	return nil
}

// Load reads a persisted index from path.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("index at %s: %w", path, domain.ErrIndexNotFound)
		}
		return nil, err
	}

	var ix Index
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, fmt.Errorf("corrupt index at %s: %w", path, err)
	}
	return &ix, nil
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
