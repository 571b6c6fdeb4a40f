package domain

// Chunk is a bounded-length piece of a transcript, the unit of embedding
// and retrieval. Chunks are ephemeral: only their text and embedding survive
// inside the vector index.
type Chunk struct {
	SourceFile string `json:"source_file"` // transcript filename the chunk came from
	Index      int    `json:"index"`       // position within the whole rebuild
	Text       string `json:"text"`
}

// ScoredChunk is a retrieval hit with its cosine similarity score.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}
