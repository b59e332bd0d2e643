package models

// Chunk is a contiguous slice of a document's extracted text, sized for
// downstream embedding. Chunks belong to exactly one metadata record and
// carry a zero-based index that is contiguous within the record.
//
// Tokens starts as a whitespace word-count approximation from the chunker and
// is overwritten with the provider-reported figure when embeddings are
// generated. A nil Embedding means "not yet computed" (or embedding disabled);
// the annotator is the only component that fills it in.
type Chunk struct {
	RecordID   string    `json:"file_id"`
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	Tokens     int       `json:"tokens"`
	Embedding  []float32 `json:"embedding"`
}
