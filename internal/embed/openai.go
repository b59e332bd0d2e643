package embed

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/kagami/internal/models"
)

// embeddingClient is the slice of the OpenAI client the annotator uses.
// *openai.Client satisfies it; tests substitute a fake.
type embeddingClient interface {
	CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// OpenAIAnnotator annotates chunks with vectors from the OpenAI embeddings
// API, one request per chunk. The provider-reported total token count
// supersedes the chunker's word-count approximation.
type OpenAIAnnotator struct {
	client      embeddingClient
	model       openai.EmbeddingModel
	cache       *Cache
	concurrency int
}

// Option configures an OpenAIAnnotator.
type Option func(*OpenAIAnnotator)

// WithModel overrides the embedding model.
func WithModel(model string) Option {
	return func(a *OpenAIAnnotator) {
		if model != "" {
			a.model = openai.EmbeddingModel(model)
		}
	}
}

// WithCache enables an LRU cache of the given capacity, keyed by chunk text.
func WithCache(capacity int) Option {
	return func(a *OpenAIAnnotator) {
		if capacity > 0 {
			a.cache = NewCache(capacity)
		}
	}
}

// WithConcurrency sets how many embedding requests may be in flight for one
// document. Result assignment stays per-chunk-index exact regardless.
func WithConcurrency(n int) Option {
	return func(a *OpenAIAnnotator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// NewOpenAIAnnotator creates an annotator using the given API key.
func NewOpenAIAnnotator(apiKey string, opts ...Option) *OpenAIAnnotator {
	a := &OpenAIAnnotator{
		client:      openai.NewClient(apiKey),
		model:       openai.LargeEmbedding3,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Annotate returns a copy of chunks with embedding and token count filled in.
// A failure on any chunk aborts the whole batch: the error is returned and no
// chunk set is handed back, so partially embedded documents can never be
// persisted.
func (a *OpenAIAnnotator) Annotate(ctx context.Context, chunks []models.Chunk) ([]models.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}
	out := make([]models.Chunk, len(chunks))
	copy(out, chunks)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i := range out {
		i := i
		g.Go(func() error {
			return a.annotateOne(ctx, &out[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *OpenAIAnnotator) annotateOne(ctx context.Context, ch *models.Chunk) error {
	if a.cache != nil {
		if hit, ok := a.cache.Get(ch.Content); ok {
			ch.Embedding = hit.Vector
			ch.Tokens = hit.Tokens
			return nil
		}
	}
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: a.model,
		Input: []string{ch.Content},
	})
	if err != nil {
		return fmt.Errorf("embed chunk %d: %w", ch.ChunkIndex, err)
	}
	if len(resp.Data) == 0 {
		return fmt.Errorf("embed chunk %d: provider returned no embedding", ch.ChunkIndex)
	}
	vec := make([]float32, len(resp.Data[0].Embedding))
	for j, v := range resp.Data[0].Embedding {
		vec[j] = float32(v)
	}
	ch.Embedding = vec
	ch.Tokens = resp.Usage.TotalTokens
	if a.cache != nil {
		a.cache.Set(ch.Content, Entry{Vector: vec, Tokens: ch.Tokens})
	}
	return nil
}
