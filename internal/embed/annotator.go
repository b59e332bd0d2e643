// Package embed attaches embedding vectors and provider token counts to
// chunks via an external embedding provider.
package embed

import (
	"context"

	"go.uber.org/zap"

	"github.com/hyperjump/kagami/internal/models"
)

// Annotator fills in the embedding vector and token count of each chunk.
//
// Annotate never returns a partially annotated set: implementations either
// return every chunk annotated or an error and no chunks. Callers must not
// persist anything when an error is returned.
type Annotator interface {
	Annotate(ctx context.Context, chunks []models.Chunk) ([]models.Chunk, error)
}

// Passthrough is the annotator used when no embedding provider is configured.
// It returns chunks unmodified so they are persisted without vectors.
type Passthrough struct {
	logger *zap.Logger
}

// NewPassthrough returns a pass-through annotator. logger may be nil.
func NewPassthrough(logger *zap.Logger) *Passthrough {
	return &Passthrough{logger: logger}
}

// Annotate returns the input unchanged. Running without embeddings is a
// degraded mode worth surfacing, so each call logs a warning.
func (p *Passthrough) Annotate(ctx context.Context, chunks []models.Chunk) ([]models.Chunk, error) {
	if p.logger != nil && len(chunks) > 0 {
		p.logger.Warn("embedding provider not configured; storing chunks without vectors",
			zap.Int("chunks", len(chunks)))
	}
	return chunks, nil
}
