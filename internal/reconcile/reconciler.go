// Package reconcile walks the provider's document tree and mirrors it into
// the metadata store: node metadata is upserted, leaf content is exported,
// chunked, annotated with embeddings, and written as a full chunk-set
// replacement.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/kagami/internal/chunker"
	"github.com/hyperjump/kagami/internal/drive"
	"github.com/hyperjump/kagami/internal/embed"
	"github.com/hyperjump/kagami/internal/extract"
	"github.com/hyperjump/kagami/internal/models"
	"github.com/hyperjump/kagami/internal/store"
)

// exportFormats whitelists the Google Workspace types that can be exported as
// text, mapping each to its target format. Anything else goes through the
// raw-download extractor or is skipped.
var exportFormats = map[string]string{
	models.MimeGoogleDoc:    models.ExportMimeText,
	models.MimeGoogleSheet:  models.ExportMimeCSV,
	models.MimeGoogleSlides: models.ExportMimeText,
}

// Reconciler drives the sync pipeline for one provider tree.
type Reconciler struct {
	provider  drive.Provider
	store     store.Store
	annotator embed.Annotator
	extractor *extract.Extractor
	chunker   *chunker.Chunker
	rootID    string
	logger    *zap.Logger
	locks     recordLocks
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets a logger for per-node progress and skip events.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reconciler) { r.logger = l }
}

// WithExtractor enables text extraction for regular (non-Workspace) files.
// Without it only the export whitelist is processed.
func WithExtractor(e *extract.Extractor) Option {
	return func(r *Reconciler) { r.extractor = e }
}

// New creates a reconciler rooted at rootID. maxTokens and overlapTokens
// configure the chunker.
func New(
	provider drive.Provider,
	st store.Store,
	annotator embed.Annotator,
	rootID string,
	maxTokens, overlapTokens int,
	opts ...Option,
) *Reconciler {
	r := &Reconciler{
		provider:  provider,
		store:     st,
		annotator: annotator,
		chunker:   chunker.New(maxTokens, overlapTokens),
		rootID:    rootID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Bootstrap reconciles the whole tree under the configured root.
func (r *Reconciler) Bootstrap(ctx context.Context) error {
	return r.Walk(ctx, r.rootID, r.rootID)
}

// frame is one pending folder on the walk stack.
type frame struct {
	id   string
	path string
}

// Walk reconciles the subtree rooted at startID. pathPrefix is the dotted
// path of the start node itself; children extend it with their own ids.
//
// The walk is a pre-order traversal driven by an explicit stack, so depth is
// bounded by heap rather than goroutine stack. A visited set guards against a
// malformed parent graph on the provider side: a folder reached twice is
// logged and not re-entered. All children of a folder are upserted (and
// leaves content-processed) before the next folder is popped.
func (r *Reconciler) Walk(ctx context.Context, startID, pathPrefix string) error {
	stack := []frame{{id: startID, path: pathPrefix}}
	visited := map[string]bool{startID: true}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := r.provider.ListChildren(ctx, f.id)
		if err != nil {
			return fmt.Errorf("walk %s: %w", f.id, err)
		}
		if r.logger != nil {
			r.logger.Debug("walk listing folder",
				zap.String("folder_id", f.id),
				zap.Int("children", len(children)))
		}

		for _, child := range children {
			path := f.path + "." + child.ID
			recordID, err := r.store.UpsertMetadata(ctx, buildPayload(child, path))
			if err != nil {
				return fmt.Errorf("upsert %s: %w", child.ID, err)
			}
			if r.logger != nil {
				r.logger.Debug("upserted node metadata",
					zap.String("node_id", child.ID),
					zap.String("record_id", recordID),
					zap.String("path", path))
			}

			if child.IsFolder() {
				if visited[child.ID] {
					if r.logger != nil {
						r.logger.Warn("folder reached twice; skipping to avoid a cycle",
							zap.String("folder_id", child.ID))
					}
					continue
				}
				visited[child.ID] = true
				stack = append(stack, frame{id: child.ID, path: path})
				continue
			}
			if err := r.ProcessContent(ctx, child, recordID); err != nil {
				return err
			}
		}
	}
	return nil
}

// HandleChange reconciles a single changed node. A node that no longer exists
// or is inaccessible is a logged no-op. A folder triggers a full re-walk of
// its subtree; a leaf is upserted and content-processed directly.
func (r *Reconciler) HandleChange(ctx context.Context, nodeID string) error {
	node, err := r.provider.GetNode(ctx, nodeID)
	if errors.Is(err, drive.ErrNotFound) {
		if r.logger != nil {
			r.logger.Warn("changed node not accessible; skipping", zap.String("node_id", nodeID))
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve change %s: %w", nodeID, err)
	}

	if node.IsFolder() {
		return r.Walk(ctx, node.ID, node.ID)
	}

	path := node.ID
	if parent := node.Parent(); parent != "" {
		path = parent + "." + node.ID
	}
	recordID, err := r.store.UpsertMetadata(ctx, buildPayload(node, path))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", node.ID, err)
	}
	return r.ProcessContent(ctx, node, recordID)
}

// ProcessContent exports a leaf's text, chunks and annotates it, and replaces
// the record's chunk set. Unsupported content types are a silent skip. The
// replacement only runs after the fully annotated set is assembled in memory,
// so an annotation failure leaves the previously persisted chunks untouched.
// At most one content-processing pass runs per node id at a time.
func (r *Reconciler) ProcessContent(ctx context.Context, node *models.Node, recordID string) error {
	mu := r.locks.acquire(node.ID)
	mu.Lock()
	defer mu.Unlock()

	text, supported, err := r.extractText(ctx, node)
	if err != nil {
		return fmt.Errorf("extract content of %s: %w", node.ID, err)
	}
	if !supported {
		if r.logger != nil {
			r.logger.Debug("skipping unsupported content type",
				zap.String("node_id", node.ID),
				zap.String("mime_type", node.MimeType))
		}
		return nil
	}

	chunks := r.chunker.Chunk(recordID, text)
	annotated, err := r.annotator.Annotate(ctx, chunks)
	if err != nil {
		return fmt.Errorf("annotate %s: %w", node.ID, err)
	}
	if err := r.store.ReplaceChunks(ctx, recordID, annotated); err != nil {
		return fmt.Errorf("replace chunks of %s: %w", node.ID, err)
	}
	if r.logger != nil {
		r.logger.Info("chunk set replaced",
			zap.String("node_id", node.ID),
			zap.String("record_id", recordID),
			zap.Int("chunks", len(annotated)))
	}
	return nil
}

// extractText returns the node's text content and whether its type is
// supported at all. Workspace files use the provider export; regular files
// are downloaded raw and run through the extractor when one is configured.
func (r *Reconciler) extractText(ctx context.Context, node *models.Node) (string, bool, error) {
	if exportMime, ok := exportFormats[node.MimeType]; ok {
		text, err := r.provider.ExportText(ctx, node.ID, exportMime)
		if err != nil {
			return "", true, err
		}
		return text, true, nil
	}
	if r.extractor != nil && r.extractor.Supports(node.MimeType) {
		raw, err := r.provider.DownloadRaw(ctx, node.ID)
		if err != nil {
			return "", true, err
		}
		text, err := r.extractor.Extract(raw, node.MimeType)
		if err != nil {
			return "", true, err
		}
		return text, true, nil
	}
	return "", false, nil
}

// recordLocks hands out one mutex per node id so concurrent triggers for the
// same document cannot interleave their delete-then-insert chunk writes.
type recordLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *recordLocks) acquire(id string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}
