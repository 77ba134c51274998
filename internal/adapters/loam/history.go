// Package loam stores the invocation history as a directory of Markdown
// documents managed by Loam. Each record becomes one file whose frontmatter
// carries the metadata and whose body carries the command output verbatim.
package loam

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/loam"
	"github.com/aretw0/tether/pkg/domain"
)

// DefaultLimit is the number of documents kept when no limit is configured.
const DefaultLimit = 200

// RecordMetadata is the frontmatter of a history document.
type RecordMetadata struct {
	ID         string `json:"id" mapstructure:"id"`
	Command    string `json:"command" mapstructure:"command"`
	ExitCode   int    `json:"exit_code" mapstructure:"exit_code"`
	Error      string `json:"error,omitempty" mapstructure:"error"`
	StartedAt  string `json:"started_at" mapstructure:"started_at"`
	DurationMS int64  `json:"duration_ms" mapstructure:"duration_ms"`
}

// History implements ports.HistoryStore on top of a Loam typed repository.
// It keeps at most limit documents; older ones are deleted on Append.
type History struct {
	Repo *loam.TypedRepository[RecordMetadata]

	mu    sync.Mutex
	limit int
}

// Option configures a History.
type Option func(*History)

// WithLimit bounds the number of stored documents. Non-positive values keep DefaultLimit.
func WithLimit(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.limit = n
		}
	}
}

// New wraps an existing typed repository.
func New(repo *loam.TypedRepository[RecordMetadata], opts ...Option) *History {
	h := &History{Repo: repo, limit: DefaultLimit}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Open initializes a Loam repository rooted at dir (without versioning)
// and returns a history store backed by it.
func Open(dir string, opts ...Option) (*History, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve history dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history dir: %w", err)
	}
	repo, err := loam.Init(abs, loam.WithVersioning(false), loam.WithForceTemp(false))
	if err != nil {
		return nil, fmt.Errorf("failed to init loam history at %s: %w", abs, err)
	}
	return New(loam.NewTypedRepository[RecordMetadata](repo), opts...), nil
}

// Limit reports the maximum number of documents kept.
func (h *History) Limit() int {
	return h.limit
}

// Append writes rec as a new document and prunes documents beyond the limit.
func (h *History) Append(ctx context.Context, rec domain.Record) error {
	if rec.ID == "" {
		return fmt.Errorf("record id cannot be empty")
	}
	meta := RecordMetadata{
		ID:         rec.ID,
		Command:    rec.Command,
		ExitCode:   rec.ExitCode,
		Error:      rec.Error,
		StartedAt:  rec.StartedAt.UTC().Format(time.RFC3339Nano),
		DurationMS: rec.Duration.Milliseconds(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	err := h.Repo.Save(ctx, &loam.DocumentModel[RecordMetadata]{
		ID:      rec.ID,
		Content: rec.Output,
		Data:    meta,
	})
	if err != nil {
		return fmt.Errorf("loam save failed for %s: %w", rec.ID, err)
	}
	return h.prune(ctx)
}

func (h *History) prune(ctx context.Context) error {
	entries, err := h.index(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries[min(h.limit, len(entries)):] {
		if err := h.Repo.Delete(ctx, e.docID); err != nil {
			return fmt.Errorf("loam delete failed for %s: %w", e.docID, err)
		}
	}
	return nil
}

// Recent returns up to limit records, newest first, with their output.
func (h *History) Recent(ctx context.Context, limit int) ([]domain.Record, error) {
	entries, err := h.index(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}

	out := make([]domain.Record, 0, len(entries))
	for _, e := range entries {
		// List carries frontmatter only; the body is read per document.
		doc, err := h.Repo.Get(ctx, e.docID)
		if err != nil {
			return nil, fmt.Errorf("loam get failed for %s: %w", e.docID, err)
		}
		e.rec.Output = doc.Content
		out = append(out, e.rec)
	}
	return out, nil
}

type entry struct {
	docID string
	rec   domain.Record
}

// index lists the stored records without output, newest first.
func (h *History) index(ctx context.Context) ([]entry, error) {
	docs, err := h.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	entries := make([]entry, 0, len(docs))
	for _, doc := range docs {
		id := doc.Data.ID
		if id == "" {
			id = strings.TrimSuffix(path.Base(filepath.ToSlash(doc.ID)), filepath.Ext(doc.ID))
		}
		started, err := time.Parse(time.RFC3339Nano, doc.Data.StartedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid started_at in %s: %w", doc.ID, err)
		}
		entries = append(entries, entry{
			docID: doc.ID,
			rec: domain.Record{
				ID:        id,
				Command:   doc.Data.Command,
				ExitCode:  doc.Data.ExitCode,
				Error:     doc.Data.Error,
				StartedAt: started,
				Duration:  time.Duration(doc.Data.DurationMS) * time.Millisecond,
			},
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].rec, entries[j].rec
		if a.StartedAt.Equal(b.StartedAt) {
			return a.ID > b.ID
		}
		return a.StartedAt.After(b.StartedAt)
	})
	return entries, nil
}
