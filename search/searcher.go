package search

import (
	"log/slog"
	"runtime"
	"strings"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/casbert/ai"
	"github.com/poiesic/casbert/assets"
	"github.com/poiesic/casbert/core"
	"github.com/poiesic/casbert/mathml"
	"github.com/poiesic/casbert/storage"
)

// Searcher resolves semantic matches over a snapshot into joined records.
// A Searcher is safe for concurrent use; it holds no mutable state besides
// its worker pool.
type Searcher struct {
	snapshot   *storage.Snapshot
	embedder   ai.Embedder
	transcoder mathml.Transcoder
	assets     assets.Store
	format     mathml.Format
	serverURL  string
	monitor    Monitor
	pool       *ants.Pool
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithPoolSize sets the number of workers SearchAll fans out on.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Searcher) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if s.pool != nil {
			s.pool.Release()
		}
		s.pool = pool
		return nil
	}
}

// WithMonitor sets the monitor notified during every search.
func WithMonitor(monitor Monitor) Option {
	return func(s *Searcher) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		s.monitor = monitor
		return nil
	}
}

// WithMathFormat sets the notation maths are rendered in.
// Default is mathml.LaTeX.
func WithMathFormat(format mathml.Format) Option {
	return func(s *Searcher) error {
		if _, err := mathml.ParseFormat(format.String()); err != nil {
			return err
		}
		s.format = format
		return nil
	}
}

// WithServerURL sets the base address prefixed to stored relative URLs.
// Default is empty, which leaves URLs relative.
func WithServerURL(base string) Option {
	return func(s *Searcher) error {
		s.serverURL = strings.TrimSuffix(base, "/")
		return nil
	}
}

// NewSearcher creates a new searcher over snapshot.
func NewSearcher(
	snapshot *storage.Snapshot,
	provider ai.AIProvider,
	transcoder mathml.Transcoder,
	store assets.Store,
	opts ...Option,
) (*Searcher, error) {
	if snapshot == nil {
		return nil, ErrSnapshotRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if transcoder == nil {
		return nil, ErrTranscoderRequired
	}
	if store == nil {
		return nil, ErrAssetStoreRequired
	}

	s := &Searcher{
		snapshot:   snapshot,
		embedder:   provider.Embedder(),
		transcoder: transcoder,
		assets:     store,
		format:     mathml.LaTeX,
		monitor:    &noopMonitor{},
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.Release()
			return nil, err
		}
	}

	if s.pool == nil {
		pool, err := ants.NewPool(max(runtime.NumCPU(), 1))
		if err != nil {
			return nil, err
		}
		s.pool = pool
	}
	s.logger = s.logger.With("component", "searcher")

	return s, nil
}

// Release stops the worker pool. The Searcher must not be used afterwards.
func (s *Searcher) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// Snapshot returns the snapshot the searcher reads.
func (s *Searcher) Snapshot() *storage.Snapshot {
	return s.snapshot
}

// prepare normalizes the query text, fills in the default variant and
// validates the result.
func (s *Searcher) prepare(q core.Query) (core.Query, error) {
	q.Text = normalizeQuery(q.Text)
	if q.Variant == "" {
		q.Variant = core.DefaultVariant
	}
	if err := core.ValidateQuery(q); err != nil {
		return q, err
	}
	return q, nil
}

// url prefixes a stored relative address with the server base.
func (s *Searcher) url(rel string) string {
	if rel == "" || s.serverURL == "" {
		return rel
	}
	return s.serverURL + "/" + strings.TrimPrefix(rel, "/")
}

func (s *Searcher) urls(rels []string) []string {
	out := make([]string, len(rels))
	for i, rel := range rels {
		out[i] = s.url(rel)
	}
	return out
}
