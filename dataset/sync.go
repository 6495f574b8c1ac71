package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/otsob/musii-kit/pointio"
)

// ErrConcurrentCommit is returned when another writer committed a
// dataset version concurrently.
var ErrConcurrentCommit = errors.New("concurrent dataset commit")

// Catalog tracks the committed versions of a synced dataset. Version
// numbers are monotonically increasing and start at 1; version 0 means
// nothing has been committed.
type Catalog interface {
	// Latest returns the current version and its manifest path.
	Latest(ctx context.Context) (uint64, string, error)

	// Commit records a new version pointing at the manifest path and
	// returns the committed version number. Implementations must fail
	// with ErrConcurrentCommit when another writer wins the version.
	Commit(ctx context.Context, manifestPath string) (uint64, error)
}

// MemoryCatalog is an in-process Catalog for testing and for syncs
// that need versioning without an external coordination service.
type MemoryCatalog struct {
	mu        sync.Mutex
	manifests []string
}

// Latest returns the current version and its manifest path.
func (c *MemoryCatalog) Latest(_ context.Context) (uint64, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.manifests) == 0 {
		return 0, "", nil
	}
	return uint64(len(c.manifests)), c.manifests[len(c.manifests)-1], nil
}

// Commit records a new version pointing at the manifest path.
func (c *MemoryCatalog) Commit(_ context.Context, manifestPath string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.manifests = append(c.manifests, manifestPath)
	return uint64(len(c.manifests)), nil
}

// ManifestFile records one synced file.
type ManifestFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Manifest records one completed sync.
type Manifest struct {
	ID      string         `json:"id"`
	Prefix  string         `json:"prefix"`
	Files   []ManifestFile `json:"files"`
	Bytes   int64          `json:"bytes"`
	Created time.Time      `json:"created"`

	// Version is set when the sync was committed to a catalog.
	Version uint64 `json:"version,omitempty"`
}

// manifestName returns the store path the manifest is written to.
func manifestName(id string) string {
	return "manifests/" + id + ".json"
}

// SyncOptions control dataset synchronization.
type SyncOptions struct {
	// Parallelism is the number of files copied concurrently.
	Parallelism int

	// BytesPerSecond caps the write throughput across all copies.
	// Zero means unlimited.
	BytesPerSecond int64

	// Catalog, when set, receives a commit for every completed sync
	// after the manifest has been written to the destination.
	Catalog Catalog

	// Logger receives sync diagnostics. Nil disables logging.
	Logger *slog.Logger
}

// DefaultSyncOptions for dataset synchronization.
var DefaultSyncOptions = SyncOptions{
	Parallelism: 4,
}

// Syncer copies dataset files between stores, writing a manifest of
// what was copied and optionally committing it to a catalog.
type Syncer struct {
	opts    SyncOptions
	limiter *rate.Limiter
}

// NewSyncer creates a syncer.
func NewSyncer(optFns ...func(o *SyncOptions)) *Syncer {
	opts := DefaultSyncOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	s := &Syncer{opts: opts}
	if opts.BytesPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.BytesPerSecond), int(opts.BytesPerSecond))
	}
	return s
}

// Sync copies every file under the prefix from src to dst and returns
// the manifest of the copied files. When a catalog is configured the
// manifest is also written to dst and committed.
func (s *Syncer) Sync(ctx context.Context, src, dst Store, prefix string) (*Manifest, error) {
	started := time.Now()

	names, err := src.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	files := make([]ManifestFile, len(names))
	var total atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Parallelism)
	for i, name := range names {
		g.Go(func() error {
			size, err := s.copyFile(ctx, src, dst, name)
			if err != nil {
				return fmt.Errorf("syncing %s: %w", name, err)
			}
			files[i] = ManifestFile{Name: name, Size: size}
			total.Add(size)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	manifest := &Manifest{
		ID:      uuid.NewString(),
		Prefix:  prefix,
		Files:   files,
		Bytes:   total.Load(),
		Created: started.UTC(),
	}

	if s.opts.Catalog != nil {
		if err := s.commit(ctx, dst, manifest); err != nil {
			return nil, err
		}
	}

	if s.opts.Logger != nil {
		s.opts.Logger.InfoContext(ctx, "dataset synced",
			slog.String("sync_id", manifest.ID),
			slog.Int("files", len(manifest.Files)),
			slog.String("bytes", humanize.Bytes(uint64(manifest.Bytes))),
			slog.Duration("elapsed", time.Since(started)),
		)
	}
	return manifest, nil
}

func (s *Syncer) copyFile(ctx context.Context, src, dst Store, name string) (int64, error) {
	blob, err := src.Open(ctx, name)
	if err != nil {
		return 0, err
	}
	defer blob.Close()

	out, err := dst.Create(ctx, name)
	if err != nil {
		return 0, err
	}

	var w io.Writer = out
	if s.limiter != nil {
		w = &rateLimitedWriter{w: out, limiter: s.limiter, ctx: ctx}
	}

	size, err := io.Copy(w, blob)
	if err != nil {
		out.Close()
		return 0, err
	}
	if err := out.Close(); err != nil {
		return 0, err
	}

	if s.opts.Logger != nil {
		s.opts.Logger.DebugContext(ctx, "file synced",
			slog.String("name", name),
			slog.String("size", humanize.Bytes(uint64(size))),
		)
	}
	return size, nil
}

func (s *Syncer) commit(ctx context.Context, dst Store, manifest *Manifest) error {
	data, err := pointio.Default.Marshal(manifest)
	if err != nil {
		return err
	}
	name := manifestName(manifest.ID)
	if err := dst.Put(ctx, name, data); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	version, err := s.opts.Catalog.Commit(ctx, name)
	if err != nil {
		return err
	}
	manifest.Version = version
	return nil
}

// LoadManifest reads the latest committed manifest of a dataset.
func LoadManifest(ctx context.Context, store Store, catalog Catalog) (*Manifest, error) {
	version, name, err := catalog.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, ErrNotFound
	}
	data, err := ReadAll(ctx, store, name)
	if err != nil {
		return nil, err
	}
	var manifest Manifest
	if err := pointio.Default.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}
	manifest.Version = version
	return &manifest, nil
}

// rateLimitedWriter throttles writes through a shared limiter. Writes
// larger than the limiter burst are split so they can never exceed it.
type rateLimitedWriter struct {
	w       io.Writer
	limiter *rate.Limiter
	ctx     context.Context
}

func (w *rateLimitedWriter) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		chunk := len(p) - written
		if burst := w.limiter.Burst(); chunk > burst {
			chunk = burst
		}
		if err := w.limiter.WaitN(w.ctx, chunk); err != nil {
			return written, err
		}
		n, err := w.w.Write(p[written : written+chunk])
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
