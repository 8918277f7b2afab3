// Package script reads @file scripts from disk and checks batches of them.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fivedir/autogen/options"
	"github.com/fivedir/autogen/ui"
)

const (
	defaultMaxSize     = 1 << 20
	defaultConcurrency = 8
)

// ErrTooLarge is the cause reported when a script exceeds the size cap
var ErrTooLarge = errors.New("script file too large")

// Options configures script reading
type Options struct {
	BaseDir     string // relative script paths resolve here; empty means the working directory
	MaxSize     int64  // bytes; <= 0 means no limit
	Concurrency int    // parallel loads in CheckAll
	NoCache     bool
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		MaxSize:     defaultMaxSize,
		Concurrency: defaultConcurrency,
	}
}

// scriptCache caches script contents by resolved path
type scriptCache struct {
	mu    sync.RWMutex
	items map[string]string
}

func newScriptCache() *scriptCache {
	return &scriptCache{items: make(map[string]string)}
}

func (c *scriptCache) get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *scriptCache) set(key, val string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = val
}

// Reader loads script files for options.Loader. It is safe for concurrent use.
type Reader struct {
	opts  Options
	cache *scriptCache
}

var _ options.ScriptReader = (*Reader)(nil)

// NewReader creates a reader
func NewReader(opts Options) *Reader {
	r := &Reader{opts: opts}
	if !opts.NoCache {
		r.cache = newScriptCache()
	}
	return r
}

// Resolve returns the path a script reference refers to
func (r *Reader) Resolve(path string) string {
	if filepath.IsAbs(path) || r.opts.BaseDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(r.opts.BaseDir, path)
}

// ReadScript returns the whole text of a script in one read. Failures are
// reported as a ScriptUnreadable semantic error wrapping the cause.
func (r *Reader) ReadScript(ctx context.Context, path string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	full := r.Resolve(path)

	if r.cache != nil {
		if text, ok := r.cache.get(full); ok {
			ui.Verbosef("cache hit: script=%s", full)
			return text, nil
		}
	}

	ui.Verbosef("reading script: %s", full)

	text, err := r.read(full)
	if err != nil {
		ui.Verbosef("failed to read script: path=%s, error=%v", full, err)
		return "", unreadable(path, err)
	}

	if r.cache != nil {
		r.cache.set(full, text)
	}

	ui.Verbosef("successfully read script: path=%s, bytes=%d", full, len(text))
	return text, nil
}

func (r *Reader) read(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var src io.Reader = f
	if r.opts.MaxSize > 0 {
		src = io.LimitReader(f, r.opts.MaxSize+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	if r.opts.MaxSize > 0 && int64(len(data)) > r.opts.MaxSize {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, r.opts.MaxSize)
	}
	return string(data), nil
}

func unreadable(path string, err error) error {
	return &options.SemanticError{Violations: []options.Violation{{
		Kind:    options.ScriptUnreadable,
		Message: fmt.Sprintf("cannot read script %s: %v", path, err),
		Err:     err,
	}}}
}
