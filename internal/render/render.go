package render

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/glamour"
)

// maxCached bounds the renderer cache. Terminal resizes produce a new
// width per step; once the cache fills up it is dropped wholesale.
const maxCached = 8

// Renderer caches glamour renderers keyed by their options. A
// glamour.TermRenderer is not safe for concurrent Render calls, so all
// rendering is serialized behind the mutex.
type Renderer struct {
	mu    sync.Mutex
	cache map[string]*glamour.TermRenderer
}

// NewRenderer returns an empty renderer cache.
func NewRenderer() *Renderer {
	return &Renderer{cache: make(map[string]*glamour.TermRenderer)}
}

// Render renders markdown content with the given options, reusing a
// cached glamour renderer when one exists for them.
func (r *Renderer) Render(content string, opts Options) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := opts.key()
	tr, ok := r.cache[key]
	if !ok {
		var err error
		tr, err = newTermRenderer(opts)
		if err != nil {
			return "", err
		}
		if len(r.cache) >= maxCached {
			r.cache = make(map[string]*glamour.TermRenderer)
		}
		r.cache[key] = tr
	}

	return tr.Render(content)
}

// Reset drops all cached renderers.
func (r *Renderer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*glamour.TermRenderer)
}

// Cached returns the number of cached renderer configurations.
func (r *Renderer) Cached() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

// key generates a unique cache key for a set of options.
func (o Options) key() string {
	return fmt.Sprintf("%s:%d:%t:%t:%t:%t",
		o.Style,
		o.Width,
		o.EnableEmoji,
		o.PreserveNewLines,
		o.TableWrap,
		o.InlineTableLinks,
	)
}

// newTermRenderer creates a glamour renderer for the given options.
func newTermRenderer(opts Options) (*glamour.TermRenderer, error) {
	rendererOpts := []glamour.TermRendererOption{
		glamour.WithStylePath(NormalizeStyle(opts.Style)),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
		glamour.WithInlineTableLinks(opts.InlineTableLinks),
	}

	if opts.EnableEmoji {
		rendererOpts = append(rendererOpts, glamour.WithEmoji())
	}

	if opts.PreserveNewLines {
		rendererOpts = append(rendererOpts, glamour.WithPreservedNewLines())
	}

	return glamour.NewTermRenderer(rendererOpts...)
}

// shared backs the package-level rendering helpers.
var shared = NewRenderer()

// Markdown renders markdown content for terminal display using the
// shared renderer cache.
func Markdown(content string, opts Options) (string, error) {
	return shared.Render(content, opts)
}

// MarkdownWithWidth renders with default options at a specific width.
func MarkdownWithWidth(content string, width int) (string, error) {
	return Markdown(content, DefaultOptions().WithWidth(width))
}

// ClearCache drops the shared renderer cache (useful for testing).
func ClearCache() {
	shared.Reset()
}
