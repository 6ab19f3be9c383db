package desktop

import (
	"fmt"
	"sort"
	"strings"

	"github.com/1broseidon/snapdesk/internal/geometry"
)

// RenderFunc draws a window body into at most size.Height lines.
type RenderFunc func(rec WindowRecord, size geometry.Extent) []string

// Content is what a content tag shows inside a window.
type Content struct {
	Tag    string
	Title  string
	Extent geometry.Extent
	Render RenderFunc
}

// Registry maps content tags to renderables.
type Registry struct {
	byTag map[string]Content
}

// NewRegistry returns a registry holding contents.
func NewRegistry(contents ...Content) *Registry {
	r := &Registry{byTag: make(map[string]Content, len(contents))}
	for _, c := range contents {
		r.Register(c)
	}
	return r
}

// DefaultRegistry holds the stock desktop applications.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Content{Tag: "computer", Title: "My Computer", Render: staticBody(
			"Local Disk (C:)",
			"Removable Disk (D:)",
			"Network",
		)},
		Content{Tag: "text", Render: staticBody("Untitled - Notepad", "")},
		Content{Tag: "counter", Render: staticBody("Count: 0", "[ Increment ]")},
		Content{Tag: "image", Extent: geometry.Extent{Width: 560, Height: 315}, Render: staticBody("[ video ]")},
		Content{Tag: "file", Render: staticBody("New File", "")},
	)
}

// Register adds or replaces c.
func (r *Registry) Register(c Content) {
	r.byTag[c.Tag] = c
}

// Tags returns the registered tags in sorted order.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.byTag))
	for tag := range r.byTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Lookup returns the content for tag, or a placeholder for unknown tags.
func (r *Registry) Lookup(tag string) Content {
	if c, ok := r.byTag[tag]; ok {
		return c
	}
	return Content{Tag: tag, Render: placeholder}
}

// Known reports whether tag is registered.
func (r *Registry) Known(tag string) bool {
	_, ok := r.byTag[tag]
	return ok
}

// Render draws the body of rec. Unknown tags and failing renderers fall back
// to the placeholder.
func (r *Registry) Render(rec WindowRecord, size geometry.Extent) (lines []string) {
	c := r.Lookup(rec.ContentTag)
	render := c.Render
	if render == nil {
		render = placeholder
	}
	defer func() {
		if recover() != nil {
			lines = placeholder(rec, size)
		}
	}()
	return fit(render(rec, size), size)
}

func placeholder(rec WindowRecord, _ geometry.Extent) []string {
	return []string{fmt.Sprintf("Unknown content type %q", rec.ContentTag)}
}

func staticBody(lines ...string) RenderFunc {
	return func(WindowRecord, geometry.Extent) []string {
		return lines
	}
}

func fit(lines []string, size geometry.Extent) []string {
	if size.Height >= 0 && len(lines) > size.Height {
		lines = lines[:size.Height]
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = strings.TrimRight(line, "\n")
	}
	return out
}
