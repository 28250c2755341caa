// Package csp builds Content-Security-Policy header values.
package csp

import "strings"

// Header names for enforced and report-only policies.
const (
	HeaderEnforce    = "Content-Security-Policy"
	HeaderReportOnly = "Content-Security-Policy-Report-Only"
)

// Builder assembles a policy directive by directive. Directives are emitted
// in the order they were first set; setting one again replaces its sources
// in place.
//
// Example:
//
//	policy := NewBuilder().
//	    DefaultSrc("'self'").
//	    ImgSrc("'self'", "data:", "https:").
//	    Build()
//	// "default-src 'self'; img-src 'self' data: https:"
//
// A Builder is not safe for concurrent mutation. Build the value once at
// startup and share the resulting string.
type Builder struct {
	order      []string
	directives map[string][]string
	reportOnly bool
}

// NewBuilder returns an empty policy builder.
func NewBuilder() *Builder {
	return &Builder{directives: make(map[string][]string)}
}

// Directive sets an arbitrary directive. A directive with no sources, such
// as upgrade-insecure-requests, is emitted as the bare name.
func (b *Builder) Directive(name string, sources ...string) *Builder {
	if _, ok := b.directives[name]; !ok {
		b.order = append(b.order, name)
	}
	b.directives[name] = sources
	return b
}

func (b *Builder) DefaultSrc(sources ...string) *Builder { return b.Directive("default-src", sources...) }
func (b *Builder) ScriptSrc(sources ...string) *Builder { return b.Directive("script-src", sources...) }
func (b *Builder) StyleSrc(sources ...string) *Builder { return b.Directive("style-src", sources...) }
func (b *Builder) ImgSrc(sources ...string) *Builder { return b.Directive("img-src", sources...) }
func (b *Builder) FontSrc(sources ...string) *Builder { return b.Directive("font-src", sources...) }
func (b *Builder) ObjectSrc(sources ...string) *Builder { return b.Directive("object-src", sources...) }
func (b *Builder) BaseURI(sources ...string) *Builder { return b.Directive("base-uri", sources...) }
func (b *Builder) FormAction(sources ...string) *Builder { return b.Directive("form-action", sources...) }

// FrameAncestors controls who may embed responses in a frame.
func (b *Builder) FrameAncestors(sources ...string) *Builder {
	return b.Directive("frame-ancestors", sources...)
}

// ReportOnly switches the header to Content-Security-Policy-Report-Only.
func (b *Builder) ReportOnly(enabled bool) *Builder {
	b.reportOnly = enabled
	return b
}

// HeaderName returns the header the policy should be sent in.
func (b *Builder) HeaderName() string {
	if b.reportOnly {
		return HeaderReportOnly
	}
	return HeaderEnforce
}

// Build renders the header value. An empty builder renders "".
func (b *Builder) Build() string {
	parts := make([]string, 0, len(b.order))
	for _, name := range b.order {
		sources := b.directives[name]
		if len(sources) == 0 {
			parts = append(parts, name)
			continue
		}
		parts = append(parts, name+" "+strings.Join(sources, " "))
	}
	return strings.Join(parts, "; ")
}

// APIPolicy is the policy served with every preview API response. Scripts
// and objects are limited to the service origin; images may come from any
// https origin or a data: URI since previews embed third-party images.
func APIPolicy() *Builder {
	return NewBuilder().
		DefaultSrc("'self'").
		BaseURI("'self'").
		FontSrc("'self'", "https:", "data:").
		FormAction("'self'").
		FrameAncestors("'self'").
		ImgSrc("'self'", "data:", "https:").
		ObjectSrc("'none'").
		ScriptSrc("'self'").
		Directive("script-src-attr", "'none'").
		StyleSrc("'self'", "'unsafe-inline'").
		Directive("upgrade-insecure-requests")
}
