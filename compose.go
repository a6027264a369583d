package atrium

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"strings"
)

var (
	// ErrNoTemplatePath is returned when a template path is needed, but
	// none is supplied.
	ErrNoTemplatePath = errors.New("need a template path")

	// ErrNilUnit is returned when a nil Unit is declared or composed.
	ErrNilUnit = errors.New("unit cannot be nil")

	// ErrCompositionDepthExceeded is returned when rendering a Unit would
	// nest Units deeper than the composition's maximum depth. It usually
	// means the Units being composed are nested much deeper than
	// intended; the maximum exists so a runaway composition fails instead
	// of consuming the process.
	ErrCompositionDepthExceeded = errors.New("composition depth exceeded")
)

// DefaultMaxDepth is the deepest Compose will nest Units unless WithMaxDepth
// overrides it. The root Unit is at depth 1.
const DefaultMaxDepth = 32

// ComposeOption configures a single call to Compose.
type ComposeOption func(*composition)

// WithMaxDepth overrides DefaultMaxDepth for a composition. Depths below 1
// are ignored.
func WithMaxDepth(depth int) ComposeOption {
	return func(c *composition) {
		if depth < 1 {
			return
		}
		c.maxDepth = depth
	}
}

// WithSlotContent places an already-composed Node in the named slot. It's
// how the host environment hands content to a composition without the
// composition's Units declaring it; the usual case is a routing layer
// placing whatever Node the current route resolves to into an outlet slot.
//
// The Node only lands in the slot if no declared child claims it; a Unit's
// declared children always win their own slots. Nodes placed this way are
// appended to the children of the Unit whose template defines the slot, so
// their styles surface through Stylesheet like any other child's. Passing a
// nil Node is ignored.
func WithSlotContent(slot string, node *Node) ComposeOption {
	return func(c *composition) {
		if node == nil {
			return
		}
		c.slotContent[slot] = node
	}
}

// composition carries the settings for one Compose call.
type composition struct {
	registry    *Registry
	maxDepth    int
	slotContent map[string]*Node
}

// Compose renders the passed Unit and every Unit it declares, directly or
// transitively, into a Node tree. Each Unit's declared children are rendered
// first, depth-first in declaration order, then the Unit's own template is
// executed, its markup is stamped with its scope marker, and each slot the
// template defined is filled with the rendered markup of the declared child
// of the same name. Slots no declared child or WithSlotContent option
// claims are left empty.
//
// The returned Node mirrors the declared graph: its children are the Units
// the root declared, in declaration order, each carrying their own children
// in turn. Units may be composed without being declared against the
// Registry; only the names they declare as children need to resolve.
//
// Compose doesn't retain the Registry or the options; every call stands
// alone, and the same Unit composes to the same markup every time.
func Compose(ctx context.Context, registry *Registry, unit Unit, opts ...ComposeOption) (_ *Node, err error) {
	ctx, span := tracer().Start(ctx, "atrium.Compose")
	defer func() { endSpan(span, err) }()

	if registry == nil {
		err = errors.New("registry cannot be nil")
		return nil, err
	}
	if unit == nil {
		err = fmt.Errorf("composing unit: %w", ErrNilUnit)
		return nil, err
	}
	span.SetAttributes(attrUnit.String(unit.Name(ctx)))

	c := &composition{
		registry:    registry,
		maxDepth:    DefaultMaxDepth,
		slotContent: map[string]*Node{},
	}
	for _, opt := range opts {
		opt(c)
	}

	node, err := c.render(ctx, unit, 1)
	if err != nil {
		logError(ctx, err, "error composing unit", slog.String("unit", unit.Name(ctx)))
		return nil, err
	}
	return node, nil
}

func (c *composition) render(ctx context.Context, unit Unit, depth int) (_ *Node, err error) {
	name := unit.Name(ctx)
	ctx, span := tracer().Start(ctx, "atrium.render")
	span.SetAttributes(attrUnit.String(name), attrDepth.Int(depth))
	defer func() { endSpan(span, err) }()

	if depth > c.maxDepth {
		return nil, fmt.Errorf("%w: unit %q at depth %d", ErrCompositionDepthExceeded, name, depth)
	}

	children, err := c.registry.ResolveChildren(ctx, unit)
	if err != nil {
		return nil, err
	}
	rendered := make([]*Node, 0, len(children))
	byName := make(map[string]*Node, len(children))
	for _, child := range children {
		childNode, err := c.render(ctx, child, depth+1)
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, childNode)
		byName[childNode.Name()] = childNode
	}

	tmpl, err := c.registry.template(ctx, unit)
	if err != nil {
		return nil, err
	}

	marker := ScopeMarker(name)
	slots := &slotRecorder{}
	data := &RenderData{
		Unit:  unit,
		Scope: template.HTMLAttr(marker), // #nosec G203
		slots: slots,
	}
	var buf strings.Builder
	err = tmpl.Execute(&buf, data)
	if err != nil {
		return nil, fmt.Errorf("error executing template %q for unit %q: %w", unit.Template(ctx), name, err)
	}

	// stamp the unit's own markup before slot content lands in it, so
	// the marker never reaches elements the unit didn't render itself
	markup, err := tagMarkup(buf.String(), marker)
	if err != nil {
		return nil, fmt.Errorf("error scoping markup for unit %q: %w", name, err)
	}

	var placed []*Node
	for _, slot := range slots.names {
		var content template.HTML
		if childNode, ok := byName[slot]; ok {
			content = childNode.Markup()
		} else if hostNode, ok := c.slotContent[slot]; ok {
			content = hostNode.Markup()
			placed = append(placed, hostNode)
		} else {
			logger(ctx).DebugContext(ctx, "slot left empty", slog.String("unit", name), slog.String("slot", slot))
		}
		markup = strings.ReplaceAll(markup, slotPlaceholder(slot), string(content))
	}

	style, err := c.registry.scopedStyle(ctx, unit)
	if err != nil {
		return nil, err
	}

	return &Node{
		name:     name,
		markup:   template.HTML(markup), // #nosec G203
		style:    style,
		children: append(rendered, placed...),
	}, nil
}

// RenderData is the data that is passed to a Unit's templates when rendering
// them.
type RenderData struct {
	// Unit is the Unit being rendered, so templates can reach its fields
	// and methods.
	Unit Unit

	// Scope is the Unit's scope marker, for templates that need to name
	// it explicitly; the markup Compose produces is stamped with it
	// whether templates reference it or not.
	Scope template.HTMLAttr

	slots *slotRecorder
}

// Slot defines a named slot at the point in the template where it's called,
// returning a placeholder that Compose replaces with the slot's content
// after the template executes. The content is the rendered markup of the
// declared child with the slot's name, or of the Node a WithSlotContent
// option placed there, or nothing at all; an unclaimed slot renders empty
// without failing the composition.
func (d *RenderData) Slot(name string) template.HTML {
	if d.slots == nil {
		return ""
	}
	d.slots.record(name)
	return template.HTML(slotPlaceholder(name)) // #nosec G203
}

// slotRecorder collects the slot names a template defines during one
// execution, preserving the order they were first defined in.
type slotRecorder struct {
	names []string
	seen  map[string]struct{}
}

func (s *slotRecorder) record(name string) {
	if s.seen == nil {
		s.seen = map[string]struct{}{}
	}
	if _, ok := s.seen[name]; ok {
		return
	}
	s.seen[name] = struct{}{}
	s.names = append(s.names, name)
}

// slotPlaceholder is the marker Slot leaves in executed markup for Compose
// to substitute. It's an HTML comment so a composition that somehow skips
// substitution degrades to markup browsers ignore.
func slotPlaceholder(name string) string {
	return "<!--atrium:slot " + name + "-->"
}

func parseTemplate(fsys fs.FS, funcs template.FuncMap, path string) (*template.Template, error) {
	contents, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", path, err)
	}
	tmpl, err := template.New(path).Funcs(funcs).Parse(string(contents))
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %w", path, err)
	}
	return tmpl, nil
}

// mergeFuncMaps flattens two FuncMaps into one, with the values in `unit`
// overriding the values in `in` if they have the same keys.
func mergeFuncMaps(in template.FuncMap, unit template.FuncMap) template.FuncMap {
	res := template.FuncMap{}
	for k, v := range in {
		res[k] = v
	}
	for k, v := range unit {
		res[k] = v
	}
	return res
}
