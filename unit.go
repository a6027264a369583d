package atrium

import (
	"context"
	"html/template"
)

// Unit is an interface for a named piece of UI that can be composed into a
// page. Every Unit names itself and points at the html/template file that
// renders its markup. Units are identified by name everywhere else in the
// package; two Units with the same name are the same Unit as far as a
// Registry is concerned.
type Unit interface {
	// Name returns the identifier the Unit is registered and resolved
	// under. It must be unique within a Registry and stable across calls.
	Name(ctx context.Context) string

	// Template returns the path, within the Registry's fs.FS, to the
	// html/template contents that render this Unit.
	Template(ctx context.Context) string
}

// ChildDeclarer is an optional interface for Units. Those fulfilling it
// declare, by name, the Units they nest inside themselves. Declared children
// are resolved against the Registry when composing, rendered before their
// parent, and injected into the parent's slot of the same name if the
// parent's template defines one. A Unit that nests other Units without
// declaring them here is responsible for rendering their markup itself.
type ChildDeclarer interface {
	// DeclareChildren returns the names of the Units this Unit nests, in
	// the order their rendered output should appear as children.
	DeclareChildren(ctx context.Context) []string
}

// Styler is an optional interface for Units. Those fulfilling it carry a
// stylesheet that will be scoped to the Unit's markup before it is surfaced;
// selectors in the stylesheet only ever match elements the Unit itself
// rendered, never elements rendered by its parents or children.
type Styler interface {
	// Style returns the path, within the Registry's fs.FS, to the
	// html/template contents that produce this Unit's CSS, without
	// <style> tags.
	Style(ctx context.Context) string
}

// FuncMapExtender is an interface that Units can fulfill to add to the map
// of functions available to their templates when rendering.
type FuncMapExtender interface {
	// FuncMap returns an html/template.FuncMap containing all the
	// functions that the Unit is adding to the FuncMap.
	FuncMap(ctx context.Context) template.FuncMap
}
