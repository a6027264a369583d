// Package atrium composes style-isolated view units into a page.
//
// atrium is organized around Units, a Registry, and Nodes. A Unit declares
// one region of the page: a markup template, optionally a scoped stylesheet
// (the Styler interface), and optionally the names of the child units it
// composes (the ChildDeclarer interface). Units are declared once, at process
// start, into a Registry; parents reference children by name and the
// Registry resolves the names when the page is composed. Declarations are
// immutable and process-wide; there is no way to remove one.
//
// Compose materializes a unit into a Node. The unit's template is executed,
// every element in the markup the template produced is tagged with the
// unit's scope marker, and each {{ .Slot "name" }} the template requested is
// replaced with the rendered markup of the declared child of that name (or
// with host-supplied content, or with nothing). The unit's stylesheet is
// rewritten so its selectors only match elements carrying the unit's marker.
// A parent's rules never reach a child's markup and a child's never reach
// the parent's, even though the child's markup is physically embedded inside
// the parent's tree.
//
// A Controller pairs the compositor with a host-provided Attachment to drive
// the screen lifecycle: Mount composes the root unit and attaches the
// result, Unmount detaches and releases it, and that is the whole state
// machine. DocumentAttachment is a ready-made Attachment that renders the
// mounted tree into a complete HTML document and serves it over HTTP.
//
// Units tend to be structs, with properties for whatever data they want to
// pass to their templates. A hero banner with a configurable headline is a
// struct with a Headline field, reached from its template as
// {{ .Unit.Headline }}. Units can also be authored as data and loaded with
// LoadManifest, which reads name/template/style/children tuples out of a
// YAML file.
package atrium
