// Package landing assembles a marketing landing page from atrium Units: a
// shell that frames the page, a masthead, a hero banner with its lead
// paragraph, and a colophon. It's both a working page and the reference for
// how a site built on atrium hangs together; the Units are plain structs,
// the markup and styles live in embedded template files, and NewRegistry
// wires the whole set up ready to compose.
package landing

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"

	"impractical.co/atrium"
)

//go:embed templates
var templateFS embed.FS

// Templates returns the fs.FS the landing Units' template and style paths
// resolve against.
func Templates() fs.FS {
	return templateFS
}

// Shell is the root Unit of the landing page. It frames everything else:
// the masthead, the hero banner, and the colophon are its declared
// children, and its outlet slot is where the host places routed content.
type Shell struct{}

// Name returns the name the Shell is declared under.
func (Shell) Name(_ context.Context) string {
	return "root"
}

// Template returns the path to the Shell's markup template.
func (Shell) Template(_ context.Context) string {
	return "templates/root.html.tmpl"
}

// Style returns the path to the Shell's stylesheet template.
func (Shell) Style(_ context.Context) string {
	return "templates/root.css.tmpl"
}

// DeclareChildren returns the Units the Shell nests, in the order they
// appear on the page.
func (Shell) DeclareChildren(_ context.Context) []string {
	return []string{"header", "hero-banner", "footer"}
}

// HeaderLink is one navigation link in the Header.
type HeaderLink struct {
	// Label is the text shown for the link.
	Label string

	// Href is where the link sends visitors.
	Href string
}

// Header is the masthead across the top of the page: the brand wordmark and
// the navigation links.
type Header struct {
	// Brand is the wordmark shown at the start of the masthead.
	Brand string

	// Links are the navigation links shown after the wordmark, in order.
	Links []HeaderLink
}

// Name returns the name the Header is declared under.
func (Header) Name(_ context.Context) string {
	return "header"
}

// Template returns the path to the Header's markup template.
func (Header) Template(_ context.Context) string {
	return "templates/header.html.tmpl"
}

// Style returns the path to the Header's stylesheet template.
func (Header) Style(_ context.Context) string {
	return "templates/header.css.tmpl"
}

// HeroBanner is the big opening section of the page. It declares the text
// Unit for its lead paragraph.
type HeroBanner struct {
	// Headline is the banner's headline.
	Headline string

	// CallToAction is the label on the banner's action link.
	CallToAction string

	// CallToActionHref is where the action link sends visitors.
	CallToActionHref string

	// Accent is the CSS color behind the action link.
	Accent string
}

// Name returns the name the HeroBanner is declared under.
func (HeroBanner) Name(_ context.Context) string {
	return "hero-banner"
}

// Template returns the path to the HeroBanner's markup template.
func (HeroBanner) Template(_ context.Context) string {
	return "templates/hero-banner.html.tmpl"
}

// Style returns the path to the HeroBanner's stylesheet template.
func (HeroBanner) Style(_ context.Context) string {
	return "templates/hero-banner.css.tmpl"
}

// DeclareChildren returns the Units the HeroBanner nests.
func (HeroBanner) DeclareChildren(_ context.Context) []string {
	return []string{"text"}
}

// Text is a run of copy. The hero banner nests it for its lead paragraph,
// and routed content can reuse it anywhere a block of prose is needed.
type Text struct {
	// Copy is the prose to show. Blank lines split it into paragraphs.
	Copy string
}

// Name returns the name the Text is declared under.
func (Text) Name(_ context.Context) string {
	return "text"
}

// Template returns the path to the Text's markup template.
func (Text) Template(_ context.Context) string {
	return "templates/text.html.tmpl"
}

// Style returns the path to the Text's stylesheet template.
func (Text) Style(_ context.Context) string {
	return "templates/text.css.tmpl"
}

// FuncMap adds the paragraphs function the Text template uses to split Copy
// into paragraph elements.
func (Text) FuncMap(_ context.Context) template.FuncMap {
	return template.FuncMap{
		"paragraphs": func(copy string) []string {
			return strings.Split(copy, "\n\n")
		},
	}
}

// Footer is the colophon at the bottom of the page.
type Footer struct {
	// Owner is the name in the copyright line.
	Owner string

	// Year is the year in the copyright line.
	Year int
}

// Name returns the name the Footer is declared under.
func (Footer) Name(_ context.Context) string {
	return "footer"
}

// Template returns the path to the Footer's markup template.
func (Footer) Template(_ context.Context) string {
	return "templates/footer.html.tmpl"
}

// Style returns the path to the Footer's stylesheet template.
func (Footer) Style(_ context.Context) string {
	return "templates/footer.css.tmpl"
}

// Units returns the landing page's Units, configured with its content, in
// the order they should be declared.
func Units() []atrium.Unit {
	return []atrium.Unit{
		Shell{},
		Header{
			Brand: "Atrium",
			Links: []HeaderLink{
				{Label: "Product", Href: "/product"},
				{Label: "Docs", Href: "/docs"},
				{Label: "Pricing", Href: "/pricing"},
			},
		},
		HeroBanner{
			Headline:         "Compose pages from small, scoped units.",
			CallToAction:     "Get started",
			CallToActionHref: "/docs/quickstart",
			Accent:           "#7c3aed",
		},
		Text{
			Copy: "Every unit brings its own markup and styles, and none of them can step on the others.",
		},
		Footer{
			Owner: "Atrium",
			Year:  2026,
		},
	}
}

// NewRegistry returns a Registry with the landing page's Units declared
// against it, ready to compose.
func NewRegistry(ctx context.Context) (*atrium.Registry, error) {
	registry := atrium.NewRegistry(Templates())
	err := registry.Declare(ctx, Units()...)
	if err != nil {
		return nil, fmt.Errorf("error declaring landing units: %w", err)
	}
	return registry, nil
}
