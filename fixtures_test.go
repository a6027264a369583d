package atrium_test

import (
	"context"
	"html/template"
	"testing/fstest"

	"impractical.co/atrium"
)

// testUnit is a configurable Unit for tests. It implements every optional
// interface; leaving the optional fields at their zero values behaves like
// not implementing them.
type testUnit struct {
	name     string
	template string
	style    string
	children []string
	funcs    template.FuncMap
}

func (u testUnit) Name(_ context.Context) string {
	return u.name
}

func (u testUnit) Template(_ context.Context) string {
	return u.template
}

func (u testUnit) Style(_ context.Context) string {
	return u.style
}

func (u testUnit) DeclareChildren(_ context.Context) []string {
	return u.children
}

func (u testUnit) FuncMap(_ context.Context) template.FuncMap {
	return u.funcs
}

// bareUnit implements only the required parts of Unit.
type bareUnit struct {
	name     string
	template string
}

func (u bareUnit) Name(_ context.Context) string {
	return u.name
}

func (u bareUnit) Template(_ context.Context) string {
	return u.template
}

func testTemplates(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for path, contents := range files {
		fsys[path] = &fstest.MapFile{Data: []byte(contents)}
	}
	return fsys
}

// scenarioTemplates is the template set for the standard test page: a root
// shell holding a header and a hero banner, with the hero banner holding a
// run of text.
func scenarioTemplates() fstest.MapFS {
	return testTemplates(map[string]string{
		"root.html.tmpl":        `<div class="shell">{{ .Slot "header" }}{{ .Slot "hero-banner" }}</div>`,
		"root.css.tmpl":         `.shell { max-width: 60rem; }`,
		"header.html.tmpl":      `<header>Welcome</header>`,
		"header.css.tmpl":       `header { display: flex; }`,
		"hero-banner.html.tmpl": `<section class="hero">{{ .Slot "text" }}</section>`,
		"hero-banner.css.tmpl":  `.hero { padding: 4rem; }`,
		"text.html.tmpl":        `<p>Hello from the hero.</p>`,
	})
}

// scenarioUnits are the Units rendered by scenarioTemplates, root first.
func scenarioUnits() []atrium.Unit {
	return []atrium.Unit{
		testUnit{name: "root", template: "root.html.tmpl", style: "root.css.tmpl", children: []string{"header", "hero-banner"}},
		testUnit{name: "header", template: "header.html.tmpl", style: "header.css.tmpl"},
		testUnit{name: "hero-banner", template: "hero-banner.html.tmpl", style: "hero-banner.css.tmpl", children: []string{"text"}},
		bareUnit{name: "text", template: "text.html.tmpl"},
	}
}
