package atrium

import (
	"context"
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
)

// markerUnit is a minimal Unit for exercising Scope directly.
type markerUnit string

func (u markerUnit) Name(_ context.Context) string {
	return string(u)
}

func (u markerUnit) Template(_ context.Context) string {
	return string(u) + ".html.tmpl"
}

func TestScopeMarker(t *testing.T) {
	t.Parallel()

	// stable across processes, so rendered markup and cached stylesheets
	// can't drift apart
	assert.Equal(t, "data-atrium-4813494d", ScopeMarker("root"))
	assert.Equal(t, ScopeMarker("header"), ScopeMarker("header"))
	assert.NotEqual(t, ScopeMarker("header"), ScopeMarker("footer"))
}

func TestScope(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	scoped := Scope(ctx, markerUnit("styled"), ".a { color: red; }")
	assert.Equal(t, template.CSS(".a["+ScopeMarker("styled")+"] { color: red; }"), scoped)
}

func TestScopeRuleset(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		in  string
		out string
	}{
		"classSelector": {
			in:  `.a { color: red; }`,
			out: `.a[m] { color: red; }`,
		},
		"selectorGroup": {
			in:  `h1, .b { margin: 0; }`,
			out: `h1[m], .b[m] { margin: 0; }`,
		},
		"descendant": {
			in:  `.hero h1 { font-size: 3rem; }`,
			out: `.hero[m] h1[m] { font-size: 3rem; }`,
		},
		"childCombinator": {
			in:  `.nav > a { color: inherit; }`,
			out: `.nav[m] > a[m] { color: inherit; }`,
		},
		"pseudoClass": {
			in:  `a:hover { text-decoration: underline; }`,
			out: `a[m]:hover { text-decoration: underline; }`,
		},
		"barePseudoClass": {
			in:  `:hover { outline: none; }`,
			out: `[m]:hover { outline: none; }`,
		},
		"pseudoElement": {
			in:  `.cta::after { content: ""; }`,
			out: `.cta[m]::after { content: ""; }`,
		},
		"universal": {
			in:  `* { box-sizing: border-box; }`,
			out: `*[m] { box-sizing: border-box; }`,
		},
		"attributeWithComma": {
			in:  `a[title="x, y"] { color: red; }`,
			out: `a[title="x, y"][m] { color: red; }`,
		},
		"functionalPseudoClass": {
			in:  `li:nth-child(2n+1) { background: #eee; }`,
			out: `li[m]:nth-child(2n+1) { background: #eee; }`,
		},
		"isPseudoClass": {
			in:  `.x:is(.y, .z) { color: red; }`,
			out: `.x[m]:is(.y, .z) { color: red; }`,
		},
		"mediaQuery": {
			in:  "@media (max-width: 600px) {\n\t.hero { padding: 2rem; }\n}",
			out: "@media (max-width: 600px) {\n\t.hero[m] { padding: 2rem; }\n}",
		},
		"supportsQuery": {
			in:  `@supports (display: grid) { .g { display: grid; } }`,
			out: `@supports (display: grid) { .g[m] { display: grid; } }`,
		},
		"nestedConditionals": {
			in:  "@media screen {\n@supports (gap: 1rem) { .x { gap: 1rem; } }\n}",
			out: "@media screen {\n@supports (gap: 1rem) { .x[m] { gap: 1rem; } }\n}",
		},
		"layerBlock": {
			in:  `@layer base { h1 { margin: 0; } }`,
			out: `@layer base { h1[m] { margin: 0; } }`,
		},
		"layerStatement": {
			in:  `@layer base, components;`,
			out: `@layer base, components;`,
		},
		"keyframes": {
			in:  `@keyframes pulse { from { opacity: 0; } to { opacity: 1; } }`,
			out: `@keyframes pulse { from { opacity: 0; } to { opacity: 1; } }`,
		},
		"fontFace": {
			in:  `@font-face { font-family: "Atrium"; src: url("atrium.woff2"); }`,
			out: `@font-face { font-family: "Atrium"; src: url("atrium.woff2"); }`,
		},
		"importStatement": {
			in:  `@import url("extra.css");`,
			out: `@import url("extra.css");`,
		},
		"commentBetweenRules": {
			in:  "/* masthead */\n.brand { font-weight: 600; }",
			out: "/* masthead */\n.brand[m] { font-weight: 600; }",
		},
		"commentInSelector": {
			in:  `.a /* note */ .b { color: red; }`,
			out: `.a[m]  .b[m] { color: red; }`,
		},
		"multipleRules": {
			in:  ".a { color: red; }\n.b { color: blue; }",
			out: ".a[m] { color: red; }\n.b[m] { color: blue; }",
		},
		"unclosedBlock": {
			in:  `.a { color: red;`,
			out: `.a { color: red;`,
		},
		"empty": {
			in:  ``,
			out: ``,
		},
	}
	for name, testCase := range cases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.out, scopeRuleset(testCase.in, "[m]"))
		})
	}
}

func TestTagMarkup(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		in  string
		out string
	}{
		"nested": {
			in:  `<div class="shell"><p>hi</p></div>`,
			out: `<div class="shell" data-m=""><p data-m="">hi</p></div>`,
		},
		"slotComment": {
			in:  `<div><!--atrium:slot text--></div>`,
			out: `<div data-m=""><!--atrium:slot text--></div>`,
		},
		"selfClosing": {
			in:  `<img src="logo.png"/>`,
			out: `<img src="logo.png" data-m=""/>`,
		},
		"voidElement": {
			in:  `<br>`,
			out: `<br data-m="">`,
		},
		"textEntities": {
			in:  `<p>bread &amp; butter</p>`,
			out: `<p data-m="">bread &amp; butter</p>`,
		},
		"attributeEntities": {
			in:  `<a href="/docs?a=1&amp;b=2">Docs</a>`,
			out: `<a href="/docs?a=1&amp;b=2" data-m="">Docs</a>`,
		},
		"empty": {
			in:  ``,
			out: ``,
		},
	}
	for name, testCase := range cases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			tagged, err := tagMarkup(testCase.in, "data-m")
			assert.NoError(t, err)
			assert.Equal(t, testCase.out, tagged)
		})
	}
}
