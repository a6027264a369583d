package atrium_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impractical.co/atrium"
)

func TestNewNode(t *testing.T) {
	t.Parallel()

	child := atrium.NewNode("badge", "<span>New</span>", ".badge { color: gold; }")
	node := atrium.NewNode("card", "<div><span>New</span></div>", ".card { border: 1px solid; }", child)

	assert.Equal(t, "card", node.Name())
	assert.EqualValues(t, "<div><span>New</span></div>", node.Markup())
	assert.EqualValues(t, ".card { border: 1px solid; }", node.Style())
	require.Len(t, node.Children(), 1)
	assert.Same(t, child, node.Children()[0])
}

func TestNodeStylesheet(t *testing.T) {
	t.Parallel()

	grand := atrium.NewNode("grand", "<i>g</i>", ".c { color: teal; }")
	quiet := atrium.NewNode("quiet", "<span>q</span>", "", grand)
	first := atrium.NewNode("first", "<p>f</p>", ".b { margin: 0; }")
	repeat := atrium.NewNode("repeat", "<p>r</p>", ".b { margin: 0; }")
	root := atrium.NewNode("root", "<div>r</div>", ".a { padding: 0; }", first, quiet, repeat)

	// parents come before children, styleless nodes contribute nothing but
	// their subtrees, and a style already included isn't repeated
	assert.EqualValues(t, "\n/* unit root */\n.a { padding: 0; }\n/* unit first */\n.b { margin: 0; }\n/* unit grand */\n.c { color: teal; }", root.Stylesheet())
}

func TestNodeStylesheetEmpty(t *testing.T) {
	t.Parallel()

	node := atrium.NewNode("plain", "<p>plain</p>", "", atrium.NewNode("inner", "<i>i</i>", ""))
	assert.EqualValues(t, "", node.Stylesheet())
}
