package atrium

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html/template"
)

// Node is one piece of a composed page: the markup a Unit rendered, the
// scoped stylesheet it carries, and the Nodes composed for the Units it
// declared as children. Nodes are immutable once composed; composing again
// is the only way to get different content.
type Node struct {
	name     string
	markup   template.HTML
	style    template.CSS
	children []*Node
}

// NewNode builds a Node directly instead of composing it from a Unit. It's
// how content from outside a composition, like the pre-composed output of a
// routing layer, is represented so WithSlotContent can place it.
func NewNode(name string, markup template.HTML, style template.CSS, children ...*Node) *Node {
	return &Node{
		name:     name,
		markup:   markup,
		style:    style,
		children: children,
	}
}

// Name returns the name of the Unit the Node was composed from.
func (n *Node) Name() string {
	return n.name
}

// Markup returns the Node's rendered markup, with the Node's scope marker
// stamped on its own elements and all its slot content substituted in.
func (n *Node) Markup() template.HTML {
	return n.markup
}

// Style returns the Node's own scoped stylesheet, without the stylesheets
// of the Nodes under it. Most callers want Stylesheet.
func (n *Node) Style() template.CSS {
	return n.style
}

// Children returns the Nodes composed for the Units the Node's Unit
// declared, in declaration order, followed by any Nodes that options placed
// in the Node's slots.
func (n *Node) Children() []*Node {
	return n.children
}

// Stylesheet returns the stylesheet for the whole tree rooted at the Node:
// the Node's own scoped style and the style of every Node under it,
// depth-first, parents before children, each distinct style included once no
// matter how many Nodes carry it.
func (n *Node) Stylesheet() template.CSS {
	var results template.CSS
	seen := map[string]struct{}{}
	n.appendStyles(&results, seen)
	return results
}

func (n *Node) appendStyles(results *template.CSS, seen map[string]struct{}) {
	if n.style != "" {
		checksum := hex.EncodeToString(sha256.New().Sum([]byte(n.style)))
		if _, ok := seen[checksum]; !ok {
			seen[checksum] = struct{}{}
			*results += template.CSS(fmt.Sprintf(`
/* unit %s */
%s`, n.name, n.style)) // #nosec G203
		}
	}
	for _, child := range n.children {
		child.appendStyles(results, seen)
	}
}
