package landing_test

import (
	"context"
	"fmt"
	"strings"

	"impractical.co/atrium"
	"impractical.co/atrium/landing"
)

func Example() {
	ctx := context.Background()

	registry, err := landing.NewRegistry(ctx)
	if err != nil {
		panic(err)
	}
	root, ok := registry.Unit(ctx, "root")
	if !ok {
		panic("root unit not declared")
	}
	node, err := atrium.Compose(ctx, registry, root)
	if err != nil {
		panic(err)
	}

	// the composed tree mirrors the declared units
	var describe func(node *atrium.Node, depth int)
	describe = func(node *atrium.Node, depth int) {
		fmt.Printf("%s%s\n", strings.Repeat("  ", depth), node.Name())
		for _, child := range node.Children() {
			describe(child, depth+1)
		}
	}
	describe(node, 0)

	// every element a unit renders carries that unit's scope marker
	fmt.Print(node.Children()[2].Markup())

	//Output:
	// root
	//   header
	//   hero-banner
	//     text
	//   footer
	// <footer class="colophon" data-atrium-0301844c="">
	//   <p data-atrium-0301844c="">© 2026 Atrium</p>
	// </footer>
}
