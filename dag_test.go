package atrium

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// graphUnit is a minimal Unit with declared children for graph tests.
type graphUnit struct {
	name     string
	children []string
}

func (u graphUnit) Name(_ context.Context) string {
	return u.name
}

func (u graphUnit) Template(_ context.Context) string {
	return u.name + ".html.tmpl"
}

func (u graphUnit) DeclareChildren(_ context.Context) []string {
	return u.children
}

func TestGraphAdd(t *testing.T) {
	t.Parallel()

	g := newGraph[string]()
	assert.Equal(t, 0, g.add("header"))
	assert.Equal(t, 1, g.add("footer"))
	assert.Equal(t, 0, g.add("header"))
}

func TestWalkGraphChildrenFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	units := map[string]Unit{
		"root":        graphUnit{name: "root", children: []string{"header", "hero-banner"}},
		"header":      graphUnit{name: "header"},
		"hero-banner": graphUnit{name: "hero-banner", children: []string{"text"}},
		"text":        graphUnit{name: "text"},
	}

	order, err := walkGraph(ctx, buildUnitGraph(ctx, units))
	require.NoError(t, err)
	assert.Equal(t, []string{"header", "text", "hero-banner", "root"}, order)

	// the order doesn't depend on map iteration
	again, err := walkGraph(ctx, buildUnitGraph(ctx, units))
	require.NoError(t, err)
	assert.Equal(t, order, again)
}

func TestWalkGraphDiamond(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	units := map[string]Unit{
		"page":  graphUnit{name: "page", children: []string{"aside", "card"}},
		"aside": graphUnit{name: "aside", children: []string{"leaf"}},
		"card":  graphUnit{name: "card", children: []string{"leaf"}},
		"leaf":  graphUnit{name: "leaf"},
	}

	order, err := walkGraph(ctx, buildUnitGraph(ctx, units))
	require.NoError(t, err)
	assert.Equal(t, []string{"leaf", "aside", "card", "page"}, order)
}

func TestWalkGraphCycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	units := map[string]Unit{
		"loop-a": graphUnit{name: "loop-a", children: []string{"loop-b"}},
		"loop-b": graphUnit{name: "loop-b", children: []string{"loop-a"}},
	}

	_, err := walkGraph(ctx, buildUnitGraph(ctx, units))
	require.ErrorIs(t, err, ErrUnitCycle)
	assert.Contains(t, err.Error(), "loop-a->loop-b")
	assert.Contains(t, err.Error(), "loop-b->loop-a")
}

func TestWalkGraphSelfCycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	units := map[string]Unit{
		"selfie": graphUnit{name: "selfie", children: []string{"selfie"}},
	}

	_, err := walkGraph(ctx, buildUnitGraph(ctx, units))
	require.ErrorIs(t, err, ErrUnitCycle)
	assert.Contains(t, err.Error(), "selfie->selfie")
}

func TestBuildUnitGraphSkipsUnregistered(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	units := map[string]Unit{
		"island": graphUnit{name: "island", children: []string{"ghost"}},
	}

	order, err := walkGraph(ctx, buildUnitGraph(ctx, units))
	require.NoError(t, err)
	assert.Equal(t, []string{"island"}, order)
}
