package atrium

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidManifest is returned when a manifest parses as YAML but
	// doesn't describe a usable set of Units.
	ErrInvalidManifest = errors.New("invalid unit manifest")
)

// Manifest is the YAML description of a set of Units, for pages whose Units
// are all templates and need no behavior of their own.
type Manifest struct {
	Units []ManifestUnit `yaml:"units"`
}

// ManifestUnit is one Unit's entry in a Manifest.
type ManifestUnit struct {
	// Name is the name the Unit is declared under.
	Name string `yaml:"name"`

	// Template is the path to the Unit's markup template.
	Template string `yaml:"template"`

	// Style is the path to the Unit's stylesheet template, if it has
	// one.
	Style string `yaml:"style,omitempty"`

	// Children are the names of the Units this Unit declares as
	// children.
	Children []string `yaml:"children,omitempty"`
}

// LoadManifest reads a YAML Manifest from the passed fs.FS and returns the
// Units it describes, ready to be declared against a Registry. Units loaded
// this way carry no behavior; anything that needs Go code behind it, like a
// FuncMapExtender, is written as a type instead.
//
// A manifest must give every Unit a name and a template, and can't name a
// Unit twice; one that does returns an error wrapping ErrInvalidManifest.
func LoadManifest(ctx context.Context, fsys fs.FS, path string) ([]Unit, error) {
	contents, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("error reading manifest %q: %w", path, err)
	}
	var manifest Manifest
	err = yaml.Unmarshal(contents, &manifest)
	if err != nil {
		return nil, fmt.Errorf("error parsing manifest %q: %w", path, err)
	}
	seen := map[string]struct{}{}
	results := make([]Unit, 0, len(manifest.Units))
	for pos, entry := range manifest.Units {
		if entry.Name == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrInvalidManifest, pos)
		}
		if entry.Template == "" {
			return nil, fmt.Errorf("%w: %q has no template", ErrInvalidManifest, entry.Name)
		}
		if _, ok := seen[entry.Name]; ok {
			return nil, fmt.Errorf("%w: %q appears twice", ErrInvalidManifest, entry.Name)
		}
		seen[entry.Name] = struct{}{}
		results = append(results, manifestUnit{entry: entry})
	}
	logger(ctx).DebugContext(ctx, "loaded unit manifest", slog.String("manifest", path), slog.Int("units", len(results)))
	return results, nil
}

var _ Unit = manifestUnit{}
var _ Styler = manifestUnit{}
var _ ChildDeclarer = manifestUnit{}

// manifestUnit adapts one Manifest entry into a Unit.
type manifestUnit struct {
	entry ManifestUnit
}

func (m manifestUnit) Name(_ context.Context) string {
	return m.entry.Name
}

func (m manifestUnit) Template(_ context.Context) string {
	return m.entry.Template
}

func (m manifestUnit) Style(_ context.Context) string {
	return m.entry.Style
}

func (m manifestUnit) DeclareChildren(_ context.Context) []string {
	return m.entry.Children
}
