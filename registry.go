package atrium

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"strings"
	"sync"
)

var (
	// ErrDuplicateUnit is returned when a Unit is declared under a name
	// that already has a Unit declared under it. The first declaration
	// stays in force.
	ErrDuplicateUnit = errors.New("unit already declared")

	// ErrUnresolvedDependency is returned when a Unit declares a child by
	// name and no Unit is declared under that name.
	ErrUnresolvedDependency = errors.New("declared child is not registered")

	// ErrInvalidUnitName is returned when a Unit's name is empty or
	// nothing but whitespace.
	ErrInvalidUnitName = errors.New("invalid unit name")
)

// Registry holds the Units available for composition, resolving the names
// they declare as children into registered Units. It also caches the parsed
// templates and scoped stylesheets of those Units, so repeated compositions
// don't re-parse and re-scope the same files. A Registry must be
// instantiated through NewRegistry, its empty value is not usable.
type Registry struct {
	units   map[string]Unit
	unitsMu sync.RWMutex

	// cache our templates to avoid re-parsing them for every composition
	// but allow us to assign funcmaps to them from the unit
	templateCache   map[string]*template.Template
	templateCacheMu sync.RWMutex

	styleCache   map[string]template.CSS
	styleCacheMu sync.RWMutex

	// templates is where Compose will look for the template files that
	// Units point to.
	templates fs.FS

	funcs template.FuncMap
}

// RegistryOption configures a Registry when it's constructed.
type RegistryOption func(*Registry)

// WithFuncs makes the passed functions available to every Unit's templates.
// Functions a Unit adds through FuncMapExtender override these when their
// names collide.
func WithFuncs(funcs template.FuncMap) RegistryOption {
	return func(r *Registry) {
		r.funcs = mergeFuncMaps(r.funcs, funcs)
	}
}

// NewRegistry returns a Registry instance that is ready to have Units
// declared against it. Template and style paths that Units return are
// resolved within templates.
func NewRegistry(templates fs.FS, opts ...RegistryOption) *Registry {
	reg := &Registry{
		units:         map[string]Unit{},
		templateCache: map[string]*template.Template{},
		styleCache:    map[string]template.CSS{},
		templates:     templates,
		funcs:         template.FuncMap{},
	}
	for _, opt := range opts {
		opt(reg)
	}
	return reg
}

// Declare registers the passed Units, making them resolvable by name. Units
// are declared one at a time, in the order passed; when one of them can't be
// declared, the returned error describes it, the Units before it stay
// registered, and the Units after it are not declared.
//
// Declaring a nil Unit returns an error wrapping ErrNilUnit. Declaring a
// Unit with an empty or all-whitespace name returns an error wrapping
// ErrInvalidUnitName. Declaring a name that's already declared returns an
// error wrapping ErrDuplicateUnit. Declaring a Unit whose declared children
// would close a dependency cycle returns an error wrapping ErrUnitCycle and
// leaves that Unit unregistered.
func (r *Registry) Declare(ctx context.Context, units ...Unit) error {
	for _, unit := range units {
		err := r.declare(ctx, unit)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) declare(ctx context.Context, unit Unit) error {
	if unit == nil {
		return fmt.Errorf("declaring unit: %w", ErrNilUnit)
	}
	name := unit.Name(ctx)
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("declaring %T: %w", unit, ErrInvalidUnitName)
	}
	r.unitsMu.Lock()
	defer r.unitsMu.Unlock()
	if _, ok := r.units[name]; ok {
		return fmt.Errorf("declaring %q: %w", name, ErrDuplicateUnit)
	}
	r.units[name] = unit
	_, err := walkGraph(ctx, buildUnitGraph(ctx, r.units))
	if err != nil {
		delete(r.units, name)
		return fmt.Errorf("declaring %q: %w", name, err)
	}
	logger(ctx).DebugContext(ctx, "declared unit", slog.String("unit", name))
	return nil
}

// Unit returns the Unit declared under the passed name, if one exists.
//
// It can safely be used by multiple goroutines.
func (r *Registry) Unit(_ context.Context, name string) (Unit, bool) {
	r.unitsMu.RLock()
	defer r.unitsMu.RUnlock()
	unit, ok := r.units[name]
	return unit, ok
}

// ResolveChildren resolves the names the passed Unit declares into the Units
// registered under them, preserving declaration order. Units that don't
// implement ChildDeclarer resolve to no children. If any declared name has
// no Unit registered under it, ResolveChildren returns an error wrapping
// ErrUnresolvedDependency that identifies both the declaring Unit and the
// name that didn't resolve.
func (r *Registry) ResolveChildren(ctx context.Context, unit Unit) ([]Unit, error) {
	declarer, ok := unit.(ChildDeclarer)
	if !ok {
		return nil, nil
	}
	names := declarer.DeclareChildren(ctx)
	results := make([]Unit, 0, len(names))
	for _, name := range names {
		child, ok := r.Unit(ctx, name)
		if !ok {
			return nil, fmt.Errorf("%w: %q declares %q", ErrUnresolvedDependency, unit.Name(ctx), name)
		}
		results = append(results, child)
	}
	return results, nil
}

// template returns the parsed template for the passed Unit, parsing and
// caching it on first use. The cache is keyed by Unit name; the template
// parsed for a given name is the same every time, but the data may differ
// per composition, so the executed output is never cached.
func (r *Registry) template(ctx context.Context, unit Unit) (*template.Template, error) {
	name := unit.Name(ctx)
	r.templateCacheMu.RLock()
	cached, ok := r.templateCache[name]
	r.templateCacheMu.RUnlock()
	if ok {
		return cached, nil
	}
	path := unit.Template(ctx)
	if path == "" {
		return nil, fmt.Errorf("error rendering %q: %w", name, ErrNoTemplatePath)
	}
	funcs := r.funcs
	if extender, ok := unit.(FuncMapExtender); ok {
		funcs = mergeFuncMaps(funcs, extender.FuncMap(ctx))
	}
	parsed, err := parseTemplate(r.templates, funcs, path)
	if err != nil {
		return nil, fmt.Errorf("error parsing template for %q: %w", name, err)
	}
	r.templateCacheMu.Lock()
	r.templateCache[name] = parsed
	r.templateCacheMu.Unlock()
	return parsed, nil
}

// scopedStyle returns the passed Unit's stylesheet, rendered and rewritten
// so its selectors only match elements carrying the Unit's scope marker.
// Units that don't implement Styler, or that return an empty style path,
// have no stylesheet. The scoped result is cached by Unit name; a Unit's
// stylesheet is the same for every composition.
func (r *Registry) scopedStyle(ctx context.Context, unit Unit) (template.CSS, error) {
	styler, ok := unit.(Styler)
	if !ok {
		return "", nil
	}
	path := styler.Style(ctx)
	if path == "" {
		return "", nil
	}
	name := unit.Name(ctx)
	r.styleCacheMu.RLock()
	cached, ok := r.styleCache[name]
	r.styleCacheMu.RUnlock()
	if ok {
		return cached, nil
	}
	funcs := r.funcs
	if extender, ok := unit.(FuncMapExtender); ok {
		funcs = mergeFuncMaps(funcs, extender.FuncMap(ctx))
	}
	tmpl, err := parseTemplate(r.templates, funcs, path)
	if err != nil {
		return "", fmt.Errorf("error parsing style for %q: %w", name, err)
	}
	var raw strings.Builder
	data := &RenderData{
		Unit:  unit,
		Scope: template.HTMLAttr(ScopeMarker(name)), // #nosec G203
	}
	err = tmpl.Execute(&raw, data)
	if err != nil {
		return "", fmt.Errorf("error executing style %q for unit %q: %w", path, name, err)
	}
	scoped := Scope(ctx, unit, raw.String())
	r.styleCacheMu.Lock()
	r.styleCache[name] = scoped
	r.styleCacheMu.Unlock()
	return scoped, nil
}
