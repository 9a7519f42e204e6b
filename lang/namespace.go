package lang

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/ardnew/rosetto/log"
)

// Separator joins the components of a dotted namespace path.
const Separator = "."

// Namespace is a flat mapping of names to values. Sealed names reject
// redefinition. A key containing a dot is routed to the child namespace
// named by everything before its last dot.
type Namespace struct {
	name   string
	reg    *Registry
	vars   map[string]Value
	sealed map[string]bool
}

// Name returns the dotted path of the namespace. The root namespace has
// the empty name.
func (n *Namespace) Name() string { return n.name }

// Define binds key to v. It fails with [ErrSealed] if key is sealed, in
// which case the existing binding is kept.
func (n *Namespace) Define(key string, v Value) error {
	ns, leaf := n.route(key)

	if ns.sealed[leaf] {
		return ErrSealed.With(
			slog.String("namespace", ns.name),
			slog.String("key", leaf),
		)
	}

	ns.vars[leaf] = v

	return nil
}

// Get returns the value bound to key, or [Null] if there is none.
func (n *Namespace) Get(key string) Value {
	v, _ := n.Lookup(key)

	return v
}

// Lookup is like [Namespace.Get] and also reports whether key was found.
// An entry stored with [Namespace.PutAbsolute] takes precedence over
// routing a dotted key.
func (n *Namespace) Lookup(key string) (Value, bool) {
	if v, ok := n.vars[key]; ok {
		return v, true
	}

	if !strings.Contains(key, Separator) {
		return Null, false
	}

	i := strings.LastIndex(key, Separator)

	ns, ok := n.reg.Lookup(n.join(key[:i]))
	if !ok {
		return Null, false
	}

	v, ok := ns.vars[key[i+1:]]
	if !ok {
		return Null, false
	}

	return v, true
}

// Delete removes the binding of key unless it is sealed.
func (n *Namespace) Delete(key string) error {
	ns, leaf := n.route(key)

	if ns.sealed[leaf] {
		return ErrSealed.With(
			slog.String("namespace", ns.name),
			slog.String("key", leaf),
		)
	}

	delete(ns.vars, leaf)

	return nil
}

// Seal write-protects key.
func (n *Namespace) Seal(key string) {
	ns, leaf := n.route(key)
	ns.sealed[leaf] = true
}

// Unseal removes the write protection of key.
func (n *Namespace) Unseal(key string) {
	ns, leaf := n.route(key)
	delete(ns.sealed, leaf)
}

// Sealed reports whether key is write-protected.
func (n *Namespace) Sealed(key string) bool {
	if n.sealed[key] {
		return true
	}

	ns, leaf := n.route(key)

	return ns.sealed[leaf]
}

// PutAbsolute binds key verbatim in n without routing on dots, so that a
// package-qualified name such as "math.add" can be stored directly.
func (n *Namespace) PutAbsolute(key string, v Value) error {
	if n.sealed[key] {
		return ErrSealed.With(
			slog.String("namespace", n.name),
			slog.String("key", key),
		)
	}

	n.vars[key] = v

	return nil
}

// Include copies every binding of other into n together with its seal.
// Bindings that would overwrite a sealed name of n are skipped; their keys
// are returned and logged.
func (n *Namespace) Include(ctx context.Context, other *Namespace) []string {
	var skipped []string

	for _, key := range other.Keys() {
		if n.sealed[key] {
			skipped = append(skipped, key)

			continue
		}

		n.vars[key] = other.vars[key]

		if other.sealed[key] {
			n.sealed[key] = true
		}
	}

	if len(skipped) > 0 {
		n.reg.logger.WarnContext(ctx, "include skipped sealed names",
			slog.String("namespace", n.name),
			slog.String("from", other.name),
			slog.String("keys", strings.Join(skipped, ",")),
		)
	}

	return skipped
}

// Keys returns the names bound directly in n, sorted.
func (n *Namespace) Keys() []string { return slices.Sorted(maps.Keys(n.vars)) }

// Len returns the number of names bound directly in n.
func (n *Namespace) Len() int { return len(n.vars) }

// route resolves key to the namespace that owns it and the key within it.
func (n *Namespace) route(key string) (*Namespace, string) {
	i := strings.LastIndex(key, Separator)
	if i < 0 {
		return n, key
	}

	return n.reg.Namespace(n.join(key[:i])), key[i+1:]
}

func (n *Namespace) join(path string) string {
	if n.name == "" {
		return path
	}

	return n.name + Separator + path
}

// Registry holds every namespace keyed by dotted path. Namespaces are
// created on first reference and live as long as the registry.
type Registry struct {
	spaces map[string]*Namespace
	active string
	logger log.Logger
}

// NewRegistry returns a registry holding only the root namespace.
func NewRegistry(logger log.Logger) *Registry {
	r := &Registry{spaces: make(map[string]*Namespace), logger: logger}
	r.Namespace("")

	return r
}

// Root returns the namespace backing un-dotted keys.
func (r *Registry) Root() *Namespace { return r.spaces[""] }

// Namespace returns the namespace at path, creating it if needed.
func (r *Registry) Namespace(path string) *Namespace {
	if ns, ok := r.spaces[path]; ok {
		return ns
	}

	ns := &Namespace{
		name:   path,
		reg:    r,
		vars:   make(map[string]Value),
		sealed: make(map[string]bool),
	}
	r.spaces[path] = ns

	return ns
}

// Lookup returns the namespace at path if it has been created.
func (r *Registry) Lookup(path string) (*Namespace, bool) {
	ns, ok := r.spaces[path]

	return ns, ok
}

// Names returns the paths of all namespaces, sorted. The root is "".
func (r *Registry) Names() []string { return slices.Sorted(maps.Keys(r.spaces)) }

// Active returns the namespace used for unqualified lookup after the
// local scope chain.
func (r *Registry) Active() *Namespace { return r.Namespace(r.active) }

// SetActive makes the namespace at path active.
func (r *Registry) SetActive(path string) { r.active = path }

// ImportPackage copies the functions of pkg into the namespace name, or
// into a namespace named after the package if name is empty, and seals
// them.
func (r *Registry) ImportPackage(
	ctx context.Context,
	pkg *FunctionPackage,
	name string,
) (*Namespace, error) {
	if name == "" {
		name = pkg.Name
	}

	if name == "" || strings.HasPrefix(name, Separator) ||
		strings.HasSuffix(name, Separator) {
		return nil, ErrInvalidPackageName.With(slog.String("package", pkg.Name))
	}

	ns := r.Namespace(name)

	for _, fn := range pkg.Functions {
		if err := ns.Define(fn.Name, fn); err != nil {
			r.logger.WarnContext(ctx, "package function not imported",
				slog.String("package", pkg.Name),
				slog.Any("error", err),
			)

			continue
		}

		ns.Seal(fn.Name)
	}

	r.logger.DebugContext(ctx, "package imported",
		slog.String("package", pkg.Name),
		slog.String("namespace", name),
		slog.Int("functions", len(pkg.Functions)),
	)

	return ns, nil
}

// UsePackage flattens the namespace name into the active namespace so its
// bindings resolve without qualification.
func (r *Registry) UsePackage(ctx context.Context, name string) error {
	ns, ok := r.Lookup(name)
	if !ok {
		return ErrUnresolved.With(slog.String("package", name))
	}

	r.Active().Include(ctx, ns)

	return nil
}
