package router

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/sagarc03/wirehttp"
)

// Builder collects route registrations. It is not safe for concurrent use.
type Builder struct {
	routes map[string]*route
	next   int
}

func NewBuilder() *Builder {
	return &Builder{routes: make(map[string]*route)}
}

// Handle binds handler to method on the path template.
func (b *Builder) Handle(method wirehttp.Method, template string, handler wirehttp.Handler) error {
	if !method.IsValid() {
		return fmt.Errorf("register %s %s: %w", method, template, wirehttp.ErrInvalidMethod)
	}
	if handler == nil {
		return fmt.Errorf("register %s %s: nil handler", method, template)
	}

	key, pattern, params, err := compile(template)
	if err != nil {
		return fmt.Errorf("register %s %s: %w", method, template, err)
	}

	r, ok := b.routes[key]
	if !ok {
		r = &route{
			key:      key,
			path:     "/" + strings.Join(splitSegments(template), "/"),
			pattern:  pattern,
			params:   params,
			handlers: make(map[wirehttp.Method]wirehttp.Handler),
			order:    b.next,
		}
		b.next++
		b.routes[key] = r
	}

	if _, dup := r.handlers[method]; dup {
		return fmt.Errorf("register %s %s: route already bound", method, template)
	}
	if r.isTemplate() && !slices.Equal(paramNames(r.params), paramNames(params)) {
		return fmt.Errorf("register %s %s: placeholder names differ from existing route %s", method, template, key)
	}

	r.handlers[method] = handler
	return nil
}

func paramNames(params []param) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.name
	}
	return names
}

func (b *Builder) Get(template string, h wirehttp.Handler) error {
	return b.Handle(wirehttp.MethodGet, template, h)
}

func (b *Builder) Post(template string, h wirehttp.Handler) error {
	return b.Handle(wirehttp.MethodPost, template, h)
}

func (b *Builder) Put(template string, h wirehttp.Handler) error {
	return b.Handle(wirehttp.MethodPut, template, h)
}

func (b *Builder) Patch(template string, h wirehttp.Handler) error {
	return b.Handle(wirehttp.MethodPatch, template, h)
}

func (b *Builder) Delete(template string, h wirehttp.Handler) error {
	return b.Handle(wirehttp.MethodDelete, template, h)
}

func (b *Builder) Options(template string, h wirehttp.Handler) error {
	return b.Handle(wirehttp.MethodOptions, template, h)
}

// Build freezes the registrations into a Table. Later calls on the Builder
// do not affect the returned Table.
func (b *Builder) Build() *Table {
	t := &Table{literals: make(map[string]*route)}

	for key, r := range b.routes {
		frozen := &route{
			key:      r.key,
			path:     r.path,
			pattern:  r.pattern,
			params:   slices.Clone(r.params),
			handlers: maps.Clone(r.handlers),
			order:    r.order,
		}
		if frozen.isTemplate() {
			t.templates = append(t.templates, frozen)
		} else {
			t.literals[key] = frozen
		}
	}

	sort.SliceStable(t.templates, func(i, j int) bool {
		a, b := t.templates[i], t.templates[j]
		if len(a.params) != len(b.params) {
			return len(a.params) < len(b.params)
		}
		return a.order < b.order
	})

	return t
}

// Table is an immutable route table.
type Table struct {
	literals  map[string]*route
	templates []*route
}

// Match is a successful lookup.
type Match struct {
	Handler wirehttp.Handler
	// Params holds placeholder values; empty for literal routes.
	Params map[string]string
	// Path is the registered template (or literal) that matched.
	Path string
}

// Lookup resolves method and a normalized target.
//
// Returns:
//   - Match: handler and bound params on success
//   - error: wirehttp.ErrRouteNotFound when no path matches, or
//     wirehttp.ErrMethodNotAllowed (which also matches ErrRouteNotFound)
//     when the path matches but method is not bound
func (t *Table) Lookup(method wirehttp.Method, target string) (Match, error) {
	if r, ok := t.literals[target]; ok {
		return resolve(r, method, map[string]string{})
	}

	for _, r := range t.templates {
		if r.pattern.MatchString(target) {
			return resolve(r, method, r.extract(target))
		}
	}

	return Match{}, wirehttp.ErrRouteNotFound
}

var errMethodNotAllowed = errors.Join(wirehttp.ErrMethodNotAllowed, wirehttp.ErrRouteNotFound)

func resolve(r *route, method wirehttp.Method, params map[string]string) (Match, error) {
	h, ok := r.handlers[method]
	if !ok {
		return Match{}, errMethodNotAllowed
	}
	return Match{Handler: h, Params: params, Path: r.path}, nil
}

// RouteInfo describes one registered path for listings.
type RouteInfo struct {
	Path     string   `json:"path" yaml:"path"`
	Methods  []string `json:"methods" yaml:"methods"`
	Template bool     `json:"template" yaml:"template"`
	Params   []string `json:"params,omitempty" yaml:"params,omitempty"`
}

// Routes lists literal routes sorted by path, then templates in match order.
func (t *Table) Routes() []RouteInfo {
	keys := slices.Sorted(maps.Keys(t.literals))

	out := make([]RouteInfo, 0, len(keys)+len(t.templates))
	for _, k := range keys {
		out = append(out, describe(t.literals[k]))
	}
	for _, r := range t.templates {
		out = append(out, describe(r))
	}
	return out
}

func describe(r *route) RouteInfo {
	methods := make([]string, 0, len(r.handlers))
	for m := range r.handlers {
		methods = append(methods, string(m))
	}
	slices.Sort(methods)

	var params []string
	if r.isTemplate() {
		params = paramNames(r.params)
	}

	return RouteInfo{
		Path:     r.path,
		Methods:  methods,
		Template: r.isTemplate(),
		Params:   params,
	}
}
