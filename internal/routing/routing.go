// Package routing resolves link targets against a configurable route table.
package routing

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/haierkeys/menu-tree-service/internal/domain"
	"github.com/haierkeys/menu-tree-service/pkg/code"
	"github.com/haierkeys/menu-tree-service/pkg/util"
)

// Route is a named internal path; segments written as {name} are parameters.
type Route struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
	// Restricted routes exist but cannot be linked to.
	Restricted bool `yaml:"restricted"`
}

// Config route table configuration
type Config struct {
	Routes []Route `yaml:"routes"`
	// Aliases maps a path alias to its system path, e.g. /about -> /node/1
	Aliases map[string]string `yaml:"aliases"`
}

// DefaultRoutes returns the routes known when none are configured.
func DefaultRoutes() []Route {
	return []Route{
		{Name: "user.page", Path: "/user"},
		{Name: "user.login", Path: "/user/login"},
		{Name: "user.logout", Path: "/user/logout"},
		{Name: "entity.user.canonical", Path: "/user/{user}"},
		{Name: "entity.node.canonical", Path: "/node/{node}"},
		{Name: "node.add_page", Path: "/node/add"},
		{Name: "contact.site_page", Path: "/contact"},
		{Name: "search.view", Path: "/search"},
		{Name: "filter.tips_all", Path: "/filter/tips"},
		{Name: "system.admin", Path: "/admin"},
		{Name: "system.admin_structure", Path: "/admin/structure"},
		{Name: "entity.menu.collection", Path: "/admin/structure/menu"},
		{Name: "user.admin_permissions", Path: "/admin/people/permissions", Restricted: true},
	}
}

type compiledRoute struct {
	Route
	segments []string
	literals int
}

// Table is an immutable route table implementing domain.TargetResolver.
type Table struct {
	routes  []*compiledRoute
	byName  map[string]*compiledRoute
	aliases map[string]string
}

// NewTable compiles cfg; route names must be unique and paths absolute.
func NewTable(cfg Config) (*Table, error) {
	routes := cfg.Routes
	if len(routes) == 0 {
		routes = DefaultRoutes()
	}

	t := &Table{
		byName:  make(map[string]*compiledRoute, len(routes)),
		aliases: make(map[string]string, len(cfg.Aliases)),
	}
	for _, r := range routes {
		if r.Name == "" || !strings.HasPrefix(r.Path, "/") {
			return nil, fmt.Errorf("invalid route %q with path %q", r.Name, r.Path)
		}
		if _, ok := t.byName[r.Name]; ok {
			return nil, fmt.Errorf("duplicate route name %q", r.Name)
		}
		cr := &compiledRoute{Route: r, segments: splitPath(r.Path)}
		for _, s := range cr.segments {
			if !isParam(s) {
				cr.literals++
			}
		}
		t.routes = append(t.routes, cr)
		t.byName[r.Name] = cr
	}
	for alias, system := range cfg.Aliases {
		t.aliases[normalizePath(alias)] = normalizePath(system)
	}
	return t, nil
}

// ResolveTarget parses uri into a Target.
// Accepted forms: <front> or /, route:name;k=v, /internal/path, http(s)://host/...
// Query string and fragment are kept on internal targets.
func (t *Table) ResolveTarget(ctx context.Context, uri string) (*domain.Target, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, code.ErrorInvalidTarget.WithDetails("empty link")
	}

	if util.IsExternalURL(uri) {
		u, err := url.Parse(uri)
		if err != nil || u.Host == "" {
			return nil, code.ErrorInvalidTarget.WithDetails(fmt.Sprintf("The path '%s' is either invalid or you do not have access to it.", uri))
		}
		return &domain.Target{Kind: domain.TargetKindExternal, URL: uri}, nil
	}

	base, query, fragment := splitURI(uri)

	switch {
	case base == domain.FrontPage || base == "/":
		return &domain.Target{Kind: domain.TargetKindFront, Query: query, Fragment: fragment}, nil

	case strings.HasPrefix(base, "route:"):
		name, params, err := parseRouteRef(strings.TrimPrefix(base, "route:"))
		if err != nil {
			return nil, code.ErrorInvalidTarget.WithDetails(err.Error())
		}
		r, ok := t.byName[name]
		if !ok {
			return nil, code.ErrorInvalidTarget.WithDetails(fmt.Sprintf("route '%s' does not exist", name))
		}
		if r.Restricted {
			return nil, code.ErrorTargetInaccessible.WithDetails(fmt.Sprintf("The path '%s' is inaccessible.", uri))
		}
		path, err := r.build(params)
		if err != nil {
			return nil, code.ErrorInvalidTarget.WithDetails(err.Error())
		}
		return &domain.Target{Kind: domain.TargetKindRoute, RouteName: name, RouteParams: params, Path: path, Query: query, Fragment: fragment}, nil

	case strings.HasPrefix(base, "/"):
		path := normalizePath(base)
		if system, ok := t.aliases[path]; ok {
			path = system
		}
		r, params, ok := t.match(path)
		if !ok {
			return nil, code.ErrorInvalidTarget.WithDetails(fmt.Sprintf("The path '%s' is either invalid or you do not have access to it.", uri))
		}
		if r.Restricted {
			return nil, code.ErrorTargetInaccessible.WithDetails(fmt.Sprintf("The path '%s' is inaccessible.", uri))
		}
		return &domain.Target{Kind: domain.TargetKindRoute, RouteName: r.Name, RouteParams: params, Path: path, Query: query, Fragment: fragment}, nil
	}

	return nil, code.ErrorInvalidTarget.WithDetails(fmt.Sprintf("Manually entered paths should start with one of the following characters: / ? #. '%s' does not.", uri))
}

// PathFor builds the path of a named route, or "" when the route is unknown.
func (t *Table) PathFor(name string, params map[string]string) string {
	r, ok := t.byName[name]
	if !ok {
		return ""
	}
	path, err := r.build(params)
	if err != nil {
		return ""
	}
	return path
}

// match returns the route with the most literal segments matching path.
func (t *Table) match(path string) (*compiledRoute, map[string]string, bool) {
	segments := splitPath(path)
	var best *compiledRoute
	var bestParams map[string]string
	for _, r := range t.routes {
		if len(r.segments) != len(segments) {
			continue
		}
		params := map[string]string{}
		ok := true
		for i, s := range r.segments {
			if isParam(s) {
				params[strings.Trim(s, "{}")] = segments[i]
				continue
			}
			if s != segments[i] {
				ok = false
				break
			}
		}
		if ok && (best == nil || r.literals > best.literals) {
			best, bestParams = r, params
		}
	}
	if best == nil {
		return nil, nil, false
	}
	if len(bestParams) == 0 {
		bestParams = nil
	}
	return best, bestParams, true
}

func (r *compiledRoute) build(params map[string]string) (string, error) {
	if len(r.segments) == 0 {
		return "/", nil
	}
	parts := make([]string, len(r.segments))
	for i, s := range r.segments {
		if !isParam(s) {
			parts[i] = s
			continue
		}
		v, ok := params[strings.Trim(s, "{}")]
		if !ok || v == "" {
			return "", fmt.Errorf("route '%s' requires parameter %s", r.Name, s)
		}
		parts[i] = url.PathEscape(v)
	}
	return "/" + strings.Join(parts, "/"), nil
}

func parseRouteRef(ref string) (string, map[string]string, error) {
	parts := strings.Split(ref, ";")
	name := parts[0]
	if name == "" {
		return "", nil, fmt.Errorf("route reference without a name")
	}
	var params map[string]string
	for _, p := range parts[1:] {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return "", nil, fmt.Errorf("malformed route parameter %q", p)
		}
		uv, err := url.QueryUnescape(v)
		if err != nil {
			return "", nil, err
		}
		if params == nil {
			params = map[string]string{}
		}
		params[k] = uv
	}
	return name, params, nil
}

func splitURI(uri string) (base, query, fragment string) {
	base = uri
	if i := strings.IndexByte(base, '#'); i >= 0 {
		base, fragment = base[:i], base[i+1:]
	}
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base, query = base[:i], base[i+1:]
	}
	return base, query, fragment
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func normalizePath(path string) string {
	if path == "/" {
		return path
	}
	return "/" + strings.Trim(path, "/")
}

func isParam(segment string) bool {
	return len(segment) > 2 && segment[0] == '{' && segment[len(segment)-1] == '}'
}
