// Package guard evaluates route transitions against locally cached
// authentication state. It is synchronous and never touches the network, so
// a stale token can let a route render; the request pipeline catches that on
// the first API call.
package guard

import (
	"net/url"
	"strings"
)

// Route declares the auth requirements of one path pattern. Path segments
// wrapped in braces ("/store/{id}") match any single segment.
// RequiresAuth and RequiresGuest are mutually exclusive.
type Route struct {
	Path          string
	Name          string
	RequiresAuth  bool
	RequiresGuest bool
	RedirectTo    string
}

// Action is the outcome of an evaluation.
type Action int

const (
	Allow Action = iota
	Redirect
)

// Decision tells the caller whether to proceed or where to go instead.
type Decision struct {
	Action   Action
	Route    *Route
	Location string
	Query    url.Values
}

// Guard holds the route table and the identity predicate.
type Guard struct {
	routes    []Route
	signedIn  func() bool
	loginPath string
	homePath  string
}

// New creates a guard. signedIn must be cheap and synchronous.
func New(routes []Route, signedIn func() bool) *Guard {
	return &Guard{
		routes:    routes,
		signedIn:  signedIn,
		loginPath: "/login",
		homePath:  "/home",
	}
}

// Evaluate decides the transition to target. target may carry a query
// string; the original full target is preserved in the redirect query so the
// login flow can return to it.
func (g *Guard) Evaluate(target string) Decision {
	path := target
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	route := g.match(path)
	if route == nil {
		return Decision{Action: Allow}
	}

	if route.RedirectTo != "" {
		return Decision{Action: Redirect, Route: route, Location: route.RedirectTo}
	}

	signedIn := g.signedIn()

	if route.RequiresAuth && !signedIn {
		q := url.Values{}
		q.Set("redirect", target)
		return Decision{Action: Redirect, Route: route, Location: g.loginPath, Query: q}
	}

	if route.RequiresGuest && signedIn {
		return Decision{Action: Redirect, Route: route, Location: g.homePath}
	}

	return Decision{Action: Allow, Route: route}
}

func (g *Guard) match(path string) *Route {
	segs := splitPath(path)
	for i := range g.routes {
		if matchPattern(splitPath(g.routes[i].Path), segs) {
			return &g.routes[i]
		}
	}
	return nil
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchPattern(pattern, segs []string) bool {
	if len(pattern) != len(segs) {
		return false
	}
	for i, p := range pattern {
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
			continue
		}
		if p != segs[i] {
			return false
		}
	}
	return true
}
