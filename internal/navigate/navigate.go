// Package navigate tracks the client route of a map session.
package navigate

import (
	"path"
	"strings"
	"sync"
)

// Route prefixes for item detail pages.
const (
	HomePath             = "/home"
	constructionSitesSeg = "construction-sites"
	areasSeg             = "areas"
	jobsSeg              = "jobs"
)

// ConstructionSitePath returns the detail route of a construction site.
func ConstructionSitePath(id string) string {
	return Absolute(path.Join(HomePath, constructionSitesSeg, id))
}

// AreaPath returns the detail route of an area.
func AreaPath(id string) string {
	return Absolute(path.Join(HomePath, areasSeg, id))
}

// JobPath returns the detail route of a job.
func JobPath(id string) string {
	return Absolute(path.Join(HomePath, jobsSeg, id))
}

// Absolute makes p rooted and clean.
func Absolute(p string) string {
	return path.Clean("/" + strings.TrimPrefix(p, "/"))
}

// Params are the route parameters the map cares about.
type Params struct {
	Path string `json:"path" doc:"Current route"`
	ID   string `json:"id,omitempty" doc:"Item id of the active detail route"`
}

// ParseParams extracts the active item id from a detail route.
func ParseParams(p string) Params {
	p = Absolute(p)
	params := Params{Path: p}
	parts := strings.Split(strings.TrimPrefix(p, HomePath+"/"), "/")
	if !strings.HasPrefix(p, HomePath+"/") || len(parts) != 2 {
		return params
	}
	switch parts[0] {
	case constructionSitesSeg, areasSeg, jobsSeg:
		params.ID = parts[1]
	}
	return params
}

// Router holds the current route and its history.
type Router struct {
	mu      sync.RWMutex
	current Params
	history []string
	notify  func(Params)
}

// NewRouter creates a router on the home route. notify, if not nil, is
// called after every navigation.
func NewRouter(notify func(Params)) *Router {
	if notify == nil {
		notify = func(Params) {}
	}
	return &Router{current: ParseParams(HomePath), notify: notify}
}

// Params returns the parameters of the current route.
func (r *Router) Params() Params {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Navigate moves to p and records it in the history.
func (r *Router) Navigate(p string) {
	params := ParseParams(p)
	r.mu.Lock()
	r.current = params
	r.history = append(r.history, params.Path)
	r.mu.Unlock()
	r.notify(params)
}

// History returns every route navigated to, oldest first.
func (r *Router) History() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.history))
	copy(out, r.history)
	return out
}
