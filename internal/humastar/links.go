package humastar

import (
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
)

// StreamTag marks operations that answer with Datastar SSE. They are left
// out of link discovery.
const StreamTag = "pointer"

// Links holds RFC 8288 link headers keyed by operation path.
//
// The transformer has to be installed in the Huma config before the API is
// created, while discovery needs the registered routes, so the two are
// split: install [Links.Transformer] first and call [Links.Discover] once
// all routes exist.
type Links struct {
	mu    sync.RWMutex
	paths map[string][]string
}

// NewLinks returns an empty link table.
func NewLinks() *Links {
	return &Links{paths: map[string][]string{}}
}

// Discover walks the OpenAPI paths and derives collection, item, up and
// entry-point links from their shape.
func (l *Links) Discover(api huma.API) {
	oapi := api.OpenAPI()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paths = map[string][]string{}

	var collections, items []string
	for p, pi := range oapi.Paths {
		if slices.Contains(primaryTags(pi), StreamTag) {
			continue
		}
		if strings.Contains(p, "{") {
			items = append(items, p)
		} else {
			collections = append(collections, p)
		}
	}
	slices.Sort(collections)
	slices.Sort(items)

	for _, item := range items {
		parent := path.Dir(item)
		if _, ok := oapi.Paths[parent]; ok {
			l.add(item, parent, "collection")
			l.add(item, parent, "up")
		}
		if pi := oapi.Paths[item]; pi.Put != nil || pi.Patch != nil {
			l.add(item, item, "edit")
		}
	}

	for _, coll := range collections {
		for _, item := range items {
			if path.Dir(item) == coll {
				l.add(coll, item, "item")
			}
		}
		if oapi.Paths[coll].Post != nil {
			l.add(coll, coll, "create-form")
		}
		if coll != "/health" {
			l.add(coll, "/health", "up")
			l.add("/health", coll, lastSegment(coll))
		}
	}

	l.add("/health", "/openapi.json", "describedby")
	l.add("/health", "/openapi.json", "service-desc")
	l.add("/health", "/docs", "service-doc")

	for p, pi := range oapi.Paths {
		for _, op := range []*huma.Operation{pi.Get, pi.Post, pi.Put, pi.Patch, pi.Delete} {
			if op != nil {
				injectResponseLinks(op, l.paths[p])
			}
		}
	}
}

// For returns the links discovered for an operation path.
func (l *Links) For(opPath string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.paths[opPath])
}

// Transformer returns a Huma Transformer that writes the discovered links,
// a self link for item paths, pagination links and body actions.
func (l *Links) Transformer() huma.Transformer {
	return func(ctx huma.Context, status string, v any) (any, error) {
		op := ctx.Operation()
		if op == nil {
			return v, nil
		}

		for _, link := range l.For(op.Path) {
			ctx.AppendHeader("Link", link)
		}
		if strings.Contains(op.Path, "{") {
			ctx.AppendHeader("Link", fmt.Sprintf(`<%s>; rel="self"`, ctx.URL().Path))
		}
		if p, ok := v.(Pager); ok {
			for _, link := range p.PaginationLinks(ctx.URL().Path) {
				ctx.AppendHeader("Link", link)
			}
		}
		if a, ok := v.(Actor); ok {
			for _, action := range a.Actions() {
				ctx.AppendHeader("Link", action.LinkHeader())
			}
		}
		return v, nil
	}
}

func (l *Links) add(from, to, rel string) {
	val := fmt.Sprintf(`<%s>; rel="%s"`, to, rel)
	if !slices.Contains(l.paths[from], val) {
		l.paths[from] = append(l.paths[from], val)
	}
}

func primaryTags(pi *huma.PathItem) []string {
	for _, op := range []*huma.Operation{pi.Get, pi.Post, pi.Put, pi.Patch, pi.Delete} {
		if op != nil && len(op.Tags) > 0 {
			return op.Tags
		}
	}
	return nil
}

func lastSegment(p string) string {
	parts := strings.Split(strings.TrimRight(p, "/"), "/")
	return parts[len(parts)-1]
}

// injectResponseLinks documents the links on the operation's success
// response.
func injectResponseLinks(op *huma.Operation, headers []string) {
	if op.Responses == nil || len(headers) == 0 {
		return
	}
	var resp *huma.Response
	for code, r := range op.Responses {
		if strings.HasPrefix(code, "2") {
			resp = r
			break
		}
	}
	if resp == nil {
		return
	}
	if resp.Links == nil {
		resp.Links = map[string]*huma.Link{}
	}
	for _, h := range headers {
		rel, href := parseLinkHeader(h)
		if rel == "" {
			continue
		}
		resp.Links[rel] = &huma.Link{
			OperationRef: href,
			Description:  "Related: " + rel,
		}
	}
}

// parseLinkHeader splits `<url>; rel="name"`.
func parseLinkHeader(h string) (rel, href string) {
	target, params, ok := strings.Cut(h, ";")
	if !ok {
		return "", ""
	}
	href = strings.Trim(strings.TrimSpace(target), "<>")
	params = strings.TrimSpace(params)
	if v, ok := strings.CutPrefix(params, "rel="); ok {
		rel = strings.Trim(v, `"`)
	}
	return rel, href
}
