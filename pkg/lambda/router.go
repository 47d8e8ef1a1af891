package lambda

import (
	"context"
	"net/http"
	"strings"
)

type route struct {
	method   string
	segments []string
	handler  HandlerFunc
}

// Router dispatches requests by method and path. Pattern segments written as
// {name} match any single segment and are copied into PathParams.
type Router struct {
	routes []route
}

// NewRouter creates an empty router
func NewRouter() *Router {
	return &Router{}
}

// Handle registers handler for method and pattern, e.g. "/api/v1/sales/{id}/valuation"
func (r *Router) Handle(method, pattern string, handler HandlerFunc) {
	r.routes = append(r.routes, route{
		method:   method,
		segments: splitPath(pattern),
		handler:  handler,
	})
}

// Serve runs the first matching route. Unknown paths get a 404 and known paths with
// another method a 405.
func (r *Router) Serve(ctx context.Context, req *Request) (*Response, error) {
	segments := splitPath(req.Path)
	pathMatched := false

	for _, rt := range r.routes {
		params, ok := match(rt.segments, segments)
		if !ok {
			continue
		}
		pathMatched = true
		if rt.method != req.Method {
			continue
		}

		if req.PathParams == nil {
			req.PathParams = map[string]string{}
		}
		for name, value := range params {
			req.PathParams[name] = value
		}
		return rt.handler(ctx, req)
	}

	if pathMatched {
		return JSONError(http.StatusMethodNotAllowed, "Method not allowed"), nil
	}
	return JSONError(http.StatusNotFound, "Not found"), nil
}

func match(pattern, path []string) (map[string]string, bool) {
	if len(pattern) != len(path) {
		return nil, false
	}
	params := map[string]string{}
	for i, segment := range pattern {
		if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
			params[segment[1:len(segment)-1]] = path[i]
			continue
		}
		if segment != path[i] {
			return nil, false
		}
	}
	return params, true
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
