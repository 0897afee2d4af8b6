package api

import (
	"context"
	"log/slog"
	"net"
	"strings"
)

// Request contains route parameters and the payload following the path.
type Request struct {
	Ctx     context.Context
	Params  map[string]string
	Payload string
}

// Response holds the JSON string to return to the client.
type Response struct {
	JSON string
}

// HandlerFunc processes a request and populates the response. The logger is
// scoped to the connection.
type HandlerFunc func(req *Request, res *Response, logger *slog.Logger) error

// StreamHandlerFunc takes over a connection after its path was read. The
// server closes conn once the handler returns.
type StreamHandlerFunc func(conn net.Conn, params map[string]string, logger *slog.Logger) error

type route[H any] struct {
	parts   []string
	handler H
}

// match compares path segments case-insensitively; {name} segments capture
// the value under the name as written in the pattern.
func (rt route[H]) match(parts []string) (map[string]string, bool) {
	if len(rt.parts) != len(parts) {
		return nil, false
	}
	params := map[string]string{}
	for i, p := range rt.parts {
		if len(p) > 2 && p[0] == '{' && p[len(p)-1] == '}' {
			params[p[1:len(p)-1]] = parts[i]
			continue
		}
		if !strings.EqualFold(p, parts[i]) {
			return nil, false
		}
	}
	return params, true
}

func find[H any](routes []route[H], path string) (H, map[string]string) {
	parts := strings.Split(path, "/")
	for _, rt := range routes {
		if params, ok := rt.match(parts); ok {
			return rt.handler, params
		}
	}
	var zero H
	return zero, nil
}

// Router matches request paths against patterns like "pad/{port}/slot".
type Router struct {
	routes       []route[HandlerFunc]
	streamRoutes []route[StreamHandlerFunc]
}

func NewRouter() *Router { return &Router{} }

func (r *Router) Register(pattern string, h HandlerFunc) {
	r.routes = append(r.routes, route[HandlerFunc]{strings.Split(pattern, "/"), h})
}

func (r *Router) RegisterStream(pattern string, h StreamHandlerFunc) {
	r.streamRoutes = append(r.streamRoutes, route[StreamHandlerFunc]{strings.Split(pattern, "/"), h})
}

// Match returns the handler and params for path, or nil.
func (r *Router) Match(path string) (HandlerFunc, map[string]string) {
	return find(r.routes, path)
}

// MatchStream returns the stream handler and params for path, or nil.
func (r *Router) MatchStream(path string) (StreamHandlerFunc, map[string]string) {
	return find(r.streamRoutes, path)
}
