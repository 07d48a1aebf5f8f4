package speq

import (
	"net/http"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Registrar is the interface accepted by the registration functions.
// Both *Builder and *Group implement it.
type Registrar interface {
	addRoute(rt route)
}

// register captures a route's metadata. It must be called directly from
// the exported registration function so the caller's location is recorded.
func register(reg Registrar, method, pattern string, opts ...RouteOption) {
	rt := route{
		method:  strings.ToUpper(method),
		pattern: pattern,
		source:  callerSource(3),
	}
	for _, opt := range opts {
		opt(&rt)
	}
	reg.addRoute(rt)
}

// callerSource returns "dir/file.go:line" of the function skip frames up.
func callerSource(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	dir := filepath.Base(filepath.Dir(file))
	return dir + "/" + filepath.Base(file) + ":" + strconv.Itoa(line)
}

// Handle registers a route with an arbitrary method.
func Handle(reg Registrar, method, pattern string, opts ...RouteOption) {
	register(reg, method, pattern, opts...)
}

// Get registers a GET route.
func Get(reg Registrar, pattern string, opts ...RouteOption) {
	register(reg, http.MethodGet, pattern, opts...)
}

// Post registers a POST route.
func Post(reg Registrar, pattern string, opts ...RouteOption) {
	register(reg, http.MethodPost, pattern, opts...)
}

// Put registers a PUT route.
func Put(reg Registrar, pattern string, opts ...RouteOption) {
	register(reg, http.MethodPut, pattern, opts...)
}

// Patch registers a PATCH route.
func Patch(reg Registrar, pattern string, opts ...RouteOption) {
	register(reg, http.MethodPatch, pattern, opts...)
}

// Delete registers a DELETE route.
func Delete(reg Registrar, pattern string, opts ...RouteOption) {
	register(reg, http.MethodDelete, pattern, opts...)
}

// Head registers a HEAD route.
func Head(reg Registrar, pattern string, opts ...RouteOption) {
	register(reg, http.MethodHead, pattern, opts...)
}

// Options registers an OPTIONS route.
func Options(reg Registrar, pattern string, opts ...RouteOption) {
	register(reg, http.MethodOptions, pattern, opts...)
}

// Trace registers a TRACE route.
func Trace(reg Registrar, pattern string, opts ...RouteOption) {
	register(reg, http.MethodTrace, pattern, opts...)
}
