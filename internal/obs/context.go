package obs

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
)

type requestInfoKey struct{}

// requestInfo is filled in by handlers and read back by the outer logging
// middleware once the handler returns.
type requestInfo struct {
	mu        sync.Mutex
	route     string
	cartID    string
	errorCode string
}

// WithRequestInfo reserves a per-request slot on ctx for SetCartID,
// SetErrorCode and WithRoutePattern.
func WithRequestInfo(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Value(requestInfoKey{}).(*requestInfo); ok {
		return ctx
	}
	return context.WithValue(ctx, requestInfoKey{}, &requestInfo{})
}

func infoFrom(ctx context.Context) *requestInfo {
	if ctx == nil {
		return nil
	}
	info, _ := ctx.Value(requestInfoKey{}).(*requestInfo)
	return info
}

// WithRoutePattern pins the route label for requests that are not served by
// a chi router, such as handlers exercised directly in tests.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	ctx = WithRequestInfo(ctx)
	info := infoFrom(ctx)
	info.mu.Lock()
	info.route = pattern
	info.mu.Unlock()
	return ctx
}

// RoutePatternFromContext returns the pinned route, falling back to the chi
// pattern matched so far.
func RoutePatternFromContext(ctx context.Context) string {
	if info := infoFrom(ctx); info != nil {
		info.mu.Lock()
		route := info.route
		info.mu.Unlock()
		if route != "" {
			return route
		}
	}
	if ctx == nil {
		return ""
	}
	if rc := chi.RouteContext(ctx); rc != nil {
		return rc.RoutePattern()
	}
	return ""
}

// SetCartID records the cart being processed. Without a slot it is a no-op.
func SetCartID(ctx context.Context, id string) {
	if info := infoFrom(ctx); info != nil {
		info.mu.Lock()
		info.cartID = id
		info.mu.Unlock()
	}
}

// CartIDFromContext returns the cart recorded by SetCartID.
func CartIDFromContext(ctx context.Context) string {
	info := infoFrom(ctx)
	if info == nil {
		return ""
	}
	info.mu.Lock()
	defer info.mu.Unlock()
	return info.cartID
}

// SetErrorCode records the API error code a handler responded with.
func SetErrorCode(ctx context.Context, code string) {
	if info := infoFrom(ctx); info != nil {
		info.mu.Lock()
		info.errorCode = code
		info.mu.Unlock()
	}
}

// ErrorCodeFromContext returns the code recorded by SetErrorCode.
func ErrorCodeFromContext(ctx context.Context) string {
	info := infoFrom(ctx)
	if info == nil {
		return ""
	}
	info.mu.Lock()
	defer info.mu.Unlock()
	return info.errorCode
}

func routeLabel(r *http.Request, fallback string) string {
	if route := RoutePatternFromContext(r.Context()); route != "" {
		return route
	}
	return fallback
}
