package api

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/nameclear/nameclear/internal/api/middleware"
	"github.com/nameclear/nameclear/internal/cache"
	"github.com/nameclear/nameclear/internal/verify"
)

// Verification fan-out is expensive, so the verify endpoints carry a
// per-client rate limit. The other endpoints are cheap reads.
const (
	verifyRatePerMinute = 30
	verifyBurst         = 10
)

// RouterDeps bundles all dependencies needed by the HTTP router.
type RouterDeps struct {
	Verifier *verify.Verifier
	Cache    *cache.Cache
	Logger   *slog.Logger
	BasePath string
}

// Router sets up all HTTP routes for the application.
type Router struct {
	verifier *verify.Verifier
	cache    *cache.Cache
	logger   *slog.Logger
	basePath string
}

// NewRouter creates a new Router with all routes configured.
func NewRouter(deps RouterDeps) *Router {
	return &Router{
		verifier: deps.Verifier,
		cache:    deps.Cache,
		logger:   deps.Logger,
		basePath: deps.BasePath,
	}
}

// Handler returns the fully configured HTTP handler with middleware applied.
func (r *Router) Handler() http.Handler {
	limiter := middleware.NewIPRateLimiter(rate.Every(time.Minute/verifyRatePerMinute), verifyBurst)
	mux := http.NewServeMux()
	bp := r.basePath

	mux.HandleFunc("GET "+bp+"/healthz", r.handleHealth)

	// Rate-limited verification routes
	mux.Handle("POST "+bp+"/api/v1/verify", limiter.Middleware(http.HandlerFunc(r.handleVerifyPost)))
	mux.Handle("GET "+bp+"/api/v1/verify", limiter.Middleware(http.HandlerFunc(r.handleVerifyGet)))

	mux.HandleFunc("GET "+bp+"/api/v1/uniqueness", r.handleUniqueness)
	mux.HandleFunc("GET "+bp+"/api/v1/sources", r.handleSources)
	mux.HandleFunc("GET "+bp+"/api/v1/cache/stats", r.handleCacheStats)
	mux.HandleFunc("DELETE "+bp+"/api/v1/cache", r.handleCacheClear)

	return middleware.Logging(r.logger)(mux)
}
