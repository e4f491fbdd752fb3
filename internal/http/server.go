package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"finsight/internal/cache"
	"finsight/internal/core"
	"finsight/internal/insights"
	"finsight/internal/middleware/ratelimit"
	"finsight/internal/middleware/trace"
	"finsight/internal/services"
)

type Server struct {
	http.Server

	transactions *services.TransactionService
	insights     *insights.Generator
	rateLimiter  *ratelimit.Limiter

	// Analytics results are cached per user and period; writes invalidate
	// every entry belonging to the writing user.
	summariesCache *cache.LRUCache[[]core.CategorySummary]
	totalsCache    *cache.LRUCache[core.PeriodTotals]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, transactions *services.TransactionService, insightGen *insights.Generator) *Server {
	mux := http.NewServeMux()

	s := &Server{
		transactions:     transactions,
		insights:         insightGen,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		summariesCache:   newSummariesCache(),
		totalsCache:      cache.NewLRUCache[core.PeriodTotals](200, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /transactions", s.handleListTransactions)
	mux.HandleFunc("GET /transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("POST /transactions/import", s.handleImportTransactions)
	mux.HandleFunc("POST /transactions/recategorize", s.handleRecategorize)

	mux.HandleFunc("GET /analytics/summary", s.handleAnalyticsSummary)
	mux.HandleFunc("GET /analytics/categories", s.handleAnalyticsCategories)
	mux.HandleFunc("GET /analytics/trends", s.handleAnalyticsTrends)
	mux.HandleFunc("GET /analytics/savings", s.handleAnalyticsSavings)

	mux.HandleFunc("GET /insights", s.handleInsights)

	traceMW := trace.NewMiddleware(extractClientIP)
	handler := traceMW.Middleware(s.withSecurityHeaders(s.withRateLimit(mux)))

	s.Server = http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func newSummariesCache() *cache.LRUCache[[]core.CategorySummary] {
	return cache.NewLRUCache[[]core.CategorySummary](200, 5*time.Minute)
}

// withSecurityHeaders adds baseline security headers to every response.
func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// withRateLimit applies rate limiting to mutating requests only; reads are
// served from cache and stay cheap.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			if !s.rateLimiter.Allow(extractClientIP(r)) {
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.summariesCache.CleanExpired()
			s.totalsCache.CleanExpired()
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func analyticsCacheKey(userID string, p core.Period) string {
	return userID + "|" + p.From.Format("2006-01-02") + "|" + p.To.Format("2006-01-02")
}

// invalidateUser drops every cached analytics result for a user. Called
// after any write touching that user's transactions.
func (s *Server) invalidateUser(userID string) {
	prefix := userID + "|"
	s.summariesCache.DeleteWhere(func(key string) bool { return strings.HasPrefix(key, prefix) })
	s.totalsCache.DeleteWhere(func(key string) bool { return strings.HasPrefix(key, prefix) })
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
