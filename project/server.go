package project

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/daveroberts0321/politecode/report"
	"github.com/daveroberts0321/politecode/spec/openapi"
	"github.com/daveroberts0321/politecode/watch"
)

// Version is reported by the CLI and the OpenAPI document.
const Version = "0.1.0"

// maxSourceBytes bounds the body of a translate request.
const maxSourceBytes = 1 << 20

type ipRateLimiter struct {
	limiters sync.Map
	rate     rate.Limit
	burst    int
}

func newIPRateLimiter(r float64, b int) *ipRateLimiter {
	return &ipRateLimiter{
		rate:  rate.Limit(r),
		burst: b,
	}
}

func (i *ipRateLimiter) getLimiter(ip string) *rate.Limiter {
	if limiter, ok := i.limiters.Load(ip); ok {
		return limiter.(*rate.Limiter)
	}
	limiter, _ := i.limiters.LoadOrStore(ip, rate.NewLimiter(i.rate, i.burst))
	return limiter.(*rate.Limiter)
}

func (i *ipRateLimiter) middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !i.getLimiter(clientIP(r)).Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, r)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// TranslateRequest is the body of POST /api/translate. A nil Namespace keeps
// the project setting; an empty one emits the class alone.
type TranslateRequest struct {
	Source    string  `json:"source"`
	Namespace *string `json:"namespace,omitempty"`
}

// Server is the development server of a project.
type Server struct {
	project *Project
	limiter *ipRateLimiter
	mux     *http.ServeMux
}

func NewServer(p *Project) *Server {
	s := &Server{
		project: p,
		limiter: newIPRateLimiter(p.Config.Server.RateLimit, p.Config.Server.Burst),
		mux:     http.NewServeMux(),
	}

	s.mux.Handle("/generated/", http.StripPrefix("/generated/", http.FileServer(http.Dir(p.OutputDir()))))
	s.mux.HandleFunc("/api/health", s.health)
	s.mux.HandleFunc("/api/translate", s.limiter.middleware(s.translate))
	s.mux.HandleFunc("/api/templates", s.templates)
	s.mux.HandleFunc("/api/openapi.yaml", s.openAPI)
	s.mux.Handle("/metrics", p.Metrics().Handler())
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) translate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}

	var req TranslateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSourceBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Source) == "" {
		writeError(w, http.StatusBadRequest, "source is empty")
		return
	}

	opts := s.project.Config.Options()
	if req.Namespace != nil {
		opts.Target.Namespace = *req.Namespace
	}
	tr := s.project.Translate(req.Source, opts)
	if tr.Diagnostics == nil {
		tr.Diagnostics = []report.Diagnostic{}
	}
	writeJSON(w, http.StatusOK, tr)
}

func (s *Server) templates(w http.ResponseWriter, r *http.Request) {
	all, err := Templates()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *Server) openAPI(w http.ResponseWriter, r *http.Request) {
	doc, err := openapi.Generate(Version)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(doc)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// StartDevServer builds the project, rebuilds it on every source change and
// serves the API until ctx is cancelled.
func StartDevServer(ctx context.Context, p *Project) error {
	fmt.Println("Starting PoliteCode development server...")

	if err := p.Build(); err != nil {
		p.log.Warnw("initial build failed", "error", err)
	}

	go func() {
		if err := watch.Watch(ctx, p.SourceDirs(), p.log, p.Build); err != nil {
			p.log.Errorw("file watcher error", "error", err)
		}
	}()

	port := p.Config.Server.Port
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           NewServer(p).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Printf("Server running at http://localhost:%d\n", port)
	fmt.Printf("   API: http://localhost:%d/api/health\n", port)
	fmt.Printf("   Translate: POST http://localhost:%d/api/translate\n", port)
	fmt.Printf("   Metrics: http://localhost:%d/metrics\n", port)
	fmt.Printf("   Generated files: http://localhost:%d/generated/\n", port)
	fmt.Println("\nWatching for file changes...")

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "dev server")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return errors.Wrap(srv.Shutdown(shutdownCtx), "shutdown dev server")
	}
}
