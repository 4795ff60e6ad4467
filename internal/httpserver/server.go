// internal/httpserver/server.go
//
// HTTP server wiring for the color guessing game.
// Responsibilities:
//   - Router + middleware (request IDs, logging, panic recovery, CORS, timeouts, JSON).
//   - Public endpoints: "/" (web UI), "/static/*", "/health", "/api".
//   - Game endpoints (player cookie): /game/new, /game/{id}/...
//   - Daily palette endpoints: mounted under /daily.
//   - Live updates: /game/{id}/events (websocket).
//
// Notes:
//   - Players are anonymous; a signed cookie ties sessions to the browser that made them.
//   - History writes are best effort: a failed insert is logged, never surfaced to play.

package httpserver

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/hkdf"

	"github.com/robalobadob/colorguess/internal/color"
	"github.com/robalobadob/colorguess/internal/game"
	"github.com/robalobadob/colorguess/internal/history"
	"github.com/robalobadob/colorguess/internal/names"
	"github.com/robalobadob/colorguess/internal/store"
)

// Deps are the collaborators a Server needs. History may be nil.
type Deps struct {
	Store             store.Store
	History           *history.Store
	Clipboard         game.Clipboard
	Web               fs.FS
	Secret            []byte
	SecureCookies     bool
	ClientOrigin      string
	DailySalt         string
	DefaultDifficulty game.Difficulty
	Namer             func(color.Color) string

	// test hooks
	Clock     func() time.Time
	Scheduler game.Scheduler
}

// Server bundles router, session store and history.
type Server struct {
	r    *chi.Mux
	deps Deps
	now  func() time.Time
	key  []byte // player token signing key, derived from Deps.Secret

	dailyMu sync.Mutex // serialises daily session get-or-create
}

// New constructs a Server, installs middleware, and registers routes.
func New(deps Deps) *Server {
	s := &Server{r: chi.NewRouter(), deps: deps, now: deps.Clock, key: deriveKey(deps.Secret, "colorguess player token")}
	if s.now == nil {
		s.now = time.Now
	}
	if s.deps.DefaultDifficulty == 0 {
		s.deps.DefaultDifficulty = game.Hard
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)   // one zerolog line per request
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(s.cors)          // credentials-friendly CORS

	// --- web UI ---
	if deps.Web != nil {
		s.r.Get("/", s.handleIndex)
		s.r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(deps.Web))))
	}

	// --- JSON API ---
	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/api", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"service":"colorguess","endpoints":["/health","POST /game/new","POST /game/{id}/guess","POST /game/{id}/reset","POST /game/{id}/difficulty","POST /game/{id}/score/reset","POST /game/{id}/copy","GET /game/{id}/events","POST /daily/new","GET /daily/leaderboard"]}`))
		})
		r.Get("/debug/colors", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]int{"names": names.Stats(), "sessions": s.deps.Store.Len()})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.withPlayer)
			s.mountGame(r)
			s.mountDaily(r)
		})
	})

	// --- live updates (no handler timeout: the socket is long-lived) ---
	s.r.With(s.withPlayer).Get("/game/{id}/events", s.handleEvents)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Start serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- hs.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	b, err := fs.ReadFile(s.deps.Web, "index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(b)
}

// writeError writes {"error": code} with status.
func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

// deriveKey expands secret into a 32-byte key bound to purpose (HKDF-SHA256).
func deriveKey(secret []byte, purpose string) []byte {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(purpose)), key); err != nil {
		panic(err)
	}
	return key
}

// genID creates a 22-char URL-safe, crypto-random identifier (no padding).
func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
