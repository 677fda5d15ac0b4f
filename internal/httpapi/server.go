// Package httpapi exposes the pronunciation-practice HTTP surface: word
// packs, scoring, progress summaries, and recording uploads.
//
// Routes are registered on a plain [http.ServeMux] using method patterns.
// Every response is JSON; errors follow the taxonomy in errors.go so clients
// can tell "fix your request" from "retry later".
package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mkeskkula/haaldus/internal/auth"
	"github.com/mkeskkula/haaldus/internal/catalog"
	"github.com/mkeskkula/haaldus/internal/observe"
	"github.com/mkeskkula/haaldus/internal/progress"
	"github.com/mkeskkula/haaldus/internal/recordings"
	"github.com/mkeskkula/haaldus/internal/scoring"
	"github.com/mkeskkula/haaldus/internal/store"
	"github.com/mkeskkula/haaldus/pkg/provider/asr"
)

// maxUploadBytes caps audio upload size. A minute of 16-bit 48 kHz stereo WAV
// is under 12 MiB; anything larger is not a practice recording.
const maxUploadBytes = 16 << 20

// Server holds the handler dependencies. Construct with [NewServer]; all
// fields are read-only afterwards so the Server is safe for concurrent use.
type Server struct {
	catalog    *catalog.Catalog
	engine     *scoring.Engine
	aggregator *progress.Aggregator
	events     store.ScoreEvents
	recordings *recordings.Store
	transcribe asr.Provider // nil when no ASR backend is configured
	verifier   auth.Verifier
	metrics    *observe.Metrics

	now   func() time.Time
	newID func() string
}

// Option is a functional option for configuring a [Server].
type Option func(*Server)

// WithClock replaces the time source used for score-event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithIDGenerator replaces the score-event ID generator. Tests use this for
// stable IDs.
func WithIDGenerator(newID func() string) Option {
	return func(s *Server) { s.newID = newID }
}

// NewServer wires the handler dependencies. transcribe may be nil, in which
// case audio submissions are rejected as unavailable while text scoring keeps
// working.
func NewServer(
	cat *catalog.Catalog,
	engine *scoring.Engine,
	aggregator *progress.Aggregator,
	events store.ScoreEvents,
	recs *recordings.Store,
	transcribe asr.Provider,
	verifier auth.Verifier,
	metrics *observe.Metrics,
	opts ...Option,
) *Server {
	s := &Server{
		catalog:    cat,
		engine:     engine,
		aggregator: aggregator,
		events:     events,
		recordings: recs,
		transcribe: transcribe,
		verifier:   verifier,
		metrics:    metrics,
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register adds all API routes to mux. Authenticated routes are wrapped with
// the bearer-token middleware.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /daily-pack", s.handleDailyPack)
	mux.HandleFunc("GET /word-categories", s.handleWordCategories)
	mux.HandleFunc("POST /pronunciation/score", s.requireAuth(s.handleScore))
	mux.HandleFunc("GET /progress/summary", s.requireAuth(s.handleProgressSummary))
	mux.HandleFunc("POST /recordings", s.requireAuth(s.handleUploadRecording))
	mux.HandleFunc("GET /recordings", s.requireAuth(s.handleListRecordings))
	mux.HandleFunc("GET /storage/info", s.requireAuth(s.handleStorageInfo))
}

// requireAuth resolves the bearer token and stores the user ID in the request
// context. Missing or unknown tokens yield 401 without touching the handler.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, r, unauthorized("missing bearer token"))
			return
		}
		userID, ok := s.verifier.UserFor(token)
		if !ok {
			writeError(w, r, unauthorized("unknown token"))
			return
		}
		next(w, r.WithContext(auth.WithUser(r.Context(), userID)))
	}
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}
