package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/bitcoindistrict/bookclub-api/internal/domain/book"
	"github.com/bitcoindistrict/bookclub-api/internal/domain/poll"
	"github.com/bitcoindistrict/bookclub-api/internal/domain/role"
	"github.com/bitcoindistrict/bookclub-api/internal/domain/vote"
	jwtpkg "github.com/bitcoindistrict/bookclub-api/internal/platform/jwt"
	"github.com/bitcoindistrict/bookclub-api/internal/worker"
)

// Handler is the single entry point the presentation layer talks to. It
// orchestrates the domain services and owns no invariants of its own.
type Handler struct {
	bookSvc *book.Service
	pollSvc *poll.Service
	voteSvc *vote.Service
	roleSvc *role.Service
	jwtMgr  *jwtpkg.Manager
	voteCh  chan<- worker.VoteEvent
	db      *sql.DB
}

func NewRouter(
	bookSvc *book.Service,
	pollSvc *poll.Service,
	voteSvc *vote.Service,
	roleSvc *role.Service,
	jwtMgr *jwtpkg.Manager,
	voteCh chan<- worker.VoteEvent,
	db *sql.DB,
	coverDir string,
) http.Handler {
	h := &Handler{
		bookSvc: bookSvc,
		pollSvc: pollSvc,
		voteSvc: voteSvc,
		roleSvc: roleSvc,
		jwtMgr:  jwtMgr,
		voteCh:  voteCh,
		db:      db,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(RequestLogger)
	r.Use(CORSMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ready", h.handleReady)
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	if coverDir != "" {
		r.Handle("/covers/*", http.StripPrefix("/covers/", http.FileServer(http.Dir(coverDir))))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// public reads
		r.Get("/books", h.handleListBooks)
		r.Get("/books/{id}", h.handleGetBook)
		r.Get("/polls", h.handleListActivePolls)
		r.Get("/polls/{id}/options", h.handleListOptions)
		// results are public; a valid admin token on the same route
		// unlocks the full view
		r.With(OptionalAuth(jwtMgr)).Get("/polls/{id}/results", h.handlePollResults)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(jwtMgr))

			r.Get("/bookclub", h.handleDashboard)
			r.With(RateLimitVotes(rate.Every(time.Minute/10), 3)).Post("/polls/{id}/vote", h.handleCastVote)
			r.Get("/polls/{id}/vote", h.handleMyVote)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireAdmin)
				r.Post("/books", h.handleCreateBook)
				r.Patch("/books/{id}", h.handleUpdateBook)
				r.Delete("/books/{id}", h.handleDeleteBook)
				r.Post("/books/{id}/cover", h.handleUploadCover)
				r.Delete("/books/{id}/cover", h.handleRemoveCover)
				r.Post("/polls", h.handleCreatePoll)
				r.Post("/polls/{id}/options", h.handleAddOptions)
				r.Get("/polls/all", h.handleListAllPolls)
				r.Get("/admins", h.handleListAdmins)
				r.Post("/admins/{userID}", h.handleGrantAdmin)
				r.Delete("/admins/{userID}", h.handleRevokeAdmin)
			})
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	return strconv.ParseInt(idStr, 10, 64)
}

func parseTimePtr(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t
		}
	}
	return nil
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":   "db_unavailable",
			"message": "database not configured",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":   "db_unavailable",
			"message": "database not ready",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
