// Package cardvault is the HTTP service around the flashcard scheduler: it
// owns the REST surface, the transactional review commit, and the mapping
// between store rows and the pure scheduling core.
package cardvault

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/tatestudies/cardvault/config"
	"github.com/tatestudies/cardvault/internal/stores/models"
)

type nower interface {
	Now() time.Time
}

type RealNower struct{}

func (r RealNower) Now() time.Time {
	return time.Now()
}

type Server struct {
	Config  *config.Config
	Queries *models.Queries
	DBPool  *pgxpool.Pool
	Nower   nower
}

func NewServer(cfg *config.Config, dbPool *pgxpool.Pool, queries *models.Queries) *Server {
	return &Server{cfg, queries, dbPool, RealNower{}}
}

// Routes registers the API on mux. Everything except the health check
// expects an authenticated user in the request context.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.Health)
	mux.HandleFunc("GET /api/flashcards", s.ListCards)
	mux.HandleFunc("POST /api/flashcards", s.CreateCard)
	mux.HandleFunc("POST /api/flashcards/bulk", s.BulkAddCards)
	mux.HandleFunc("PUT /api/flashcards/{id}", s.UpdateCard)
	mux.HandleFunc("DELETE /api/flashcards/{id}", s.DeleteCard)
	mux.HandleFunc("GET /api/flashcards/study", s.StudyBatch)
	mux.HandleFunc("POST /api/flashcards/{id}/review", s.SubmitReview)
	mux.HandleFunc("GET /api/flashcards/stats/overview", s.StatsOverview)
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("encoding-response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func unauthenticated(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "user not authenticated")
}

func invalidArg(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, msg)
}

func notFound(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusNotFound, msg)
}

func internalError(w http.ResponseWriter, err error) {
	log.Err(err).Msg("internal-error")
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func decodeBody(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return errors.New("malformed request body")
	}
	return nil
}
