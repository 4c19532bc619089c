// Package api exposes report generation over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/neilberkman/gptwrapped/internal/core/userstats"
	"github.com/neilberkman/gptwrapped/internal/core/wrapped"
	"github.com/neilberkman/gptwrapped/pkg/chatexport"
)

// DefaultMaxUpload caps archive uploads
const DefaultMaxUpload = 512 << 20

type Server struct {
	router    *chi.Mux
	service   *wrapped.Service
	store     *userstats.Store
	log       zerolog.Logger
	maxUpload int64
}

func NewServer(service *wrapped.Service, store *userstats.Store, log zerolog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		service:   service,
		store:     store,
		log:       log.With().Str("component", "api").Logger(),
		maxUpload: DefaultMaxUpload,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.health)
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/wrapped", s.analyze)
		r.Get("/stats/summary", s.summary)
	})

	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is canceled
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("API server starting")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info().Msg("API server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)

		requestsTotal.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
		requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		s.log.Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", elapsed).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Request")
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// analyze accepts a raw conversations.json body. Query parameters: year,
// name, no_save.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// Without a year the service's configured year applies
	var year int
	if raw := q.Get("year"); raw != "" {
		parsed, err := wrapped.ParseYear(raw, time.Now())
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		year = parsed
	}
	noSave, _ := strconv.ParseBool(q.Get("no_save"))

	conversations, err := chatexport.Parse(http.MaxBytesReader(w, r.Body, s.maxUpload))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.service.Analyze(r.Context(), conversations, wrapped.Request{
		Year:   year,
		Name:   q.Get("name"),
		NoSave: noSave,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("Analysis failed")
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	archivesAnalyzed.Inc()
	messagesAnalyzed.Add(float64(result.Report.TotalMessages))

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	summary, ok := s.store.Summary(r.Context())
	if !ok {
		writeError(w, http.StatusServiceUnavailable, errors.New("stats store unavailable"))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
