// Package server exposes the pricing engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/contactkeval/option-greeks/internal/logger"
	"github.com/contactkeval/option-greeks/internal/metrics"
	"github.com/contactkeval/option-greeks/pricing"
)

type PriceRequest struct {
	Type       string  `json:"type"`
	Underlying float64 `json:"underlying"`
	Strike     float64 `json:"strike"`
	Time       float64 `json:"time"`
	Rate       float64 `json:"rate"`
	Sigma      float64 `json:"sigma"`
}

type IVRequest struct {
	Type       string  `json:"type"`
	Underlying float64 `json:"underlying"`
	Strike     float64 `json:"strike"`
	Time       float64 `json:"time"`
	Rate       float64 `json:"rate"`
	Price      float64 `json:"price"`
}

type ProbabilityRequest struct {
	Price  float64 `json:"price"`
	Target float64 `json:"target"`
	Time   float64 `json:"time"`
	Sigma  float64 `json:"sigma"`
}

type ProbabilityResponse struct {
	Below float64 `json:"below"`
	Above float64 `json:"above"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server serves pricing requests with a single Engine.
type Server struct {
	engine  *pricing.Engine
	metrics *metrics.Metrics
	router  *mux.Router
}

// New wires the routes. m may be nil, in which case /metrics is not served.
func New(engine *pricing.Engine, m *metrics.Metrics) *Server {
	s := &Server{engine: engine, metrics: m, router: mux.NewRouter()}

	s.router.Use(logRequests)
	s.router.HandleFunc("/health", s.health).Methods("GET")
	s.router.HandleFunc("/api/price", s.price).Methods("POST")
	s.router.HandleFunc("/api/iv", s.impliedVolatility).Methods("POST")
	s.router.HandleFunc("/api/probability", s.probability).Methods("POST")
	if m != nil {
		s.router.Handle("/metrics", m.Handler()).Methods("GET")
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("starting REST server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) price(w http.ResponseWriter, r *http.Request) {
	s.metrics.Request("price")

	var req PriceRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	typ, err := pricing.ParseOptionType(req.Type)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := validateContract(req.Underlying, req.Strike, req.Time, req.Rate); err != nil {
		writeError(w, err)
		return
	}
	if err := nonNegative("sigma", req.Sigma); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.engine.Price(req.Rate, req.Sigma, req.Strike, req.Time, typ, req.Underlying))
}

func (s *Server) impliedVolatility(w http.ResponseWriter, r *http.Request) {
	s.metrics.Request("iv")

	var req IVRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	typ, err := pricing.ParseOptionType(req.Type)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := validateContract(req.Underlying, req.Strike, req.Time, req.Rate); err != nil {
		writeError(w, err)
		return
	}
	if err := nonNegative("price", req.Price); err != nil {
		writeError(w, err)
		return
	}

	start := time.Now()
	sol := s.engine.Solve(req.Price, req.Rate, req.Strike, req.Time, typ, req.Underlying)
	s.metrics.Solved(string(sol.Status), time.Since(start))

	writeJSON(w, http.StatusOK, sol)
}

func (s *Server) probability(w http.ResponseWriter, r *http.Request) {
	s.metrics.Request("probability")

	var req ProbabilityRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	for _, f := range []struct {
		name string
		v    float64
	}{{"price", req.Price}, {"target", req.Target}, {"time", req.Time}, {"sigma", req.Sigma}} {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			writeError(w, fmt.Errorf("%s must be positive, got %v", f.name, f.v))
			return
		}
	}

	below, above := pricing.Probability(req.Price, req.Target, req.Time, req.Sigma)
	writeJSON(w, http.StatusOK, ProbabilityResponse{Below: below, Above: above})
}

func validateContract(underlying, strike, time, rate float64) error {
	if !(underlying > 0) || math.IsInf(underlying, 0) {
		return fmt.Errorf("underlying must be positive, got %v", underlying)
	}
	if !(strike > 0) || math.IsInf(strike, 0) {
		return fmt.Errorf("strike must be positive, got %v", strike)
	}
	if err := nonNegative("time", time); err != nil {
		return err
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("rate must be finite, got %v", rate)
	}
	return nil
}

func nonNegative(name string, v float64) error {
	if !(v >= 0) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be non-negative, got %v", name, v)
	}
	return nil
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeError(w http.ResponseWriter, err error) {
	logger.Debugf("bad request: %v", err)
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("encode response: %v", err)
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debugf("%s %s (%v)", r.Method, r.URL.Path, time.Since(start))
	})
}
