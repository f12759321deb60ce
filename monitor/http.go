// monitor/http.go
package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"quant_risk_go/logs"
	"quant_risk_go/risk"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the current risk state over HTTP.
type Server struct {
	manager *risk.Manager
	http    *http.Server
}

// NewServer builds the HTTP surface on the given listen address.
func NewServer(manager *risk.Manager, listenAddr string) *Server {
	s := &Server{manager: manager}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/risk/report", s.handleReport).Methods(http.MethodGet)
	r.HandleFunc("/risk/circuit-breaker", s.handleCircuitBreaker).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:         listenAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving HTTP until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	logs.Infof("Risk HTTP server listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests within 10 seconds.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	report := s.manager.GetRiskReport()
	if report.RunID == "" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no analysis has completed yet"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCircuitBreaker(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.CheckCircuitBreaker())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logs.Errorf("Failed to encode HTTP response: %v", err)
	}
}
