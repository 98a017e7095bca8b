// Package server exposes the read-only HTTP surface: liveness, the latest
// engine status snapshot and the trade journal.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rxtech-lab/momentum-bot/internal/engine"
	"github.com/rxtech-lab/momentum-bot/internal/logger"
	"github.com/rxtech-lab/momentum-bot/internal/types"
)

const defaultTradesLimit = 100

// TradeSource serves journaled trades, newest first.
type TradeSource interface {
	Trades(limit int) ([]types.TradeRecord, error)
}

// Server is the read-only HTTP surface. It observes the engine through the
// status board and the journal; nothing it serves feeds back into trading.
type Server struct {
	status     *engine.StatusBoard
	trades     TradeSource
	logger     *logger.Logger
	httpServer *http.Server
}

// NewServer creates the HTTP surface listening on addr.
func NewServer(addr string, status *engine.StatusBoard, trades TradeSource, log *logger.Logger) *Server {
	s := &Server{
		status: status,
		trades: trades,
		logger: log,
	}

	router := mux.NewRouter()
	router.HandleFunc("/", s.handleLiveness).Methods("GET")
	router.HandleFunc("/api/status", s.handleStatus).Methods("GET")
	router.HandleFunc("/api/trades", s.handleTrades).Methods("GET")

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// Handler returns the underlying HTTP handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("momentum bot is running\n"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.status.Snapshot())
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	limit := defaultTradesLimit

	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})

			return
		}

		limit = parsed
	}

	records, err := s.trades.Trades(limit)
	if err != nil {
		s.logger.Error("failed to load trades", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load trades"})

		return
	}

	if records == nil {
		records = []types.TradeRecord{}
	}

	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}
