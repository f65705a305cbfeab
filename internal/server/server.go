// Package server exposes the per-source light set operation over HTTP
// for hosts that drive the LEDs from another process.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/avolkov/lightshal/internal/logging"
	"github.com/avolkov/lightshal/lights"
)

var logger = logging.New("server")

// Server accepts light state updates over HTTP and applies them
// through one opened Device per logical source.
type Server struct {
	addr       string
	devices    map[lights.ID]*lights.Device
	metrics    bool
	httpServer *http.Server
}

// New opens a device for every recognized light source and returns a
// server ready to Run.
func New(addr string, ctrl *lights.Controller, metrics bool) (*Server, error) {
	devices := make(map[lights.ID]*lights.Device)
	for _, id := range []lights.ID{lights.Backlight, lights.Battery, lights.Notification, lights.Attention} {
		dev, err := ctrl.Open(id)
		if err != nil {
			return nil, err
		}
		devices[id] = dev
	}
	return &Server{addr: addr, devices: devices, metrics: metrics}, nil
}

// Handler builds the route table. Exposed separately so tests can hit
// it without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /lights/{id}", s.handleSet)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	if s.metrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
	return mux
}

// Run starts the server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	logger.With(zap.String("addr", s.addr)).Info("starting lights control server")

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			logger.With(zap.Error(err)).Error("control server shutdown error")
		}
		for _, dev := range s.devices {
			dev.Close()
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

type setRequest struct {
	Color      string `json:"color"`
	FlashMode  string `json:"flash_mode"`
	FlashOnMS  int    `json:"flash_on_ms"`
	FlashOffMS int    `json:"flash_off_ms"`
}

func (s *Server) handleSet(w http.ResponseWriter, r *http.Request) {
	id := lights.ID(r.PathValue("id"))
	dev, ok := s.devices[id]
	if !ok {
		http.Error(w, fmt.Sprintf("unknown light %q", id), http.StatusNotFound)
		return
	}

	var req setRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	color, err := parseColor(req.Color)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	mode, err := lights.ParseFlashMode(req.FlashMode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	state := lights.State{
		Color:      color,
		Flash:      mode,
		FlashOnMS:  req.FlashOnMS,
		FlashOffMS: req.FlashOffMS,
	}
	if err := dev.Set(state); err != nil {
		logger.With(zap.String("light", string(id)), zap.Error(err)).Warn("hardware write failed")
		// The slot state is committed even when register writes fail.
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseColor accepts "#RRGGBB", "#AARRGGBB" or any integer syntax
// strconv understands ("0x11223344", "1193046"). Empty means black.
func parseColor(s string) (uint32, error) {
	if s == "" {
		return 0, nil
	}
	if strings.HasPrefix(s, "#") {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid color %q", s)
		}
		return uint32(v), nil
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	return uint32(v), nil
}
