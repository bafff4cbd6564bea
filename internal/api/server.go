// Package api provides the HTTP control surface: REST endpoints for
// driving the clicker, player and recorder, and a WebSocket push stream
// of engine events.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"clickforge/internal/config"
	"clickforge/internal/engine"
	"clickforge/internal/protocol"
	"clickforge/internal/storage"
)

// ratePushInterval is how often throughput figures are pushed to
// WebSocket subscribers while the clicker is running.
const ratePushInterval = time.Second

// ServerOptions wires the server's collaborators.
type ServerOptions struct {
	Config    *config.Manager
	Scheduler *engine.Scheduler
	Player    *engine.Player
	Recorder  *engine.Recorder
	Store     *storage.Store
	Logger    *zap.SugaredLogger
}

// Server exposes the engine over HTTP.
type Server struct {
	cfg       *config.Manager
	scheduler *engine.Scheduler
	player    *engine.Player
	recorder  *engine.Recorder
	store     *storage.Store
	log       *zap.SugaredLogger
	hub       *Hub

	httpSrv *http.Server
	done    chan struct{}
}

// NewServer builds the server and its push hub. The hub must be added
// to the engine's listener list by the caller.
func NewServer(opts ServerOptions) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	return &Server{
		cfg:       opts.Config,
		scheduler: opts.Scheduler,
		player:    opts.Player,
		recorder:  opts.Recorder,
		store:     opts.Store,
		log:       opts.Logger,
		hub:       NewHub(opts.Logger),
		done:      make(chan struct{}),
	}
}

// Hub returns the event hub so it can be registered as an engine
// listener.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start serves the API on addr until Shutdown. It blocks.
func (s *Server) Start(addr string) error {
	go s.hub.Run()
	go s.pushRates()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("api listen on %s: %w", addr, err)
	}

	s.httpSrv = &http.Server{
		Handler:           s.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.log.Infow("api: listening", "addr", ln.Addr().String())
	if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api serve: %w", err)
	}
	return nil
}

// Shutdown stops the listener, the rate pusher and the hub.
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.done)
	s.hub.Close()
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.recoverMiddleware)
	r.Use(s.logMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.withAuth(s.hub.handleWebSocket))

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/status", s.handleStatus)
		r.Get("/stats", s.handleStats)

		r.Post("/start", s.handleStart)
		r.Post("/stop", s.handleStop)
		r.Post("/pause", s.handlePause)
		r.Post("/resume", s.handleResume)

		r.Get("/config", s.handleGetConfig)
		r.Post("/config", s.handleSetConfig)

		r.Get("/patterns", s.handleListPatterns)
		r.Get("/patterns/{name}", s.handleGetPattern)
		r.Delete("/patterns/{name}", s.handleDeletePattern)
		r.Post("/patterns/{name}/play", s.handlePlayPattern)
		r.Post("/patterns/stop", s.handleStopPlayback)
		r.Post("/patterns/pause", s.handlePausePlayback)
		r.Post("/patterns/resume", s.handleResumePlayback)

		r.Post("/record/start", s.handleStartRecording)
		r.Post("/record/stop", s.handleStopRecording)
	})

	return r
}

// pushRates streams throughput figures to subscribers while the
// clicker is running.
func (s *Server) pushRates() {
	ticker := time.NewTicker(ratePushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if s.scheduler.State() == engine.StateStopped {
				continue
			}
			mon := s.scheduler.Monitor()
			latest, ok := mon.Latest()
			if !ok {
				continue
			}
			s.hub.PublishRate(protocol.RatePayload{
				TargetRate:    latest.TargetRate,
				ActualRate:    latest.ActualRate,
				PeakRate:      mon.PeakRate(),
				Accuracy:      mon.Accuracy(),
				ResourceGauge: latest.ResourceGauge,
			})
		}
	}
}

// recoverMiddleware keeps a handler panic from taking the server down.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Errorw("api: handler panic", "path", r.URL.Path, "err", err)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Debugw("api: request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}

// authMiddleware verifies the bearer token when one is configured.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(s.withAuth(next.ServeHTTP))
}

func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := s.cfg.Get().General.APIToken
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusResponse is the GET /api/status body.
type statusResponse struct {
	ClickerState  engine.State `json:"clicker_state"`
	PlayerState   engine.State `json:"player_state"`
	RecorderState engine.State `json:"recorder_state"`
	MeasuredRate  float64      `json:"measured_rate"`
	SessionClicks int64        `json:"session_clicks"`
	CurrentStep   int64        `json:"current_step,omitempty"`
	RecordedSoFar int          `json:"recorded_so_far,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		ClickerState:  s.scheduler.State(),
		PlayerState:   s.player.State(),
		RecorderState: s.recorder.State(),
		MeasuredRate:  s.scheduler.MeasuredRate(),
		RecordedSoFar: s.recorder.PointCount(),
	}
	if sess := s.scheduler.Session(); sess != nil {
		resp.SessionClicks = sess.Clicks()
	}
	if sess := s.player.Session(); sess != nil {
		resp.CurrentStep = sess.Step()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	mon := s.scheduler.Monitor()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"samples":        mon.Snapshot(),
		"latest_rate":    mon.LatestRate(),
		"peak_rate":      mon.PeakRate(),
		"accuracy":       mon.Accuracy(),
		"dropped_events": s.hub.Dropped(),
	})
}

// handleStart starts the clicker. An optional JSON body overrides the
// stored click configuration for this run only.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	cfg := s.cfg.Get().Click
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeError(w, http.StatusBadRequest, "invalid click configuration")
			return
		}
	}

	if !s.scheduler.Start(cfg) {
		writeError(w, http.StatusConflict, "clicker not stopped or injector busy")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if !s.scheduler.Stop() {
		writeError(w, http.StatusConflict, "clicker already stopped")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if !s.scheduler.Pause() {
		writeError(w, http.StatusConflict, "clicker not running")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "paused"})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if !s.scheduler.Resume() {
		writeError(w, http.StatusConflict, "clicker not paused")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "running"})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Get())
}

func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var cfg config.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid configuration")
		return
	}

	s.cfg.Set(cfg)
	if err := s.cfg.Save(); err != nil {
		s.log.Errorw("api: save config failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to save configuration")
		return
	}
	// Out-of-range values were clamped; return what was stored.
	writeJSON(w, http.StatusOK, s.cfg.Get())
}

func (s *Server) handleListPatterns(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List()
	if err != nil {
		s.log.Errorw("api: list patterns failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list patterns")
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"patterns": names})
}

func (s *Server) handleGetPattern(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	pattern, err := s.store.Load(name)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("pattern %q not found", name))
		return
	}
	writeJSON(w, http.StatusOK, pattern)
}

func (s *Server) handleDeletePattern(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.store.Delete(name); err != nil {
		s.log.Errorw("api: delete pattern failed", "name", name, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to delete pattern")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handlePlayPattern plays a stored pattern. loop=true in the query
// repeats it until stopped.
func (s *Server) handlePlayPattern(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	pattern, err := s.store.Load(name)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("pattern %q not found", name))
		return
	}

	loop := r.URL.Query().Get("loop") == "true" || pattern.Looping
	if !s.player.Play(pattern, loop) {
		writeError(w, http.StatusConflict, "player busy or injector busy")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "playing", "pattern": name, "loop": loop,
	})
}

func (s *Server) handleStopPlayback(w http.ResponseWriter, r *http.Request) {
	if !s.player.Stop() {
		writeError(w, http.StatusConflict, "no playback active")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

func (s *Server) handlePausePlayback(w http.ResponseWriter, r *http.Request) {
	if !s.player.Pause() {
		writeError(w, http.StatusConflict, "no playback active")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "paused"})
}

func (s *Server) handleResumePlayback(w http.ResponseWriter, r *http.Request) {
	if !s.player.Resume() {
		writeError(w, http.StatusConflict, "playback not paused")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "playing"})
}

func (s *Server) handleStartRecording(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing name parameter")
		return
	}
	if !s.recorder.StartRecording(name) {
		writeError(w, http.StatusConflict, "recording already active or capture unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recording", "name": name})
}

// handleStopRecording finalizes the recording, persists it when it has
// at least one point, and returns it.
func (s *Server) handleStopRecording(w http.ResponseWriter, r *http.Request) {
	pattern := s.recorder.StopRecording()
	if pattern.Name == "" {
		writeError(w, http.StatusConflict, "no recording active")
		return
	}

	if !pattern.Empty() {
		if err := s.store.Save(pattern); err != nil {
			s.log.Errorw("api: save recorded pattern failed", "name", pattern.Name, "err", err)
			writeError(w, http.StatusInternalServerError, "failed to save pattern")
			return
		}
	}
	writeJSON(w, http.StatusOK, pattern)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
