// ABOUTME: HTTP remote control for the player
// ABOUTME: Serves status, playback commands, a status websocket and Prometheus metrics
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/musics-player/musics-go/internal/app"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// DefaultPort is the default listen port
const DefaultPort = 8927

// Controller is what remote commands drive
type Controller interface {
	Status() app.Status
	PlayNext() error
	PlayPrevious() error
	Pause()
	Resume()
	Stop()
	Seek(t time.Duration)
	SetVolume(v float32)
}

// Config holds remote server configuration
type Config struct {
	Port int

	// StatusInterval is how often websocket clients get a status push
	// (default: 500ms)
	StatusInterval time.Duration
}

// Server is the remote control endpoint
type Server struct {
	config   Config
	ctl      Controller
	router   chi.Router
	upgrader websocket.Upgrader

	httpServer *http.Server
	stopChan   chan struct{}
	stopOnce   sync.Once

	// connMu orders socket registration against shutdown so wg.Add never
	// races wg.Wait
	connMu  sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

// New creates a remote server for ctl
func New(config Config, ctl Controller) *Server {
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.StatusInterval == 0 {
		config.StatusInterval = 500 * time.Millisecond
	}

	s := &Server{
		config: config,
		ctl:    ctl,
		upgrader: websocket.Upgrader{
			// Remote control is meant for the local network
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		stopChan: make(chan struct{}),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Post("/control/{command}", s.handleControl)
	r.Get("/ws", s.handleWebSocket)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Stop is called or the listener fails
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	log.Infof("Remote control listening on %s", addr)

	var serverErr error
	select {
	case <-s.stopChan:
	case serverErr = <-errChan:
		log.Errorf("Remote server error: %v", serverErr)
		s.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Warnf("Remote server shutdown error: %v", err)
	}
	s.wg.Wait()

	if serverErr != nil {
		return fmt.Errorf("remote server failed: %w", serverErr)
	}
	return nil
}

// Stop shuts the server down
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.connMu.Lock()
		s.closing = true
		s.connMu.Unlock()
		close(s.stopChan)
	})
}

// track registers a websocket session unless shutdown has begun
func (s *Server) track() bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.closing {
		return false
	}
	s.wg.Add(1)
	return true
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start),
			"request_id": chimw.GetReqID(r.Context()),
		}).Debug("remote request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NewStatusResponse(s.ctl.Status()))
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	cmd := Command{Command: chi.URLParam(r, "command")}

	q := r.URL.Query()
	if v := q.Get("position_ms"); v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid position_ms %q", v))
			return
		}
		cmd.PositionMs = &ms
	}
	if v := q.Get("level"); v != "" {
		level, err := strconv.ParseFloat(v, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid level %q", v))
			return
		}
		cmd.Level = &level
	}

	if err := s.execute(cmd); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, NewStatusResponse(s.ctl.Status()))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnknownCommand):
		return http.StatusNotFound
	case errors.Is(err, ErrMissingArgument):
		return http.StatusBadRequest
	}
	return http.StatusConflict
}

// handleWebSocket pushes status periodically and accepts JSON commands
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.track() {
		writeError(w, http.StatusServiceUnavailable, errors.New("server is shutting down"))
		return
	}
	defer s.wg.Done()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	replies := make(chan any, 8)
	done := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.socketWriter(conn, replies, done)
	}()
	defer close(done)

	reply := func(v any) bool {
		select {
		case replies <- v:
			return true
		case <-writerDone:
			return false
		}
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debugf("WebSocket error: %v", err)
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			if !reply(errorResponse{Error: fmt.Sprintf("invalid command: %v", err)}) {
				return
			}
			continue
		}

		var v any
		if err := s.execute(cmd); err != nil {
			v = errorResponse{Error: err.Error()}
		} else {
			v = NewStatusResponse(s.ctl.Status())
		}
		if !reply(v) {
			return
		}
	}
}

// socketWriter owns writes to conn
func (s *Server) socketWriter(conn *websocket.Conn, replies <-chan any, done <-chan struct{}) {
	const writeDeadline = 10 * time.Second

	// Closing unblocks the reader once writes stop
	defer conn.Close()

	ticker := time.NewTicker(s.config.StatusInterval)
	defer ticker.Stop()

	write := func(v any) bool {
		conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		if err := conn.WriteJSON(v); err != nil {
			log.Debugf("WebSocket write error: %v", err)
			return false
		}
		return true
	}

	if !write(NewStatusResponse(s.ctl.Status())) {
		return
	}
	for {
		select {
		case v := <-replies:
			if !write(v) {
				return
			}
		case <-ticker.C:
			if !write(NewStatusResponse(s.ctl.Status())) {
				return
			}
		case <-done:
			return
		case <-s.stopChan:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(time.Second))
			return
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

// commandNames lists accepted commands for error messages
func commandNames() []string {
	names := lo.Keys(commands)
	slices.Sort(names)
	return names
}
