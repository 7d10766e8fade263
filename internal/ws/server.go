package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/airsplit/airsplit/internal/autosplit"
	"github.com/airsplit/airsplit/internal/config"
	"github.com/airsplit/airsplit/internal/metrics"
	"github.com/airsplit/airsplit/internal/run"
	"github.com/airsplit/airsplit/internal/timer"
	"github.com/gorilla/websocket"
)

// SettingsSource reports the run settings currently in effect.
type SettingsSource interface {
	Settings() autosplit.Settings
}

// controllable timers accept manual control from clients. Timers owned by
// an external host (LiveSplit) do not.
type controllable interface {
	timer.Timer
	Pause()
	Resume()
}

// SettingView is one toggle as reported by /api/settings.
type SettingView struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Default bool   `json:"default"`
	Enabled bool   `json:"enabled"`
}

type Server struct {
	store          *run.Store
	broadcaster    *Broadcaster
	timer          timer.Timer
	settings       SettingsSource
	metrics        *metrics.Metrics
	allowedOrigins map[string]bool
	allowedHosts   map[string]bool
	authToken      string
}

func NewServer(cfg config.ServerConfig, store *run.Store, broadcaster *Broadcaster, t timer.Timer, settings SettingsSource, m *metrics.Metrics) *Server {
	s := &Server{
		store:          store,
		broadcaster:    broadcaster,
		timer:          t,
		settings:       settings,
		metrics:        m,
		allowedOrigins: make(map[string]bool),
		allowedHosts:   make(map[string]bool),
		authToken:      cfg.AuthToken,
	}

	for _, origin := range cfg.AllowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		s.allowedOrigins[trimmed] = true
		if parsed, err := url.Parse(trimmed); err == nil && parsed.Host != "" {
			s.allowedHosts[parsed.Host] = true
		}
	}

	return s
}

func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/events", s.handleEvents)
	mux.HandleFunc("/api/settings", s.handleSettings)
	mux.HandleFunc("/api/timer/", s.handleTimer)
	mux.Handle("/metrics", s.metrics.Handler())
}

// Handler returns all routes behind the security header middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return securityHeaders(mux)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: s.checkOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade error: %v", err)
		return
	}

	c, err := s.broadcaster.AddClient(conn)
	if err != nil {
		if errors.Is(err, ErrTooManyConnections) {
			msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error())
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		}
		log.Printf("[ws] rejecting client %s: %v", r.RemoteAddr, err)
		conn.Close()
		return
	}
	log.Printf("[ws] client connected: %s", r.RemoteAddr)

	go func() {
		defer func() {
			s.broadcaster.RemoveClient(c)
			log.Printf("[ws] client disconnected: %s", r.RemoteAddr)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, s.store.Status())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, s.store.Events())
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	current := s.settings.Settings().Map()
	toggles := autosplit.Toggles()
	out := make([]SettingView, 0, len(toggles))
	for _, t := range toggles {
		out = append(out, SettingView{
			Key:     t.Key,
			Label:   t.Label,
			Default: t.Default,
			Enabled: current[t.Key],
		})
	}
	writeJSON(w, out)
}

// handleTimer serves POST /api/timer/{start,split,reset,pause,resume}.
func (s *Server) handleTimer(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	action := strings.TrimPrefix(r.URL.Path, "/api/timer/")
	var fn func(controllable)
	switch action {
	case "start":
		fn = controllable.Start
	case "split":
		fn = s.manualSplit
	case "reset":
		fn = controllable.Reset
	case "pause":
		fn = controllable.Pause
	case "resume":
		fn = controllable.Resume
	default:
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	t, ok := s.timer.(controllable)
	if !ok {
		http.Error(w, "timer is controlled by an external host", http.StatusConflict)
		return
	}
	fn(t)
	s.metrics.IncTimerAction(action)
	log.Printf("[ws] manual timer %s from %s", action, r.RemoteAddr)

	w.WriteHeader(http.StatusNoContent)
}

// manualSplit names the segment after the zone being played, or "Manual split"
// while no game is attached.
func (s *Server) manualSplit(t controllable) {
	ns, ok := t.(timer.NamedSplitter)
	if !ok {
		t.Split()
		return
	}
	name := "Manual split"
	if st := s.store.Status(); st.Attached && st.Watchers.Ready {
		name = st.Watchers.Zone.Label()
	}
	ns.SplitNamed(name)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ws] encode response: %v", err)
	}
}

func (s *Server) authorize(r *http.Request) bool {
	if s.authToken == "" {
		return true
	}

	if r.URL.Query().Get("token") == s.authToken {
		return true
	}

	if r.Header.Get("X-Airsplit-Token") == s.authToken {
		return true
	}

	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.authToken {
		return true
	}

	return false
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if len(s.allowedOrigins) > 0 {
		if s.allowedOrigins[origin] {
			return true
		}
		if parsed, err := url.Parse(origin); err == nil && parsed.Host != "" {
			return s.allowedHosts[parsed.Host]
		}
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := parsed.Host
	if host == "" {
		return false
	}

	if host == r.Host {
		return true
	}

	switch parsed.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}

	return false
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Content-Security-Policy", "default-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe serves handler until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, host string, port int, handler http.Handler) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[ws] listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
