// Package relay receives devtools sessions over websockets and keeps the
// latest state of each one for inspection.
package relay

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	devtools "github.com/goliatone/go-devtools"
	"github.com/goliatone/go-devtools/extension/remote"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Session is the relay's view of one connected bridge.
type Session struct {
	InstanceID string            `json:"instanceId"`
	Name       string            `json:"name"`
	Actions    int               `json:"actions"`
	LastAction string            `json:"lastAction,omitempty"`
	State      devtools.Snapshot `json:"state,omitempty"`
	StartedAt  time.Time         `json:"startedAt"`
	StoppedAt  *time.Time        `json:"stoppedAt,omitempty"`
}

// Server accepts bridge connections on its websocket handler.
type Server struct {
	log      zerolog.Logger
	upgrader websocket.Upgrader
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewServer constructs a relay server.
func NewServer(log zerolog.Logger) *Server {
	return &Server{
		log:      log,
		now:      time.Now,
		sessions: map[string]*Session{},
	}
}

// Handler routes websocket traffic on wsPath and the session listing on
// /sessions.
func (s *Server) Handler(wsPath string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(wsPath, s.serveWS)
	mux.HandleFunc("/sessions", s.serveSessions)
	return mux
}

// Sessions returns a copy of known sessions ordered by start time.
func (s *Server) Sessions() []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, *session)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("upgrade failed")
		return
	}
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Err(err).Msg("connection closed")
			}
			return
		}
		msg, err := remote.Decode(data)
		if err != nil {
			s.log.Warn().Err(err).Msg("invalid frame")
			continue
		}
		s.apply(msg)
	}
}

func (s *Server) apply(msg remote.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[msg.InstanceID]
	if !ok {
		session = &Session{InstanceID: msg.InstanceID, Name: msg.Name, StartedAt: s.now()}
		s.sessions[msg.InstanceID] = session
	}
	event := s.log.Info().Str("instanceId", msg.InstanceID).Str("session", session.Name)
	switch msg.Type {
	case remote.MessageStart:
		event.Msg("session started")
	case remote.MessageAction:
		session.Actions++
		session.LastAction = msg.Action.Type
		session.State = msg.Payload
		event.Str("action", msg.Action.Type).Strs("stores", msg.Payload.Names()).Msg("action")
	case remote.MessageStop:
		stopped := s.now()
		session.StoppedAt = &stopped
		event.Int("actions", session.Actions).Msg("session stopped")
	}
}

func (s *Server) serveSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Sessions()); err != nil {
		s.log.Warn().Err(err).Msg("encode sessions")
	}
}
