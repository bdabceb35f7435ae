package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"

	"oxorooms/game/room"
	"oxorooms/transport/websocket"
)

// Server is the HTTP server combining the REST read surface and the
// websocket mount.
type Server struct {
	registry *room.Registry
	hub      *websocket.Hub
	router   *mux.Router
}

// NewServer creates the HTTP server over a registry and its hub.
func NewServer(registry *room.Registry, hub *websocket.Hub) *Server {
	s := &Server{
		registry: registry,
		hub:      hub,
		router:   mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all routes.
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/rooms", s.handleListRooms).Methods("GET")
	api.HandleFunc("/rooms/{code}", s.handleGetRoom).Methods("GET")
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	s.router.HandleFunc("/ws", s.hub.ServeWS)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// RoomInfo is the listing view of one live room.
type RoomInfo struct {
	Code        string    `json:"code"`
	PlayerCount int       `json:"player_count"`
	Connections int       `json:"connections"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms := s.registry.List()

	infos := make([]RoomInfo, 0, len(rooms))
	for _, rm := range rooms {
		snap := rm.Snapshot()
		infos = append(infos, RoomInfo{
			Code:        rm.Code(),
			PlayerCount: snap.PlayerCount,
			Connections: rm.ConnCount(),
			CreatedAt:   rm.CreatedAt(),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(infos),
		"rooms": infos,
	})
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	code := room.NormalizeCode(mux.Vars(r)["code"])

	rm, err := s.registry.Find(code)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			respondError(w, http.StatusNotFound, "room not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, rm.Snapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"rooms":  s.registry.Count(),
	})
}
