// Package web serves the debug dashboard: live controller status, the card
// library, manual play/pause and config editing. Not meant to face the
// internet, just the home network.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/callebjorkell/musicbox/box"
	"github.com/callebjorkell/musicbox/card"
	"github.com/callebjorkell/musicbox/config"
	log "github.com/sirupsen/logrus"
)

// Server wires the HTTP surface to the shared controller. Mu is the same
// mutex the run loop uses, so taps and API calls never interleave inside
// the controller.
type Server struct {
	Mu         *sync.Mutex
	Controller *box.Controller
	Status     *box.Status
	Metrics    *Metrics
	ConfigPath string
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.index)
	mux.HandleFunc("GET /api/status", s.getStatus)
	mux.HandleFunc("GET /api/library", s.getLibrary)
	mux.HandleFunc("GET /api/config", s.getConfig)
	mux.HandleFunc("PUT /api/config", s.putConfig)
	mux.HandleFunc("POST /api/play", s.play)
	mux.HandleFunc("POST /api/pause", s.pause)
	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics.Handler())
	}
	return mux
}

// Serve blocks. Run it in its own goroutine; a dead dashboard should never
// take the music down with it.
func (s *Server) Serve(addr string) {
	log.Infof("Starting debug server on %v", addr)
	if err := http.ListenAndServe(addr, s.Handler()); err != nil {
		log.Errorf("Debug server stopped: %v", err)
	}
}

type statusPayload struct {
	IdleEvents  uint64  `json:"idle_events"`
	LastAction  *string `json:"last_action"`
	LastUpdate  *string `json:"last_update"`
	ActiveCard  *string `json:"active_card"`
	ActiveTrack *string `json:"active_track"`
}

type libraryEntry struct {
	Card  string `json:"card"`
	Track string `json:"track"`
}

type configPayload struct {
	Path     string `json:"path"`
	Contents string `json:"contents"`
}

type commandResponse struct {
	Status  statusPayload `json:"status"`
	Message string        `json:"message"`
}

func (s *Server) index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

func (s *Server) getStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.statusPayload())
}

func (s *Server) getLibrary(w http.ResponseWriter, _ *http.Request) {
	s.Mu.Lock()
	entries := s.Controller.Entries()
	s.Mu.Unlock()

	list := make([]libraryEntry, 0, len(entries))
	for _, e := range entries {
		list = append(list, libraryEntry{Card: e.Card.String(), Track: e.Track.Path})
	}
	writeJSON(w, http.StatusOK, map[string][]libraryEntry{"entries": list})
}

func (s *Server) getConfig(w http.ResponseWriter, _ *http.Request) {
	contents, err := os.ReadFile(s.ConfigPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, configPayload{Path: s.ConfigPath, Contents: string(contents)})
}

func (s *Server) putConfig(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Contents string `json:"contents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	cfg, err := config.Parse([]byte(request.Contents))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	library, err := cfg.Library()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := os.WriteFile(s.ConfigPath, []byte(request.Contents), 0644); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.Mu.Lock()
	s.Controller.ReplaceLibrary(library)
	s.Mu.Unlock()

	log.Infof("Dashboard wrote %v and replaced the library (%v cards)", s.ConfigPath, library.Len())
	writeJSON(w, http.StatusOK, configPayload{Path: s.ConfigPath, Contents: request.Contents})
}

func (s *Server) play(w http.ResponseWriter, r *http.Request) {
	var request struct {
		CardHex string `json:"card_hex"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id, err := card.ParseID(strings.TrimSpace(request.CardHex))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.Mu.Lock()
	action, err := s.Controller.HandleCard(id)
	s.Mu.Unlock()
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, box.ErrTrackNotFound) {
			code = http.StatusNotFound
		}
		writeError(w, code, err)
		return
	}

	s.recordAction(action)
	writeJSON(w, http.StatusOK, commandResponse{Status: s.statusPayload(), Message: action.String()})
}

func (s *Server) pause(w http.ResponseWriter, _ *http.Request) {
	s.Mu.Lock()
	action, err := s.Controller.Pause()
	s.Mu.Unlock()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	message := "No active playback to pause"
	if action != nil {
		s.recordAction(*action)
		message = action.String()
	}
	writeJSON(w, http.StatusOK, commandResponse{Status: s.statusPayload(), Message: message})
}

func (s *Server) recordAction(action box.Action) {
	if s.Status != nil {
		s.Status.RecordAction(action)
	}
	if s.Metrics != nil {
		s.Metrics.RecordAction(action)
	}
}

func (s *Server) statusPayload() statusPayload {
	var payload statusPayload
	if s.Status != nil {
		snap := s.Status.Snapshot()
		payload.IdleEvents = snap.IdleEvents
		if snap.LastAction != nil {
			text := snap.LastAction.String()
			payload.LastAction = &text
		}
		if !snap.LastUpdate.IsZero() {
			text := snap.LastUpdate.Format(time.RFC3339)
			payload.LastUpdate = &text
		}
	}

	s.Mu.Lock()
	id, track, active := s.Controller.Active()
	s.Mu.Unlock()
	if active {
		cardText, trackText := id.String(), track.Path
		payload.ActiveCard = &cardText
		payload.ActiveTrack = &trackText
	}
	return payload
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warnf("Unable to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
