package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/theirongolddev/pagesync/internal/nav"
)

var errUnknownAction = errors.New("unknown gesture action")

// NavigateRequest is the body of POST /v1/navigate.
type NavigateRequest struct {
	Path string `json:"path"`
}

// TapRequest is the body of POST /v1/tap. Page takes precedence over Index.
type TapRequest struct {
	Index int    `json:"index"`
	Page  string `json:"page,omitempty"`
}

// GestureRequest is the body of POST /v1/gesture.
type GestureRequest struct {
	Action   string  `json:"action"` // begin | update | end
	Position float64 `json:"position,omitempty"`
	Velocity float64 `json:"velocity,omitempty"`
}

// GestureResponse reports the settled index for an "end" action.
type GestureResponse struct {
	Settled int   `json:"settled"`
	State   State `json:"state"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	mux.HandleFunc("POST /v1/navigate", s.handleNavigate)
	mux.HandleFunc("POST /v1/back", s.handleBack)
	mux.HandleFunc("POST /v1/tap", s.handleTap)
	mux.HandleFunc("POST /v1/gesture", s.handleGesture)
	mux.HandleFunc("POST /v1/drawer", s.handleDrawer)
	return mux
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, errors.New("path is required"))
		return
	}
	if err := s.Navigate(r.Context(), req.Path); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.snapshotStatus().State)
}

func (s *Service) handleBack(w http.ResponseWriter, r *http.Request) {
	moved, err := s.Back(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if !moved {
		writeError(w, http.StatusConflict, errors.New("history is empty"))
		return
	}
	writeJSON(w, http.StatusOK, s.snapshotStatus().State)
}

func (s *Service) handleTap(w http.ResponseWriter, r *http.Request) {
	var req TapRequest
	if !decodeBody(w, r, &req) {
		return
	}
	var err error
	if req.Page != "" {
		err = s.TapPage(r.Context(), req.Page)
	} else {
		err = s.Tap(r.Context(), req.Index)
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusAccepted, s.snapshotStatus().State)
}

func (s *Service) handleGesture(w http.ResponseWriter, r *http.Request) {
	var req GestureRequest
	if !decodeBody(w, r, &req) {
		return
	}
	settled, err := s.Gesture(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, GestureResponse{Settled: settled, State: s.snapshotStatus().State})
}

func (s *Service) handleDrawer(w http.ResponseWriter, r *http.Request) {
	if err := s.ToggleDrawer(r.Context()); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.snapshotStatus().State)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current state immediately.
	current := Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		State:     s.snapshotStatus().State,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, nav.ErrInvalidIndex), errors.Is(err, errUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, nav.ErrTransitionConflict), errors.Is(err, nav.ErrNoGesture):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
