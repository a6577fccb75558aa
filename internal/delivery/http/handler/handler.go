package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/user/contact-finder/internal/adapter/sink"
	"github.com/user/contact-finder/internal/delivery/http/request"
	"github.com/user/contact-finder/internal/delivery/http/response"
	"github.com/user/contact-finder/internal/entity"
	"github.com/user/contact-finder/internal/export"
	"github.com/user/contact-finder/internal/repository"
	"github.com/user/contact-finder/internal/usecase"
)

const maxDomainsPerSession = 1000

type Handler struct {
	sessions  *usecase.SessionManager
	scheduler *usecase.Scheduler
	archive   repository.ResultArchive
	events    *sink.Broadcast
}

func NewHandler(sessions *usecase.SessionManager, scheduler *usecase.Scheduler, archive repository.ResultArchive, events *sink.Broadcast) *Handler {
	return &Handler{
		sessions:  sessions,
		scheduler: scheduler,
		archive:   archive,
		events:    events,
	}
}

func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Domains) == 0 {
		h.writeJSONError(w, "At least one domain is required", http.StatusBadRequest)
		return
	}
	if len(req.Domains) > maxDomainsPerSession {
		h.writeJSONError(w, fmt.Sprintf("At most %d domains per session", maxDomainsPerSession), http.StatusBadRequest)
		return
	}

	session, err := h.sessions.Create(r.Context(), req.Domains)
	if err != nil {
		if errors.Is(err, usecase.ErrNoDomains) {
			h.writeJSONError(w, "No valid domains after normalization", http.StatusBadRequest)
			return
		}
		slog.Error("Failed to create session", "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	domains := make([]string, 0, len(session.Tasks))
	for _, t := range session.Tasks {
		domains = append(domains, t.Domain)
	}
	h.writeJSON(w, http.StatusCreated, response.CreateSessionResponse{
		Status:    "created",
		SessionID: session.ID,
		Domains:   domains,
	})
}

func (h *Handler) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	if err := h.scheduler.Start(r.Context(), session); err != nil {
		if errors.Is(err, usecase.ErrSessionActive) {
			// Repeated start/resume on a live run is a no-op.
			h.writeJSON(w, http.StatusAccepted, response.ControlResponse{Status: "running", Message: "Session is already running"})
			return
		}
		slog.Error("Failed to start session", "session_id", session.ID, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusAccepted, response.ControlResponse{Status: "started", Message: "Session processing started"})
}

func (h *Handler) HandlePauseSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.scheduler.Pause(id) {
		h.writeJSONError(w, "Session is not running", http.StatusConflict)
		return
	}
	h.writeJSON(w, http.StatusAccepted, response.ControlResponse{Status: "pausing", Message: "In-flight domains will finish before the pool drains"})
}

func (h *Handler) HandleCancelSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.scheduler.Cancel(r.Context(), id) {
		h.writeJSONError(w, "Session is not running", http.StatusConflict)
		return
	}
	h.writeJSON(w, http.StatusOK, response.ControlResponse{Status: "cancelled", Message: "In-flight domains reset to pending"})
}

// HandleResolveAntiBot signals that the operator has solved the challenge
// shown in the visible browser window.
func (h *Handler) HandleResolveAntiBot(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.scheduler.ResolveAntiBot(id) {
		h.writeJSONError(w, "No worker is waiting on a challenge for this session", http.StatusConflict)
		return
	}
	h.writeJSON(w, http.StatusOK, response.ControlResponse{Status: "resolved", Message: "Waiting workers released"})
}

func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	state := "idle"
	switch {
	case h.scheduler.Active(session.ID):
		state = "running"
	case session.Done():
		state = "completed"
	case session.Paused:
		state = "paused"
	}

	completed := session.CompletedCount()
	succeeded := session.SuccessCount()
	h.writeJSON(w, http.StatusOK, response.SessionStatusResponse{
		SessionID:       session.ID,
		CreatedAt:       session.CreatedAt,
		State:           state,
		Progress:        session.Progress(),
		Completed:       completed,
		Total:           len(session.Tasks),
		Succeeded:       succeeded,
		Failed:          completed - succeeded,
		AwaitingAntiBot: h.scheduler.AwaitingResolution(session.ID),
		Tasks:           session.Tasks,
	})
}

func (h *Handler) HandleGetResults(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	results, err := h.archive.FindBySession(r.Context(), session.ID)
	if err != nil {
		slog.Error("Failed to load results", "session_id", session.ID, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, response.SessionResultsResponse{SessionID: session.ID, Results: results})
}

// HandleExportCSV streams the session's results as a CSV download.
func (h *Handler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	results, err := h.archive.FindBySession(r.Context(), session.ID)
	if err != nil {
		slog.Error("Failed to load results for export", "session_id", session.ID, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="contacts-%s.csv"`, session.ID))
	if err := export.Write(w, results); err != nil {
		slog.Error("Failed to write CSV export", "session_id", session.ID, "error", err)
	}
}

// HandleEvents streams progress events for one session over SSE.
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeJSONError(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	events, unsubscribe := h.events.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, open := <-events:
			if !open {
				return
			}
			if event.SessionID != id {
				continue
			}
			payload, err := json.Marshal(event)
			if err != nil {
				slog.Error("Failed to marshal event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
			flusher.Flush()
			if event.Type == entity.EventCompleted {
				return
			}
		}
	}
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// loadSession resolves the path ID to a session, writing the error response
// itself when that fails.
func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request) (*entity.Session, bool) {
	id := r.PathValue("id")
	session, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSessionNotFound):
			h.writeJSONError(w, "Session not found", http.StatusNotFound)
		case errors.Is(err, repository.ErrSessionCorrupt):
			h.writeJSONError(w, "Session record is corrupt", http.StatusInternalServerError)
		default:
			slog.Error("Failed to load session", "session_id", id, "error", err)
			h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		}
		return nil, false
	}
	return session, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
