package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"genstudio/internal/filecodec"
	"genstudio/internal/gateway/middleware"
	"genstudio/internal/session"
	"genstudio/internal/studio"

	"github.com/rs/zerolog"
)

const (
	slotImage = "image"
	slotFile  = "file"
)

// SessionHandler exposes the intents of the caller's Controller as a JSON
// API. Every response body is the resulting snapshot.
type SessionHandler struct {
	log             zerolog.Logger
	uploadMaxMemory int64
}

func NewSessionHandler(log zerolog.Logger, uploadMaxMemory int64) *SessionHandler {
	if uploadMaxMemory <= 0 {
		uploadMaxMemory = 32 << 20
	}
	return &SessionHandler{log: log, uploadMaxMemory: uploadMaxMemory}
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type errorResponse struct {
	Error    string            `json:"error"`
	Snapshot *session.Snapshot `json:"state,omitempty"`
}

type submitResponse struct {
	Outcome string           `json:"outcome"`
	State   session.Snapshot `json:"state"`
}

func (h *SessionHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controller(w, r)
	if ctrl == nil {
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

func (h *SessionHandler) HandleModes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, studio.AllModeInfo())
}

func (h *SessionHandler) HandleChangeMode(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controller(w, r)
	if ctrl == nil {
		return
	}
	var req modeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	mode, err := studio.ParseMode(req.Mode)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	h.respondIntent(w, ctrl, ctrl.ChangeMode(mode))
}

func (h *SessionHandler) HandleSetPrompt(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controller(w, r)
	if ctrl == nil {
		return
	}
	var req promptRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.respondIntent(w, ctrl, ctrl.SetPrompt(req.Prompt))
}

// HandleAttach reads the multipart "file" part into memory and places it in
// the slot named by the path.
func (h *SessionHandler) HandleAttach(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controller(w, r)
	if ctrl == nil {
		return
	}
	slot := r.PathValue("slot")
	if slot != slotImage && slot != slotFile {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown attachment slot " + slot})
		return
	}
	if err := r.ParseMultipartForm(h.uploadMaxMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart body"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	part, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: `multipart part "file" is required`})
		return
	}
	defer part.Close()
	data, err := io.ReadAll(part)
	if err != nil {
		h.log.Warn().Err(err).Str("slot", slot).Msg("upload read failed")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "upload could not be read"})
		return
	}
	f := filecodec.NewBytes(header.Filename, header.Header.Get("Content-Type"), data)

	if slot == slotImage {
		h.respondIntent(w, ctrl, ctrl.SetImageAttachment(f))
		return
	}
	h.respondIntent(w, ctrl, ctrl.SetFileAttachment(f))
}

func (h *SessionHandler) HandleDetach(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controller(w, r)
	if ctrl == nil {
		return
	}
	switch r.PathValue("slot") {
	case slotImage:
		h.respondIntent(w, ctrl, ctrl.SetImageAttachment(nil))
	case slotFile:
		h.respondIntent(w, ctrl, ctrl.SetFileAttachment(nil))
	default:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown attachment slot " + r.PathValue("slot")})
	}
}

func (h *SessionHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controller(w, r)
	if ctrl == nil {
		return
	}
	h.respondIntent(w, ctrl, ctrl.ClearInputs())
}

// HandleSubmit returns as soon as the controller is in flight (202). With
// ?wait=1 it holds the request until the result is set (200).
func (h *SessionHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controller(w, r)
	if ctrl == nil {
		return
	}
	done, outcome := ctrl.SubmitAsync(r.Context())
	status := http.StatusOK
	if outcome == session.OutcomeDispatched {
		if wantWait(r) {
			<-done
		} else {
			status = http.StatusAccepted
		}
	}
	writeJSON(w, status, submitResponse{Outcome: outcome.String(), State: ctrl.Snapshot()})
}

func (h *SessionHandler) controller(w http.ResponseWriter, r *http.Request) *session.Controller {
	ctrl := middleware.ControllerFrom(r.Context())
	if ctrl == nil {
		h.log.Error().Str("path", r.URL.Path).Msg("no session controller bound")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "no session"})
	}
	return ctrl
}

func (h *SessionHandler) respondIntent(w http.ResponseWriter, ctrl *session.Controller, err error) {
	snap := ctrl.Snapshot()
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, snap)
	case errors.Is(err, session.ErrBusy):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "a request is already in progress", Snapshot: &snap})
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Snapshot: &snap})
	}
}

func wantWait(r *http.Request) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("wait"))) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
