package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ifabiensd-source/Zone-inscriptions/internal/document"
	"github.com/ifabiensd-source/Zone-inscriptions/internal/engine"
	"github.com/ifabiensd-source/Zone-inscriptions/internal/models"
	"github.com/ifabiensd-source/Zone-inscriptions/internal/notifier"
)

// DataHandler is the single read/write endpoint for the shared document:
// GET returns it, POST runs one operation through the coordinator and returns
// the result. Everything else is 405.
type DataHandler struct {
	repo     *document.Repository
	notifier notifier.Notifier
}

func NewDataHandler(repo *document.Repository, n notifier.Notifier) *DataHandler {
	return &DataHandler{repo: repo, notifier: n}
}

type errorBody struct {
	Message string `json:"message"`
}

func (h *DataHandler) Handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store, max-age=0")

	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPost:
		h.handlePost(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Message: "Method not allowed"})
	}
}

func (h *DataHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	data, err := h.repo.Get(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (h *DataHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	var op engine.Operation
	if err := json.NewDecoder(r.Body).Decode(&op); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Invalid request body"})
		return
	}

	data, err := h.repo.Apply(r.Context(), op)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownOperation) {
			writeJSON(w, http.StatusBadRequest, errorBody{Message: "Invalid action type"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorBody{Message: err.Error()})
		return
	}

	h.notify(op, data)
	writeJSON(w, http.StatusOK, data)
}

// notify reports registration changes out of band; a failed notification
// never fails the request.
func (h *DataHandler) notify(op engine.Operation, data *models.AppData) {
	if h.notifier == nil {
		return
	}
	switch op.Type {
	case engine.OpRegisterYouth:
		var p engine.RegisterPayload
		if json.Unmarshal(op.Payload, &p) != nil {
			return
		}
		act := findActivity(data, p.ActivityID)
		if act == nil || len(act.Registrations) == 0 {
			return
		}
		reg := act.Registrations[len(act.Registrations)-1]
		go func(a models.Activity) {
			if err := h.notifier.NotifyRegistration(a, reg); err != nil {
				log.Printf("Failed to notify registration: %v", err)
			}
		}(*act)
	case engine.OpUnregisterYouth:
		var p engine.UnregisterPayload
		if json.Unmarshal(op.Payload, &p) != nil {
			return
		}
		act := findActivity(data, p.ActivityID)
		if act == nil {
			return
		}
		go func(a models.Activity) {
			if err := h.notifier.NotifyUnregistration(a, p.RegistrationID); err != nil {
				log.Printf("Failed to notify unregistration: %v", err)
			}
		}(*act)
	}
}

func findActivity(data *models.AppData, id int64) *models.Activity {
	for i := range data.Activities {
		if data.Activities[i].ID == id {
			return &data.Activities[i]
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
