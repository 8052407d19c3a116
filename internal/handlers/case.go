package handlers

import (
	"CaseKeeper/internal/config"
	"CaseKeeper/internal/service"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ActorHeader optionally names the editor of a PUT request.
const ActorHeader = "X-Actor-Name"

// CaseHandler обслуживает /api/cases.
type CaseHandler struct {
	CaseService *service.CaseService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

// NewCaseHandler создаёт хендлер дел
func NewCaseHandler(caseService *service.CaseService, logger *zap.SugaredLogger, cfg *config.Config) *CaseHandler {
	return &CaseHandler{CaseService: caseService, Logger: logger, Config: cfg}
}

// StatusRequest - тело PATCH /api/cases/{id}/status.
type StatusRequest struct {
	Action       string `json:"action"`
	BorrowerName string `json:"borrower_name"`
}

// MessageResponse - тело ответа с текстом (ошибки и подтверждение удаления).
type MessageResponse struct {
	Message string `json:"message"`
}

// List отдаёт все дела
func (h *CaseHandler) List(w http.ResponseWriter, r *http.Request) {
	cases, err := h.CaseService.List(r.Context())
	if err != nil {
		h.writeError(w, "List", err)
		return
	}
	writeJSON(w, http.StatusOK, cases)
}

// Get отдаёт одно дело по id
func (h *CaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.CaseService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, "Get", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Create регистрирует новое дело
func (h *CaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.decodeObject(w, r, "Create")
	if !ok {
		return
	}
	fields, err := service.ParseCaseFields(raw)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}
	c, err := h.CaseService.Create(r.Context(), fields)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// Update правит описательные поля дела (только для администратора)
func (h *CaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.decodeObject(w, r, "Update")
	if !ok {
		return
	}
	fields, err := service.ParseCaseFields(raw)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}
	c, err := h.CaseService.Update(r.Context(), chi.URLParam(r, "id"), fields, r.Header.Get(ActorHeader))
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ChangeStatus выдаёт или возвращает дело
func (h *CaseHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.Logger.Warnw("ChangeStatus: invalid request body", "error", err)
		writeJSON(w, http.StatusBadRequest, MessageResponse{Message: "invalid request body"})
		return
	}
	c, err := h.CaseService.ChangeStatus(r.Context(), chi.URLParam(r, "id"), req.Action, req.BorrowerName)
	if err != nil {
		h.writeError(w, "ChangeStatus", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Delete удаляет дело навсегда (только для администратора)
func (h *CaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.CaseService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Case deleted successfully"})
}

// decodeObject reads a JSON object keeping numbers as json.Number.
// An empty body is an empty object.
func (h *CaseHandler) decodeObject(w http.ResponseWriter, r *http.Request, op string) (map[string]any, bool) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	raw := map[string]any{}
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		h.Logger.Warnw(op+": invalid request body", "error", err)
		writeJSON(w, http.StatusBadRequest, MessageResponse{Message: "invalid request body"})
		return nil, false
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, true
}

func (h *CaseHandler) writeError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.Logger.Errorw(op+": service error", "error", err)
	} else {
		h.Logger.Infow(op+": request rejected", "status", status, "reason", err)
	}
	writeJSON(w, status, MessageResponse{Message: service.Message(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
