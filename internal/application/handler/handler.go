// Package handler exposes the loan application API.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"loanmatch/internal/application/models"
	"loanmatch/internal/application/service"
	"loanmatch/internal/transport/http/shared"
	dErrors "loanmatch/pkg/domain-errors"
	"loanmatch/pkg/requestcontext"
)

// Handler wires HTTP endpoints to the application service.
type Handler struct {
	apps   *service.Service
	logger *slog.Logger
}

func New(apps *service.Service, logger *slog.Logger) *Handler {
	return &Handler{apps: apps, logger: logger}
}

// Register mounts the application routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/applications", func(r chi.Router) {
		r.Post("/submit", h.handleSubmit)
		r.Get("/", h.handleList)
		r.Get("/{applicationID}", h.handleGet)
		r.Get("/{applicationID}/matches", h.handleMatches)
		r.Delete("/{applicationID}", h.handleDelete)
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var app models.Application
	if err := json.NewDecoder(r.Body).Decode(&app); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.apps.Submit(r.Context(), app)
	if err != nil {
		h.logError(r, "submit application failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 0)

	apps, err := h.apps.List(r.Context(), offset, limit)
	if err != nil {
		h.logError(r, "list applications failed", err)
		shared.WriteError(w, err)
		return
	}
	if apps == nil {
		apps = []models.Application{}
	}
	shared.WriteJSON(w, http.StatusOK, apps)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	detail, err := h.apps.Get(r.Context(), id)
	if err != nil {
		h.logError(r, "get application failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleMatches(w http.ResponseWriter, r *http.Request) {
	id, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	matches, err := h.apps.Matches(r.Context(), id)
	if err != nil {
		h.logError(r, "get matches failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, matches)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	if err := h.apps.Delete(r.Context(), id); err != nil {
		h.logError(r, "delete application failed", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) applicationID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "applicationID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid application id"))
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	if dErrors.Is(err, dErrors.CodeBadRequest) || dErrors.Is(err, dErrors.CodeNotFound) {
		return
	}
	h.logger.ErrorContext(r.Context(), msg,
		"request_id", requestcontext.RequestID(r.Context()),
		"error", err.Error(),
	)
}
