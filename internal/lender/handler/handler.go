// Package handler exposes the lender catalog admin API.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"loanmatch/internal/lender/service"
	"loanmatch/internal/transport/http/shared"
	dErrors "loanmatch/pkg/domain-errors"
	"loanmatch/pkg/requestcontext"
)

// Handler wires HTTP endpoints to the lender service. Catalog mutations are
// admin-only; the guard middleware is injected by the router.
type Handler struct {
	lenders *service.Service
	logger  *slog.Logger
	admin   func(http.Handler) http.Handler
}

func New(lenders *service.Service, logger *slog.Logger, admin func(http.Handler) http.Handler) *Handler {
	return &Handler{lenders: lenders, logger: logger, admin: admin}
}

// Register mounts the lender routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/lenders", func(r chi.Router) {
		r.Get("/", h.handleListLenders)
		r.Group(func(r chi.Router) {
			r.Use(h.admin)
			r.Post("/", h.handleCreateLender)
			r.Post("/{lenderID}/programs", h.handleCreateProgram)
		})
	})
}

type createLenderRequest struct {
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active"`
}

func (h *Handler) handleCreateLender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createLenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	lender, err := h.lenders.CreateLender(ctx, req.Name, isActive)
	if err != nil {
		h.logError(r, "create lender failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, lender)
}

func (h *Handler) handleCreateProgram(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lenderID, err := uuid.Parse(chi.URLParam(r, "lenderID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid lender id"))
		return
	}
	var input service.ProgramInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	program, err := h.lenders.CreateProgram(ctx, lenderID, input)
	if err != nil {
		h.logError(r, "create program failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]any{
		"message":    "Program created",
		"program_id": program.ID,
	})
}

func (h *Handler) handleListLenders(w http.ResponseWriter, r *http.Request) {
	lenders, err := h.lenders.ListLenders(r.Context())
	if err != nil {
		h.logError(r, "list lenders failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, lenders)
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
