package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
	"github.com/hokkyo/cpadash-backend/internal/services"
)

type ProgressHandler struct {
	log             *logger.Logger
	progressService services.ProgressService
}

func NewProgressHandler(log *logger.Logger, progressService services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		log:             log.With("handler", "ProgressHandler"),
		progressService: progressService,
	}
}

// GET /api/progress
func (h *ProgressHandler) List(c *gin.Context) {
	skip := parseIntQuery(c, "skip", 0)
	limit := parseIntQuery(c, "limit", 100)
	rows, err := h.progressService.GetAll(c.Request.Context(), skip, limit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, rows)
}

// GET /api/progress/:id
func (h *ProgressHandler) Get(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	row, err := h.progressService.GetByID(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, row)
}

// GET /api/progress/subject/:subject
func (h *ProgressHandler) ListBySubject(c *gin.Context) {
	rows, err := h.progressService.GetBySubject(c.Request.Context(), c.Param("subject"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, rows)
}

// POST /api/progress
func (h *ProgressHandler) Create(c *gin.Context) {
	var req services.ProgressCreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid request body"))
		return
	}
	row, err := h.progressService.Create(c.Request.Context(), &req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, row)
}

// PUT /api/progress/:id
func (h *ProgressHandler) Update(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req services.ProgressUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid request body"))
		return
	}
	row, err := h.progressService.Update(c.Request.Context(), id, &req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, row)
}

// DELETE /api/progress/:id
func (h *ProgressHandler) Delete(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.progressService.Delete(c.Request.Context(), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
