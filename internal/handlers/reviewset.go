package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
	"github.com/hokkyo/cpadash-backend/internal/services"
)

type ReviewSetHandler struct {
	log              *logger.Logger
	reviewSetService services.ReviewSetService
}

func NewReviewSetHandler(log *logger.Logger, reviewSetService services.ReviewSetService) *ReviewSetHandler {
	return &ReviewSetHandler{
		log:              log.With("handler", "ReviewSetHandler"),
		reviewSetService: reviewSetService,
	}
}

// GET /api/review-sets
func (h *ReviewSetHandler) List(c *gin.Context) {
	lists, err := h.reviewSetService.ListSets(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, lists)
}

// GET /api/review-sets/:id
func (h *ReviewSetHandler) Get(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	list, err := h.reviewSetService.GetSet(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, list)
}

// POST /api/review-sets
func (h *ReviewSetHandler) Create(c *gin.Context) {
	var req struct {
		Name    string `json:"name"`
		Offsets []int  `json:"offsets"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid request body"))
		return
	}
	list, err := h.reviewSetService.CreateSet(c.Request.Context(), req.Name, req.Offsets)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, list)
}

// PUT /api/review-sets/:id
func (h *ReviewSetHandler) UpdateName(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid request body"))
		return
	}
	list, err := h.reviewSetService.UpdateSetName(c.Request.Context(), id, req.Name)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, list)
}

// DELETE /api/review-sets/:id
func (h *ReviewSetHandler) Delete(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.reviewSetService.DeleteSet(c.Request.Context(), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/review-sets/:id/items
func (h *ReviewSetHandler) AddItem(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		OffsetDays int `json:"offset_days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid request body"))
		return
	}
	item, err := h.reviewSetService.AddItem(c.Request.Context(), id, req.OffsetDays)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, item)
}

// PUT /api/review-sets/:id/items/:itemID
func (h *ReviewSetHandler) UpdateItem(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseUintParam(c, "itemID")
	if !ok {
		return
	}
	var req struct {
		OffsetDays int `json:"offset_days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid request body"))
		return
	}
	item, err := h.reviewSetService.UpdateItem(c.Request.Context(), id, itemID, req.OffsetDays)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, item)
}

// DELETE /api/review-sets/:id/items/:itemID
func (h *ReviewSetHandler) DeleteItem(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseUintParam(c, "itemID")
	if !ok {
		return
	}
	if err := h.reviewSetService.DeleteItem(c.Request.Context(), id, itemID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/review-sets/:id/generate
func (h *ReviewSetHandler) Generate(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Subject   string     `json:"subject"`
		BaseTitle string     `json:"base_title"`
		StartDate *time.Time `json:"start_date"`
		ProjectID *uint      `json:"project_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid request body"))
		return
	}
	todos, err := h.reviewSetService.Generate(c.Request.Context(), id, req.Subject, req.BaseTitle, req.StartDate, req.ProjectID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"created_count": len(todos), "todos": todos})
}
