package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
	"github.com/hokkyo/cpadash-backend/internal/services"
	"github.com/hokkyo/cpadash-backend/internal/types"
)

type SettingsHandler struct {
	log             *logger.Logger
	settingsService services.SettingsService
}

func NewSettingsHandler(log *logger.Logger, settingsService services.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		log:             log.With("handler", "SettingsHandler"),
		settingsService: settingsService,
	}
}

// SettingResponse carries the stored value verbatim plus, when the value is
// itself JSON, the parsed form so clients do not have to double-decode.
type SettingResponse struct {
	Key    string         `json:"key"`
	Value  string         `json:"value"`
	Parsed datatypes.JSON `json:"parsed,omitempty"`
}

func toSettingResponse(setting *types.Setting) SettingResponse {
	resp := SettingResponse{Key: setting.Key, Value: setting.Value}
	if json.Valid([]byte(setting.Value)) {
		resp.Parsed = datatypes.JSON(setting.Value)
	}
	return resp
}

// GET /api/settings
func (h *SettingsHandler) List(c *gin.Context) {
	settings, err := h.settingsService.GetAll(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	out := make([]SettingResponse, 0, len(settings))
	for _, setting := range settings {
		out = append(out, toSettingResponse(setting))
	}
	RespondOK(c, out)
}

// GET /api/settings/:key
func (h *SettingsHandler) Get(c *gin.Context) {
	setting, err := h.settingsService.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, toSettingResponse(setting))
}

// POST /api/settings
func (h *SettingsHandler) Upsert(c *gin.Context) {
	var req struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid request body"))
		return
	}
	setting, err := h.settingsService.Upsert(c.Request.Context(), req.Key, req.Value)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, toSettingResponse(setting))
}

// PUT /api/subjects/update-name
func (h *SettingsHandler) RenameSubject(c *gin.Context) {
	var req struct {
		OldName string `json:"old_name"`
		NewName string `json:"new_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid request body"))
		return
	}
	count, err := h.settingsService.RenameSubject(c.Request.Context(), req.OldName, req.NewName)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"updated_count": count})
}
