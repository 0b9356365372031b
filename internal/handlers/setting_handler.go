package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/models"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/services"
)

type SettingHandler struct {
	settingsService *services.SettingsService
}

func NewSettingHandler(settingsService *services.SettingsService) *SettingHandler {
	return &SettingHandler{settingsService: settingsService}
}

// @Summary List Settings
// @Description Get all settings, optionally filtered by category
// @Tags Settings
// @Produce json
// @Param category query string false "Filter by category"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /settings [get]
func (h *SettingHandler) Index(c *gin.Context) {
	var settings []models.Setting
	var err error

	if category := c.Query("category"); category != "" {
		settings, err = h.settingsService.FindByCategory(c.Request.Context(), category)
	} else {
		settings, err = h.settingsService.FindAll(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]models.SettingResponse, 0, len(settings))
	for _, setting := range settings {
		responses = append(responses, setting.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"settings": responses})
}

type settingRequest struct {
	Key         string  `json:"key" binding:"required"`
	Value       string  `json:"value" binding:"required"`
	Category    string  `json:"category"`
	Description *string `json:"description"`
}

// @Summary Update Setting
// @Description Create or update a setting by key. The settings cache is invalidated immediately.
// @Tags Settings
// @Accept json
// @Produce json
// @Param setting body settingRequest true "Setting data"
// @Success 200 {object} models.SettingResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /settings [put]
func (h *SettingHandler) Update(c *gin.Context) {
	var req settingRequest
	if err := BindNestedOrFlat(c, "setting", &req); err != nil || req.Key == "" || req.Value == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key and value are required"})
		return
	}

	setting := &models.Setting{
		Key:         req.Key,
		Value:       req.Value,
		Category:    req.Category,
		Description: req.Description,
	}
	if setting.Category == "" {
		setting.Category = models.SettingCategoryGeneral
	}

	if err := h.settingsService.Update(c.Request.Context(), setting); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"setting": setting.ToResponse()})
}

// @Summary Minimum Month Options
// @Description Enabled contract duration options in months
// @Tags Settings
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /settings/minimum_month_options [get]
func (h *SettingHandler) MinimumMonthOptions(c *gin.Context) {
	options, err := h.settingsService.EnabledMinimumMonthOptions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"options": options})
}
