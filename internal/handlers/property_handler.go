package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/middleware"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/models"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/repository"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/services"
	"github.com/shopspring/decimal"
)

type PropertyHandler struct {
	propertyService *services.PropertyService
	contractService *services.ContractService
}

func NewPropertyHandler(propertyService *services.PropertyService, contractService *services.ContractService) *PropertyHandler {
	return &PropertyHandler{propertyService: propertyService, contractService: contractService}
}

// @Summary List Properties
// @Description Get a paginated list of properties
// @Tags Properties
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param city query string false "Filter by city"
// @Param property_type query string false "Filter by type"
// @Param available query bool false "Filter by availability"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /properties [get]
func (h *PropertyHandler) Index(c *gin.Context) {
	query := &repository.PropertyQuery{ListQuery: repository.NewListQuery()}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.Query("sort_dir")
	query.City = c.Query("city")
	query.PropertyType = c.Query("property_type")
	if ownerID, err := strconv.ParseUint(c.Query("owner_id"), 10, 32); err == nil {
		query.OwnerID = uint(ownerID)
	}
	if avail := c.Query("available"); avail != "" {
		value := avail == "true"
		query.Available = &value
	}

	properties, total, err := h.propertyService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]models.PropertyResponse, 0, len(properties))
	for _, property := range properties {
		responses = append(responses, property.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"properties": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Property
// @Description Get a property by ID
// @Tags Properties
// @Produce json
// @Param property_id path int true "Property ID"
// @Success 200 {object} models.PropertyResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /properties/{property_id} [get]
func (h *PropertyHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("property_id"), 10, 32)
	property, err := h.propertyService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": property.ToResponse()})
}

type propertyRequest struct {
	OwnerID       uint            `json:"owner_id" binding:"required"`
	Address       string          `json:"address" binding:"required"`
	City          string          `json:"city"`
	PropertyType  string          `json:"property_type"`
	Rooms         int             `json:"rooms"`
	SuggestedRent decimal.Decimal `json:"suggested_rent"`
	Description   *string         `json:"description"`
	Latitude      *float64        `json:"latitude"`
	Longitude     *float64        `json:"longitude"`
}

// @Summary Create Property
// @Description Register a new property
// @Tags Properties
// @Accept json
// @Produce json
// @Param property body propertyRequest true "Property data"
// @Success 201 {object} models.PropertyResponse
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /properties [post]
func (h *PropertyHandler) Create(c *gin.Context) {
	var req propertyRequest
	if err := BindNestedOrFlat(c, "property", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property payload"})
		return
	}
	if req.OwnerID == 0 || req.Address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner_id and address are required"})
		return
	}

	property := &models.Property{
		OwnerID:       req.OwnerID,
		Address:       req.Address,
		City:          req.City,
		PropertyType:  req.PropertyType,
		Rooms:         req.Rooms,
		SuggestedRent: req.SuggestedRent,
		Description:   req.Description,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		Available:     true,
	}
	if property.PropertyType == "" {
		property.PropertyType = models.PropertyTypeApartment
	}

	if err := h.propertyService.Create(c.Request.Context(), property, middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"property": property.ToResponse()})
}

type propertyUpdateRequest struct {
	Address       *string          `json:"address"`
	City          *string          `json:"city"`
	PropertyType  *string          `json:"property_type"`
	Rooms         *int             `json:"rooms"`
	SuggestedRent *decimal.Decimal `json:"suggested_rent"`
	Description   *string          `json:"description"`
	Available     *bool            `json:"available"`
	Latitude      *float64         `json:"latitude"`
	Longitude     *float64         `json:"longitude"`
}

// @Summary Update Property
// @Description Update a property's attributes
// @Tags Properties
// @Accept json
// @Produce json
// @Param property_id path int true "Property ID"
// @Param property body propertyUpdateRequest true "Fields to update"
// @Success 200 {object} models.PropertyResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /properties/{property_id} [put]
func (h *PropertyHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("property_id"), 10, 32)
	property, err := h.propertyService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var req propertyUpdateRequest
	if err := BindNestedOrFlat(c, "property", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property payload"})
		return
	}

	if req.Address != nil {
		property.Address = *req.Address
	}
	if req.City != nil {
		property.City = *req.City
	}
	if req.PropertyType != nil {
		property.PropertyType = *req.PropertyType
	}
	if req.Rooms != nil {
		property.Rooms = *req.Rooms
	}
	if req.SuggestedRent != nil {
		property.SuggestedRent = *req.SuggestedRent
	}
	if req.Description != nil {
		property.Description = req.Description
	}
	if req.Available != nil {
		property.Available = *req.Available
	}
	if req.Latitude != nil {
		property.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		property.Longitude = req.Longitude
	}

	if err := h.propertyService.Update(c.Request.Context(), property); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": property.ToResponse()})
}

// @Summary Delete Property
// @Description Soft-delete a property. Fails when the property has reserved or active contracts.
// @Tags Properties
// @Produce json
// @Param property_id path int true "Property ID"
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /properties/{property_id} [delete]
func (h *PropertyHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("property_id"), 10, 32)
	if err := h.propertyService.SoftDelete(c.Request.Context(), uint(id), middleware.GetUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "property deleted"})
}

// @Summary Upload Property Photo
// @Description Attach a photo to a property. A 400x300 thumbnail is generated.
// @Tags Properties
// @Accept multipart/form-data
// @Produce json
// @Param property_id path int true "Property ID"
// @Param photo formData file true "Photo file"
// @Success 200 {object} models.PropertyResponse
// @Security BearerAuth
// @Router /properties/{property_id}/photo [post]
func (h *PropertyHandler) UploadPhoto(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("property_id"), 10, 32)

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	defer file.Close()

	property, err := h.propertyService.AttachPhoto(c.Request.Context(), uint(id), file, header)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": property.ToResponse()})
}

// @Summary Property Unavailable Ranges
// @Description Date ranges blocked by reserved or active contracts
// @Tags Properties
// @Produce json
// @Param property_id path int true "Property ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /properties/{property_id}/unavailable_ranges [get]
func (h *PropertyHandler) UnavailableRanges(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("property_id"), 10, 32)

	ranges, err := h.contractService.UnavailableRanges(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	type rangeResponse struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}
	responses := make([]rangeResponse, 0, len(ranges))
	for _, r := range ranges {
		responses = append(responses, rangeResponse{
			Start: r.Start.Format("2006-01-02"),
			End:   r.End.Format("2006-01-02"),
		})
	}
	c.JSON(http.StatusOK, gin.H{"unavailable_ranges": responses})
}

// @Summary Next Available Date
// @Description The earliest date the property can start a new contract
// @Tags Properties
// @Produce json
// @Param property_id path int true "Property ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /properties/{property_id}/next_available_date [get]
func (h *PropertyHandler) NextAvailableDate(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("property_id"), 10, 32)

	date, err := h.contractService.NextAvailableDate(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"next_available_date": date.Format("2006-01-02")})
}
