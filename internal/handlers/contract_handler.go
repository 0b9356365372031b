package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/middleware"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/models"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/repository"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/services"
	"github.com/shopspring/decimal"
)

type ContractHandler struct {
	contractService *services.ContractService
	paymentService  *services.PaymentService
}

func NewContractHandler(contractService *services.ContractService, paymentService *services.PaymentService) *ContractHandler {
	return &ContractHandler{contractService: contractService, paymentService: paymentService}
}

// @Summary List Contracts
// @Description Get a paginated list of contracts
// @Tags Contracts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search term"
// @Param status query string false "Filter by status"
// @Param property_id query int false "Filter by property"
// @Param tenant_id query int false "Filter by tenant"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /contracts [get]
func (h *ContractHandler) Index(c *gin.Context) {
	query := &repository.ContractQuery{ListQuery: repository.NewListQuery()}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.Status = c.Query("status")
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.Query("sort_dir")
	if propertyID, err := strconv.ParseUint(c.Query("property_id"), 10, 32); err == nil {
		query.PropertyID = uint(propertyID)
	}
	if tenantID, err := strconv.ParseUint(c.Query("tenant_id"), 10, 32); err == nil {
		query.TenantID = uint(tenantID)
	}

	contracts, total, err := h.contractService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]models.ContractResponse, 0, len(contracts))
	for _, contract := range contracts {
		responses = append(responses, contract.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"contracts": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Contract
// @Description Get a contract by ID with its installments
// @Tags Contracts
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} models.ContractResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id} [get]
func (h *ContractHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)
	contract, err := h.contractService.FindByIDWithDetails(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}

type contractRequest struct {
	PropertyID  uint            `json:"property_id" binding:"required"`
	TenantID    uint            `json:"tenant_id" binding:"required"`
	StartDate   string          `json:"start_date" binding:"required"`
	EndDate     string          `json:"end_date" binding:"required"`
	MonthlyRent decimal.Decimal `json:"monthly_rent" binding:"required"`
}

func (r *contractRequest) toModel() (*models.Contract, error) {
	startDate, err := time.Parse("2006-01-02", r.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := time.Parse("2006-01-02", r.EndDate)
	if err != nil {
		return nil, err
	}
	return &models.Contract{
		PropertyID:  r.PropertyID,
		TenantID:    r.TenantID,
		StartDate:   startDate,
		EndDate:     endDate,
		MonthlyRent: r.MonthlyRent,
	}, nil
}

// @Summary Create Contract
// @Description Create a contract and its full installment plan
// @Tags Contracts
// @Accept json
// @Produce json
// @Param contract body contractRequest true "Contract data"
// @Success 201 {object} models.ContractResponse
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /contracts [post]
func (h *ContractHandler) Create(c *gin.Context) {
	var req contractRequest
	if err := BindNestedOrFlat(c, "contract", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract payload: " + err.Error()})
		return
	}

	contract, err := req.toModel()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dates must use YYYY-MM-DD format"})
		return
	}

	validationErrs, err := h.contractService.Create(c.Request.Context(), contract, middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if validationErrs != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": validationErrs})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"contract": contract.ToResponse()})
}

type contractUpdateRequest struct {
	StartDate          *string          `json:"start_date"`
	EndDate            *string          `json:"end_date"`
	MonthlyRent        *decimal.Decimal `json:"monthly_rent"`
	Status             *string          `json:"status"`
	CancellationReason *string          `json:"cancellation_reason"`
}

// @Summary Update Contract
// @Description Update an existing contract
// @Tags Contracts
// @Accept json
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Param contract body contractUpdateRequest true "Contract data"
// @Success 200 {object} models.ContractResponse
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /contracts/{contract_id} [put]
func (h *ContractHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)
	contract, err := h.contractService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "contract not found"})
		return
	}

	var req contractUpdateRequest
	if err := BindNestedOrFlat(c, "contract", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract payload: " + err.Error()})
		return
	}

	if req.StartDate != nil {
		startDate, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dates must use YYYY-MM-DD format"})
			return
		}
		contract.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dates must use YYYY-MM-DD format"})
			return
		}
		contract.EndDate = endDate
	}
	if req.MonthlyRent != nil {
		contract.MonthlyRent = *req.MonthlyRent
	}
	if req.Status != nil {
		contract.Status = *req.Status
	}
	if req.CancellationReason != nil {
		contract.CancellationReason = req.CancellationReason
	}

	validationErrs, err := h.contractService.Update(c.Request.Context(), contract)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if validationErrs != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": validationErrs})
		return
	}

	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}

type cancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// @Summary Cancel Contract
// @Description Cancel a contract with a reason
// @Tags Contracts
// @Accept json
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Param body body cancelRequest true "Cancellation reason"
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id}/cancel [post]
func (h *ContractHandler) Cancel(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)

	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"errors": models.ValidationErrors{"cancellation_reason": {"cancellation reason is required"}},
		})
		return
	}

	err := h.contractService.Cancel(c.Request.Context(), uint(id), req.Reason, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "contract cancelled"})
}

// @Summary Termination Preview
// @Description Compute the settlement for ending a contract on a given date without persisting anything
// @Tags Contracts
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Param date query string true "Termination date (YYYY-MM-DD)"
// @Success 200 {object} services.Settlement
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id}/termination_preview [get]
func (h *ContractHandler) TerminationPreview(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must use YYYY-MM-DD format"})
		return
	}

	settlement, err := h.contractService.CalculateTermination(c.Request.Context(), uint(id), date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settlement": settlement})
}

type finalizeRequest struct {
	TerminationDate string `json:"termination_date" binding:"required"`
}

// @Summary Finalize Contract
// @Description Persist the termination settlement and finish the contract
// @Tags Contracts
// @Accept json
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Param body body finalizeRequest true "Termination date"
// @Success 200 {object} services.Settlement
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id}/finalize [post]
func (h *ContractHandler) Finalize(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)

	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "termination_date is required"})
		return
	}
	date, err := time.Parse("2006-01-02", req.TerminationDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "termination_date must use YYYY-MM-DD format"})
		return
	}

	settlement, err := h.contractService.Finalize(c.Request.Context(), uint(id), date, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settlement": settlement})
}

// @Summary List Contract Installments
// @Description Get a contract's installments ordered by due date
// @Tags Contracts
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /contracts/{contract_id}/payments [get]
func (h *ContractHandler) Payments(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)
	payments, err := h.paymentService.FindByContract(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]models.PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		responses = append(responses, payment.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"payments": responses})
}
