package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/middleware"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/models"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/repository"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/services"
	"github.com/jesusemanuel87/inmobiliaria-api/internal/storage"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
	storage        *storage.LocalStorage
}

func NewPaymentHandler(paymentService *services.PaymentService, storage *storage.LocalStorage) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, storage: storage}
}

// @Summary List Payments
// @Description Get a paginated list of installments
// @Tags Payments
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Param search_term query string false "Search term"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /payments [get]
func (h *PaymentHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.Query("sort_dir")
	if status := c.Query("status"); status != "" {
		query.Filters["status"] = status
	}
	if dueFrom := c.Query("due_from"); dueFrom != "" {
		query.Filters["due_from"] = dueFrom
	}
	if dueTo := c.Query("due_to"); dueTo != "" {
		query.Filters["due_to"] = dueTo
	}

	payments, total, err := h.paymentService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]models.PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		responses = append(responses, payment.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Payment
// @Description Get an installment by ID
// @Tags Payments
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.PaymentResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id} [get]
func (h *PaymentHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)
	payment, err := h.paymentService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse()})
}

type registerPaymentRequest struct {
	Method string `json:"method"`
	Notes  string `json:"notes"`
}

// @Summary Register Payment
// @Description Mark an installment as paid with today's date
// @Tags Payments
// @Accept json
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Param body body registerPaymentRequest false "Method and notes"
// @Success 200 {object} models.PaymentResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id}/register [post]
func (h *PaymentHandler) Register(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)

	var req registerPaymentRequest
	// Body is optional; method and notes default to empty
	_ = c.ShouldBindJSON(&req)

	payment, err := h.paymentService.Register(c.Request.Context(), uint(id), req.Method, req.Notes, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse()})
}

// @Summary Void Payment
// @Description Administratively void an unpaid installment
// @Tags Payments
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.PaymentResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id}/void [post]
func (h *PaymentHandler) Void(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)

	payment, err := h.paymentService.Void(c.Request.Context(), uint(id), middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse()})
}

// @Summary Generate Payment Plan
// @Description Generate the installment plan for a contract. No-op when the plan already exists.
// @Tags Payments
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 201 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id}/payments/generate [post]
func (h *PaymentHandler) GeneratePlan(c *gin.Context) {
	contractID, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)

	err := h.paymentService.GeneratePlan(c.Request.Context(), uint(contractID), middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "payment plan generated"})
}

// @Summary Upload Receipt
// @Description Attach a receipt file to an installment
// @Tags Payments
// @Accept multipart/form-data
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Param receipt formData file true "Receipt file"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id}/upload_receipt [post]
func (h *PaymentHandler) UploadReceipt(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)

	payment, err := h.paymentService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	file, header, err := c.Request.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receipt file is required"})
		return
	}
	defer file.Close()

	if header.Size > storage.MaxFileSize() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds the 10MB limit"})
		return
	}
	if !storage.IsValidContentType(header.Header.Get("Content-Type")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only PDF, JPG and PNG files are allowed"})
		return
	}

	path, err := h.storage.Upload(file, header, "receipts")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "receipt uploaded",
		"path":       path,
		"payment_id": payment.ID,
	})
}
